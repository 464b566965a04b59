// Package router holds the console's named-route table and runs the
// before-navigation guard chain. It carries no rendering concern; the UI layer
// observes the current route and draws whatever it wants.
package router

import (
	"fmt"
	"sync"

	"github.com/hookpost/console-agent/internal/serviceerr"
)

type Name string

const (
	RouteLogin Name = "Login"
	RouteHome  Name = "Home"
)

// Meta carries the authentication policy flags of a route. Both flags default
// to true at registration time.
type Meta struct {
	RequiresAuth       bool
	RedirectIfLoggedIn bool
}

type Route struct {
	Name Name
	Path string
	Meta Meta
}

// Guard is evaluated before each navigation. It either redirects to a named
// route (redirect, true) or lets the navigation through (_, false).
type Guard func(target Route) (Name, bool)

type RouteOption func(*Meta)

func WithRequiresAuth(v bool) RouteOption {
	return func(m *Meta) { m.RequiresAuth = v }
}

func WithRedirectIfLoggedIn(v bool) RouteOption {
	return func(m *Meta) { m.RedirectIfLoggedIn = v }
}

type Router struct {
	mu      sync.Mutex
	routes  map[Name]Route
	guards  []Guard
	current Name
}

func New() *Router {
	return &Router{
		routes: make(map[Name]Route),
	}
}

func (r *Router) Handle(name Name, path string, opts ...RouteOption) {
	meta := Meta{RequiresAuth: true, RedirectIfLoggedIn: true}
	for _, opt := range opts {
		opt(&meta)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[name] = Route{Name: name, Path: path, Meta: meta}
}

// BeforeEach appends a guard to the chain. Guards run in registration order.
func (r *Router) BeforeEach(guard Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guards = append(r.guards, guard)
}

// maxRedirects bounds guard-driven redirect chains so that a misconfigured
// route table cannot loop forever.
const maxRedirects = 10

// Push navigates to the named route, running the guard chain. A guard redirect
// triggers a new navigation, which is guarded again. Returns the route that was
// finally navigated to.
func (r *Router) Push(name Name) (Name, error) {
	for range maxRedirects {
		r.mu.Lock()
		target, ok := r.routes[name]
		guards := make([]Guard, len(r.guards))
		copy(guards, r.guards)
		r.mu.Unlock()

		if !ok {
			return "", fmt.Errorf("route %q: %w", name, serviceerr.ErrNotFound)
		}

		redirect := Name("")
		for _, guard := range guards {
			if to, redirected := guard(target); redirected {
				redirect = to
				break
			}
		}

		if redirect == "" {
			r.mu.Lock()
			r.current = name
			r.mu.Unlock()
			return name, nil
		}

		name = redirect
	}

	return "", fmt.Errorf("navigation to %q exceeded %d redirects", name, maxRedirects)
}

// Current returns the route most recently navigated to, or "" before the first
// navigation.
func (r *Router) Current() Name {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Route looks up a registered route by name.
func (r *Router) Route(name Name) (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.routes[name]
	return route, ok
}

package business

import "github.com/hookpost/console-agent/internal/router"

// NewConsoleRouter builds the console's route table. Everything requires
// authentication except the login and registration screens, which instead
// bounce an already authenticated user back home.
func NewConsoleRouter() *router.Router {
	r := router.New()

	r.Handle(router.RouteLogin, "/login", router.WithRequiresAuth(false))
	r.Handle("Register", "/register", router.WithRequiresAuth(false))
	r.Handle(router.RouteHome, "/", router.WithRedirectIfLoggedIn(false))
	r.Handle("Applications", "/applications")
	r.Handle("EventTypes", "/event-types")
	r.Handle("Subscriptions", "/subscriptions")
	r.Handle("Events", "/events")
	r.Handle("Settings", "/settings")

	return r
}

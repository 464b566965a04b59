// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import "time"

type Config struct {
	Application Application `yaml:"application"`
	Logger      Logger      `yaml:"logger"`

	API     API            `yaml:"api"`
	Store   Store          `yaml:"store"`
	ValKey  ValKey         `yaml:"valkey"`
	Session SessionManager `yaml:"sessionManager"`
	Agent   Agent          `yaml:"agent"`
}

type Application struct {
	Name        string `yaml:"name" default:"console-agent"`
	Environment string `yaml:"environment" default:"development"`
}

type Logger struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"text"`
}

// API configures the HTTP client used against the auth endpoints.
type API struct {
	BaseURL string        `yaml:"baseURL" default:"http://localhost:8081/api/v1"`
	Timeout time.Duration `yaml:"timeout" default:"10s"`
}

// Store selects the backend used to persist the session across restarts.
type Store struct {
	Backend   string `yaml:"backend" default:"file"`
	Directory string `yaml:"directory"`
}

type ValKey struct {
	Host     string `yaml:"host" default:"localhost:6379"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Prefix   string `yaml:"prefix" default:"console-agent"`
}

type SessionManager struct {
	// RefreshLeadTime is how long before access token expiry a refresh is scheduled.
	RefreshLeadTime time.Duration `yaml:"refreshLeadTime" default:"1m"`
}

type Agent struct {
	StatusInterval time.Duration `yaml:"statusInterval" default:"1m"`
}

package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name.
const Prefix = "formab"

// Database holds Turso database configuration.
type Database struct {
	URL       string `envconfig:"URL" required:"true"`
	AuthToken string `envconfig:"AUTH_TOKEN"`
}

// HTTP holds the API server configuration.
type HTTP struct {
	Port            int           `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	// AdminTokens are the bearer tokens granted the admin role.
	AdminTokens []string `envconfig:"ADMIN_TOKENS"`
}

type Log struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

// OTel holds OTEL exporter configuration.
type OTel struct {
	Enabled  bool   `envconfig:"ENABLED"`
	Endpoint string `envconfig:"ENDPOINT"`
	Insecure bool   `envconfig:"INSECURE"`
}

// Config is the full process configuration, read from FORMAB_* variables.
type Config struct {
	Database Database
	HTTP     HTTP
	Log      Log
	OTel     OTel
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDatabase reads only the database settings, for commands that never serve HTTP.
func LoadDatabase() (*Database, error) {
	var cfg Database
	if err := envconfig.Process(Prefix+"_DATABASE", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

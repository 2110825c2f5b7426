// Package config defines the environment-driven configuration for chunkwise.
package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: PostgreSQL connection and pool configuration
//   - dispatch.go: query dispatch strategy and period selection
//   - observability.go: metrics emission
type AppConfig struct {
	// IsDev controls development mode behavior (debug logging).
	IsDev bool `env:"DEV" envDefault:"false"`

	// Database configuration. The pool capacity configured here doubles as
	// the dispatch concurrency ceiling; there is no second limit to drift
	// from it.
	Postgres DBConfig `envPrefix:"DB_"`

	// Dispatch strategy and period selection configuration.
	Dispatch DispatchConfig `envPrefix:"DISPATCH_"`

	// Observability configuration.
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Postgres.Sanitize()
	c.Dispatch.Sanitize()
	c.Observability.Sanitize()
}

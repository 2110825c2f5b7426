package config

import "time"

// Default pool sizing when the environment supplies nothing usable.
const (
	defaultMaxConnections = 10
	defaultMinConnections = 2
)

// DBConfig contains PostgreSQL database and connection pool configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"chunkwise"`
	Password string `env:"PASSWORD" envDefault:"chunkwise"`
	Name     string `env:"NAME"     envDefault:"benchmark"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production

	// MaxConnections is the pool capacity and, equally, the maximum number of
	// queries in flight at once during a dispatch run.
	MaxConnections int `env:"MAX_CONNECTIONS" envDefault:"10"`
	// MinConnections keeps a warm floor of open connections so the first
	// burst of parallel queries does not pay connection setup cost.
	MinConnections int `env:"MIN_CONNECTIONS" envDefault:"2"`
	// CommandTimeout bounds every query issued through the pool. Zero
	// disables the per-query deadline.
	CommandTimeout time.Duration `env:"COMMAND_TIMEOUT" envDefault:"60s"`

	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// Sanitize clamps pool sizing to values the pool and dispatcher can accept.
func (c *DBConfig) Sanitize() {
	if c.MaxConnections < 1 {
		c.MaxConnections = defaultMaxConnections
	}
	if c.MinConnections < 0 {
		c.MinConnections = defaultMinConnections
	}
	if c.MinConnections > c.MaxConnections {
		c.MinConnections = c.MaxConnections
	}
	if c.CommandTimeout < 0 {
		c.CommandTimeout = 0
	}
}

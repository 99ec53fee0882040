package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	Job        JobConfig        `mapstructure:"job"`
	Recurrence RecurrenceConfig `mapstructure:"recurrence"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
// Tokens are issued by the platform gateway and verified here; the secret
// must match the gateway's signing key.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=0"`
}

// JobConfig configures the background materialization sweep.
// An empty cron expression disables the sweep entirely.
type JobConfig struct {
	MaterializeCron string `mapstructure:"materialize_cron"`
	BatchSize       int    `mapstructure:"batch_size"       validate:"gte=0"`
}

// RecurrenceConfig configures instance generation limits.
type RecurrenceConfig struct {
	// MaxInstancesPerRun caps how many instances one materialization call
	// may create. Zero falls back to the service default.
	MaxInstancesPerRun int `mapstructure:"max_instances_per_run" validate:"gte=0"`
}

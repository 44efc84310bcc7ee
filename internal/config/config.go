package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration. An empty DSN selects
// the shared in-memory database.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// SessionConfig holds session token configuration
type SessionConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// AuthConfig selects how department secrets are verified.
type AuthConfig struct {
	Verifier string `mapstructure:"verifier"` // plain or bcrypt
}

// WorkflowConfig holds workflow engine configuration
type WorkflowConfig struct {
	RevertSecret string `mapstructure:"revert_secret"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// Pick up a local .env if present; absence is fine.
	_ = gotenv.Load()

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.dsn", "")

	viper.SetDefault("session.ttl", 12*time.Hour)

	viper.SetDefault("auth.verifier", "plain")

	viper.SetDefault("workflow.revert_secret", "Daf59")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("session.jwt_secret", "FACTUREFLOW_JWT_SECRET")
	viper.BindEnv("workflow.revert_secret", "FACTUREFLOW_REVERT_SECRET")
	viper.BindEnv("database.dsn", "FACTUREFLOW_DB_DSN")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Session.JWTSecret == "" {
		return fmt.Errorf("session.jwt_secret is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.Auth.Verifier != "plain" && c.Auth.Verifier != "bcrypt" {
		return fmt.Errorf("auth.verifier must be plain or bcrypt")
	}
	if c.Workflow.RevertSecret == "" {
		return fmt.Errorf("workflow.revert_secret is required")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Registration store kinds
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string        `yaml:"port" env:"SERVER_PORT"`
		Mode            string        `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Host            string        `yaml:"host" env:"DB_HOST"`
		Port            string        `yaml:"port" env:"DB_PORT"`
		User            string        `yaml:"user" env:"DB_USER"`
		Password        string        `yaml:"password" env:"DB_PASSWORD"`
		DBName          string        `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxConns        int32         `yaml:"max_conns" env:"DB_MAX_CONNS"`
		MinConns        int32         `yaml:"min_conns" env:"DB_MIN_CONNS"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                string        `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration time.Duration `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string        `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Admin struct {
		Email        string `yaml:"email" env:"ADMIN_EMAIL"`
		PasswordHash string `yaml:"password_hash" env:"ADMIN_PASSWORD_HASH"`
	} `yaml:"admin"`

	Registration struct {
		Store         string        `yaml:"store" env:"REGISTRATION_STORE"`
		SubmitTimeout time.Duration `yaml:"submit_timeout" env:"REGISTRATION_SUBMIT_TIMEOUT"`
		FormTTL       time.Duration `yaml:"form_ttl" env:"REGISTRATION_FORM_TTL"`
		SweepInterval time.Duration `yaml:"sweep_interval" env:"REGISTRATION_SWEEP_INTERVAL"`
		MaxOpenForms  int           `yaml:"max_open_forms" env:"REGISTRATION_MAX_OPEN_FORMS"`
		UniqueMembers bool          `yaml:"unique_members" env:"REGISTRATION_UNIQUE_MEMBERS"`
	} `yaml:"registration"`

	SMTP struct {
		Host      string        `yaml:"host" env:"SMTP_HOST"`
		Port      int           `yaml:"port" env:"SMTP_PORT"`
		Username  string        `yaml:"username" env:"SMTP_USERNAME"`
		Password  string        `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string        `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string        `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool          `yaml:"use_tls" env:"SMTP_USE_TLS"`
		BaseURL   string        `yaml:"base_url" env:"SMTP_BASE_URL"`
		Timeout   time.Duration `yaml:"timeout" env:"SMTP_TIMEOUT"`
	} `yaml:"smtp"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// The file is optional; defaults and the environment are enough to boot.
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = 10 * time.Second
	config.Server.WriteTimeout = 15 * time.Second
	config.Server.ShutdownTimeout = 10 * time.Second

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "hackfest"
	config.Database.SSLMode = "disable"
	config.Database.MaxConns = 20
	config.Database.MinConns = 2
	config.Database.ConnMaxLifetime = time.Hour

	config.JWT.AccessTokenExpiration = time.Hour
	config.JWT.Issuer = "hackfest.app"

	config.Registration.Store = StoreMemory
	config.Registration.SubmitTimeout = 10 * time.Second
	config.Registration.FormTTL = 2 * time.Hour
	config.Registration.SweepInterval = 5 * time.Minute
	config.Registration.MaxOpenForms = 10000

	config.SMTP.Port = 587
	config.SMTP.FromName = "HackFest 2025"
	config.SMTP.BaseURL = "http://localhost:8080"
	config.SMTP.Timeout = 10 * time.Second

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch strings.ToLower(config.Registration.Store) {
	case StoreMemory:
	case StorePostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required for the postgres store")
		}
		if config.Database.ConnMaxLifetime <= 0 {
			return fmt.Errorf("database conn_max_lifetime must be positive")
		}
	default:
		return fmt.Errorf("unknown registration store %q", config.Registration.Store)
	}
	config.Registration.Store = strings.ToLower(config.Registration.Store)

	if config.Registration.SubmitTimeout <= 0 {
		return fmt.Errorf("registration submit_timeout must be positive")
	}
	if config.Registration.FormTTL <= 0 {
		return fmt.Errorf("registration form_ttl must be positive")
	}
	if config.Registration.SweepInterval <= 0 {
		return fmt.Errorf("registration sweep_interval must be positive")
	}
	if config.Registration.MaxOpenForms <= 0 {
		return fmt.Errorf("registration max_open_forms must be positive")
	}

	// Organizer endpoints are only mounted when an admin account is configured.
	if config.AdminEnabled() {
		if config.JWT.Secret == "" {
			return fmt.Errorf("JWT secret is required when an admin account is configured")
		}
		if config.Admin.PasswordHash == "" {
			return fmt.Errorf("admin password_hash is required when admin email is set")
		}
		if config.JWT.AccessTokenExpiration <= 0 {
			return fmt.Errorf("JWT access_token_expiration must be positive")
		}
	}

	return nil
}

// AdminEnabled reports whether organizer endpoints should be exposed.
func (c *Config) AdminEnabled() bool {
	return c.Admin.Email != ""
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

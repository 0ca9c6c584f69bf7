// Package config loads application configuration from a YAML file (path given
// by CONFIG_FILE, default configs/config.yaml) layered with environment
// variable overrides, mirroring the loader the rest of this module's ambient
// stack expects.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig controls the ambient HTTP surface (/healthz, /metrics).
type ServerConfig struct {
	Host string `yaml:"host" json:"host" env:"SERVER_HOST"`
	Port int    `yaml:"port" json:"port" env:"SERVER_PORT"`
}

// DatabaseConfig controls persistence.
type DatabaseConfig struct {
	URL            string `yaml:"url" json:"url" env:"DATABASE_URL"`
	MigrateOnStart bool   `yaml:"migrate_on_start" json:"migrate_on_start" env:"DATABASE_MIGRATE_ON_START"`
}

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" json:"format" env:"LOG_FORMAT"`
	Output string `yaml:"output" json:"output" env:"LOG_OUTPUT"`
}

// AdminConfig lists the email addresses granted operator-level access.
type AdminConfig struct {
	Emails []string `yaml:"emails" json:"emails"`
}

// GoogleOAuthConfig controls the Google sign-in flow used by club officers.
type GoogleOAuthConfig struct {
	ClientID     string `yaml:"client_id" json:"client_id" env:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" json:"client_secret" env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	RedirectURI  string `yaml:"redirect_uri" json:"redirect_uri" env:"GOOGLE_OAUTH_REDIRECT_URI"`
}

// JWTConfig controls session-token signing for authenticated staff.
type JWTConfig struct {
	Secret          string `yaml:"secret" json:"secret" env:"JWT_SECRET"`
	ExpirationHours int    `yaml:"expiration_hours" json:"expiration_hours" env:"JWT_EXPIRATION_HOURS"`
}

// MagicLinkConfig controls the one-shot questionnaire invitation links.
type MagicLinkConfig struct {
	BaseURL         string `yaml:"base_url" json:"base_url" env:"MAGIC_LINK_BASE_URL"`
	ExpirationHours int    `yaml:"expiration_hours" json:"expiration_hours" env:"MAGIC_LINK_EXPIRATION_HOURS"`
}

// SMTPConfig controls outbound questionnaire-invitation email.
type SMTPConfig struct {
	Host     string `yaml:"host" json:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" json:"port" env:"SMTP_PORT"`
	User     string `yaml:"user" json:"user" env:"SMTP_USER"`
	Password string `yaml:"password" json:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" json:"from" env:"SMTP_FROM"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig      `yaml:"server" json:"server"`
	Database    DatabaseConfig    `yaml:"database" json:"database"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`
	Admin       AdminConfig       `yaml:"admin" json:"admin"`
	GoogleOAuth GoogleOAuthConfig `yaml:"google_oauth" json:"google_oauth"`
	JWT         JWTConfig         `yaml:"jwt" json:"jwt"`
	MagicLink   MagicLinkConfig   `yaml:"magic_link" json:"magic_link"`
	SMTP        SMTPConfig        `yaml:"smtp" json:"smtp"`
}

// New returns a configuration populated with defaults.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			MigrateOnStart: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		JWT: JWTConfig{
			ExpirationHours: 12,
		},
		MagicLink: MagicLinkConfig{
			BaseURL:         "http://localhost:8080",
			ExpirationHours: 24,
		},
	}
}

// Load loads configuration from the file named by CONFIG_FILE (falling back
// to configs/config.yaml) and then applies environment variable overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := New()

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		path = "configs/config.yaml"
	}
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := envdecode.Decode(cfg); err != nil {
		// envdecode errors out when no tagged field was present in the
		// environment; treat that as "no overrides" so local runs work
		// without exporting anything.
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("decode env: %w", err)
		}
	}

	return cfg, nil
}

// LoadFile reads configuration from a YAML file without consulting the
// environment. Used by tests that want a deterministic snapshot.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	expanded, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

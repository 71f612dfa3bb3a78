package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Email     EmailConfig     `yaml:"email"`
	Storage   StorageConfig   `yaml:"storage"`
	Security  SecurityConfig  `yaml:"security"`
	Messaging MessagingConfig `yaml:"messaging"`
	Push      PushConfig      `yaml:"push"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains document download server settings
type ServerConfig struct {
	Host string `yaml:"host" env:"SERVER_HOST"`
	Port int    `yaml:"port" env:"SERVER_PORT"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Database string `yaml:"database" env:"DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE"`
}

// SMTPConfig contains email service settings
type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT"`
	User     string `yaml:"user" env:"SMTP_USER"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM"`
}

// EmailConfig selects the outgoing mail provider
type EmailConfig struct {
	Provider       string `yaml:"provider" env:"EMAIL_PROVIDER"` // "smtp" or "sendgrid"
	SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	FromName       string `yaml:"from_name" env:"EMAIL_FROM_NAME"`
}

// StorageConfig contains document storage settings
type StorageConfig struct {
	Dir     string `yaml:"dir" env:"DOCUMENT_DIR"`
	BaseURL string `yaml:"base_url" env:"DOCUMENT_BASE_URL"`
}

// SecurityConfig contains code and token settings
type SecurityConfig struct {
	TokenSecret          string `yaml:"token_secret" env:"TOKEN_SECRET"`
	CodeExpiryHours      int    `yaml:"code_expiry_hours" env:"CODE_EXPIRY_HOURS"`
	DownloadLinkTTLHours int    `yaml:"download_link_ttl_hours" env:"DOWNLOAD_LINK_TTL_HOURS"`
	PasswordLength       int    `yaml:"password_length" env:"MEMBER_PASSWORD_LENGTH"`
}

// MessagingConfig drives phone normalization and correction messages
type MessagingConfig struct {
	CountryCode       string `yaml:"country_code" env:"MESSAGING_COUNTRY_CODE"`
	MinDigits         int    `yaml:"min_digits" env:"MESSAGING_MIN_DIGITS"`
	MaxDigits         int    `yaml:"max_digits" env:"MESSAGING_MAX_DIGITS"`
	CorrectionFormURL string `yaml:"correction_form_url" env:"CORRECTION_FORM_URL"`
	OrganizationName  string `yaml:"organization_name" env:"ORGANIZATION_NAME"`
}

// PushConfig contains Firebase Cloud Messaging settings
type PushConfig struct {
	Enabled         bool   `yaml:"enabled" env:"PUSH_ENABLED"`
	CredentialsFile string `yaml:"credentials_file" env:"FIREBASE_CREDENTIALS_FILE"`
	Topic           string `yaml:"topic" env:"PUSH_TOPIC"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" env:"LOG_FORMAT"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	NotifyStaleCodes string `yaml:"notify_stale_codes" env:"CRON_NOTIFY_STALE_CODES"`
	LogStatistics    string `yaml:"log_statistics" env:"CRON_LOG_STATISTICS"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables win over the file
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Email.Provider == "" {
		c.Email.Provider = "smtp"
	}
	switch c.Email.Provider {
	case "smtp":
		if c.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required")
		}
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.SMTP.Port)
		}
	case "sendgrid":
		if c.Email.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid API key is required")
		}
	default:
		return fmt.Errorf("unknown email provider: %s", c.Email.Provider)
	}

	if c.Security.TokenSecret == "" {
		return fmt.Errorf("token secret is required")
	}
	if len(c.Security.TokenSecret) < 32 {
		return fmt.Errorf("token secret must be at least 32 characters")
	}
	if c.Security.CodeExpiryHours <= 0 {
		c.Security.CodeExpiryHours = 48
	}
	if c.Security.DownloadLinkTTLHours <= 0 {
		c.Security.DownloadLinkTTLHours = 72
	}
	if c.Security.PasswordLength <= 0 {
		c.Security.PasswordLength = 10
	}

	if c.Storage.Dir == "" {
		return fmt.Errorf("document directory is required")
	}

	if c.Messaging.CountryCode == "" {
		c.Messaging.CountryCode = "223"
	}
	if c.Messaging.MinDigits == 0 {
		c.Messaging.MinDigits = 8
	}
	if c.Messaging.MaxDigits == 0 {
		c.Messaging.MaxDigits = 8
	}
	if c.Messaging.MinDigits > c.Messaging.MaxDigits {
		return fmt.Errorf("messaging min digits %d exceeds max digits %d", c.Messaging.MinDigits, c.Messaging.MaxDigits)
	}

	if c.Push.Enabled && c.Push.CredentialsFile == "" {
		return fmt.Errorf("firebase credentials file is required when push is enabled")
	}
	if c.Push.Topic == "" {
		c.Push.Topic = "membership-admins"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Scheduler.NotifyStaleCodes == "" {
		c.Scheduler.NotifyStaleCodes = "0 0 7 * * *" // 7 AM UTC
	}
	if c.Scheduler.LogStatistics == "" {
		c.Scheduler.LogStatistics = "0 0 * * * *" // hourly
	}

	return nil
}

// CodeExpiry returns the lifetime of a freshly issued security code
func (c *Config) CodeExpiry() time.Duration {
	return time.Duration(c.Security.CodeExpiryHours) * time.Hour
}

// DownloadLinkTTL returns the lifetime of a signed document link
func (c *Config) DownloadLinkTTL() time.Duration {
	return time.Duration(c.Security.DownloadLinkTTLHours) * time.Hour
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the document server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

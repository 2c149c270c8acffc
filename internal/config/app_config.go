package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds all application-level configuration loaded from environment variables.
// It is loaded once at startup and treated as read-only afterwards.
type AppConfig struct {
	// Port is the HTTP server port. Defaults to 8990.
	Port int `envconfig:"PORT" default:"8990"`

	// DirectoryAPIURL is the base URL of the recipient directory service.
	DirectoryAPIURL string `envconfig:"DIRECTORY_API_URL" default:"http://localhost:8080"`

	// NotifyServiceURL is the endpoint of the downstream notify (SMS relay) service.
	NotifyServiceURL string `envconfig:"NOTIFY_SERVICE_URL" default:"http://localhost:8081/notify"`

	// NotifyToken is the shared secret sent as X-Notify-Token to the notify service.
	NotifyToken string `envconfig:"NOTIFY_TOKEN" default:"dev-secret-token"`

	// FromEmail is the sender address for outgoing notification emails.
	FromEmail string `envconfig:"FROM_EMAIL" default:"noreply@matchday.local"`

	// SMTP connection parameters for the email provider.
	SMTPHost       string `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort       int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername   string `envconfig:"SMTP_USERNAME"`
	SMTPPassword   string `envconfig:"SMTP_PASSWORD"`
	SMTPEncryption string `envconfig:"SMTP_ENCRYPTION" default:"starttls"` // "none", "starttls", "ssl_tls"

	// HTTPTimeout bounds every outbound HTTP call (directory lookups and relay posts).
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// DBPath enables the SQLite dispatch audit log when set. Empty disables persistence.
	DBPath string `envconfig:"DB_PATH"`
}

// Load reads AppConfig from environment variables using envconfig.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

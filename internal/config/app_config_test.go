package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		want     slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &AppConfig{LogLevel: tt.logLevel}
			assert.Equal(t, tt.want, c.SlogLevel())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8990, c.Port)
	assert.Equal(t, "http://localhost:8080", c.DirectoryAPIURL)
	assert.Equal(t, "http://localhost:8081/notify", c.NotifyServiceURL)
	assert.Equal(t, "dev-secret-token", c.NotifyToken)
	assert.Equal(t, "noreply@matchday.local", c.FromEmail)
	assert.Equal(t, 10*time.Second, c.HTTPTimeout)
	assert.Empty(t, c.DBPath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9001")
	t.Setenv("DIRECTORY_API_URL", "http://directory.internal")
	t.Setenv("NOTIFY_TOKEN", "super-secret")
	t.Setenv("HTTP_TIMEOUT", "3s")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9001, c.Port)
	assert.Equal(t, "http://directory.internal", c.DirectoryAPIURL)
	assert.Equal(t, "super-secret", c.NotifyToken)
	assert.Equal(t, 3*time.Second, c.HTTPTimeout)
}

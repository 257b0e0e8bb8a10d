package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "loadboard", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.GetAddr())
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "taskmanager", cfg.Database.Name)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 30*time.Second, cfg.Client.RefreshInterval)
	assert.Equal(t, "http://localhost:8080", cfg.Client.BaseURL)
	assert.False(t, cfg.Auth.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.False(t, cfg.App.IsProduction())
	assert.False(t, cfg.App.Debug)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverMemory)
	t.Setenv("DB_QUERY_TIMEOUT", "2s")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOADBOARD_URL", "http://board.internal:9090")
	t.Setenv("LOADBOARD_REFRESH_INTERVAL", "45s")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("APP_ENVIRONMENT", "production")
	t.Setenv("APP_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 2*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://board.internal:9090", cfg.Client.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Client.RefreshInterval)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	assert.True(t, cfg.App.IsProduction())
	assert.True(t, cfg.App.Debug)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "mongo"}, "unknown database driver"},
		{"auth without secret", map[string]string{"AUTH_ENABLED": "true"}, "auth secret"},
		{"refresh too fast", map[string]string{"LOADBOARD_REFRESH_INTERVAL": "500ms"}, "refresh interval"},
		{"zero query timeout", map[string]string{"DB_QUERY_TIMEOUT": "0s"}, "query timeout"},
		{"port out of range", map[string]string{"SERVER_PORT": "70000"}, "server port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "taskmanager", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=taskmanager sslmode=disable", cfg.GetDSN())
}

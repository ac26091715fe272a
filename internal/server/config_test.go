package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

const testConfig = `
[server]
port = "8080"
cors_origins = ["http://a.example", "http://b.example"]

[database]
driver = "postgres"
host = "db"
name = "medtrack"

[database.testing]
driver = "sqlite"
path = ":memory:"

[auth]
session_secret = "secret"
session_duration = "30m"
lockout_threshold = 5

[permissions]
Users = ["view_medication"]
`

func writeConfig(t *testing.T, content string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))
	return dir
}

func TestLoadConfigFrom(t *testing.T) {
	t.Setenv("APP_ENV", EnvDevelopment)
	dir := writeConfig(t, testConfig)

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 30*time.Minute, cfg.Auth.SessionDuration)
	assert.True(t, cfg.RateLimit.Enabled, "default applies when the file is silent")
	assert.Equal(t, []string{"view_medication"}, cfg.Permissions["users"])
}

func TestLoadConfigFrom_TestingOverlay(t *testing.T) {
	t.Setenv("APP_ENV", EnvTesting)
	dir := writeConfig(t, testConfig)

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, "medtrack", cfg.Database.Name)
}

func TestLoadConfigFrom_EnvOverride(t *testing.T) {
	t.Setenv("APP_ENV", EnvDevelopment)
	t.Setenv("MEDTRACK_DATABASE_HOST", "override-host")
	t.Setenv("MEDTRACK_SERVER_CORS_ORIGINS", "http://x.example, http://y.example")
	dir := writeConfig(t, testConfig)

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "override-host", cfg.Database.Host)
	assert.Equal(t, []string{"http://x.example", "http://y.example"}, cfg.Server.CORSOrigins)
}

func TestLoadConfigFrom_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		content string
		wantErr bool
	}{
		{
			name:    "production requires secret",
			env:     EnvProduction,
			content: "[database]\ndriver = \"postgres\"\n",
			wantErr: true,
		},
		{
			name:    "development falls back to insecure secret",
			env:     EnvDevelopment,
			content: "[database]\ndriver = \"postgres\"\n",
		},
		{
			name:    "unknown driver",
			env:     EnvDevelopment,
			content: "[database]\ndriver = \"mysql\"\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.env)
			cfg, err := LoadConfigFrom(writeConfig(t, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, cfg.Auth.SessionSecret)
		})
	}
}

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, levelFromString("debug"))
	assert.Equal(t, zapcore.WarnLevel, levelFromString("warning"))
	assert.Equal(t, zapcore.ErrorLevel, levelFromString("error"))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("bogus"))
}

package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("DATASET_PATH", "/data/leeds_2019.csv")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_MAX_OPEN_CONNS", "10")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "prod", cfg.AppEnv)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/data/leeds_2019.csv", cfg.Dataset.Path)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("SERVER_PORT", "eighty")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("SERVER_PORT", "")
	t.Setenv("DB_CONN_MAX_LIFETIME", "forever")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: warn
  format: text
dataset:
  path: leeds.csv
database:
  driver: sqlite3
  dsn: "file::memory:?cache=shared"
`), 0o644))

	t.Setenv(ConfigFileEnv, path)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "error", cfg.Logging.Level, "env wins over file")
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "leeds.csv", cfg.Dataset.Path)
	assert.Equal(t, "file::memory:?cache=shared", cfg.Database.DSN)
	assert.Equal(t, 8080, cfg.Server.Port, "defaults survive")
}

func TestLoadFile_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.yml")
	require.NoError(t, os.WriteFile(path, []byte("colour: blue\n"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad env", func(c *Config) { c.AppEnv = "staging" }},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"bad db port", func(c *Config) { c.Database.Driver = "postgres"; c.Database.Port = 0 }},
		{"negative pool", func(c *Config) { c.Database.MaxOpenConns = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_ConnectionAndLogger(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "postgres"
	cfg.Database.Database = "weather"
	cfg.Database.Password = "secret"

	conn := cfg.Connection()
	assert.Equal(t, "postgres", conn.Driver)
	assert.Contains(t, conn.DataSourceName(), "dbname=weather")
	assert.Contains(t, conn.DataSourceName(), "password=secret")

	var buf bytes.Buffer
	cfg.Logging.Format = "text"
	logger, err := cfg.Logger("weather-test", "0.0.1", &buf)
	require.NoError(t, err)
	logger.Info(context.Background(), "hello", nil)
	assert.Contains(t, buf.String(), "hello")

	cfg.Logging.Level = "loud"
	_, err = cfg.Logger("weather-test", "0.0.1", &buf)
	assert.Error(t, err)
}

package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v2"

	"weather-stats/pkg/database"
	"weather-stats/pkg/logging"
)

// ConfigFileEnv names the env var pointing at an optional YAML config file.
const ConfigFileEnv = "WEATHER_CONFIG"

type Config struct {
	AppEnv   string         `yaml:"app-env"`
	Logging  LoggingConfig  `yaml:"logging"`
	Server   ServerConfig   `yaml:"server"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Database DatabaseConfig `yaml:"database"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read-timeout"`
	WriteTimeout time.Duration `yaml:"write-timeout"`
	IdleTimeout  time.Duration `yaml:"idle-timeout"`
}

type DatasetConfig struct {
	// Path of the weather CSV file served by the API.
	Path string `yaml:"path"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"` // sqlite3 or postgres
	DSN             string        `yaml:"dsn"`    // overrides the fields below when set
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max-open-conns"`
	MaxIdleConns    int           `yaml:"max-idle-conns"`
	ConnMaxLifetime time.Duration `yaml:"conn-max-lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn-max-idle-time"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		AppEnv: "dev",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Dataset: DatasetConfig{
			Path: "data/weather.csv",
		},
		Database: DatabaseConfig{
			Driver:          "sqlite3",
			Database:        "weather_reports.db",
			Host:            "localhost",
			Port:            5432,
			User:            "weather",
			SSLMode:         "disable",
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
		},
	}
}

// LoadConfig starts from Default, applies the YAML file named by
// WEATHER_CONFIG if set, then applies environment variables.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv(ConfigFileEnv)); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFile reads a YAML configuration file over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.UnmarshalStrict(buf, c); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.AppEnv, "APP_ENV")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")

	setString(&c.Server.Host, "SERVER_HOST")
	setString(&c.Dataset.Path, "DATASET_PATH")

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DB_DSN")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Database, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSLMODE")

	for _, v := range []struct {
		dst *int
		key string
	}{
		{&c.Server.Port, "SERVER_PORT"},
		{&c.Database.Port, "DB_PORT"},
		{&c.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS"},
		{&c.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS"},
	} {
		if err := setInt(v.dst, v.key); err != nil {
			return err
		}
	}

	for _, v := range []struct {
		dst *time.Duration
		key string
	}{
		{&c.Server.ReadTimeout, "SERVER_READ_TIMEOUT"},
		{&c.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT"},
		{&c.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT"},
		{&c.Database.ConnMaxLifetime, "DB_CONN_MAX_LIFETIME"},
		{&c.Database.ConnMaxIdleTime, "DB_CONN_MAX_IDLE_TIME"},
	} {
		if err := setDuration(v.dst, v.key); err != nil {
			return err
		}
	}

	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	*dst = v
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	*dst = v
	return nil
}

// Validate checks values that cannot be caught while parsing.
func (c *Config) Validate() error {
	switch c.AppEnv {
	case "dev", "prod":
	default:
		return fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", c.AppEnv)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q (allowed: json, text)", c.Logging.Format)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q (allowed: sqlite3, postgres)", c.Database.Driver)
	}

	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid DB_PORT %d", c.Database.Port)
		}
	}

	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("connection pool sizes cannot be negative")
	}

	return nil
}

// Connection returns the database connection settings.
func (c *Config) Connection() *database.Config {
	return &database.Config{
		Driver:          c.Database.Driver,
		DSN:             c.Database.DSN,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Database,
		SSLMode:         c.Database.SSLMode,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
	}
}

// Logger builds a logger writing to w with the configured level and format.
func (c *Config) Logger(service, version string, w io.Writer) (*logging.StructuredLogger, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(service, version, level, format, w), nil
}

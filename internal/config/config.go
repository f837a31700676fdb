// Package config loads the server configuration from an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort              = 5000
	defaultDriver            = "mongo"
	defaultMongoURI          = "mongodb://localhost:27017"
	defaultMongoDatabase     = "synergy-planner"
	defaultSQLiteDSN         = "./synergy.db"
	defaultModel             = "gemini-2.5-flash"
	defaultOracleTimeout     = 30 * time.Second
	defaultMaxImageDimension = 800
	defaultLogLevel          = "info"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Oracle   OracleConfig   `yaml:"oracle"`
	Calendar CalendarConfig `yaml:"calendar"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type StoreConfig struct {
	Driver        string `yaml:"driver"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
	DSN           string `yaml:"dsn"` // sqlite3 path or postgres connection string
}

type OracleConfig struct {
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxImageDimension int           `yaml:"max_image_dimension"`
}

type CalendarConfig struct {
	// Timezone is an IANA name; empty means the host's local zone.
	Timezone string `yaml:"timezone"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads path (a missing file is not an error), applies environment
// overrides and fills defaults. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	str("STORE_DRIVER", &c.Store.Driver)
	str("MONGODB_URI", &c.Store.MongoURI)
	str("MONGODB_DATABASE", &c.Store.MongoDatabase)
	str("DB_CONN", &c.Store.DSN)
	str("GEMINI_API_KEY", &c.Oracle.APIKey)
	str("GEMINI_MODEL", &c.Oracle.Model)
	str("TZ_NAME", &c.Calendar.Timezone)
	str("LOG_LEVEL", &c.Log.Level)
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Store.Driver == "" {
		c.Store.Driver = defaultDriver
	}
	if c.Store.MongoURI == "" {
		c.Store.MongoURI = defaultMongoURI
	}
	if c.Store.MongoDatabase == "" {
		c.Store.MongoDatabase = defaultMongoDatabase
	}
	if c.Store.DSN == "" && c.Store.Driver == DriverSQLite {
		c.Store.DSN = defaultSQLiteDSN
	}
	if c.Oracle.Model == "" {
		c.Oracle.Model = defaultModel
	}
	if c.Oracle.Timeout == 0 {
		c.Oracle.Timeout = defaultOracleTimeout
	}
	if c.Oracle.MaxImageDimension == 0 {
		c.Oracle.MaxImageDimension = defaultMaxImageDimension
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMongo, DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == DriverPostgres && c.Store.DSN == "" {
		return errors.New("store.dsn is required for postgres")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Oracle.MaxImageDimension <= 0 {
		return fmt.Errorf("invalid oracle.max_image_dimension %d", c.Oracle.MaxImageDimension)
	}
	if c.Oracle.Timeout < 0 {
		return fmt.Errorf("invalid oracle.timeout %s", c.Oracle.Timeout)
	}
	return nil
}

// Location returns the zone day keys are derived in.
func (c *Config) Location() (*time.Location, error) {
	if c.Calendar.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Calendar.Timezone, err)
	}
	return loc, nil
}

func (c *Config) LogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.Log.Level)
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Session   SessionConfig   `yaml:"session"`
	Backend   BackendConfig   `yaml:"backend"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// AuthConfig protects the JSON endpoints and names the admins. Exercises
// created by an admin are default exercises.
type AuthConfig struct {
	APIKey string   `yaml:"api_key"`
	Admins []string `yaml:"admins"`
	// DevUser is the identity used when Tailscale is disabled.
	DevUser string `yaml:"dev_user"`
}

// SessionConfig selects where wizard state lives between requests.
type SessionConfig struct {
	Store         string        `yaml:"store"` // memory, sqlite, redis
	SQLitePath    string        `yaml:"sqlite_path"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// BackendConfig selects what the exercise wizard talks to: the service in
// this process, or the JSON endpoints of another instance.
type BackendConfig struct {
	Mode   string `yaml:"mode"` // local, remote
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// IsAdmin reports whether login is listed in auth.admins.
func (a AuthConfig) IsAdmin(login string) bool {
	for _, admin := range a.Admins {
		if strings.EqualFold(admin, login) {
			return true
		}
	}
	return false
}

// Load reads config from a YAML file, loads a .env file next to it if one
// exists, then applies environment variable overrides. Env vars use the
// prefix FITLG_ and underscore-separated paths:
//
//	FITLG_SERVER_HOST, FITLG_SERVER_PORT,
//	FITLG_DB_HOST, FITLG_DB_PORT, FITLG_DB_NAME,
//	FITLG_DB_USER, FITLG_DB_PASSWORD, FITLG_DB_SSLMODE,
//	FITLG_AUTH_API_KEY, FITLG_AUTH_ADMINS (comma-separated),
//	FITLG_SESSION_STORE, FITLG_SESSION_SQLITE_PATH, FITLG_SESSION_REDIS_ADDR,
//	FITLG_SESSION_REDIS_PASSWORD, FITLG_SESSION_TTL,
//	FITLG_BACKEND_MODE, FITLG_BACKEND_URL, FITLG_BACKEND_API_KEY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Variables already set in the environment win over the .env file.
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("FITLG_SERVER_HOST", &cfg.Server.Host)
	setInt("FITLG_SERVER_PORT", &cfg.Server.Port)
	setString("FITLG_DB_HOST", &cfg.Database.Host)
	setInt("FITLG_DB_PORT", &cfg.Database.Port)
	setString("FITLG_DB_NAME", &cfg.Database.Name)
	setString("FITLG_DB_USER", &cfg.Database.User)
	setString("FITLG_DB_PASSWORD", &cfg.Database.Password)
	setString("FITLG_DB_SSLMODE", &cfg.Database.SSLMode)
	setString("FITLG_AUTH_API_KEY", &cfg.Auth.APIKey)
	if v := os.Getenv("FITLG_AUTH_ADMINS"); v != "" {
		cfg.Auth.Admins = nil
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				cfg.Auth.Admins = append(cfg.Auth.Admins, a)
			}
		}
	}
	setString("FITLG_SESSION_STORE", &cfg.Session.Store)
	setString("FITLG_SESSION_SQLITE_PATH", &cfg.Session.SQLitePath)
	setString("FITLG_SESSION_REDIS_ADDR", &cfg.Session.RedisAddr)
	setString("FITLG_SESSION_REDIS_PASSWORD", &cfg.Session.RedisPassword)
	if v := os.Getenv("FITLG_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.TTL = d
		}
	}
	setString("FITLG_BACKEND_MODE", &cfg.Backend.Mode)
	setString("FITLG_BACKEND_URL", &cfg.Backend.URL)
	setString("FITLG_BACKEND_API_KEY", &cfg.Backend.APIKey)
}

func applyDefaults(cfg *Config) {
	if cfg.Session.Store == "" {
		cfg.Session.Store = "memory"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 2 * time.Hour
	}
	if cfg.Backend.Mode == "" {
		cfg.Backend.Mode = "local"
	}
	if cfg.Auth.DevUser == "" {
		cfg.Auth.DevUser = "dev"
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "fitlg"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	switch c.Session.Store {
	case "memory":
	case "sqlite":
		if c.Session.SQLitePath == "" {
			return fmt.Errorf("session.sqlite_path is required for the sqlite store")
		}
	case "redis":
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("session.redis_addr is required for the redis store")
		}
	default:
		return fmt.Errorf("session.store %q is not one of memory, sqlite, redis", c.Session.Store)
	}
	switch c.Backend.Mode {
	case "local":
	case "remote":
		if c.Backend.URL == "" {
			return fmt.Errorf("backend.url is required in remote mode")
		}
	default:
		return fmt.Errorf("backend.mode %q is not one of local, remote", c.Backend.Mode)
	}
	return nil
}

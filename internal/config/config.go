package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// insecureSecret is the placeholder shipped in example configs.
const insecureSecret = "change-me"

// Config holds all configuration for the application.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Log    LogConfig    `mapstructure:"log"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Audit  AuditConfig  `mapstructure:"audit"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	BaseURL         string        `mapstructure:"base_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	TLS             TLSConfig     `mapstructure:"tls"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DBConfig holds database-specific configuration.
type DBConfig struct {
	Driver         string        `mapstructure:"driver"` // mysql, postgres or sqlite
	DSN            string        `mapstructure:"dsn"`
	MaxOpenConns   int           `mapstructure:"max_open_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// AuthConfig configures token signing and authorization.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	// ExpiresIn accepts Go durations ("12h") and whole days ("1d").
	ExpiresIn string `mapstructure:"expires_in"`
	// PolicyModel is a casbin model file; empty uses the built-in model.
	PolicyModel string `mapstructure:"policy_model"`
}

// TokenTTL parses ExpiresIn, defaulting to one day.
func (a AuthConfig) TokenTTL() (time.Duration, error) {
	return ParseDuration(a.ExpiresIn, 24*time.Hour)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// CacheConfig selects the entity cache backend.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"` // none, sqlite or redis
	Path    string        `mapstructure:"path"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuditConfig tunes the request audit log.
type AuditConfig struct {
	FinalizeTimeout time.Duration `mapstructure:"finalize_timeout"`
}

// LoadConfig reads configuration from defaults, an optional config file and
// environment variables, in increasing order of precedence. An empty path
// searches the usual locations for config.yml.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "wiki.db")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.connect_timeout", 30*time.Second)
	v.SetDefault("auth.expires_in", "1d")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("cache.backend", "none")
	v.SetDefault("cache.path", "cache.db")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("audit.finalize_timeout", 5*time.Second)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/wiki-api/")
		v.AddConfigPath("$HOME/.wiki-api")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; proceed with defaults and env vars
	}

	v.SetEnvPrefix("WIKI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Variables understood by earlier deployments of the API.
	_ = v.BindEnv("server.port", "WIKI_SERVER_PORT", "PORT")
	_ = v.BindEnv("auth.jwt_secret", "WIKI_AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("auth.expires_in", "WIKI_AUTH_EXPIRES_IN", "JWT_EXPIRES_IN")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == insecureSecret {
		return errors.New("auth.jwt_secret must be set")
	}
	if _, err := c.Auth.TokenTTL(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "", "none", "sqlite", "redis":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Server.TLS.Enabled && (c.Server.TLS.CertFile == "" || c.Server.TLS.KeyFile == "") {
		return errors.New("server.tls requires certFile and keyFile")
	}
	return nil
}

// ParseDuration accepts Go durations plus a "<n>d" day suffix. An empty
// string yields def.
func ParseDuration(s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

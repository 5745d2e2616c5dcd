// Package config loads walletgate settings from an optional file and WALLETGATE_* environment variables.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/layer-3/walletgate/internal/logger"
	"github.com/layer-3/walletgate/internal/siwe"
)

const EnvPrefix = "WALLETGATE"

type Config struct {
	HTTP  HTTPConfig    `mapstructure:"http"`
	Auth  AuthConfig    `mapstructure:"auth"`
	Store StoreConfig   `mapstructure:"store"`
	Redis RedisConfig   `mapstructure:"redis"`
	Cache CacheConfig   `mapstructure:"cache"`
	Log   logger.Config `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr           string        `mapstructure:"addr"`
	ChallengeRPS   float64       `mapstructure:"challenge_rps"`
	ChallengeBurst int           `mapstructure:"challenge_burst"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	TrustedProxies []string      `mapstructure:"trusted_proxies"`
	ShutdownGrace  time.Duration `mapstructure:"shutdown_grace"`
}

type AuthConfig struct {
	Domain             string        `mapstructure:"domain"`
	URI                string        `mapstructure:"uri"`
	Greeting           string        `mapstructure:"greeting"`
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
	RotateNonceOnLogin bool          `mapstructure:"rotate_nonce_on_login"`
	SigningKeyFile     string        `mapstructure:"signing_key_file"`
	Issuer             string        `mapstructure:"issuer"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"` // memory, postgres or mysql
	DSN    string `mapstructure:"dsn"`
}

// RedisConfig enables the redis-backed revocation store, notes cache and event stream when URL is set
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type CacheConfig struct {
	NotesTTL time.Duration `mapstructure:"notes_ttl"`
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":9000")
	v.SetDefault("http.challenge_rps", 1.0)
	v.SetDefault("http.challenge_burst", 5)
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.shutdown_grace", 10*time.Second)
	v.SetDefault("http.trusted_proxies", []string{})

	v.SetDefault("auth.domain", siwe.DefaultDomain)
	v.SetDefault("auth.uri", siwe.DefaultURI)
	v.SetDefault("auth.greeting", siwe.DefaultGreeting)
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.rotate_nonce_on_login", false)
	v.SetDefault("auth.signing_key_file", "")
	v.SetDefault("auth.issuer", "walletgate")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")

	v.SetDefault("redis.url", "")

	v.SetDefault("cache.notes_ttl", time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
}

// New returns a viper instance with defaults and environment binding applied
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file and unmarshals the result
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "postgres", "mysql":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for driver %s", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unsupported store.driver %q", c.Store.Driver)
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}
	for _, p := range c.HTTP.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return fmt.Errorf("http.trusted_proxies: %q is not an IP or CIDR", p)
			}
		}
	}
	if c.HTTP.ChallengeRPS <= 0 || c.HTTP.ChallengeBurst <= 0 {
		return fmt.Errorf("http.challenge_rps and http.challenge_burst must be positive")
	}
	return nil
}

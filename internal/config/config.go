// Package config loads gryadka settings from defaults, a YAML file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
	"github.com/zelena-gryadka/gryadka/internal/logger"
)

const (
	// EnvPrefix prefixes every environment override, e.g. GRYADKA_API_URL.
	EnvPrefix = "GRYADKA"
	// DotEnvFile is read from the working directory when present.
	DotEnvFile = ".env"

	configDir  = ".gryadka"
	configName = "config"
)

// Cart backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all settings.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Browse  BrowseConfig  `mapstructure:"browse"`
	Cart    CartConfig    `mapstructure:"cart"`
	Storage StorageConfig `mapstructure:"storage"`
	History HistoryConfig `mapstructure:"history"`
	Log     LogConfig     `mapstructure:"log"`
}

// APIConfig describes the catalog API.
type APIConfig struct {
	URL         string        `mapstructure:"url"`
	CatalogPath string        `mapstructure:"catalog_path"`
	Token       string        `mapstructure:"token"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"`
	RateBurst   int           `mapstructure:"rate_burst"`
}

type BrowseConfig struct {
	PageSize      int           `mapstructure:"page_size"`
	QueryDebounce time.Duration `mapstructure:"query_debounce"`
}

type CartConfig struct {
	Backend   string        `mapstructure:"backend"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisKey  string        `mapstructure:"redis_key"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type StorageConfig struct {
	// Path of the SQLite database; empty means ~/.gryadka/gryadka.db.
	Path string `mapstructure:"path"`
}

type HistoryConfig struct {
	Limit int `mapstructure:"limit"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// flagKeys maps persistent flag names to configuration keys.
var flagKeys = map[string]string{
	"api-url":      "api.url",
	"token":        "api.token",
	"page-size":    "browse.page_size",
	"cart-backend": "cart.backend",
	"log-level":    "log.level",
}

// New returns a viper instance with defaults and environment lookups set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "http://localhost:8000")
	v.SetDefault("api.catalog_path", catalog.DefaultCatalogPath)
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.rate_limit", 0.0)
	v.SetDefault("api.rate_burst", 1)

	v.SetDefault("browse.page_size", catalog.DefaultPageSize)
	v.SetDefault("browse.query_debounce", time.Duration(0))

	v.SetDefault("cart.backend", BackendSQLite)
	v.SetDefault("cart.redis_addr", "localhost:6379")
	v.SetDefault("cart.redis_key", "gryadka:cart:default")
	v.SetDefault("cart.ttl", time.Duration(0))

	v.SetDefault("storage.path", "")
	v.SetDefault("history.limit", 10)
	v.SetDefault("log.level", "info")
}

// BindFlags links the persistent flags of cmd that have a configuration key.
// Only flags the user actually set win over the file and environment.
func BindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}

		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}

	return nil
}

// DefaultFile is ~/.gryadka/config.yaml.
func DefaultFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, configDir, configName+".yaml"), nil
}

// Load reads the configuration. An explicit file must exist; the default one is optional.
func Load(v *viper.Viper, file string) (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	if file != "" {
		v.SetConfigFile(file)
	} else if def, err := DefaultFile(); err == nil {
		v.SetConfigFile(def)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError

		switch {
		case file != "":
			return nil, fmt.Errorf("read config %s: %w", file, err)
		case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
			logger.Log.Debug("No config file found, using defaults")
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		logger.Log.Debugf("Loaded config from %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		logger.Log.Debugf("Loaded environment from %s", path)

		return nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load %s: %w", path, err)
}

func (c *Config) normalize() {
	c.API.URL = strings.TrimRight(strings.TrimSpace(c.API.URL), "/")
	c.Cart.Backend = strings.ToLower(strings.TrimSpace(c.Cart.Backend))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.url must be an http(s) URL, got %q", c.API.URL)
	}

	if c.Browse.PageSize < 1 || c.Browse.PageSize > catalog.MaxPageSize {
		return fmt.Errorf("browse.page_size must be between 1 and %d, got %d", catalog.MaxPageSize, c.Browse.PageSize)
	}

	if c.Browse.QueryDebounce < 0 {
		return errors.New("browse.query_debounce must not be negative")
	}

	if c.API.Timeout < 0 {
		return errors.New("api.timeout must not be negative")
	}

	if c.API.RateLimit < 0 {
		return errors.New("api.rate_limit must not be negative")
	}

	switch c.Cart.Backend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.Cart.RedisAddr == "" {
			return errors.New("cart.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cart.backend %q (want sqlite, memory or redis)", c.Cart.Backend)
	}

	if c.History.Limit < 0 {
		return errors.New("history.limit must not be negative")
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

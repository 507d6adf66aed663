// Package config loads the cartwheel daemon configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cartwheel/internal/coupon"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config is the full daemon configuration.
type Config struct {
	// Listen is the HTTP API bind address.
	Listen string `yaml:"listen"`

	// Storage configures the durable cart mirror.
	Storage StorageConfig `yaml:"storage"`

	// CartKey is the storage key for this session's cart. Shared across
	// tabs/processes of the same session.
	CartKey string `yaml:"cartKey"`

	// PricingURL is the Pricing Service base URL. Empty disables the
	// discount reconciler.
	PricingURL string `yaml:"pricingUrl"`

	// CartServiceURL is the Cart Service base URL for session merge.
	// Empty disables the merge endpoint.
	CartServiceURL string `yaml:"cartServiceUrl"`

	// Coupons lists the coupon rules. Empty falls back to the built-in
	// book (FREESHIPPING).
	Coupons []coupon.Rule `yaml:"coupons"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	// Driver is one of "sqlite", "redis", "memory".
	Driver string `yaml:"driver"`
	// Path is the SQLite database file (sqlite driver).
	Path string `yaml:"path"`
	// Addr is the Redis address (redis driver).
	Addr string `yaml:"addr"`
	// Prefix namespaces Redis keys (redis driver).
	Prefix string `yaml:"prefix"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen: ":8400",
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   "cartwheel.db",
			Prefix: "cartwheel:",
		},
		CartKey: "cart",
	}
}

// Load reads a YAML config file and overlays it on the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == DriverSQLite && c.Storage.Path == "" {
		return fmt.Errorf("config: sqlite driver requires storage.path")
	}
	if c.Storage.Driver == DriverRedis && c.Storage.Addr == "" {
		return fmt.Errorf("config: redis driver requires storage.addr")
	}
	if c.CartKey == "" {
		return fmt.Errorf("config: cartKey must not be empty")
	}
	return nil
}

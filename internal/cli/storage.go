package cli

import (
	"fmt"

	"github.com/roach88/cartwheel/internal/config"
	"github.com/roach88/cartwheel/internal/persist"
)

// openStorage constructs the storage backend selected by the config.
func openStorage(cfg config.Config) (persist.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return persist.OpenSQLite(cfg.Storage.Path)
	case config.DriverRedis:
		return persist.OpenRedis(cfg.Storage.Addr, cfg.Storage.Prefix)
	case config.DriverMemory:
		return persist.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

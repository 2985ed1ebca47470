package storage

import (
	"context"
	"fmt"

	"github.com/Its-donkey/coming-soon/internal/config"
	"github.com/Its-donkey/coming-soon/logging"
)

// Open builds the EmailStore selected by cfg. An unconfigured hosted store
// resolves to the in-memory fallback. When a configured backend cannot be
// opened and cfg.Fallback is set, Open logs the failure and returns the
// in-memory store instead of an error.
func Open(ctx context.Context, cfg config.StoreConfig, logger *logging.Logger) (EmailStore, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	driver := cfg.ResolvedDriver()

	store, err := openDriver(ctx, driver, cfg)
	if err == nil {
		if driver == config.DriverMemory && cfg.Driver == config.DriverAuto {
			logger.Warn("storage", "hosted store not configured, emails are kept in memory only", nil)
		}
		logger.Info("storage", "email store ready", map[string]any{"driver": store.Name()})
		return store, nil
	}
	if !cfg.Fallback {
		return nil, err
	}
	logger.Error("storage", "email store unavailable, falling back to memory", err, map[string]any{"driver": driver})
	return NewMemoryStore(), nil
}

func openDriver(ctx context.Context, driver string, cfg config.StoreConfig) (EmailStore, error) {
	switch driver {
	case config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverREST:
		return NewRESTStore(RESTOptions{URL: cfg.URL, Key: cfg.Key, Timeout: cfg.Timeout})
	case config.DriverJSON:
		return NewJSONStore(cfg.DataDir)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.DSN)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.DSN)
	case config.DriverRedis:
		return OpenRedis(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}

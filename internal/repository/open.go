package repository

import (
	"context"
	"fmt"

	"rps_webapp/internal/config"
)

// Open returns the store selected by cfg.StoreDriver. It is not initialized yet.
func Open(ctx context.Context, cfg *config.Config) (StatsStore, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		s, err := OpenSQLiteStatsRepository(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := OpenPostgresStatsRepository(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// Package factory constructs the service's storage backend from
// configuration.
package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sakjin112/personal-ai-assistant/server/internal/config"
	storepkg "github.com/sakjin112/personal-ai-assistant/server/internal/store"
	storepg "github.com/sakjin112/personal-ai-assistant/server/internal/store/postgres"
	storelite "github.com/sakjin112/personal-ai-assistant/server/internal/store/sqlite"
)

// NewStore returns the store.Store selected by cfg.DBDriver.
//
// Postgres opens the pool synchronously and runs an async bootstrap ping so
// startup is not blocked on a slow database. SQLite creates the schema
// in-process before returning.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		go func() {
			bootstrapCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := storepg.Bootstrap(bootstrapCtx, cfg.PostgresDSN); err != nil {
				log.Warn().Err(err).Msg("store bootstrap check failed")
			}
		}()
		return storepg.NewWithDB(db), nil
	case "sqlite":
		st, err := storelite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("path", cfg.SQLitePath).Msg("sqlite store ready")
		return st, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}

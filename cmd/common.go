package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/punchclock/internal/config"
	"github.com/kozaktomas/punchclock/internal/database/postgres"
	"github.com/kozaktomas/punchclock/internal/enroll"
	"github.com/kozaktomas/punchclock/internal/ledger"
)

// openLedger opens the attendance ledger from the configured CSV path.
func openLedger(cfg *config.Config) (*ledger.Ledger, error) {
	l, err := ledger.New(cfg.Storage.AttendanceFile, cfg.Recognition.Window())
	if err != nil {
		return nil, fmt.Errorf("open attendance ledger: %w", err)
	}
	return l, nil
}

// openEnrollStore picks the enrollment backend: PostgreSQL when a database
// URL is configured, the encoding directory otherwise. The returned closer is
// a no-op for the directory store.
func openEnrollStore(ctx context.Context, cfg *config.Config) (enroll.Store, func() error, error) {
	if cfg.Database.URL != "" {
		pool, err := postgres.NewPool(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Migrate(ctx); err != nil {
			_ = pool.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		return postgres.NewEnrollmentRepository(pool), pool.Close, nil
	}

	store, err := enroll.NewDirStore(cfg.Storage.EncodingPath)
	if err != nil {
		return nil, nil, err
	}
	return store, func() error { return nil }, nil
}

// buildIndex loads the persisted enrollment index when one is configured, and
// rebuilds it from the store otherwise. A freshly built index is persisted
// back when a path is set.
func buildIndex(ctx context.Context, cfg *config.Config, store enroll.Store) (*enroll.Index, error) {
	index := enroll.NewIndex()

	if path := cfg.Database.HNSWIndexPath; path != "" {
		loaded, err := index.Load(path)
		if err != nil {
			return nil, err
		}
		if loaded {
			return index, nil
		}
	}

	enrolled, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := index.Build(enrolled); err != nil {
		return nil, err
	}

	if path := cfg.Database.HNSWIndexPath; path != "" {
		if err := index.Save(path); err != nil {
			return nil, err
		}
	}
	return index, nil
}

// Package backend selects and builds the configured store implementation.
package backend

import (
	"fmt"
	"log/slog"

	"tally/internal/config"
	"tally/internal/store"
	"tally/internal/store/memory"
	"tally/internal/store/sqlite"
	"tally/internal/store/supabase"
)

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result contains the store instance and its cleanup function.
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// DefaultFactory builds stores from application config.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateStore builds the store named by cfg.DataBackend.
func (f *DefaultFactory) CreateStore(cfg *config.Config) (*Result, error) {
	switch cfg.DataBackend {
	case "memory":
		f.logger.Info("Initialized memory backend")
		return &Result{
			Store:   memory.New(),
			Cleanup: func() error { return nil },
		}, nil

	case "sqlite":
		st, err := sqlite.Open(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: st, Cleanup: st.Close}, nil

	case "supabase":
		st, err := supabase.New(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabasePollInterval)
		if err != nil {
			return nil, fmt.Errorf("initialize supabase backend: %w", err)
		}
		f.logger.Info("Initialized Supabase backend",
			"url", cfg.SupabaseURL,
			"poll_interval", cfg.SupabasePollInterval)
		return &Result{Store: st, Cleanup: func() error { return nil }}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}

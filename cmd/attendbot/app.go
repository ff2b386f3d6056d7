package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/attendbot/internal/migrations"
	"github.com/attendbot/internal/sessions"
	"github.com/attendbot/internal/students"
	"github.com/attendbot/internal/timezone"
	"github.com/dgraph-io/badger/v4"
)

// app holds what both subcommands share: the zone, the optional database
// and the sessions service over the loaded roster.
type app struct {
	logger   *slog.Logger
	location *time.Location
	db       *badger.DB
	sessions *sessions.Service
}

func logLevel(cfg *Config) slog.Level {
	if cfg.verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// openApp opens the database when the roster lives in it or withDB is set,
// runs migrations and loads persisted attendance into the seeded roster.
func openApp(ctx context.Context, cfg *Config, logger *slog.Logger, withDB bool) (*app, error) {
	location, err := timezone.Load(cfg.timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	a := &app{
		logger:   logger,
		location: location,
	}

	legacy := students.NewFileStore(cfg.dataFile, location)
	var store students.Store = legacy
	if withDB || cfg.rosterStorage == storageBadger {
		a.db, err = badger.Open(badger.DefaultOptions(cfg.databasePath).WithLogger(nil))
		if err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
	}
	if cfg.rosterStorage == storageBadger {
		if err := migrations.Run(ctx, logger, a.db, legacy, location); err != nil {
			return nil, errors.Join(fmt.Errorf("db migrations: %w", err), a.Close())
		}
		store = students.NewBadgerStore(a.db, location)
	}

	a.sessions = sessions.NewService(logger, students.NewSeededRoster(), store)
	if err := a.sessions.Init(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("load attendance: %w", err), a.Close())
	}
	return a, nil
}

func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

package migrations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/attendbot/internal/students"
	"github.com/dgraph-io/badger/v4"
)

// run reports false when there was nothing to migrate yet, the migration
// is then tried again on the next start.
type migration struct {
	name string
	run  func(ctx context.Context, logger *slog.Logger, db *badger.DB) (bool, error)
}

// Run applies every migration that was not applied to db yet.
// legacy, when set, is the JSON file to import into badger.
func Run(ctx context.Context, logger *slog.Logger, db *badger.DB, legacy *students.FileStore, location *time.Location) error {
	var mm []migration
	if legacy != nil {
		mm = append(mm, migration{
			name: "import-legacy-file",
			run: func(ctx context.Context, logger *slog.Logger, db *badger.DB) (bool, error) {
				return importLegacyFile(ctx, logger, legacy, students.NewBadgerStore(db, location))
			},
		})
	}
	for _, m := range mm {
		applied, err := isApplied(db, m.name)
		if err != nil {
			return fmt.Errorf("check %s: %w", m.name, err)
		}
		if applied {
			continue
		}
		done, err := m.run(ctx, logger, db)
		if err != nil {
			return fmt.Errorf("%s: %w", m.name, err)
		}
		if !done {
			logger.InfoContext(ctx, "migration postponed", "name", m.name)
			continue
		}
		if err := markApplied(db, m.name); err != nil {
			return fmt.Errorf("mark %s: %w", m.name, err)
		}
		logger.InfoContext(ctx, "migration applied", "name", m.name)
	}
	return nil
}

func migrationKey(name string) []byte {
	return []byte(fmt.Sprintf("migrations/%s", name))
}

func isApplied(db *badger.DB, name string) (bool, error) {
	err := db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(migrationKey(name))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func markApplied(db *badger.DB, name string) error {
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set(migrationKey(name), []byte(time.Now().UTC().Format(time.RFC3339)))
	})
}

// importLegacyFile copies every student of the JSON file into an empty
// badger store. Unlike a roster load it keeps students that are not seeded.
// A missing or empty file leaves the import pending.
func importLegacyFile(ctx context.Context, logger *slog.Logger, legacy *students.FileStore, store *students.BadgerStore) (bool, error) {
	empty, err := store.Empty(ctx)
	if err != nil {
		return false, fmt.Errorf("check store: %w", err)
	}
	if !empty {
		logger.InfoContext(ctx, "students already in database, skipping legacy import")
		return true, nil
	}
	imported, err := legacy.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", legacy.Path(), err)
	}
	if len(imported) == 0 {
		return false, nil
	}
	if err := store.Save(ctx, imported); err != nil {
		return false, fmt.Errorf("save: %w", err)
	}
	logger.InfoContext(ctx, "legacy file imported", "path", legacy.Path(), "students", len(imported))
	return true, nil
}

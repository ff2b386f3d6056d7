package calendars

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/attendbot/internal/students"
	"github.com/dgraph-io/badger/v4"
)

type Store struct {
	db *badger.DB
}

func NewStore(db *badger.DB) *Store {
	return &Store{
		db: db,
	}
}

var ErrNotFound = errors.New("not found")

// Insert stores the calendar and indexes it by roll number. A later calendar
// for the same roll number replaces the index entry.
func (s *Store) Insert(_ context.Context, calendar *Calendar) error {
	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(calendar)
		if err != nil {
			return err
		}
		if err := txn.Set(idKey(calendar.ID), data); err != nil {
			return err
		}
		return txn.Set(rollKey(calendar.RollNumber), []byte(calendar.ID))
	})
}

func (s *Store) FindByID(_ context.Context, id string) (*Calendar, error) {
	var calendar Calendar
	if err := s.db.View(func(txn *badger.Txn) error {
		return get(txn, idKey(id), &calendar)
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &calendar, nil
}

func (s *Store) FindByRollNumber(_ context.Context, roll students.RollNumber) (*Calendar, error) {
	var calendar Calendar
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(rollKey(roll))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return get(txn, idKey(string(id)), &calendar)
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &calendar, nil
}

func get(txn *badger.Txn, key []byte, calendar *Calendar) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(value []byte) error {
		return json.Unmarshal(value, calendar)
	})
}

func idKey(id string) []byte {
	return []byte(fmt.Sprintf("calendars/ids/%s", id))
}

func rollKey(roll students.RollNumber) []byte {
	return []byte(fmt.Sprintf("calendars/rolls/%d", roll))
}

package students

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
)

var _ Store = &BadgerStore{}

const keyPrefix = "students/"

// BadgerStore keeps one key per student.
type BadgerStore struct {
	db       *badger.DB
	location *time.Location
}

func NewBadgerStore(db *badger.DB, location *time.Location) *BadgerStore {
	return &BadgerStore{
		db:       db,
		location: location,
	}
}

// Save drops every persisted student and writes students in one transaction.
func (s *BadgerStore) Save(_ context.Context, students []Student) error {
	return s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		prefix := []byte(keyPrefix)
		var stale [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete %q: %w", key, err)
			}
		}
		for _, student := range students {
			data, err := json.Marshal(encodeStudent(student, s.location))
			if err != nil {
				return err
			}
			if err := txn.Set(idKey(student.RollNumber), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerStore) Load(_ context.Context) ([]Student, error) {
	var students []Student
	if err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(value []byte) error {
				var encoded encodedStudent
				if err := json.Unmarshal(value, &encoded); err != nil {
					return err
				}
				student, err := encoded.decode(s.location)
				if err != nil {
					return err
				}
				students = append(students, *student)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	// keys sort lexically, "students/10" before "students/2"
	slices.SortFunc(students, func(a, b Student) int {
		return cmp.Compare(a.RollNumber, b.RollNumber)
	})
	return students, nil
}

// Empty reports whether no student was ever saved.
func (s *BadgerStore) Empty(_ context.Context) (bool, error) {
	empty := true
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()
		prefix := []byte(keyPrefix)
		it.Seek(prefix)
		empty = !it.ValidForPrefix(prefix)
		return nil
	})
	return empty, err
}

func idKey(roll RollNumber) []byte {
	return []byte(fmt.Sprintf("%s%d", keyPrefix, roll))
}

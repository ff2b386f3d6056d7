package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

type Store struct {
	db *badger.DB
}

func NewStore(
	db *badger.DB,
) *Store {
	return &Store{
		db: db,
	}
}

const (
	chatsPrefix = "telegram/chats/"
	offsetKey   = "telegram/updates/offset"
)

func (s *Store) InsertChat(_ context.Context, chat *Chat) error {
	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(chat)
		if err != nil {
			return err
		}
		return txn.Set([]byte(fmt.Sprintf("%s%d", chatsPrefix, chat.ID)), data)
	})
}

func (s *Store) DeleteChat(_ context.Context, id int64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(fmt.Sprintf("%s%d", chatsPrefix, id)))
	})
}

func (s *Store) ListChats(_ context.Context) ([]Chat, error) {
	chats := make([]Chat, 0)
	if err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(chatsPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var chat Chat
			if err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &chat)
			}); err != nil {
				return err
			}
			chats = append(chats, chat)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return chats, nil
}

func (s *Store) SetUpdatesOffset(_ context.Context, offset int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(offsetKey), []byte(strconv.Itoa(offset)))
	})
}

// GetUpdatesOffset returns 0 when no offset was stored.
func (s *Store) GetUpdatesOffset(_ context.Context) (int, error) {
	var offset int
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(offsetKey))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			offset, err = strconv.Atoi(string(value))
			return err
		})
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return offset, nil
}

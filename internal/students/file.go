package students

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

var _ Store = &FileStore{}

// FileStore keeps the whole roster in a single JSON file.
type FileStore struct {
	path     string
	location *time.Location
}

func NewFileStore(path string, location *time.Location) *FileStore {
	return &FileStore{
		path:     path,
		location: location,
	}
}

func (s *FileStore) Path() string {
	return s.path
}

// Save writes to a temporary file next to the target and renames it into place.
func (s *FileStore) Save(_ context.Context, students []Student) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, students, s.location); err != nil {
		tmp.Close()
		return fmt.Errorf("encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context) ([]Student, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return Decode(f, s.location)
}

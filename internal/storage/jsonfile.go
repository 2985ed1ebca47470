package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JSONStore persists each table to a JSON file on disk.
type JSONStore struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// NewJSONStore returns a store that keeps one <table>.json file per table in dir.
func NewJSONStore(dir string) (*JSONStore, error) {
	if dir == "" {
		return nil, errors.New("storage: data dir is required")
	}
	store := &JSONStore{
		dir: dir,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, table := range Tables {
		if err := store.ensureFile(store.path(table)); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Name implements EmailStore.
func (s *JSONStore) Name() string { return "json" }

// Close implements EmailStore.
func (s *JSONStore) Close() error { return nil }

// Insert implements EmailStore.
func (s *JSONStore) Insert(ctx context.Context, table Table, email string) error {
	if err := checkInsert(ctx, table, email); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var records []Record
	if err := s.readJSON(s.path(table), &records); err != nil {
		return err
	}
	for _, rec := range records {
		if rec.Email == email {
			return conflictError(table)
		}
	}

	records = append(records, Record{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: s.now(),
	})
	return s.writeJSON(s.path(table), records)
}

// List returns every record stored in table.
func (s *JSONStore) List(table Table) ([]Record, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, string(table))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var records []Record
	if err := s.readJSON(s.path(table), &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *JSONStore) path(table Table) string {
	return filepath.Join(s.dir, string(table)+".json")
}

func (s *JSONStore) ensureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString("[]\n")
	return err
}

func (s *JSONStore) readJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if len(data) == 0 {
		data = []byte("[]")
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("storage: decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON replaces path atomically via a temp file and rename.
func (s *JSONStore) writeJSON(path string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

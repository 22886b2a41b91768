// Package memory implements store.Store on a map, optionally mirrored to a
// single JSON file holding every collection.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

type Store struct {
	mu   sync.Mutex
	path string // empty for a purely in-memory store
	docs map[string]json.RawMessage
}

func New() *Store {
	return &Store{docs: map[string]json.RawMessage{}}
}

// Open loads the JSON object at path, if any, and writes every change back
// to it. A missing file starts an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, docs: map[string]json.RawMessage{}}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.docs); err != nil {
		return nil, fmt.Errorf("parse data file %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) Get(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.docs[key]
	if !ok {
		return nil, nil
	}
	return slices.Clone(v), nil
}

func (s *Store) Set(_ context.Context, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.docs[key]
	s.docs[key] = slices.Clone(value)
	if err := s.flush(); err != nil {
		if had {
			s.docs[key] = prev
		} else {
			delete(s.docs, key)
		}
		return err
	}
	return nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.docs)), nil
}

func (s *Store) Close() error { return nil }

// flush rewrites the data file through a temporary file so a crash never
// leaves it half written. Callers hold mu.
func (s *Store) flush() error {
	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(s.docs)
	if err != nil {
		return fmt.Errorf("encode data file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// Package store reads and writes small configuration objects such as the
// organizer roster. Event data is never persisted.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"innovation-events/internal/model"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("object not found")

// Store is a key-value object store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// LocalStore is a file-based implementation of Store. Keys are file names
// relative to its directory.
type LocalStore struct {
	dir string
	mu  sync.RWMutex
}

// NewLocal creates a new LocalStore with the specified directory.
func NewLocal(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir}, nil
}

// Get reads the object stored under key.
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.keyPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return data, err
}

// Put stores value under key.
func (s *LocalStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return os.WriteFile(s.keyPath(key), value, 0644)
}

func (s *LocalStore) keyPath(key string) string {
	return filepath.Join(s.dir, filepath.Clean("/"+key))
}

type rosterDoc struct {
	Organizers model.Roster `yaml:"organizers" json:"organizers"`
}

// DecodeRoster parses a roster written as JSON or YAML, either as a bare list
// of {id, name} or as an object with an "organizers" list.
func DecodeRoster(data []byte) (model.Roster, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return model.Roster{}, nil
	}

	var r model.Roster
	if err := yaml.Unmarshal(data, &r); err == nil {
		return r, nil
	}
	var doc rosterDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding roster: %w", err)
	}
	if doc.Organizers == nil {
		doc.Organizers = model.Roster{}
	}
	return doc.Organizers, nil
}

// ReadRoster loads and decodes the roster object stored under key.
func ReadRoster(ctx context.Context, s Store, key string) (model.Roster, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}
	return DecodeRoster(data)
}

// WriteRoster stores r under key, as JSON for .json keys and YAML otherwise.
func WriteRoster(ctx context.Context, s Store, key string, r model.Roster) error {
	var (
		data []byte
		err  error
	)
	if path.Ext(key) == ".json" {
		data, err = json.MarshalIndent(rosterDoc{Organizers: r}, "", "  ")
	} else {
		data, err = yaml.Marshal(rosterDoc{Organizers: r})
	}
	if err != nil {
		return fmt.Errorf("encoding roster: %w", err)
	}
	return s.Put(ctx, key, data)
}

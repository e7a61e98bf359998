package config

import (
	"os"
	"path/filepath"
	"sync"
)

// Store manages persistence of the configuration document to a JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by the given path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Save persists the document to disk.
func (s *Store) Save(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := doc.Encode()
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Load reads the document from disk.
// Returns nil, nil if the file doesn't exist (empty configuration).
func (s *Store) Load() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"pennie/internal/kv"
)

// Store is an in-process kv.Store.
type Store struct {
	mu   sync.Mutex
	data map[string][]byte
}

func New() *Store {
	return &Store{data: map[string][]byte{}}
}

// NewFromFiles seeds the store from <dir>/<key>.json for every known
// collection key. Missing files are skipped.
func NewFromFiles(dir string) *Store {
	s := New()
	if dir == "" {
		return s
	}
	for _, key := range kv.Keys {
		b, err := os.ReadFile(filepath.Join(dir, key+".json"))
		if err != nil || len(b) == 0 {
			continue
		}
		s.data[key] = b
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

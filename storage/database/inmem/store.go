package inmemdb

import (
	"context"
	"sort"
	"sync"

	"github.com/trezcool/absensi/core"
)

type (
	DB struct {
		local *localTable
	}

	localTable struct {
		sync.RWMutex
		table map[string]string
	}

	localStore struct {
		db *localTable
	}
)

var _ core.KeyValueStore = (*localStore)(nil)

func Open() *DB {
	return &DB{
		local: &localTable{table: make(map[string]string)},
	}
}

func NewLocalStore(db *DB) core.KeyValueStore {
	return &localStore{db: db.local}
}

func (s *localStore) Get(_ context.Context, key string) (string, bool, error) {
	s.db.RLock()
	defer s.db.RUnlock()

	val, ok := s.db.table[key]
	return val, ok, nil
}

func (s *localStore) Set(_ context.Context, key, value string) error {
	s.db.Lock()
	defer s.db.Unlock()

	s.db.table[key] = value
	return nil
}

func (s *localStore) Delete(_ context.Context, keys ...string) error {
	s.db.Lock()
	defer s.db.Unlock()

	for _, k := range keys {
		delete(s.db.table, k)
	}
	return nil
}

func (s *localStore) Keys(_ context.Context) ([]string, error) {
	s.db.RLock()
	defer s.db.RUnlock()

	keys := make([]string, 0, len(s.db.table))
	for k := range s.db.table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

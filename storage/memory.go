package storage

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb/comparer"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/memdb"
)

// Memory is a volatile store backed by a leveldb memdb
type Memory struct {
	db *memdb.DB
}

// NewMemory returns an empty in-memory store
func NewMemory() KvStore {
	return &Memory{db: memdb.New(comparer.DefaultComparer, 0)}
}

// Close drops every entry
func (m *Memory) Close() error {
	m.db.Reset()
	return nil
}

// Get returns a copy of the value of key or ErrNotFound
func (m *Memory) Get(key []byte) ([]byte, error) {
	value, err := m.db.Get(key)
	if errors.Is(err, lerrors.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return append([]byte(nil), value...), nil
}

// Put sets the value of key
func (m *Memory) Put(key, value []byte) error {
	return m.db.Put(key, value)
}

// Delete removes key; deleting a missing key is not an error
func (m *Memory) Delete(key []byte) error {
	err := m.db.Delete(key)
	if errors.Is(err, lerrors.ErrNotFound) {
		return nil
	}

	return err
}

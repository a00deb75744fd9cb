package storage

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
)

// LevelDBHelper is a KvStore persisted by goleveldb
type LevelDBHelper struct {
	db *leveldb.DB
}

// NewLevelDB opens or creates a leveldb store at path
func NewLevelDB(path string) (KvStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}

	return &LevelDBHelper{db: db}, nil
}

// Close releases the database
func (h *LevelDBHelper) Close() error {
	return h.db.Close()
}

// Get returns the value of key or ErrNotFound
func (h *LevelDBHelper) Get(key []byte) ([]byte, error) {
	value, err := h.db.Get(key, nil)
	if errors.Is(err, lerrors.ErrNotFound) {
		return nil, ErrNotFound
	}

	return value, err
}

// Put sets the value of key
func (h *LevelDBHelper) Put(key, value []byte) error {
	return h.db.Put(key, value, nil)
}

// Delete removes key; deleting a missing key is not an error
func (h *LevelDBHelper) Delete(key []byte) error {
	return h.db.Delete(key, nil)
}

// Package storage holds published transaction state behind a small
// key/value interface.
package storage

import "fmt"

var ErrNotFound = fmt.Errorf("not found")

// KvStore is the storage collaborator used by transactors
type KvStore interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Close() error
}

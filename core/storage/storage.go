package storage

import (
	"bytes"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
)

// Backend abstracts the persistent key-value store.
type Backend interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Has(key string) (bool, error)
}

type Storage struct {
	db *leveldb.DB
}

func NewStorage(path string) (*Storage, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Get retrieves a value by key from LevelDB.
func (s *Storage) Get(key string) ([]byte, error) {
	return s.db.Get([]byte(key), nil)
}

// Put stores a key-value pair in LevelDB.
func (s *Storage) Put(key string, value []byte) error {
	return s.db.Put([]byte(key), value, nil)
}

// Has reports whether a key exists.
func (s *Storage) Has(key string) (bool, error) {
	return s.db.Has([]byte(key), nil)
}

// Delete removes a key.
func (s *Storage) Delete(key string) error {
	return s.db.Delete([]byte(key), nil)
}

// WriteBatch applies a prepared batch atomically.
func (s *Storage) WriteBatch(batch *leveldb.Batch) error {
	return s.db.Write(batch, nil)
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Iterator() iterator.Iterator {
	return s.db.NewIterator(nil, nil)
}

// CountPrefix counts keys under a prefix by scanning.
func (s *Storage) CountPrefix(prefix string) (int, error) {
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()

	count := 0
	for iter.Next() {
		if bytes.HasPrefix(iter.Key(), []byte(prefix)) {
			count++
		}
	}
	if err := iter.Error(); err != nil {
		return 0, err
	}
	return count, nil
}

// DB exposes the underlying LevelDB instance
func (s *Storage) DB() *leveldb.DB {
	return s.db
}

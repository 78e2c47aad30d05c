package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"medishare/core/record"
	"medishare/types/ids"
)

const (
	recordKeyPrefix  = "record:"
	recordMetaPrefix = "recordmeta:"
)

var (
	// ErrRecordNotFound means no record is stored for the owner.
	ErrRecordNotFound = errors.New("no record stored for owner")
	// ErrRecordExists means the owner already stored a record. Records
	// are create-only; the first write wins and stays.
	ErrRecordExists = errors.New("record already exists for owner")
)

// RecordKey derives the storage key for an owner's record. Same owner,
// same key, every time.
func RecordKey(owner ids.ID) string {
	return recordKeyPrefix + owner.String()
}

// RecordRegion is a stable handle to the ciphertext area of a stored
// record: storage key plus byte offset and length past the record tag.
// External compute reads exactly this window.
type RecordRegion struct {
	Key    string `json:"key"`
	Offset uint32 `json:"offset"`
	Length uint32 `json:"length"`
}

// RecordMeta is the side entry written with each record.
type RecordMeta struct {
	Owner    string    `json:"owner"`
	StoredAt time.Time `json:"storedAt"`
	Version  int       `json:"version"`
}

// RecordStore persists patient records under deterministic owner keys.
type RecordStore struct {
	store *Storage
	mu    sync.Mutex
}

func NewRecordStore(store *Storage) *RecordStore {
	return &RecordStore{store: store}
}

// PutRecord stores a record for owner. Create-only: a second store for
// the same owner fails with ErrRecordExists and leaves the stored
// record untouched.
func (rs *RecordStore) PutRecord(owner ids.ID, rec *record.StructuredRecord) error {
	key := RecordKey(owner)

	rs.mu.Lock()
	defer rs.mu.Unlock()

	exists, err := rs.store.Has(key)
	if err != nil {
		return fmt.Errorf("record existence check failed: %w", err)
	}
	if exists {
		return ErrRecordExists
	}

	meta, err := json.Marshal(RecordMeta{
		Owner:    owner.String(),
		StoredAt: time.Now().UTC(),
		Version:  1,
	})
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(key), rec.Marshal())
	batch.Put([]byte(recordMetaPrefix+owner.String()), meta)
	return rs.store.WriteBatch(batch)
}

// GetRecord loads the full record for owner.
func (rs *RecordStore) GetRecord(owner ids.ID) (*record.StructuredRecord, error) {
	data, err := rs.store.Get(RecordKey(owner))
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return record.UnmarshalRecord(data)
}

// GetRecordRegion resolves the ciphertext region handle for owner's
// record. The handle skips the tag header so readers see fields only.
func (rs *RecordStore) GetRecordRegion(owner ids.ID) (RecordRegion, error) {
	data, err := rs.store.Get(RecordKey(owner))
	if errors.Is(err, leveldb.ErrNotFound) {
		return RecordRegion{}, ErrRecordNotFound
	}
	if err != nil {
		return RecordRegion{}, err
	}
	if len(data) != record.RecordSize {
		return RecordRegion{}, fmt.Errorf("stored record for %s has %d bytes, want %d", owner.Short(), len(data), record.RecordSize)
	}
	return RecordRegion{
		Key:    RecordKey(owner),
		Offset: record.TagSize,
		Length: record.DataSize,
	}, nil
}

// HasRecord reports whether a record exists for owner.
func (rs *RecordStore) HasRecord(owner ids.ID) (bool, error) {
	return rs.store.Has(RecordKey(owner))
}

// RecordCount counts stored records.
func (rs *RecordStore) RecordCount() (int, error) {
	return rs.store.CountPrefix(recordKeyPrefix)
}

// ListRecent returns up to max record metas, newest key order last
// written wins by iteration order.
func (rs *RecordStore) ListRecent(max int) ([]RecordMeta, error) {
	var metas []RecordMeta

	iter := rs.store.Iterator()
	defer iter.Release()

	for iter.Last(); iter.Valid() && len(metas) < max; iter.Prev() {
		if !bytes.HasPrefix(iter.Key(), []byte(recordMetaPrefix)) {
			continue
		}
		var meta RecordMeta
		if err := json.Unmarshal(iter.Value(), &meta); err != nil {
			continue // skip broken meta entries
		}
		metas = append(metas, meta)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return metas, nil
}

package storage

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"

	"medishare/core/record"
	"medishare/types/ids"
)

func openTestStore(t *testing.T) (*Storage, *RecordStore) {
	t.Helper()
	store, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("open leveldb: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, NewRecordStore(store)
}

func randomRecord(t *testing.T) *record.StructuredRecord {
	t.Helper()
	fields := make([]record.FieldBlock, record.FieldCount)
	for i := range fields {
		if _, err := rand.Read(fields[i][:]); err != nil {
			t.Fatal(err)
		}
	}
	rec, err := record.NewStructuredRecord(fields)
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestPutAndGetRecord(t *testing.T) {
	_, rs := openTestStore(t)
	owner := ids.IDFromString("patient-1")
	rec := randomRecord(t)

	if err := rs.PutRecord(owner, rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	back, err := rs.GetRecord(owner)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for i := 0; i < record.FieldCount; i++ {
		a, _ := rec.Slot(i)
		b, _ := back.Slot(i)
		if a != b {
			t.Fatalf("slot %d changed across storage", i)
		}
	}
}

func TestPutRecordIsCreateOnly(t *testing.T) {
	_, rs := openTestStore(t)
	owner := ids.IDFromString("patient-2")
	first := randomRecord(t)
	second := randomRecord(t)

	if err := rs.PutRecord(owner, first); err != nil {
		t.Fatal(err)
	}
	err := rs.PutRecord(owner, second)
	if !errors.Is(err, ErrRecordExists) {
		t.Fatalf("second put: got %v, want ErrRecordExists", err)
	}

	// First write must be untouched.
	back, err := rs.GetRecord(owner)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := first.Slot(0)
	got, _ := back.Slot(0)
	if want != got {
		t.Error("stored record changed after rejected duplicate put")
	}
}

func TestGetRecordRegion(t *testing.T) {
	_, rs := openTestStore(t)
	owner := ids.IDFromString("patient-3")

	if _, err := rs.GetRecordRegion(owner); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("missing owner: got %v, want ErrRecordNotFound", err)
	}

	if err := rs.PutRecord(owner, randomRecord(t)); err != nil {
		t.Fatal(err)
	}
	region, err := rs.GetRecordRegion(owner)
	if err != nil {
		t.Fatal(err)
	}
	if region.Key != RecordKey(owner) {
		t.Errorf("region key %q, want %q", region.Key, RecordKey(owner))
	}
	if region.Offset != record.TagSize || region.Length != record.DataSize {
		t.Errorf("region window %d+%d, want %d+%d", region.Offset, region.Length, record.TagSize, record.DataSize)
	}

	// Same owner always resolves to the same key.
	again, _ := rs.GetRecordRegion(owner)
	if again != region {
		t.Error("region handle not stable across lookups")
	}
}

func TestRecordCountAndListRecent(t *testing.T) {
	_, rs := openTestStore(t)
	owners := []ids.ID{
		ids.IDFromString("patient-a"),
		ids.IDFromString("patient-b"),
		ids.IDFromString("patient-c"),
	}
	for _, owner := range owners {
		if err := rs.PutRecord(owner, randomRecord(t)); err != nil {
			t.Fatal(err)
		}
	}

	count, err := rs.RecordCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != len(owners) {
		t.Errorf("record count %d, want %d", count, len(owners))
	}

	metas, err := rs.ListRecent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 2 {
		t.Errorf("got %d metas, want 2", len(metas))
	}
	for _, meta := range metas {
		if meta.StoredAt.IsZero() || meta.Version != 1 {
			t.Errorf("meta not populated: %+v", meta)
		}
	}
}

func TestSealOpenKeyRoundTrip(t *testing.T) {
	dek := make([]byte, 32)
	if _, err := rand.Read(dek); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MEDISHARE_KEYSTORE_DEK", base64.StdEncoding.EncodeToString(dek))

	secret := []byte("ed25519 private key bytes go here")
	sealed, err := SealKey(secret)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, secret) {
		t.Error("sealed blob leaks plaintext")
	}
	opened, err := OpenKey(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(opened, secret) {
		t.Error("round trip changed key material")
	}
}

func TestSealKeyRequiresDEK(t *testing.T) {
	t.Setenv("MEDISHARE_KEYSTORE_DEK", "")
	t.Setenv("MEDISHARE_KEYSTORE_DEK_FILE", "")
	if _, err := SealKey([]byte("x")); err == nil {
		t.Error("expected error with unset DEK")
	}
	t.Setenv("MEDISHARE_KEYSTORE_DEK", "tooshort")
	if _, err := SealKey([]byte("x")); err == nil {
		t.Error("expected error with malformed DEK")
	}
}

package storage

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileDEKSourceSealsAndOpens(t *testing.T) {
	dek := make([]byte, 32)
	if _, err := rand.Read(dek); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "dek")
	if err := os.WriteFile(path, []byte(base64.StdEncoding.EncodeToString(dek)+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MEDISHARE_KEYSTORE_DEK", "")
	t.Setenv("MEDISHARE_KEYSTORE_DEK_FILE", path)

	secret := []byte("key material")
	sealed, err := SealKey(secret)
	if err != nil {
		t.Fatalf("seal via file source: %v", err)
	}
	opened, err := OpenKey(sealed)
	if err != nil {
		t.Fatalf("open via file source: %v", err)
	}
	if !bytes.Equal(opened, secret) {
		t.Error("round trip changed key material")
	}
}

func TestDEKChainPrefersEnv(t *testing.T) {
	envDEK := make([]byte, 32)
	fileDEK := make([]byte, 32)
	rand.Read(envDEK)
	rand.Read(fileDEK)

	path := filepath.Join(t.TempDir(), "dek")
	if err := os.WriteFile(path, []byte(base64.StdEncoding.EncodeToString(fileDEK)), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MEDISHARE_KEYSTORE_DEK", base64.StdEncoding.EncodeToString(envDEK))
	t.Setenv("MEDISHARE_KEYSTORE_DEK_FILE", path)

	got, err := defaultDEKSource.DEK()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, envDEK) {
		t.Error("chain did not prefer the env source")
	}
}

func TestDEKChainMalformedSourceStops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dek")
	if err := os.WriteFile(path, []byte(base64.StdEncoding.EncodeToString(make([]byte, 32))), 0o600); err != nil {
		t.Fatal(err)
	}
	// Env is configured but malformed; the chain must not fall back to
	// the valid file behind it.
	t.Setenv("MEDISHARE_KEYSTORE_DEK", "tooshort")
	t.Setenv("MEDISHARE_KEYSTORE_DEK_FILE", path)

	if _, err := defaultDEKSource.DEK(); err == nil {
		t.Error("expected error for malformed env DEK")
	}
}

func TestDEKChainUnconfigured(t *testing.T) {
	t.Setenv("MEDISHARE_KEYSTORE_DEK", "")
	t.Setenv("MEDISHARE_KEYSTORE_DEK_FILE", "")
	_, err := defaultDEKSource.DEK()
	if !errors.Is(err, ErrDEKNotConfigured) {
		t.Errorf("got %v, want ErrDEKNotConfigured", err)
	}
}

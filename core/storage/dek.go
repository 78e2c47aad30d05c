package storage

import (
	"encoding/base64"
	"errors"
	"os"
	"strings"
)

// DEKSource yields the data encryption key protecting private key
// material at rest. Each implementation reads one backing location.
type DEKSource interface {
	DEK() ([]byte, error)
}

// ErrDEKNotConfigured marks a source whose backing location is not
// set, so a chain can fall through to the next source.
var ErrDEKNotConfigured = errors.New("keystore DEK not configured (set MEDISHARE_KEYSTORE_DEK or MEDISHARE_KEYSTORE_DEK_FILE)")

// EnvDEKSource reads the DEK from MEDISHARE_KEYSTORE_DEK (base64).
type EnvDEKSource struct{}

func (EnvDEKSource) DEK() ([]byte, error) {
	dekB64 := os.Getenv("MEDISHARE_KEYSTORE_DEK")
	if dekB64 == "" {
		return nil, ErrDEKNotConfigured
	}
	return decodeDEK(dekB64)
}

// FileDEKSource reads the DEK from the file named by
// MEDISHARE_KEYSTORE_DEK_FILE, for secret-mount deployments.
type FileDEKSource struct{}

func (FileDEKSource) DEK() ([]byte, error) {
	path := os.Getenv("MEDISHARE_KEYSTORE_DEK_FILE")
	if path == "" {
		return nil, ErrDEKNotConfigured
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("failed to read keystore DEK file: " + err.Error())
	}
	return decodeDEK(strings.TrimSpace(string(raw)))
}

// DEKChain tries each source in order, skipping unconfigured ones. A
// configured but malformed source stops the chain; misconfiguration
// must not silently fall back.
type DEKChain []DEKSource

func (c DEKChain) DEK() ([]byte, error) {
	for _, src := range c {
		dek, err := src.DEK()
		if errors.Is(err, ErrDEKNotConfigured) {
			continue
		}
		return dek, err
	}
	return nil, ErrDEKNotConfigured
}

var defaultDEKSource DEKSource = DEKChain{EnvDEKSource{}, FileDEKSource{}}

func decodeDEK(b64 string) ([]byte, error) {
	dek, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, errors.New("failed to decode keystore DEK: " + err.Error())
	}
	if len(dek) != 32 {
		return nil, errors.New("keystore DEK must be 32 bytes (base64-encoded)")
	}
	return dek, nil
}

package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

type KeyProvider interface {
	GetPublicKey(kid string) (interface{}, error)
}

// StaticKeyProvider serves one RSA public key for every kid. Fine for
// dev and tests; production mounts the issuer's key file.
type StaticKeyProvider struct {
	PublicKey *rsa.PublicKey
}

func (p *StaticKeyProvider) GetPublicKey(kid string) (interface{}, error) {
	if p.PublicKey != nil {
		return p.PublicKey, nil
	}
	return nil, errors.New("no public key set")
}

// FileKeyProvider loads the issuer public key from a PEM file once and
// serves it for every kid.
type FileKeyProvider struct {
	key *rsa.PublicKey
}

func NewFileKeyProvider(path string) (*FileKeyProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider pubkey: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("provider pubkey file is not PEM")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse provider pubkey: %w", err)
	}
	rsaKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("provider pubkey is not RSA")
	}
	return &FileKeyProvider{key: rsaKey}, nil
}

func (p *FileKeyProvider) GetPublicKey(kid string) (interface{}, error) {
	return p.key, nil
}

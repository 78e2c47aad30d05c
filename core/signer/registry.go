package signer

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"medishare/core/storage"
)

// registryKey is the fixed storage slot of the node's protocol signing
// identity. There is exactly one; it never rotates in normal flow.
const registryKey = "signer:protocol-identity"

// SigningIdentity is the public face of the node's protocol signer.
type SigningIdentity struct {
	PublicKey ed25519.PublicKey
	CreatedAt time.Time
}

// PublicKeyHex renders the public key for wire envelopes.
func (s SigningIdentity) PublicKeyHex() string {
	return hex.EncodeToString(s.PublicKey)
}

// storedIdentity is the persisted form; the private key is sealed with
// the keystore DEK before it touches disk.
type storedIdentity struct {
	PublicKey string    `json:"publicKey"` // base64
	SealedKey string    `json:"sealedKey"` // base64 of AES-GCM blob
	CreatedAt time.Time `json:"createdAt"`
}

// Registry creates the signing identity on first use and returns the
// same identity forever after. Safe for concurrent callers: the mutex
// plus a re-read under lock makes first-time creation single-winner,
// and LevelDB's directory lock keeps a second process out entirely.
type Registry struct {
	store *storage.Storage
	mu    sync.Mutex
}

func NewRegistry(store *storage.Storage) *Registry {
	return &Registry{store: store}
}

// Ensure returns the protocol signing identity, creating it if this is
// the first call ever. Every subsequent call returns byte-identical
// key material.
func (r *Registry) Ensure() (SigningIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.ensureLocked()
	if err != nil {
		return SigningIdentity{}, err
	}
	return rec.identity()
}

// Sign signs msg with the protocol identity, creating it first if this
// node has never signed before.
func (r *Registry) Sign(msg []byte) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.ensureLocked()
	if err != nil {
		return nil, err
	}
	sealed, err := base64.StdEncoding.DecodeString(rec.SealedKey)
	if err != nil {
		return nil, fmt.Errorf("stored signer key is corrupt: %v", err)
	}
	keyBytes, err := storage.OpenKey(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal signer key: %w", err)
	}
	if len(keyBytes) != ed25519.PrivateKeySize {
		return nil, errors.New("unsealed signer key has wrong size")
	}
	return ed25519.Sign(ed25519.PrivateKey(keyBytes), msg), nil
}

// ensureLocked loads the stored identity, creating and persisting it
// when absent. Caller holds the mutex.
func (r *Registry) ensureLocked() (storedIdentity, error) {
	rec, err := r.load()
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, leveldb.ErrNotFound) {
		return rec, fmt.Errorf("signer registry read failed: %w", err)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return rec, fmt.Errorf("signer keygen failed: %w", err)
	}
	sealed, err := storage.SealKey(priv)
	if err != nil {
		return rec, fmt.Errorf("failed to seal signer key: %w", err)
	}
	rec = storedIdentity{
		PublicKey: base64.StdEncoding.EncodeToString(pub),
		SealedKey: base64.StdEncoding.EncodeToString(sealed),
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return rec, err
	}
	if err := r.store.Put(registryKey, data); err != nil {
		return rec, fmt.Errorf("signer registry write failed: %w", err)
	}
	fmt.Printf("[SIGNER] Created protocol signing identity %s\n", hex.EncodeToString(pub[:4]))
	return rec, nil
}

func (r *Registry) load() (storedIdentity, error) {
	var rec storedIdentity
	data, err := r.store.Get(registryKey)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("stored signer identity is corrupt: %v", err)
	}
	return rec, nil
}

func (rec storedIdentity) identity() (SigningIdentity, error) {
	pub, err := base64.StdEncoding.DecodeString(rec.PublicKey)
	if err != nil {
		return SigningIdentity{}, fmt.Errorf("stored signer pubkey is corrupt: %v", err)
	}
	if len(pub) != ed25519.PublicKeySize {
		return SigningIdentity{}, errors.New("stored signer pubkey has wrong size")
	}
	return SigningIdentity{PublicKey: ed25519.PublicKey(pub), CreatedAt: rec.CreatedAt}, nil
}

package engine

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// PubKey is 32 bytes of recipient or caller key material. It is not an
// identity hash; the node carries it verbatim into the computation.
type PubKey [32]byte

// PubKeyFromHex parses 64 hex chars into a PubKey.
func PubKeyFromHex(s string) (PubKey, error) {
	var k PubKey
	b, err := hex.DecodeString(s)
	if err != nil {
		return k, fmt.Errorf("invalid public key encoding: %v", err)
	}
	if len(b) != 32 {
		return k, fmt.Errorf("public key must be 32 bytes, got %d", len(b))
	}
	copy(k[:], b)
	return k, nil
}

func (k PubKey) String() string { return hex.EncodeToString(k[:]) }

func (k PubKey) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

func (k *PubKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := PubKeyFromHex(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Nonce is an opaque 128-bit value chosen by the client side of an
// encryption. Carried as 32 hex chars on the wire.
type Nonce [16]byte

// NonceFromHex parses 32 hex chars into a Nonce.
func NonceFromHex(s string) (Nonce, error) {
	var n Nonce
	b, err := hex.DecodeString(s)
	if err != nil {
		return n, fmt.Errorf("invalid nonce encoding: %v", err)
	}
	if len(b) != 16 {
		return n, fmt.Errorf("nonce must be 16 bytes, got %d", len(b))
	}
	copy(n[:], b)
	return n, nil
}

func (n Nonce) String() string { return hex.EncodeToString(n[:]) }

func (n Nonce) MarshalJSON() ([]byte, error) { return json.Marshal(n.String()) }

func (n *Nonce) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NonceFromHex(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// ArgumentKind tags one entry of a computation's argument list.
type ArgumentKind string

const (
	ArgSharedPubkey  ArgumentKind = "shared_pubkey"
	ArgPlaintextU128 ArgumentKind = "plaintext_u128"
	ArgAccountRegion ArgumentKind = "account_region"
)

// Argument is one positional argument of a queued computation. The
// list order is part of the computation contract; the engine binds
// arguments by position, not name.
type Argument struct {
	Kind   ArgumentKind `json:"kind"`
	Pubkey string       `json:"pubkey,omitempty"` // hex, shared_pubkey
	Value  string       `json:"value,omitempty"`  // hex u128, plaintext_u128
	Key    string       `json:"key,omitempty"`    // storage key, account_region
	Offset uint32       `json:"offset,omitempty"` // byte offset, account_region
	Length uint32       `json:"length,omitempty"` // byte length, account_region
}

// SharedPubkey wraps key material as an argument.
func SharedPubkey(k PubKey) Argument {
	return Argument{Kind: ArgSharedPubkey, Pubkey: k.String()}
}

// PlaintextU128 wraps a 128-bit nonce as an argument.
func PlaintextU128(n Nonce) Argument {
	return Argument{Kind: ArgPlaintextU128, Value: n.String()}
}

// AccountRegion references a byte window of a stored blob.
func AccountRegion(key string, offset, length uint32) Argument {
	return Argument{Kind: ArgAccountRegion, Key: key, Offset: offset, Length: length}
}

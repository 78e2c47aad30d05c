package record

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// BlockSize is the fixed byte width of one encrypted field.
const BlockSize = 32

// FieldBlock is one client-encrypted record field. The node never
// decrypts or inspects one; it only moves the 32 bytes around.
type FieldBlock [BlockSize]byte

// FieldBlockFromBytes copies a 32-byte slice into a FieldBlock.
func FieldBlockFromBytes(b []byte) (FieldBlock, error) {
	var f FieldBlock
	if len(b) != BlockSize {
		return f, fmt.Errorf("encrypted field must be %d bytes, got %d", BlockSize, len(b))
	}
	copy(f[:], b)
	return f, nil
}

// FieldBlockFromBase64 decodes a std-base64 string into a FieldBlock.
func FieldBlockFromBase64(s string) (FieldBlock, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return FieldBlock{}, fmt.Errorf("invalid field encoding: %v", err)
	}
	return FieldBlockFromBytes(b)
}

// Bytes returns a copy of the raw field bytes.
func (f FieldBlock) Bytes() []byte {
	out := make([]byte, BlockSize)
	copy(out, f[:])
	return out
}

// String renders the field as std base64.
func (f FieldBlock) String() string {
	return base64.StdEncoding.EncodeToString(f[:])
}

// MarshalJSON encodes the field as a base64 JSON string.
func (f FieldBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON decodes a base64 JSON string into the field.
func (f *FieldBlock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	fb, err := FieldBlockFromBase64(s)
	if err != nil {
		return err
	}
	*f = fb
	return nil
}

package record

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

// Blob framing: an 8-byte record tag followed by the 152 field blocks.
const (
	TagSize    = 8
	DataSize   = FieldCount * BlockSize // 4864
	RecordSize = TagSize + DataSize     // 4872
)

// ErrInvalidInputLength is returned when a submission does not carry
// exactly FieldCount encrypted fields.
var ErrInvalidInputLength = errors.New("record must contain exactly 152 encrypted fields")

// recordTag marks a stored blob as a patient record. First 8 bytes of
// SHA-256("medishare:patient_record"), fixed forever.
var recordTag = func() [TagSize]byte {
	sum := sha256.Sum256([]byte("medishare:patient_record"))
	var tag [TagSize]byte
	copy(tag[:], sum[:TagSize])
	return tag
}()

// RecordTag returns the 8-byte blob tag.
func RecordTag() [TagSize]byte {
	return recordTag
}

// StructuredRecord is a fully populated patient record: 152 encrypted
// fields held in layout order. Fields stay ciphertext end to end; the
// structure only fixes where each one lives.
type StructuredRecord struct {
	slots [FieldCount]FieldBlock
}

// NewStructuredRecord builds a record from a flat submission. The
// submission must carry exactly FieldCount blocks, in schema order;
// one copy places every block, no per-field plumbing.
func NewStructuredRecord(fields []FieldBlock) (*StructuredRecord, error) {
	if len(fields) != FieldCount {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidInputLength, len(fields))
	}
	var r StructuredRecord
	copy(r.slots[:], fields)
	return &r, nil
}

// Slot returns the block at flat index i.
func (r *StructuredRecord) Slot(i int) (FieldBlock, error) {
	if i < 0 || i >= FieldCount {
		return FieldBlock{}, fmt.Errorf("slot %d out of range", i)
	}
	return r.slots[i], nil
}

// Field returns element i of the named field via the layout table.
func (r *StructuredRecord) Field(domain, field string, i int) (FieldBlock, error) {
	idx, err := SlotIndex(domain, field, i)
	if err != nil {
		return FieldBlock{}, err
	}
	return r.slots[idx], nil
}

// FieldRun is one named field with its blocks, for read APIs and
// notifications. Blocks remain ciphertext.
type FieldRun struct {
	Name   string       `json:"name"`
	Blocks []FieldBlock `json:"blocks"`
}

// DomainView returns the named field runs of one domain, layout order.
func (r *StructuredRecord) DomainView(domain string) ([]FieldRun, error) {
	fields, err := DomainFields(domain)
	if err != nil {
		return nil, err
	}
	runs := make([]FieldRun, 0, len(fields))
	for _, spec := range fields {
		start := slotOffsets[spec.Domain+"/"+spec.Name]
		blocks := make([]FieldBlock, spec.Count)
		copy(blocks, r.slots[start:start+spec.Count])
		runs = append(runs, FieldRun{Name: spec.Name, Blocks: blocks})
	}
	return runs, nil
}

// Views returns all four domain views keyed by domain name.
func (r *StructuredRecord) Views() map[string][]FieldRun {
	views := make(map[string][]FieldRun, 4)
	for _, domain := range Domains() {
		runs, _ := r.DomainView(domain)
		views[domain] = runs
	}
	return views
}

// Marshal frames the record for storage: tag + slots, RecordSize bytes.
func (r *StructuredRecord) Marshal() []byte {
	out := make([]byte, 0, RecordSize)
	out = append(out, recordTag[:]...)
	for i := range r.slots {
		out = append(out, r.slots[i][:]...)
	}
	return out
}

// UnmarshalRecord parses a stored blob back into a record. Length and
// tag are both strict; anything else at a record key is corruption.
func UnmarshalRecord(data []byte) (*StructuredRecord, error) {
	if len(data) != RecordSize {
		return nil, fmt.Errorf("record blob must be %d bytes, got %d", RecordSize, len(data))
	}
	var tag [TagSize]byte
	copy(tag[:], data[:TagSize])
	if tag != recordTag {
		return nil, errors.New("blob is not a patient record")
	}
	var r StructuredRecord
	for i := 0; i < FieldCount; i++ {
		copy(r.slots[i][:], data[TagSize+i*BlockSize:TagSize+(i+1)*BlockSize])
	}
	return &r, nil
}

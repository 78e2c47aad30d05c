package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

// testFields builds 152 distinct blocks: block i is filled with byte i.
func testFields() []FieldBlock {
	fields := make([]FieldBlock, FieldCount)
	for i := range fields {
		for j := range fields[i] {
			fields[i][j] = byte(i)
		}
	}
	return fields
}

func TestNewStructuredRecordLengthCheck(t *testing.T) {
	for _, n := range []int{0, 1, 151, 153, 304} {
		_, err := NewStructuredRecord(make([]FieldBlock, n))
		if !errors.Is(err, ErrInvalidInputLength) {
			t.Errorf("length %d: got %v, want ErrInvalidInputLength", n, err)
		}
	}
	if _, err := NewStructuredRecord(testFields()); err != nil {
		t.Fatalf("valid length rejected: %v", err)
	}
}

func TestFlatOrderMatchesLayout(t *testing.T) {
	rec, err := NewStructuredRecord(testFields())
	if err != nil {
		t.Fatal(err)
	}

	// Every named slot must hold the block from its flat position.
	for _, spec := range Schema {
		for i := 0; i < spec.Count; i++ {
			idx, err := SlotIndex(spec.Domain, spec.Name, i)
			if err != nil {
				t.Fatal(err)
			}
			got, err := rec.Field(spec.Domain, spec.Name, i)
			if err != nil {
				t.Fatal(err)
			}
			if got[0] != byte(idx) {
				t.Errorf("%s/%s[%d]: slot %d holds block %d", spec.Domain, spec.Name, i, idx, got[0])
			}
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	rec, _ := NewStructuredRecord(testFields())
	blob := rec.Marshal()
	if len(blob) != RecordSize {
		t.Fatalf("blob is %d bytes, want %d", len(blob), RecordSize)
	}
	back, err := UnmarshalRecord(blob)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for i := 0; i < FieldCount; i++ {
		a, _ := rec.Slot(i)
		b, _ := back.Slot(i)
		if a != b {
			t.Fatalf("slot %d changed across round trip", i)
		}
	}
}

func TestUnmarshalRejectsBadBlobs(t *testing.T) {
	rec, _ := NewStructuredRecord(testFields())
	blob := rec.Marshal()

	if _, err := UnmarshalRecord(blob[:len(blob)-1]); err == nil {
		t.Error("expected error for short blob")
	}
	if _, err := UnmarshalRecord(append(blob, 0)); err == nil {
		t.Error("expected error for long blob")
	}
	tampered := append([]byte(nil), blob...)
	tampered[0] ^= 0xff
	if _, err := UnmarshalRecord(tampered); err == nil {
		t.Error("expected error for wrong record tag")
	}
}

func TestDomainViewShapes(t *testing.T) {
	rec, _ := NewStructuredRecord(testFields())
	views := rec.Views()
	if len(views) != 4 {
		t.Fatalf("got %d domain views, want 4", len(views))
	}
	runs := views[DomainGenomic]
	if len(runs) != 6 {
		t.Fatalf("genomic view has %d runs, want 6", len(runs))
	}
	if runs[1].Name != "genetic_markers" || len(runs[1].Blocks) != 15 {
		t.Errorf("genomic run 1 = %s/%d, want genetic_markers/15", runs[1].Name, len(runs[1].Blocks))
	}
	// First genetic marker lives at flat slot 45.
	if runs[1].Blocks[0][0] != 45 {
		t.Errorf("genetic_markers[0] holds block %d, want 45", runs[1].Blocks[0][0])
	}
}

func TestFieldBlockJSON(t *testing.T) {
	f, err := FieldBlockFromBytes(bytes.Repeat([]byte{0xab}, BlockSize))
	if err != nil {
		t.Fatal(err)
	}
	enc, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	var back FieldBlock
	if err := json.Unmarshal(enc, &back); err != nil {
		t.Fatal(err)
	}
	if back != f {
		t.Error("JSON round trip changed the block")
	}

	if _, err := FieldBlockFromBytes(make([]byte, 31)); err == nil {
		t.Error("expected error for 31-byte field")
	}
	if _, err := FieldBlockFromBase64("not-base64!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
}

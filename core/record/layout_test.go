package record

import "testing"

func TestSchemaCoversAllSlots(t *testing.T) {
	total := 0
	for _, spec := range Schema {
		if spec.Count <= 0 {
			t.Errorf("field %s/%s has non-positive count %d", spec.Domain, spec.Name, spec.Count)
		}
		total += spec.Count
	}
	if total != FieldCount {
		t.Fatalf("schema covers %d slots, want %d", total, FieldCount)
	}
}

func TestDomainSlotCounts(t *testing.T) {
	want := map[string]int{
		DomainDemographics: 11,
		DomainHealthcare:   33,
		DomainGenomic:      46,
		DomainLabImaging:   62,
	}
	for domain, expected := range want {
		got, err := DomainSlotCount(domain)
		if err != nil {
			t.Fatalf("DomainSlotCount(%s): %v", domain, err)
		}
		if got != expected {
			t.Errorf("domain %s: got %d slots, want %d", domain, got, expected)
		}
	}
}

func TestSlotIndexKnownOffsets(t *testing.T) {
	cases := []struct {
		domain string
		field  string
		i      int
		want   int
	}{
		{DomainDemographics, "patient_id", 0, 0},
		{DomainDemographics, "height", 0, 5},
		{DomainDemographics, "allergies", 0, 6},
		{DomainDemographics, "allergies", 4, 10},
		{DomainHealthcare, "medical_history", 0, 11},
		{DomainHealthcare, "medication_count", 0, 21},
		{DomainHealthcare, "medications", 7, 29},
		{DomainHealthcare, "procedure_dates", 0, 31},
		{DomainHealthcare, "family_history", 4, 43},
		{DomainGenomic, "variant_count", 0, 44},
		{DomainGenomic, "genetic_markers", 14, 59},
		{DomainGenomic, "variant_significance", 0, 60},
		{DomainGenomic, "carrier_status", 4, 79},
		{DomainGenomic, "pharmacogenomic_markers", 2, 82},
		{DomainGenomic, "ancestry_components", 6, 89},
		{DomainLabImaging, "lab_test_count", 0, 90},
		{DomainLabImaging, "lab_test_types", 0, 91},
		{DomainLabImaging, "lab_test_flags", 9, 130},
		{DomainLabImaging, "imaging_count", 0, 131},
		{DomainLabImaging, "imaging_dates", 9, 151},
	}
	for _, c := range cases {
		got, err := SlotIndex(c.domain, c.field, c.i)
		if err != nil {
			t.Fatalf("SlotIndex(%s, %s, %d): %v", c.domain, c.field, c.i, err)
		}
		if got != c.want {
			t.Errorf("SlotIndex(%s, %s, %d) = %d, want %d", c.domain, c.field, c.i, got, c.want)
		}
	}
}

func TestSlotIndexRejectsBadLookups(t *testing.T) {
	if _, err := SlotIndex("demographics", "no_such_field", 0); err == nil {
		t.Error("expected error for unknown field")
	}
	if _, err := SlotIndex("astrology", "patient_id", 0); err == nil {
		t.Error("expected error for unknown domain")
	}
	if _, err := SlotIndex(DomainDemographics, "allergies", 5); err == nil {
		t.Error("expected error for index past run end")
	}
	if _, err := SlotIndex(DomainDemographics, "allergies", -1); err == nil {
		t.Error("expected error for negative index")
	}
}

func TestDomainFieldsUnknownDomain(t *testing.T) {
	if _, err := DomainFields("nope"); err == nil {
		t.Error("expected error for unknown domain")
	}
}

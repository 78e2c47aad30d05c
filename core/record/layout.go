package record

import "fmt"

// Record domains, in layout order.
const (
	DomainDemographics = "demographics"
	DomainHealthcare   = "healthcare"
	DomainGenomic      = "genomic"
	DomainLabImaging   = "lab_imaging"
)

// FieldSpec names one field of the record layout: a run of Count
// consecutive slots inside Domain.
type FieldSpec struct {
	Domain string
	Name   string
	Count  int
}

// Schema is the fixed slot layout of a patient record. The table order
// IS the wire contract: flat submissions are consumed in exactly this
// order, and slot offsets are derived from it. Changing an entry
// changes the meaning of every stored record, so don't.
var Schema = []FieldSpec{
	// demographics (11 slots)
	{DomainDemographics, "patient_id", 1},
	{DomainDemographics, "age", 1},
	{DomainDemographics, "gender", 1},
	{DomainDemographics, "blood_type", 1},
	{DomainDemographics, "weight", 1},
	{DomainDemographics, "height", 1},
	{DomainDemographics, "allergies", 5},

	// healthcare (33 slots)
	{DomainHealthcare, "medical_history", 10},
	{DomainHealthcare, "medication_count", 1},
	{DomainHealthcare, "medications", 8},
	{DomainHealthcare, "procedure_count", 1},
	{DomainHealthcare, "procedure_dates", 8},
	{DomainHealthcare, "family_history", 5},

	// genomic (46 slots)
	{DomainGenomic, "variant_count", 1},
	{DomainGenomic, "genetic_markers", 15},
	{DomainGenomic, "variant_significance", 15},
	{DomainGenomic, "carrier_status", 5},
	{DomainGenomic, "pharmacogenomic_markers", 3},
	{DomainGenomic, "ancestry_components", 7},

	// lab + imaging (62 slots)
	{DomainLabImaging, "lab_test_count", 1},
	{DomainLabImaging, "lab_test_types", 10},
	{DomainLabImaging, "lab_test_dates", 10},
	{DomainLabImaging, "lab_test_values", 10},
	{DomainLabImaging, "lab_test_flags", 10},
	{DomainLabImaging, "imaging_count", 1},
	{DomainLabImaging, "imaging_types", 10},
	{DomainLabImaging, "imaging_dates", 10},
}

// FieldCount is the exact number of encrypted slots in a record.
const FieldCount = 152

// slotOffsets maps "domain/field" to the first slot of that field's run.
var slotOffsets = buildOffsets()

func buildOffsets() map[string]int {
	offsets := make(map[string]int, len(Schema))
	next := 0
	for _, spec := range Schema {
		key := spec.Domain + "/" + spec.Name
		if _, dup := offsets[key]; dup {
			panic("record layout: duplicate field " + key)
		}
		offsets[key] = next
		next += spec.Count
	}
	if next != FieldCount {
		panic(fmt.Sprintf("record layout: schema covers %d slots, want %d", next, FieldCount))
	}
	return offsets
}

// SlotIndex returns the flat slot index of element i of the named
// field. The mapping is pure layout arithmetic over the schema table.
func SlotIndex(domain, field string, i int) (int, error) {
	spec, err := lookupField(domain, field)
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= spec.Count {
		return 0, fmt.Errorf("index %d out of range for %s/%s (count %d)", i, domain, field, spec.Count)
	}
	return slotOffsets[domain+"/"+field] + i, nil
}

// DomainFields returns the schema entries of one domain, in layout order.
func DomainFields(domain string) ([]FieldSpec, error) {
	var out []FieldSpec
	for _, spec := range Schema {
		if spec.Domain == domain {
			out = append(out, spec)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("unknown record domain %q", domain)
	}
	return out, nil
}

// Domains returns the four domain names in layout order.
func Domains() []string {
	return []string{DomainDemographics, DomainHealthcare, DomainGenomic, DomainLabImaging}
}

// DomainSlotCount returns how many slots a domain occupies.
func DomainSlotCount(domain string) (int, error) {
	fields, err := DomainFields(domain)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, spec := range fields {
		total += spec.Count
	}
	return total, nil
}

func lookupField(domain, field string) (FieldSpec, error) {
	for _, spec := range Schema {
		if spec.Domain == domain && spec.Name == field {
			return spec, nil
		}
	}
	return FieldSpec{}, fmt.Errorf("unknown record field %s/%s", domain, field)
}

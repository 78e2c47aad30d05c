package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/store_record_schema_v1.json
var storeRecordSchemaV1 []byte

//go:embed schemas/reshare_request_schema_v1.json
var reshareRequestSchemaV1 []byte

// schemaLoader picks the operator-supplied schema file when the env
// var is set, otherwise the embedded default.
func schemaLoader(envVar string, embedded []byte) gojsonschema.JSONLoader {
	if path := os.Getenv(envVar); path != "" {
		return gojsonschema.NewReferenceLoader("file://" + path)
	}
	return gojsonschema.NewBytesLoader(embedded)
}

// ValidateStoreEnvelope validates a store-record submission against
// the v1 envelope schema: exactly 152 base64 fields plus owner
// identity, nonce, and signature material.
func ValidateStoreEnvelope(payload []byte) error {
	return validate(payload, schemaLoader("RECORD_SCHEMA_PATH", storeRecordSchemaV1), "store envelope")
}

// ValidateReshareEnvelope validates a re-share submission against the
// v1 envelope schema.
func ValidateReshareEnvelope(payload []byte) error {
	return validate(payload, schemaLoader("RESHARE_SCHEMA_PATH", reshareRequestSchemaV1), "reshare envelope")
}

func validate(payload []byte, schema gojsonschema.JSONLoader, what string) error {
	var doc interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		errStr := ""
		for _, e := range result.Errors() {
			errStr += e.String() + "; "
		}
		AuditValidationError("schema_check", fmt.Sprintf("%s rejected: %s", what, errStr))
		return fmt.Errorf("%s failed schema validation: %s", what, errStr)
	}
	return nil
}

package validation

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"medishare/types/ids"
)

// VerifyOwnerSignature checks that a store envelope was signed by the
// key that owns the record identity. Two facts are enforced: the owner
// ID is the SHA-256 of the submitted public key, and the signature
// covers the canonical envelope (JSON with the signature field
// removed; map marshalling gives stable key order).
func VerifyOwnerSignature(envelope map[string]interface{}) error {
	ownerHex, _ := envelope["ownerId"].(string)
	pubKeyB64, _ := envelope["ownerPubKey"].(string)
	sigB64, _ := envelope["signature"].(string)
	if ownerHex == "" || pubKeyB64 == "" || sigB64 == "" {
		return fmt.Errorf("envelope is missing owner identity or signature")
	}

	pubKeyBytes, err := base64.StdEncoding.DecodeString(pubKeyB64)
	if err != nil {
		return fmt.Errorf("invalid public key encoding: %v", err)
	}
	if len(pubKeyBytes) != ed25519.PublicKeySize {
		return fmt.Errorf("owner public key must be %d bytes", ed25519.PublicKeySize)
	}
	sigBytes, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %v", err)
	}
	if len(sigBytes) != ed25519.SignatureSize {
		return fmt.Errorf("signature must be %d bytes", ed25519.SignatureSize)
	}

	// The record identity is derived from the key, so a submission can
	// only ever land under the submitter's own identity.
	if ids.NewID(pubKeyBytes).String() != ownerHex {
		AuditValidationError("identity_check", "owner ID does not match public key")
		return fmt.Errorf("owner ID does not match public key")
	}

	canonical := make(map[string]interface{}, len(envelope))
	for k, v := range envelope {
		if k == "signature" {
			continue
		}
		canonical[k] = v
	}
	payloadBytes, err := json.Marshal(canonical)
	if err != nil {
		return fmt.Errorf("failed to serialize envelope: %v", err)
	}

	if !ed25519.Verify(ed25519.PublicKey(pubKeyBytes), payloadBytes, sigBytes) {
		AuditValidationError("signature_check", "owner signature verification failed")
		return fmt.Errorf("owner signature verification failed")
	}
	return nil
}

// SignEnvelope produces the canonical owner signature for an envelope.
// Used by client tooling; the node only ever verifies.
func SignEnvelope(envelope map[string]interface{}, priv ed25519.PrivateKey) (string, error) {
	canonical := make(map[string]interface{}, len(envelope))
	for k, v := range envelope {
		if k == "signature" {
			continue
		}
		canonical[k] = v
	}
	payloadBytes, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("failed to serialize envelope: %v", err)
	}
	return base64.StdEncoding.EncodeToString(ed25519.Sign(priv, payloadBytes)), nil
}

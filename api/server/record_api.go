package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"medishare/core/audit"
	"medishare/core/record"
	"medishare/core/storage"
	"medishare/core/validation"
	"medishare/types/ids"
)

// Handler for storing patient records
func (s *Server) StoreRecordHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return
	}

	bodyBytes, _ := io.ReadAll(r.Body)

	if err := validation.ValidateStoreEnvelope(bodyBytes); err != nil {
		http.Error(w, "Invalid submission: "+err.Error(), http.StatusBadRequest)
		return
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	// The owner signs the envelope with the key their identity is
	// derived from. No signature, no custody.
	if err := validation.VerifyOwnerSignature(envelope); err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	// --- DECOUPLED: Provider Token Verification (independent of owner signature) ---
	if s.Verifier != nil {
		providerToken := r.Header.Get("X-Provider-Token")
		if providerToken == "" {
			http.Error(w, "Missing provider token (X-Provider-Token header required)", http.StatusUnauthorized)
			return
		}
		_, _, err := s.Verifier.VerifyProviderToken(providerToken)
		if err != nil {
			http.Error(w, "Unauthorized (provider token): "+err.Error(), http.StatusUnauthorized)
			return
		}
	}

	owner, err := ids.FromString(envelope["ownerId"].(string))
	if err != nil {
		http.Error(w, "Invalid owner ID: "+err.Error(), http.StatusBadRequest)
		return
	}

	rawFields, ok := envelope["fields"].([]interface{})
	if !ok {
		http.Error(w, "Invalid submission: fields must be an array", http.StatusBadRequest)
		return
	}
	blocks := make([]record.FieldBlock, 0, len(rawFields))
	for i, rf := range rawFields {
		fieldStr, ok := rf.(string)
		if !ok {
			http.Error(w, fmt.Sprintf("Invalid submission: field %d is not a string", i), http.StatusBadRequest)
			return
		}
		blk, err := record.FieldBlockFromBase64(fieldStr)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid submission: field %d: %v", i, err), http.StatusBadRequest)
			return
		}
		blocks = append(blocks, blk)
	}

	rec, err := record.NewStructuredRecord(blocks)
	if err != nil {
		http.Error(w, "Invalid submission: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.Records.PutRecord(owner, rec); err != nil {
		if errors.Is(err, storage.ErrRecordExists) {
			http.Error(w, "Record already exists for owner", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to store record: "+err.Error(), http.StatusInternalServerError)
		return
	}

	fmt.Printf("[API] Stored record for owner %s\n", owner.Short())

	if s.Audit != nil {
		s.Audit.LogEvent(audit.NewEvent("RecordStored", owner.String(), "success", "", map[string]string{
			"schemaVersion": "1",
		}))
	}
	if s.Notifier != nil {
		nonce, _ := envelope["nonce"].(string)
		domainSlots := map[string]int{}
		for _, domain := range record.Domains() {
			n, _ := record.DomainSlotCount(domain)
			domainSlots[domain] = n
		}
		s.Notifier.AnnounceRecordStored(owner.String(), nonce, domainSlots, record.Domains())
	}

	// Return a receipt
	receipt := map[string]interface{}{
		"ownerId": owner.String(),
		"status":  "stored",
		"message": "Record stored",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(receipt)
}

// Handler for reading records back: GET /api/v1/records/{owner} returns
// the field blocks grouped by domain, GET /api/v1/records/{owner}/region
// returns the raw storage region handle.
func (s *Server) GetRecordHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/records/")
	wantRegion := false
	if strings.HasSuffix(path, "/region") {
		wantRegion = true
		path = strings.TrimSuffix(path, "/region")
	}

	owner, err := ids.FromString(path)
	if err != nil {
		http.Error(w, "Invalid owner ID: "+err.Error(), http.StatusBadRequest)
		return
	}

	if wantRegion {
		region, err := s.Records.GetRecordRegion(owner)
		if errors.Is(err, storage.ErrRecordNotFound) {
			http.Error(w, "Record not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to resolve region: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(region)
		return
	}

	rec, err := s.Records.GetRecord(owner)
	if errors.Is(err, storage.ErrRecordNotFound) {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to load record: "+err.Error(), http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"ownerId": owner.String(),
		"domains": rec.Views(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

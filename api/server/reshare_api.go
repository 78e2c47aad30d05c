package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"medishare/core/auth"
	"medishare/core/engine"
	"medishare/core/notify"
	"medishare/core/reshare"
	"medishare/core/storage"
	"medishare/core/validation"
	"medishare/types/ids"
)

// RegisterReShareAPI registers the ungated re-share endpoint plus one
// gated endpoint per configured role. Role routes are fixed at startup;
// changing roles.yaml needs a restart.
func RegisterReShareAPI(mux *http.ServeMux, s *Server) {
	mux.Handle("/api/v1/reshare", s.limit(authMiddleware(http.HandlerFunc(s.ReShareHandler))))
	if s.Roles != nil {
		for _, role := range s.Roles.Names() {
			mux.Handle("/api/v1/reshare/"+role, s.limit(authMiddleware(http.HandlerFunc(s.roleReShareHandler(role)))))
		}
	}
}

// reshareEnvelope mirrors the wire shape of a re-share request.
type reshareEnvelope struct {
	SchemaVersion     string `json:"schemaVersion"`
	OwnerID           string `json:"ownerId"`
	ComputationOffset uint64 `json:"computationOffset"`
	DestinationKey    string `json:"destinationKey"`
	DestinationNonce  string `json:"destinationNonce"`
	CallerKey         string `json:"callerKey"`
	CallerNonce       string `json:"callerNonce"`
	TokenAccount      string `json:"tokenAccount"`
}

// parseReShareRequest validates and decodes a request body into a
// protocol request plus the optional token account reference.
func parseReShareRequest(body []byte) (reshare.Request, string, error) {
	if err := validation.ValidateReshareEnvelope(body); err != nil {
		return reshare.Request{}, "", err
	}
	var env reshareEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return reshare.Request{}, "", err
	}

	owner, err := ids.FromString(env.OwnerID)
	if err != nil {
		return reshare.Request{}, "", fmt.Errorf("ownerId: %w", err)
	}
	destKey, err := engine.PubKeyFromHex(env.DestinationKey)
	if err != nil {
		return reshare.Request{}, "", fmt.Errorf("destinationKey: %w", err)
	}
	destNonce, err := engine.NonceFromHex(env.DestinationNonce)
	if err != nil {
		return reshare.Request{}, "", fmt.Errorf("destinationNonce: %w", err)
	}
	callerKey, err := engine.PubKeyFromHex(env.CallerKey)
	if err != nil {
		return reshare.Request{}, "", fmt.Errorf("callerKey: %w", err)
	}
	callerNonce, err := engine.NonceFromHex(env.CallerNonce)
	if err != nil {
		return reshare.Request{}, "", fmt.Errorf("callerNonce: %w", err)
	}

	return reshare.Request{
		Owner:             owner,
		ComputationOffset: env.ComputationOffset,
		Destination:       destKey,
		DestinationNonce:  destNonce,
		CallerPubKey:      callerKey,
		CallerNonce:       callerNonce,
	}, env.TokenAccount, nil
}

// Handler for owner-initiated re-shares (no credential gate)
func (s *Server) ReShareHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return
	}

	bodyBytes, _ := io.ReadAll(r.Body)
	req, _, err := parseReShareRequest(bodyBytes)
	if err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	// JWT callers must be scoped to the record owner. The node API key
	// is the operator credential and is not subject-bound.
	if subject := bearerSubject(r); subject != "" && subject != req.Owner.String() {
		http.Error(w, "Forbidden: token subject does not own this record", http.StatusForbidden)
		return
	}

	handle, err := s.Protocol.Submit(req)
	if err != nil {
		writeReShareError(w, err)
		return
	}
	s.announceJobQueued(req.Owner.String(), handle, "owner")
	writeReShareReceipt(w, handle, "")
}

// roleReShareHandler builds the gated handler for one role. The caller
// must present a provider token carrying the role, and a token account
// proving the matching credential.
func (s *Server) roleReShareHandler(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "invalid method", http.StatusMethodNotAllowed)
			return
		}
		if s.Verifier == nil {
			http.Error(w, "Provider verification not configured", http.StatusServiceUnavailable)
			return
		}

		providerToken := r.Header.Get("X-Provider-Token")
		if providerToken == "" {
			http.Error(w, "Missing provider token (X-Provider-Token header required)", http.StatusUnauthorized)
			return
		}
		claims, callerID, err := s.Verifier.VerifyProviderToken(providerToken)
		if err != nil {
			http.Error(w, "Unauthorized (provider token): "+err.Error(), http.StatusUnauthorized)
			return
		}
		if !hasRole(claims.Roles, role) {
			http.Error(w, "Provider token does not carry role "+role, http.StatusForbidden)
			return
		}

		kind, err := s.Roles.CredentialKind(role)
		if err != nil {
			http.Error(w, "Unknown role: "+role, http.StatusInternalServerError)
			return
		}

		bodyBytes, _ := io.ReadAll(r.Body)
		req, tokenAccount, err := parseReShareRequest(bodyBytes)
		if err != nil {
			http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
			return
		}
		if tokenAccount == "" {
			http.Error(w, "Invalid request: tokenAccount is required on role endpoints", http.StatusBadRequest)
			return
		}
		accountID, err := ids.FromString(tokenAccount)
		if err != nil {
			http.Error(w, "Invalid request: tokenAccount: "+err.Error(), http.StatusBadRequest)
			return
		}

		proof := auth.CredentialProof{
			Caller:       callerID,
			TokenAccount: accountID,
			Kind:         kind,
		}
		handle, err := s.Protocol.SubmitWithCredential(req, proof)
		if err != nil {
			writeReShareError(w, err)
			return
		}
		s.announceJobQueued(req.Owner.String(), handle, role)
		writeReShareReceipt(w, handle, role)
	}
}

func (s *Server) announceJobQueued(owner string, handle engine.JobHandle, via string) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Announce(notify.Notification{
		Type:      notify.NotifyJobQueued,
		Owner:     owner,
		ReceiptID: handle.ReceiptID,
		Reason:    "re-share via " + via,
	})
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// writeReShareError maps protocol errors onto HTTP status codes.
func writeReShareError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrRecordNotFound):
		http.Error(w, "Record not found", http.StatusNotFound)
	case errors.Is(err, engine.ErrDuplicateComputation):
		http.Error(w, "Duplicate computation offset", http.StatusConflict)
	case errors.Is(err, engine.ErrAbortedComputation):
		http.Error(w, "Computation aborted: "+err.Error(), http.StatusBadGateway)
	case errors.Is(err, auth.ErrInvalidCredentialMint):
		http.Error(w, "Invalid credential mint: "+err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrMissingCredential):
		http.Error(w, "Forbidden: "+err.Error(), http.StatusForbidden)
	default:
		http.Error(w, "Re-share failed: "+err.Error(), http.StatusInternalServerError)
	}
}

func writeReShareReceipt(w http.ResponseWriter, handle engine.JobHandle, role string) {
	receipt := map[string]interface{}{
		"receiptId":         handle.ReceiptID,
		"computationOffset": handle.Offset,
		"status":            handle.Status,
		"message":           "Re-share queued",
	}
	if role != "" {
		receipt["role"] = role
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(receipt)
}

package server

import (
	"encoding/json"
	"net/http"

	"medishare/core/reshare"
)

// Handler for registering the re-share computation definition with the
// engine. Safe to call repeatedly; registration is idempotent.
func (s *Server) InitCompDefHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return
	}
	if s.Engine == nil {
		http.Error(w, "Engine not configured", http.StatusServiceUnavailable)
		return
	}

	if err := s.Engine.EnsureDefinition(reshare.Definition); err != nil {
		http.Error(w, "Definition registration failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	receipt := map[string]interface{}{
		"definition": reshare.DefinitionName,
		"version":    reshare.Definition.Version,
		"status":     "ready",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(receipt)
}

// Handler listing the roles this node gates re-shares for.
func (s *Server) ListRolesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return
	}

	names := []string{}
	if s.Roles != nil {
		names = s.Roles.Names()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"roles": names})
}

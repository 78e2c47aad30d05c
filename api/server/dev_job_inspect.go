//Dev delete upon production migration
// This endpoint is for development/testing only. It lists the computation offsets this node still tracks as in flight.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// RegisterDevJobInspectAPI registers the dev-only job inspection endpoint.
func RegisterDevJobInspectAPI(mux *http.ServeMux, s *Server) {
	mux.HandleFunc("/dev/inspect_jobs", s.handleDevInspectJobs)
}

// handleDevInspectJobs returns the in-flight computation offsets, or a
// single offset's tracking status when ?offset= is given (dev only)
func (s *Server) handleDevInspectJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return
	}
	if s.Engine == nil {
		http.Error(w, "Engine not configured", http.StatusServiceUnavailable)
		return
	}

	offsets := s.Engine.InFlight()

	offsetParam := r.URL.Query().Get("offset")
	if offsetParam != "" {
		offset, err := strconv.ParseUint(offsetParam, 10, 64)
		if err != nil {
			http.Error(w, "invalid offset parameter", http.StatusBadRequest)
			return
		}
		found := false
		for _, o := range offsets {
			if o == offset {
				found = true
				break
			}
		}
		if !found {
			http.Error(w, "job not tracked", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"computationOffset": offset,
			"status":            "queued",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"inFlight": offsets,
		"count":    len(offsets),
	})
}

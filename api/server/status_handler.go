// status_handler.go - HTTP handler for /status
package server

import (
	"encoding/json"
	"net/http"
)

// HandleStatus responds to /status with node status
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	metrics := s.GetNodeMetrics()

	resp := StatusResponse{
		Status:      s.deriveStatus(metrics),
		Uptime:      metrics.UptimeSeconds,
		RecordCount: metrics.RecordCount,
		QueuedJobs:  metrics.QueuedJobs,
		Version:     NodeVersion(),
		APIVersion:  APIVersion(),
		LastStore:   metrics.LastStoreTime,
		Metrics:     metrics,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

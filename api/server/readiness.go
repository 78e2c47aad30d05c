// readiness.go - Readiness probe logic for MediShare Node
package server

// NodeReadiness returns true if the record store answers, roles are
// loaded, and the compute engine responds to pings.
func (s *Server) NodeReadiness() bool {
	if !s.NodeLiveness() {
		return false
	}
	if s.Roles == nil {
		return false
	}
	return s.Engine != nil && s.Engine.Ping()
}

// liveness.go - Liveness probe logic for MediShare Node
package server

// NodeLiveness returns true if the node is running and its record
// store answers.
func (s *Server) NodeLiveness() bool {
	if s.Store == nil {
		return false
	}
	_, err := s.Store.Has("liveness:probe")
	return err == nil
}

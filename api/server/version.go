// version.go - Node & API version info for MediShare Node
package server

// NodeVersion returns the current node software version.
func NodeVersion() string {
	// TODO: Return version from build flags
	return "v0.1.0-dev"
}

// APIVersion returns the current API version.
func APIVersion() string {
	return "v1"
}

package auth

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"medishare/types/ids"
)

// rolesFile is the on-disk shape of the role registry.
type rolesFile struct {
	Roles []struct {
		Role           string `yaml:"role"`
		CredentialKind string `yaml:"credential_kind"`
	} `yaml:"roles"`
}

// Roles binds role names (doctor, nurse, pharmacist, ...) to the
// credential kind each one requires. Loaded once at startup.
type Roles struct {
	kinds map[string]ids.ID
}

// LoadRoles reads the role registry YAML at path.
func LoadRoles(path string) (*Roles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roles file: %w", err)
	}
	var doc rolesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse roles file: %w", err)
	}
	if len(doc.Roles) == 0 {
		return nil, fmt.Errorf("roles file %s defines no roles", path)
	}

	kinds := make(map[string]ids.ID, len(doc.Roles))
	for _, entry := range doc.Roles {
		if entry.Role == "" {
			return nil, fmt.Errorf("roles file has an entry with no role name")
		}
		if _, dup := kinds[entry.Role]; dup {
			return nil, fmt.Errorf("role %q defined twice", entry.Role)
		}
		kind, err := ids.FromString(entry.CredentialKind)
		if err != nil {
			return nil, fmt.Errorf("role %q has bad credential_kind: %v", entry.Role, err)
		}
		kinds[entry.Role] = kind
	}
	return &Roles{kinds: kinds}, nil
}

// CredentialKind resolves the mint a role requires.
func (r *Roles) CredentialKind(role string) (ids.ID, error) {
	kind, ok := r.kinds[role]
	if !ok {
		return ids.Empty, fmt.Errorf("unknown role %q", role)
	}
	return kind, nil
}

// Names lists the configured roles, sorted.
func (r *Roles) Names() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

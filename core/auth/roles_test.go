package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"medishare/types/ids"
)

func writeRoles(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roles.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRoles(t *testing.T) {
	doctorKind := ids.IDFromString("doctor-kind")
	nurseKind := ids.IDFromString("nurse-kind")
	path := writeRoles(t, strings.Join([]string{
		"roles:",
		"  - role: doctor",
		"    credential_kind: " + doctorKind.String(),
		"  - role: nurse",
		"    credential_kind: " + nurseKind.String(),
	}, "\n"))

	roles, err := LoadRoles(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	kind, err := roles.CredentialKind("doctor")
	if err != nil {
		t.Fatal(err)
	}
	if kind != doctorKind {
		t.Errorf("doctor kind = %s, want %s", kind.Short(), doctorKind.Short())
	}
	if _, err := roles.CredentialKind("janitor"); err == nil {
		t.Error("expected error for unknown role")
	}
	names := roles.Names()
	if len(names) != 2 || names[0] != "doctor" || names[1] != "nurse" {
		t.Errorf("names = %v", names)
	}
}

func TestLoadRolesRejectsBadFiles(t *testing.T) {
	cases := map[string]string{
		"empty":    "roles: []",
		"dup":      "roles:\n  - role: doctor\n    credential_kind: " + ids.IDFromString("a").String() + "\n  - role: doctor\n    credential_kind: " + ids.IDFromString("b").String(),
		"bad kind": "roles:\n  - role: doctor\n    credential_kind: nothex",
		"no name":  "roles:\n  - role: \"\"\n    credential_kind: " + ids.IDFromString("a").String(),
		"not yaml": "{{{{",
	}
	for name, body := range cases {
		if _, err := LoadRoles(writeRoles(t, body)); err == nil {
			t.Errorf("%s: expected load error", name)
		}
	}

	if _, err := LoadRoles(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

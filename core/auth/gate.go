package auth

import (
	"errors"
	"fmt"

	"medishare/core/audit"
	"medishare/types/ids"
)

var (
	// ErrUnauthorized covers both ownership and kind mismatches: the
	// presented account is not the caller's credential of this kind.
	ErrUnauthorized = errors.New("credential account does not authorize caller")
	// ErrInvalidCredentialMint means the credential kind is divisible and
	// therefore not a valid role badge.
	ErrInvalidCredentialMint = errors.New("credential mint must be indivisible")
	// ErrMissingCredential means the account is well-formed but holds no
	// credential units.
	ErrMissingCredential = errors.New("credential balance is empty")
)

// CredentialProof names what a caller presents to the gate: who they
// are, which account proves it, and which credential kind is required.
type CredentialProof struct {
	Caller       ids.ID
	TokenAccount ids.ID
	Kind         ids.ID
}

// CredentialGate verifies role credentials against the token ledger.
// One gate serves every role; the credential kind is a parameter, not
// a separate code path. Verification is read-only.
type CredentialGate struct {
	View  TokenView
	Audit audit.AuditLogger
}

func NewCredentialGate(view TokenView, auditLogger audit.AuditLogger) *CredentialGate {
	return &CredentialGate{View: view, Audit: auditLogger}
}

// Verify runs the four checks in fixed order; the first failure wins
// and later checks are not evaluated.
func (g *CredentialGate) Verify(proof CredentialProof) error {
	acct, err := g.View.TokenAccount(proof.TokenAccount)
	if err != nil {
		return fmt.Errorf("credential lookup failed: %w", err)
	}

	if acct.Owner != proof.Caller {
		g.logVerdict(proof, "failure", "account owner mismatch")
		return ErrUnauthorized
	}
	if acct.Mint != proof.Kind {
		g.logVerdict(proof, "failure", "credential kind mismatch")
		return ErrUnauthorized
	}

	mint, err := g.View.Mint(acct.Mint)
	if err != nil {
		return fmt.Errorf("credential mint lookup failed: %w", err)
	}
	if mint.Decimals != 0 {
		g.logVerdict(proof, "failure", "divisible credential mint")
		return ErrInvalidCredentialMint
	}
	if acct.Amount < 1 {
		g.logVerdict(proof, "failure", "zero credential balance")
		return ErrMissingCredential
	}

	g.logVerdict(proof, "success", "credential verified")
	return nil
}

func (g *CredentialGate) logVerdict(proof CredentialProof, result, reason string) {
	if g.Audit == nil {
		return
	}
	g.Audit.LogEvent(audit.NewEvent("CredentialVerification", proof.Caller.String(), result, reason, map[string]string{
		"tokenAccount": proof.TokenAccount.Short(),
		"kind":         proof.Kind.Short(),
	}))
}

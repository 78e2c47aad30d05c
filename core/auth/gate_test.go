package auth

import (
	"errors"
	"testing"

	"medishare/core/audit"
	"medishare/types/ids"
)

var (
	caller   = ids.IDFromString("dr-jones")
	stranger = ids.IDFromString("someone-else")
	acctID   = ids.IDFromString("token-account-1")
	kindID   = ids.IDFromString("doctor-credential")
	otherID  = ids.IDFromString("nurse-credential")
)

func viewWith(acct TokenAccount, mint Mint) *StaticTokenView {
	return &StaticTokenView{
		Accounts: map[ids.ID]TokenAccount{acct.Address: acct},
		Mints:    map[ids.ID]Mint{mint.Address: mint},
	}
}

func proof() CredentialProof {
	return CredentialProof{Caller: caller, TokenAccount: acctID, Kind: kindID}
}

func TestGateAcceptsValidCredential(t *testing.T) {
	gate := NewCredentialGate(viewWith(
		TokenAccount{Address: acctID, Owner: caller, Mint: kindID, Amount: 1},
		Mint{Address: kindID, Decimals: 0, Supply: 10},
	), audit.NopAuditLogger{})

	if err := gate.Verify(proof()); err != nil {
		t.Fatalf("valid credential rejected: %v", err)
	}
}

func TestGateRejectsForeignAccount(t *testing.T) {
	gate := NewCredentialGate(viewWith(
		TokenAccount{Address: acctID, Owner: stranger, Mint: kindID, Amount: 5},
		Mint{Address: kindID, Decimals: 0},
	), audit.NopAuditLogger{})

	// Healthy balance must not rescue a foreign account.
	if err := gate.Verify(proof()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestGateRejectsWrongKind(t *testing.T) {
	gate := NewCredentialGate(viewWith(
		TokenAccount{Address: acctID, Owner: caller, Mint: otherID, Amount: 1},
		Mint{Address: otherID, Decimals: 0},
	), audit.NopAuditLogger{})

	if err := gate.Verify(proof()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestGateRejectsDivisibleMint(t *testing.T) {
	gate := NewCredentialGate(viewWith(
		TokenAccount{Address: acctID, Owner: caller, Mint: kindID, Amount: 100},
		Mint{Address: kindID, Decimals: 6},
	), audit.NopAuditLogger{})

	// Divisibility outranks balance: this fires before the balance check.
	if err := gate.Verify(proof()); !errors.Is(err, ErrInvalidCredentialMint) {
		t.Fatalf("got %v, want ErrInvalidCredentialMint", err)
	}
}

func TestGateRejectsEmptyBalance(t *testing.T) {
	gate := NewCredentialGate(viewWith(
		TokenAccount{Address: acctID, Owner: caller, Mint: kindID, Amount: 0},
		Mint{Address: kindID, Decimals: 0},
	), audit.NopAuditLogger{})

	if err := gate.Verify(proof()); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("got %v, want ErrMissingCredential", err)
	}
}

func TestGateOrderOwnershipBeforeMintShape(t *testing.T) {
	// Account is foreign AND the mint is divisible AND balance is zero.
	// Ownership is checked first, so Unauthorized must win.
	gate := NewCredentialGate(viewWith(
		TokenAccount{Address: acctID, Owner: stranger, Mint: kindID, Amount: 0},
		Mint{Address: kindID, Decimals: 9},
	), audit.NopAuditLogger{})

	if err := gate.Verify(proof()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized first", err)
	}
}

func TestGateUnknownAccount(t *testing.T) {
	gate := NewCredentialGate(&StaticTokenView{}, audit.NopAuditLogger{})
	err := gate.Verify(proof())
	if err == nil {
		t.Fatal("expected lookup error for unknown account")
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrMissingCredential) {
		t.Fatalf("lookup failure must not map to a verdict, got %v", err)
	}
}

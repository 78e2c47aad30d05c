package auth

import (
	"fmt"

	"medishare/types/ids"
)

// TokenAccount is the ledger view of one credential holding: which
// identity holds how many units of which mint.
type TokenAccount struct {
	Address ids.ID
	Owner   ids.ID
	Mint    ids.ID
	Amount  uint64
}

// Mint is the ledger view of a credential kind. Credential mints are
// badge-like: indivisible, held in whole units.
type Mint struct {
	Address  ids.ID
	Decimals uint8
	Supply   uint64
}

// TokenView reads token state. The gate only ever reads; nothing
// behind this interface is mutated by verification.
type TokenView interface {
	TokenAccount(id ids.ID) (TokenAccount, error)
	Mint(id ids.ID) (Mint, error)
}

// StaticTokenView serves token state from in-memory maps. Used for
// local development and tests.
type StaticTokenView struct {
	Accounts map[ids.ID]TokenAccount
	Mints    map[ids.ID]Mint
}

func (v *StaticTokenView) TokenAccount(id ids.ID) (TokenAccount, error) {
	acct, ok := v.Accounts[id]
	if !ok {
		return TokenAccount{}, fmt.Errorf("token account %s not found", id.Short())
	}
	return acct, nil
}

func (v *StaticTokenView) Mint(id ids.ID) (Mint, error) {
	mint, ok := v.Mints[id]
	if !ok {
		return Mint{}, fmt.Errorf("mint %s not found", id.Short())
	}
	return mint, nil
}

// Package token implements fungible-token operations over a ledger
// transaction: balances, direct transfers, and delegated transfers against
// a pre-approved allowance.
//
// The Token interface mirrors the standard fungible-token capability set.
// Implementations differ in how they signal failure -- some return false,
// some return an error -- so callers that must treat both the same go
// through SafeTransferFrom.
package token

import (
	"fmt"

	"github.com/disperseorg/libdisperse-go/ledger"
)

// Token is the capability set a fungible token exposes to the engine. The
// success flag and the error are separate failure channels on purpose:
// a conforming implementation returns (false, nil) for a refused transfer,
// others return errors. SafeTransferFrom collapses the two.
type Token interface {
	// BalanceOf returns owner's balance.
	BalanceOf(tx ledger.Tx, owner ledger.Address) (uint64, error)

	// Transfer moves amount from from to to.
	Transfer(tx ledger.Tx, from, to ledger.Address, amount uint64) (bool, error)

	// TransferFrom moves amount from owner to to, spending spender's
	// allowance granted by owner.
	TransferFrom(tx ledger.Tx, spender, owner, to ledger.Address, amount uint64) (bool, error)
}

// Standard is the ledger-backed Token for one token class. Balances and
// allowances live in the ledger transaction handed to each call, so a
// Standard participates in whatever atomicity envelope the caller holds.
type Standard struct {
	id ledger.TokenID
}

var _ Token = (*Standard)(nil)

// NewStandard returns the Standard token for the given id.
func NewStandard(id ledger.TokenID) *Standard {
	return &Standard{id: id}
}

// ID returns the token identifier.
func (s *Standard) ID() ledger.TokenID { return s.id }

// BalanceOf returns owner's balance.
func (s *Standard) BalanceOf(tx ledger.Tx, owner ledger.Address) (uint64, error) {
	return tx.TokenBalance(s.id, owner)
}

// Transfer moves amount from from to to. A zero amount succeeds without
// touching the store.
func (s *Standard) Transfer(tx ledger.Tx, from, to ledger.Address, amount uint64) (bool, error) {
	if amount == 0 {
		return true, nil
	}
	if err := tx.DebitToken(s.id, from, amount); err != nil {
		return false, err
	}
	if err := tx.CreditToken(s.id, to, amount); err != nil {
		return false, err
	}
	return true, nil
}

// TransferFrom moves amount from owner to to on spender's authority. The
// allowance owner granted spender is debited first; when spender is the
// owner no allowance is needed. A zero amount succeeds without touching
// the store.
func (s *Standard) TransferFrom(tx ledger.Tx, spender, owner, to ledger.Address, amount uint64) (bool, error) {
	if amount == 0 {
		return true, nil
	}
	if spender != owner {
		allowed, err := tx.Allowance(s.id, owner, spender)
		if err != nil {
			return false, err
		}
		if allowed < amount {
			return false, fmt.Errorf("%w: have %d, need %d", ErrInsufficientAllowance, allowed, amount)
		}
		if err := tx.SetAllowance(s.id, owner, spender, allowed-amount); err != nil {
			return false, err
		}
	}
	return s.Transfer(tx, owner, to, amount)
}

// Approve sets spender's allowance over owner's balance to amount,
// replacing any previous value.
func (s *Standard) Approve(tx ledger.Tx, owner, spender ledger.Address, amount uint64) error {
	return tx.SetAllowance(s.id, owner, spender, amount)
}

// Allowance returns the amount spender may move out of owner's balance.
func (s *Standard) Allowance(tx ledger.Tx, owner, spender ledger.Address) (uint64, error) {
	return tx.Allowance(s.id, owner, spender)
}

// Mint credits amount to addr out of nothing. Fixture helper for seeding
// balances; the engine never mints.
func (s *Standard) Mint(tx ledger.Tx, addr ledger.Address, amount uint64) error {
	return tx.CreditToken(s.id, addr, amount)
}

// SafeTransferFrom runs tok.TransferFrom and normalizes its two failure
// channels: an error and a false return both come back as
// ErrTransferRejected, with the underlying cause wrapped when there is one.
func SafeTransferFrom(tok Token, tx ledger.Tx, spender, owner, to ledger.Address, amount uint64) error {
	ok, err := tok.TransferFrom(tx, spender, owner, to, amount)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransferRejected, err)
	}
	if !ok {
		return ErrTransferRejected
	}
	return nil
}

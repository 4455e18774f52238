// Package ledger provides the transactional account store that the
// disbursement engine executes against. It tracks three kinds of state:
// native balances, per-token balances, and per-token spending allowances,
// all keyed by 20-byte addresses.
//
// Every mutation happens inside an Update closure. Returning an error from
// the closure rolls the whole transaction back; returning nil commits it.
// That all-or-nothing boundary is what makes a multi-leg disbursement
// atomic: the engine never applies a partial batch.
//
// Two backends implement the same contract: BoltLedger (bbolt) and
// SQLLedger (sqlite).
package ledger

import "fmt"

// TokenIDSize is the byte length of a token identifier.
const TokenIDSize = 32

// TokenID identifies a fungible token class within the ledger.
type TokenID [TokenIDSize]byte

// Ledger is a transactional account store.
type Ledger interface {
	// Update runs fn inside a writable transaction. If fn returns an
	// error the transaction is rolled back and the error is returned;
	// otherwise the transaction commits.
	Update(fn func(Tx) error) error

	// View runs fn inside a read-only transaction.
	View(fn func(Tx) error) error

	// Close releases the underlying store.
	Close() error
}

// Tx is the set of account operations available inside a transaction.
//
// Balances never go negative and never overflow: a debit larger than the
// current balance fails with ErrInsufficientFunds, a credit that would
// exceed the uint64 range fails with ErrBalanceOverflow. A missing account
// reads as zero.
type Tx interface {
	NativeBalance(addr Address) (uint64, error)
	CreditNative(addr Address, amount uint64) error
	DebitNative(addr Address, amount uint64) error

	TokenBalance(tok TokenID, addr Address) (uint64, error)
	CreditToken(tok TokenID, addr Address, amount uint64) error
	DebitToken(tok TokenID, addr Address, amount uint64) error

	Allowance(tok TokenID, owner, spender Address) (uint64, error)
	SetAllowance(tok TokenID, owner, spender Address, amount uint64) error

	// SeenBatch and MarkBatch back the engine's optional replay guard.
	// A marked key persists iff the transaction that marked it commits.
	SeenBatch(key []byte) (bool, error)
	MarkBatch(key []byte) error
}

// Backend names accepted by Open.
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Open opens a ledger of the named backend at path.
func Open(backend, path string) (Ledger, error) {
	switch backend {
	case BackendBolt:
		return OpenBolt(path)
	case BackendSQLite:
		return OpenSQL(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// addOverflow adds amount to balance, guarding the uint64 range.
func addOverflow(balance, amount uint64) (uint64, error) {
	sum := balance + amount
	if sum < balance {
		return 0, ErrBalanceOverflow
	}
	return sum, nil
}

// subUnderflow subtracts amount from balance, refusing to go negative.
func subUnderflow(balance, amount uint64) (uint64, error) {
	if amount > balance {
		return 0, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, balance, amount)
	}
	return balance - amount, nil
}

package ledger

import "errors"

var (
	// ErrInsufficientFunds indicates a debit larger than the current balance.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrBalanceOverflow indicates a credit would exceed the uint64 range.
	ErrBalanceOverflow = errors.New("ledger: balance overflow")

	// ErrInvalidAddress indicates an address string or byte slice is malformed.
	ErrInvalidAddress = errors.New("ledger: invalid address")

	// ErrInvalidTokenID indicates a token identifier is malformed.
	ErrInvalidTokenID = errors.New("ledger: invalid token id")

	// ErrUnknownBackend indicates the backend name is not recognized.
	ErrUnknownBackend = errors.New("ledger: unknown backend (must be \"bolt\" or \"sqlite\")")

	// ErrClosed indicates the ledger has been closed.
	ErrClosed = errors.New("ledger: closed")
)

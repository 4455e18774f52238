package config

import "errors"

var (
	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrInvalidBackend indicates the ledger backend name is not recognized.
	ErrInvalidBackend = errors.New("config: invalid backend (must be \"bolt\" or \"sqlite\")")

	// ErrInvalidMaxBatch indicates a negative batch cap.
	ErrInvalidMaxBatch = errors.New("config: max batch must not be negative")

	// ErrInvalidUpstream indicates the resolver upstream address is malformed.
	ErrInvalidUpstream = errors.New("config: invalid resolver upstream address")
)

// Package disperse implements batched disbursement of native value or a
// fungible-token balance from one payer to many recipients. A batch either
// pays every recipient or pays none: each entry point runs inside a single
// ledger transaction, and any failed leg rolls the whole call back.
//
// The engine holds no balance of its own between calls. Native value
// attached to a call passes through the engine account and any surplus
// returns to the caller before the call ends; value that nonetheless ends
// up stranded on the engine account can be swept by anyone through the
// rescue operations.
package disperse

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/disperseorg/libdisperse-go/config"
	"github.com/disperseorg/libdisperse-go/ledger"
)

// DefaultAccount is the engine account address used when no override is
// given. It is derived from a fixed tag and has no key pair, so nothing
// can spend from it outside the engine.
var DefaultAccount = ledger.TagAddress("libdisperse/engine-account/v1")

// Receiver is the hook a recipient may register to run on incoming native
// value, the way a contract recipient runs fallback logic. Returning an
// error rejects the push, which fails that leg.
type Receiver interface {
	ReceiveNative(from ledger.Address, amount uint64) error
}

// ReceiverFunc adapts a function to the Receiver interface.
type ReceiverFunc func(from ledger.Address, amount uint64) error

// ReceiveNative calls f.
func (f ReceiverFunc) ReceiveNative(from ledger.Address, amount uint64) error {
	return f(from, amount)
}

// Engine is the disbursement engine bound to one ledger.
type Engine struct {
	ledger   ledger.Ledger
	account  ledger.Address
	maxBatch int
	guard    []byte // replay-guard secret; nil disables the guard

	mu        sync.RWMutex
	receivers map[ledger.Address]Receiver
}

// Option configures an Engine.
type Option func(*Engine)

// WithAccount overrides the engine account address.
func WithAccount(addr ledger.Address) Option {
	return func(e *Engine) { e.account = addr }
}

// WithMaxBatch caps the number of legs per call. Zero means uncapped.
func WithMaxBatch(n int) Option {
	return func(e *Engine) { e.maxBatch = n }
}

// WithReplayGuard enables duplicate-batch rejection using the caller-held
// secret. See replay.go for the key derivation.
func WithReplayGuard(secret []byte) Option {
	return func(e *Engine) { e.guard = secret }
}

// WithReceiver registers a Receiver hook for addr.
func WithReceiver(addr ledger.Address, r Receiver) Option {
	return func(e *Engine) { e.receivers[addr] = r }
}

// New creates an Engine over l.
func New(l ledger.Ledger, opts ...Option) *Engine {
	e := &Engine{
		ledger:    l,
		account:   DefaultAccount,
		receivers: make(map[ledger.Address]Receiver),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open opens the ledger described by cfg and returns an Engine over it.
// Close releases the ledger.
func Open(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	l, err := ledger.Open(cfg.Backend, filepath.Join(cfg.DataDir, "disperse.db"))
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithMaxBatch(cfg.MaxBatch)}, opts...)
	return New(l, opts...), nil
}

// Close closes the underlying ledger.
func (e *Engine) Close() error { return e.ledger.Close() }

// Account returns the engine account address.
func (e *Engine) Account() ledger.Address { return e.account }

// Ledger returns the underlying ledger, for callers that seed balances or
// grant allowances around engine calls.
func (e *Engine) Ledger() ledger.Ledger { return e.ledger }

// RegisterReceiver installs (or, with a nil Receiver, removes) the hook
// for addr.
func (e *Engine) RegisterReceiver(addr ledger.Address, r Receiver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r == nil {
		delete(e.receivers, addr)
		return
	}
	e.receivers[addr] = r
}

func (e *Engine) receiver(addr ledger.Address) Receiver {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.receivers[addr]
}

// checkShape validates the batch before any transfer is attempted. This is
// the only per-batch validation; the loop itself does no re-checking.
func (e *Engine) checkShape(recipients []ledger.Address, amounts []uint64) error {
	if len(recipients) != len(amounts) {
		return fmt.Errorf("%w: %d recipients, %d amounts", ErrLengthMismatch, len(recipients), len(amounts))
	}
	if e.maxBatch > 0 && len(recipients) > e.maxBatch {
		return fmt.Errorf("%w: %d legs, cap %d", ErrBatchTooLarge, len(recipients), e.maxBatch)
	}
	return nil
}

package disperse

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disperseorg/libdisperse-go/config"
	"github.com/disperseorg/libdisperse-go/ledger"
)

func addr(b byte) ledger.Address {
	var a ledger.Address
	for i := range a {
		a[i] = b
	}
	return a
}

// openEngine builds an Engine on a fresh ledger of the given backend.
func openEngine(t *testing.T, backend string, opts ...Option) *Engine {
	t.Helper()
	l, err := ledger.Open(backend, filepath.Join(t.TempDir(), "disperse.db"))
	require.NoError(t, err)
	e := New(l, opts...)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// eachBackend runs fn with an engine over every ledger backend.
func eachBackend(t *testing.T, fn func(t *testing.T, e *Engine), opts ...Option) {
	t.Helper()
	for _, backend := range []string{ledger.BackendBolt, ledger.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			fn(t, openEngine(t, backend, opts...))
		})
	}
}

func seedNative(t *testing.T, e *Engine, a ledger.Address, amount uint64) {
	t.Helper()
	require.NoError(t, e.Ledger().Update(func(tx ledger.Tx) error {
		return tx.CreditNative(a, amount)
	}))
}

func nativeBal(t *testing.T, e *Engine, a ledger.Address) uint64 {
	t.Helper()
	var bal uint64
	require.NoError(t, e.Ledger().View(func(tx ledger.Tx) error {
		var err error
		bal, err = tx.NativeBalance(a)
		return err
	}))
	return bal
}

// rejectAll is a Receiver that refuses every push.
var rejectAll = ReceiverFunc(func(from ledger.Address, amount uint64) error {
	return errors.New("not accepting value")
})

func TestShapeMismatchBatchCap(t *testing.T) {
	e := openEngine(t, ledger.BackendBolt, WithMaxBatch(2))
	caller := addr(0x01)
	recipients := []ledger.Address{addr(0x02), addr(0x03), addr(0x04)}

	err := e.SendNative(caller, 0, recipients, []uint64{1, 1, 1})
	require.ErrorIs(t, err, ErrBatchTooLarge)

	err = e.SendNative(caller, 0, recipients[:2], []uint64{1, 1, 1})
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestEngineAccount(t *testing.T) {
	e := openEngine(t, ledger.BackendBolt)
	assert.Equal(t, DefaultAccount, e.Account())

	custom := addr(0x7f)
	e2 := openEngine(t, ledger.BackendBolt, WithAccount(custom))
	assert.Equal(t, custom, e2.Account())
}

func TestRegisterReceiver(t *testing.T) {
	e := openEngine(t, ledger.BackendBolt)
	r2 := addr(0x02)

	e.RegisterReceiver(r2, rejectAll)
	assert.NotNil(t, e.receiver(r2))

	e.RegisterReceiver(r2, nil)
	assert.Nil(t, e.receiver(r2))
}

func TestOpenWithConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Backend = "sqlite"
	cfg.MaxBatch = 8

	e, err := Open(cfg)
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	caller, dest := addr(0x01), addr(0x02)
	seedNative(t, e, caller, 10)
	require.NoError(t, e.SendNative(caller, 10, []ledger.Address{dest}, []uint64{10}))
	assert.Equal(t, uint64(10), nativeBal(t, e, dest))
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = "leveldb"
	_, err := Open(cfg)
	require.ErrorIs(t, err, config.ErrInvalidBackend)
}

package disperse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disperseorg/libdisperse-go/ledger"
)

func TestReplayGuardRejectsDuplicateBatch(t *testing.T) {
	e := openEngine(t, ledger.BackendBolt, WithReplayGuard([]byte("caller secret")))
	caller := addr(0x01)
	r1 := addr(0x02)
	seedNative(t, e, caller, 20)

	require.NoError(t, e.SendNative(caller, 10, []ledger.Address{r1}, []uint64{10}))

	err := e.SendNative(caller, 10, []ledger.Address{r1}, []uint64{10})
	require.ErrorIs(t, err, ErrDuplicateBatch)

	// Only the first batch moved value.
	assert.Equal(t, uint64(10), nativeBal(t, e, r1))
	assert.Equal(t, uint64(10), nativeBal(t, e, caller))
}

func TestReplayGuardDistinguishesBatches(t *testing.T) {
	e := openEngine(t, ledger.BackendBolt, WithReplayGuard([]byte("caller secret")))
	caller := addr(0x01)
	r1 := addr(0x02)
	seedNative(t, e, caller, 30)

	require.NoError(t, e.SendNative(caller, 10, []ledger.Address{r1}, []uint64{10}))
	require.NoError(t, e.SendNative(caller, 20, []ledger.Address{r1}, []uint64{20}))
	assert.Equal(t, uint64(30), nativeBal(t, e, r1))
}

func TestReplayGuardClearsOnRollback(t *testing.T) {
	// A batch that fails may be resubmitted: the mark is written inside
	// the same transaction as the batch and rolls back with it.
	e := openEngine(t, ledger.BackendBolt, WithReplayGuard([]byte("caller secret")))
	caller := addr(0x01)
	r1 := addr(0x02)
	seedNative(t, e, caller, 10)
	e.RegisterReceiver(r1, rejectAll)

	err := e.SendNative(caller, 10, []ledger.Address{r1}, []uint64{10})
	require.ErrorIs(t, err, ErrLegFailed)

	e.RegisterReceiver(r1, nil)
	require.NoError(t, e.SendNative(caller, 10, []ledger.Address{r1}, []uint64{10}))
	assert.Equal(t, uint64(10), nativeBal(t, e, r1))
}

func TestReplayGuardCoversTokenBatches(t *testing.T) {
	e := openEngine(t, ledger.BackendBolt, WithReplayGuard([]byte("caller secret")))
	gold := newGoldToken()
	caller := addr(0x01)
	r1 := addr(0x02)
	seedToken(t, e, gold, caller, 100, 100)

	require.NoError(t, e.SendToken(gold, caller, []ledger.Address{r1}, []uint64{10}))

	err := e.SendToken(gold, caller, []ledger.Address{r1}, []uint64{10})
	require.ErrorIs(t, err, ErrDuplicateBatch)
	assert.Equal(t, uint64(10), tokenBal(t, e, gold, r1))
}

func TestNoGuardByDefault(t *testing.T) {
	e := openEngine(t, ledger.BackendBolt)
	caller := addr(0x01)
	r1 := addr(0x02)
	seedNative(t, e, caller, 20)

	require.NoError(t, e.SendNative(caller, 10, []ledger.Address{r1}, []uint64{10}))
	require.NoError(t, e.SendNative(caller, 10, []ledger.Address{r1}, []uint64{10}))
	assert.Equal(t, uint64(20), nativeBal(t, e, r1))
}

func TestDeriveReplayKey(t *testing.T) {
	digest := digestNative(addr(0x01), 10, []ledger.Address{addr(0x02)}, []uint64{10})

	k1, err := deriveReplayKey([]byte("secret"), digest)
	require.NoError(t, err)
	require.Len(t, k1, replayKeyLen)

	// Deterministic for the same inputs.
	k2, err := deriveReplayKey([]byte("secret"), digest)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	// Different secret, different key.
	k3, err := deriveReplayKey([]byte("other"), digest)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)

	_, err = deriveReplayKey(nil, digest)
	require.Error(t, err)
}

func TestBatchDigestsDiffer(t *testing.T) {
	r := []ledger.Address{addr(0x02)}
	a := []uint64{10}

	base := digestNative(addr(0x01), 10, r, a)
	assert.NotEqual(t, base, digestNative(addr(0x01), 11, r, a), "value changes digest")
	assert.NotEqual(t, base, digestNative(addr(0x03), 10, r, a), "caller changes digest")
	assert.NotEqual(t, base, digestToken(newGoldToken(), addr(0x01), r, a), "domain changes digest")
}

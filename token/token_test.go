package token

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disperseorg/libdisperse-go/ledger"
)

func openLedger(t *testing.T) ledger.Ledger {
	t.Helper()
	l, err := ledger.OpenBolt(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func addr(b byte) ledger.Address {
	var a ledger.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func TestStandardTransfer(t *testing.T) {
	l := openLedger(t)
	gold := NewStandard(ledger.TagTokenID("gold"))
	alice, bob := addr(0x01), addr(0x02)

	err := l.Update(func(tx ledger.Tx) error {
		require.NoError(t, gold.Mint(tx, alice, 100))

		ok, err := gold.Transfer(tx, alice, bob, 40)
		require.NoError(t, err)
		require.True(t, ok)

		a, err := gold.BalanceOf(tx, alice)
		require.NoError(t, err)
		b, err := gold.BalanceOf(tx, bob)
		require.NoError(t, err)
		assert.Equal(t, uint64(60), a)
		assert.Equal(t, uint64(40), b)
		return nil
	})
	require.NoError(t, err)
}

func TestStandardTransferInsufficient(t *testing.T) {
	l := openLedger(t)
	gold := NewStandard(ledger.TagTokenID("gold"))

	err := l.Update(func(tx ledger.Tx) error {
		ok, err := gold.Transfer(tx, addr(0x01), addr(0x02), 1)
		assert.False(t, ok)
		return err
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)
}

func TestStandardTransferZeroIsNoOp(t *testing.T) {
	l := openLedger(t)
	gold := NewStandard(ledger.TagTokenID("gold"))

	err := l.Update(func(tx ledger.Tx) error {
		ok, err := gold.Transfer(tx, addr(0x01), addr(0x02), 0)
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestStandardTransferFromSpendsAllowance(t *testing.T) {
	l := openLedger(t)
	gold := NewStandard(ledger.TagTokenID("gold"))
	owner, spender, dest := addr(0x01), addr(0x02), addr(0x03)

	err := l.Update(func(tx ledger.Tx) error {
		require.NoError(t, gold.Mint(tx, owner, 100))
		require.NoError(t, gold.Approve(tx, owner, spender, 60))

		ok, err := gold.TransferFrom(tx, spender, owner, dest, 60)
		require.NoError(t, err)
		require.True(t, ok)

		left, err := gold.Allowance(tx, owner, spender)
		require.NoError(t, err)
		assert.Zero(t, left, "allowance must be fully spent")

		ownerBal, err := gold.BalanceOf(tx, owner)
		require.NoError(t, err)
		destBal, err := gold.BalanceOf(tx, dest)
		require.NoError(t, err)
		assert.Equal(t, uint64(40), ownerBal)
		assert.Equal(t, uint64(60), destBal)
		return nil
	})
	require.NoError(t, err)
}

func TestStandardTransferFromInsufficientAllowance(t *testing.T) {
	l := openLedger(t)
	gold := NewStandard(ledger.TagTokenID("gold"))
	owner, spender, dest := addr(0x01), addr(0x02), addr(0x03)

	err := l.Update(func(tx ledger.Tx) error {
		require.NoError(t, gold.Mint(tx, owner, 100))
		require.NoError(t, gold.Approve(tx, owner, spender, 10))

		ok, err := gold.TransferFrom(tx, spender, owner, dest, 11)
		assert.False(t, ok)
		return err
	})
	require.ErrorIs(t, err, ErrInsufficientAllowance)
}

func TestStandardTransferFromSelfNeedsNoAllowance(t *testing.T) {
	l := openLedger(t)
	gold := NewStandard(ledger.TagTokenID("gold"))
	owner, dest := addr(0x01), addr(0x03)

	err := l.Update(func(tx ledger.Tx) error {
		require.NoError(t, gold.Mint(tx, owner, 100))

		ok, err := gold.TransferFrom(tx, owner, owner, dest, 25)
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)
}

// refusingToken signals failure the conforming way: false, no error.
type refusingToken struct{}

func (refusingToken) BalanceOf(ledger.Tx, ledger.Address) (uint64, error) { return 0, nil }
func (refusingToken) Transfer(ledger.Tx, ledger.Address, ledger.Address, uint64) (bool, error) {
	return false, nil
}
func (refusingToken) TransferFrom(ledger.Tx, ledger.Address, ledger.Address, ledger.Address, uint64) (bool, error) {
	return false, nil
}

// throwingToken signals failure the other way: an error.
type throwingToken struct{ err error }

func (t throwingToken) BalanceOf(ledger.Tx, ledger.Address) (uint64, error) { return 0, nil }
func (t throwingToken) Transfer(ledger.Tx, ledger.Address, ledger.Address, uint64) (bool, error) {
	return false, t.err
}
func (t throwingToken) TransferFrom(ledger.Tx, ledger.Address, ledger.Address, ledger.Address, uint64) (bool, error) {
	return false, t.err
}

func TestSafeTransferFromNormalizesFailure(t *testing.T) {
	l := openLedger(t)
	boom := errors.New("boom")

	err := l.Update(func(tx ledger.Tx) error {
		err := SafeTransferFrom(refusingToken{}, tx, addr(1), addr(2), addr(3), 5)
		assert.ErrorIs(t, err, ErrTransferRejected)

		err = SafeTransferFrom(throwingToken{err: boom}, tx, addr(1), addr(2), addr(3), 5)
		assert.ErrorIs(t, err, ErrTransferRejected)
		assert.ErrorIs(t, err, boom, "cause must stay visible")
		return nil
	})
	require.NoError(t, err)
}

func TestSafeTransferFromSuccess(t *testing.T) {
	l := openLedger(t)
	gold := NewStandard(ledger.TagTokenID("gold"))
	owner, spender, dest := addr(0x01), addr(0x02), addr(0x03)

	err := l.Update(func(tx ledger.Tx) error {
		require.NoError(t, gold.Mint(tx, owner, 10))
		require.NoError(t, gold.Approve(tx, owner, spender, 10))
		return SafeTransferFrom(gold, tx, spender, owner, dest, 10)
	})
	require.NoError(t, err)
}

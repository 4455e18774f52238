package disperse

import (
	"fmt"

	"github.com/disperseorg/libdisperse-go/ledger"
)

// SendNative disburses native value from caller to recipients[i] in order,
// amounts[i] each. value is the total the caller attaches to the call; it
// is debited from the caller up front and must cover the batch -- not by
// an upfront sum check, but by the engine account simply running dry
// mid-loop, which fails that leg and rolls the whole call back.
//
// After the last leg, any balance left on the engine account (surplus
// attached value, or value that arrived there by other means) is pushed
// back to the caller. A failed refund fails the whole call; on success the
// engine account holds exactly zero.
func (e *Engine) SendNative(caller ledger.Address, value uint64, recipients []ledger.Address, amounts []uint64) error {
	if err := e.checkShape(recipients, amounts); err != nil {
		return err
	}
	return e.ledger.Update(func(tx ledger.Tx) error {
		if err := e.guardBatch(tx, digestNative(caller, value, recipients, amounts)); err != nil {
			return err
		}

		// Attach the call value: caller funds the engine account.
		if err := tx.DebitNative(caller, value); err != nil {
			return fmt.Errorf("disperse: attach value: %w", err)
		}
		if err := tx.CreditNative(e.account, value); err != nil {
			return fmt.Errorf("disperse: attach value: %w", err)
		}

		for i := range recipients {
			if err := e.pushNative(tx, recipients[i], amounts[i]); err != nil {
				return fmt.Errorf("%w: leg %d to %s: %w", ErrLegFailed, i, recipients[i], err)
			}
		}

		residual, err := tx.NativeBalance(e.account)
		if err != nil {
			return err
		}
		if residual > 0 {
			if err := e.pushNative(tx, caller, residual); err != nil {
				return fmt.Errorf("%w: %w", ErrRefundFailed, err)
			}
		}
		return nil
	})
}

// pushNative moves amount of native value from the engine account to addr,
// running addr's Receiver hook if one is registered. The debit comes
// first, so an engine account that runs dry fails here.
func (e *Engine) pushNative(tx ledger.Tx, addr ledger.Address, amount uint64) error {
	if err := tx.DebitNative(e.account, amount); err != nil {
		return err
	}
	if hook := e.receiver(addr); hook != nil {
		if err := hook.ReceiveNative(e.account, amount); err != nil {
			return fmt.Errorf("recipient rejected: %w", err)
		}
	}
	return tx.CreditNative(addr, amount)
}

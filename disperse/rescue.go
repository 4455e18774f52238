package disperse

import (
	"errors"
	"fmt"

	"github.com/disperseorg/libdisperse-go/ledger"
	"github.com/disperseorg/libdisperse-go/token"
)

// RescueToken sweeps the engine account's entire balance of tok to caller.
// The engine is not supposed to hold tokens, so anyone may trigger the
// sweep; whoever calls first gets the stranded balance. A zero balance is
// a successful no-op. A failed transfer fails the call.
func (e *Engine) RescueToken(tok token.Token, caller ledger.Address) error {
	return e.ledger.Update(func(tx ledger.Tx) error {
		bal, err := tok.BalanceOf(tx, e.account)
		if err != nil {
			return fmt.Errorf("disperse: rescue balance: %w", err)
		}
		ok, err := tok.Transfer(tx, e.account, caller, bal)
		if err != nil {
			return fmt.Errorf("disperse: rescue transfer: %w", err)
		}
		if !ok {
			return fmt.Errorf("disperse: rescue transfer: %w", token.ErrTransferRejected)
		}
		return nil
	})
}

// RescueNative sweeps the engine account's entire native balance to
// caller. Unlike every other operation it is best-effort: if the push to
// caller fails, the sweep rolls back, the balance stays where it was, and
// the call still returns nil so rescue can never get stuck inside a larger
// operation. Anyone may call it; a zero balance is a successful no-op.
func (e *Engine) RescueNative(caller ledger.Address) error {
	err := e.ledger.Update(func(tx ledger.Tx) error {
		bal, err := tx.NativeBalance(e.account)
		if err != nil {
			return err
		}
		if bal == 0 {
			return nil
		}
		if err := e.pushNative(tx, caller, bal); err != nil {
			return errRescueAborted
		}
		return nil
	})
	if errors.Is(err, errRescueAborted) {
		return nil
	}
	return err
}

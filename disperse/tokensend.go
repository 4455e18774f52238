package disperse

import (
	"fmt"

	"github.com/disperseorg/libdisperse-go/ledger"
	"github.com/disperseorg/libdisperse-go/token"
)

// SendToken disburses tok balance from caller to recipients[i] in order,
// amounts[i] each, through the token's delegated-transfer mechanism with
// the engine account as spender. The caller must have approved the engine
// account for at least the batch total beforehand; that authorization
// lives entirely in the token.
//
// Tokens move caller to recipient directly, so there is no refund step and
// the engine account's token balance is untouched by a well-behaved run.
// Any single leg failing -- a false return or an error, normalized by
// token.SafeTransferFrom -- rolls the whole call back.
func (e *Engine) SendToken(tok token.Token, caller ledger.Address, recipients []ledger.Address, amounts []uint64) error {
	if err := e.checkShape(recipients, amounts); err != nil {
		return err
	}
	return e.ledger.Update(func(tx ledger.Tx) error {
		if err := e.guardBatch(tx, digestToken(tok, caller, recipients, amounts)); err != nil {
			return err
		}
		for i := range recipients {
			if err := token.SafeTransferFrom(tok, tx, e.account, caller, recipients[i], amounts[i]); err != nil {
				return fmt.Errorf("%w: leg %d to %s: %w", ErrLegFailed, i, recipients[i], err)
			}
		}
		return nil
	})
}

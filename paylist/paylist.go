// Package paylist builds disbursement batches: it parses recipient lists,
// splits totals across weighted recipients, and resolves alias@domain
// payment handles to addresses over DNS.
//
// The engine itself never imports this package; a paylist is prepared
// off to the side and its recipients/amounts are handed to the engine.
package paylist

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/disperseorg/libdisperse-go/ledger"
)

// Entry is one prospective leg of a batch.
type Entry struct {
	Recipient ledger.Address
	Amount    uint64
}

// Split tears a list of entries into the paired recipient and amount
// slices the engine takes, preserving order.
func Split(entries []Entry) ([]ledger.Address, []uint64) {
	recipients := make([]ledger.Address, len(entries))
	amounts := make([]uint64, len(entries))
	for i, e := range entries {
		recipients[i] = e.Recipient
		amounts[i] = e.Amount
	}
	return recipients, amounts
}

// Parse reads a payment list, one `recipient,amount` pair per line.
// Blank lines and lines starting with # are skipped. A recipient is a
// 40-char hex address, a base58 P2PKH address, or an alias@domain handle
// resolved through res. Duplicate recipients are allowed; order is kept.
func Parse(r io.Reader, res Resolver) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		recipientField, amountField, found := strings.Cut(line, ",")
		if !found {
			return nil, fmt.Errorf("%w: line %d: missing comma", ErrInvalidLine, lineNo)
		}

		amount, err := strconv.ParseUint(strings.TrimSpace(amountField), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: amount: %w", ErrInvalidLine, lineNo, err)
		}

		recipientField = strings.TrimSpace(recipientField)
		var recipient ledger.Address
		if strings.Contains(recipientField, "@") {
			if res == nil {
				return nil, fmt.Errorf("%w: line %d: %q", ErrNoResolver, lineNo, recipientField)
			}
			recipient, err = res.Resolve(recipientField)
			if err != nil {
				return nil, fmt.Errorf("paylist: line %d: %w", lineNo, err)
			}
		} else {
			recipient, err = ledger.ParseAddress(recipientField)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidLine, lineNo, err)
			}
		}

		entries = append(entries, Entry{Recipient: recipient, Amount: amount})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("paylist: read: %w", err)
	}
	return entries, nil
}

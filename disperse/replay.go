package disperse

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/disperseorg/libdisperse-go/ledger"
	"github.com/disperseorg/libdisperse-go/token"
)

const (
	// replayInfo is the HKDF info string for replay-guard key derivation.
	replayInfo = "libdisperse-replay-guard"

	// replayKeyLen is the length of a derived replay key in bytes.
	replayKeyLen = 32

	domainNative byte = 0x00
	domainToken  byte = 0x01
)

// guardBatch enforces the optional replay guard: it derives the storage
// key for this batch and rejects the call if the key was already marked.
// The mark is written through the surrounding transaction, so it persists
// iff the batch commits -- a rolled-back batch may be resubmitted.
//
// The guard is meant for callers whose batches are naturally unique;
// deliberately resubmitting an identical batch requires disabling it.
func (e *Engine) guardBatch(tx ledger.Tx, digest []byte) error {
	if e.guard == nil {
		return nil
	}
	key, err := deriveReplayKey(e.guard, digest)
	if err != nil {
		return err
	}
	seen, err := tx.SeenBatch(key)
	if err != nil {
		return err
	}
	if seen {
		return ErrDuplicateBatch
	}
	return tx.MarkBatch(key)
}

// deriveReplayKey derives the stored key as HKDF-SHA256(secret, salt =
// batch digest, info = replayInfo). The derivation is deterministic for a
// given (secret, batch) pair, and without the secret the stored keys
// reveal nothing about batch contents.
func deriveReplayKey(secret, digest []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("disperse: replay guard secret is empty")
	}
	r := hkdf.New(sha256.New, secret, digest, []byte(replayInfo))
	key := make([]byte, replayKeyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("disperse: derive replay key: %w", err)
	}
	return key, nil
}

// digestNative computes the canonical digest of a native batch.
func digestNative(caller ledger.Address, value uint64, recipients []ledger.Address, amounts []uint64) []byte {
	h := sha256.New()
	h.Write([]byte{domainNative})
	h.Write(caller[:])
	writeUint64(h, value)
	writeLegs(h, recipients, amounts)
	return h.Sum(nil)
}

// digestToken computes the canonical digest of a token batch. Tokens that
// expose an ID are discriminated by it; others share the zero id.
func digestToken(tok token.Token, caller ledger.Address, recipients []ledger.Address, amounts []uint64) []byte {
	var id ledger.TokenID
	if ider, ok := tok.(interface{ ID() ledger.TokenID }); ok {
		id = ider.ID()
	}
	h := sha256.New()
	h.Write([]byte{domainToken})
	h.Write(id[:])
	h.Write(caller[:])
	writeLegs(h, recipients, amounts)
	return h.Sum(nil)
}

func writeUint64(h io.Writer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, _ = h.Write(b[:])
}

func writeLegs(h io.Writer, recipients []ledger.Address, amounts []uint64) {
	writeUint64(h, uint64(len(recipients)))
	for i := range recipients {
		_, _ = h.Write(recipients[i][:])
		writeUint64(h, amounts[i])
	}
}

package ledger

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketNative    = []byte("native")
	bucketToken     = []byte("token")
	bucketAllowance = []byte("allowance")
	bucketReplay    = []byte("replay")
)

// BoltLedger is the bbolt-backed Ledger. A bbolt Update transaction is the
// all-or-nothing envelope: an error from the closure discards every write.
type BoltLedger struct {
	db *bbolt.DB
}

var _ Ledger = (*BoltLedger)(nil)

// OpenBolt opens or creates the bbolt ledger at dbPath. The parent
// directory is created if it does not exist.
func OpenBolt(dbPath string) (*BoltLedger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("ledger: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketNative, bucketToken, bucketAllowance, bucketReplay} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("ledger: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: create buckets: %w", err)
	}

	return &BoltLedger{db: db}, nil
}

// Close closes the underlying database.
func (l *BoltLedger) Close() error { return l.db.Close() }

// Update runs fn inside a writable bbolt transaction.
func (l *BoltLedger) Update(fn func(Tx) error) error {
	return l.db.Update(func(btx *bbolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
}

// View runs fn inside a read-only bbolt transaction.
func (l *BoltLedger) View(fn func(Tx) error) error {
	return l.db.View(func(btx *bbolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
}

// boltTx implements Tx over a live bbolt transaction.
type boltTx struct {
	tx *bbolt.Tx
}

var _ Tx = (*boltTx)(nil)

// tokenKey builds the composite token balance key: tokenID || addr.
func tokenKey(tok TokenID, addr Address) []byte {
	k := make([]byte, TokenIDSize+AddressSize)
	copy(k, tok[:])
	copy(k[TokenIDSize:], addr[:])
	return k
}

// allowanceKey builds the composite allowance key: tokenID || owner || spender.
func allowanceKey(tok TokenID, owner, spender Address) []byte {
	k := make([]byte, TokenIDSize+2*AddressSize)
	copy(k, tok[:])
	copy(k[TokenIDSize:], owner[:])
	copy(k[TokenIDSize+AddressSize:], spender[:])
	return k
}

// getAmount reads an 8-byte big-endian amount; a missing key is zero.
func getAmount(b *bbolt.Bucket, key []byte) uint64 {
	v := b.Get(key)
	if len(v) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(v)
}

// putAmount writes an amount, deleting the key when the amount is zero so
// an account that returns to zero leaves no residue in the store.
func putAmount(b *bbolt.Bucket, key []byte, amount uint64) error {
	if amount == 0 {
		return b.Delete(key)
	}
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, amount)
	return b.Put(key, v)
}

func (t *boltTx) NativeBalance(addr Address) (uint64, error) {
	return getAmount(t.tx.Bucket(bucketNative), addr[:]), nil
}

func (t *boltTx) CreditNative(addr Address, amount uint64) error {
	b := t.tx.Bucket(bucketNative)
	next, err := addOverflow(getAmount(b, addr[:]), amount)
	if err != nil {
		return err
	}
	return putAmount(b, addr[:], next)
}

func (t *boltTx) DebitNative(addr Address, amount uint64) error {
	b := t.tx.Bucket(bucketNative)
	next, err := subUnderflow(getAmount(b, addr[:]), amount)
	if err != nil {
		return err
	}
	return putAmount(b, addr[:], next)
}

func (t *boltTx) TokenBalance(tok TokenID, addr Address) (uint64, error) {
	return getAmount(t.tx.Bucket(bucketToken), tokenKey(tok, addr)), nil
}

func (t *boltTx) CreditToken(tok TokenID, addr Address, amount uint64) error {
	b := t.tx.Bucket(bucketToken)
	key := tokenKey(tok, addr)
	next, err := addOverflow(getAmount(b, key), amount)
	if err != nil {
		return err
	}
	return putAmount(b, key, next)
}

func (t *boltTx) DebitToken(tok TokenID, addr Address, amount uint64) error {
	b := t.tx.Bucket(bucketToken)
	key := tokenKey(tok, addr)
	next, err := subUnderflow(getAmount(b, key), amount)
	if err != nil {
		return err
	}
	return putAmount(b, key, next)
}

func (t *boltTx) Allowance(tok TokenID, owner, spender Address) (uint64, error) {
	return getAmount(t.tx.Bucket(bucketAllowance), allowanceKey(tok, owner, spender)), nil
}

func (t *boltTx) SetAllowance(tok TokenID, owner, spender Address, amount uint64) error {
	return putAmount(t.tx.Bucket(bucketAllowance), allowanceKey(tok, owner, spender), amount)
}

func (t *boltTx) SeenBatch(key []byte) (bool, error) {
	return t.tx.Bucket(bucketReplay).Get(key) != nil, nil
}

func (t *boltTx) MarkBatch(key []byte) error {
	return t.tx.Bucket(bucketReplay).Put(key, []byte{})
}

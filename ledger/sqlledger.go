package ledger

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqlSchema = `
CREATE TABLE IF NOT EXISTS native (
	addr    BLOB PRIMARY KEY,
	balance BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS token (
	tok     BLOB NOT NULL,
	addr    BLOB NOT NULL,
	balance BLOB NOT NULL,
	PRIMARY KEY (tok, addr)
);
CREATE TABLE IF NOT EXISTS allowance (
	tok     BLOB NOT NULL,
	owner   BLOB NOT NULL,
	spender BLOB NOT NULL,
	amount  BLOB NOT NULL,
	PRIMARY KEY (tok, owner, spender)
);
CREATE TABLE IF NOT EXISTS replay (
	k BLOB PRIMARY KEY
);
`

// SQLLedger is the sqlite-backed Ledger. A database/sql transaction is the
// all-or-nothing envelope; it satisfies the same contract as BoltLedger.
//
// Amounts are stored as 8-byte big-endian blobs so the full uint64 range
// survives the round trip.
type SQLLedger struct {
	db *sql.DB
}

var _ Ledger = (*SQLLedger)(nil)

// OpenSQL opens or creates the sqlite ledger at dbPath. The parent
// directory is created if it does not exist.
func OpenSQL(dbPath string) (*SQLLedger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("ledger: create directory: %w", err)
	}
	dsn := filepath.Clean(dbPath) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger: open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqlSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: create schema: %w", err)
	}
	return &SQLLedger{db: db}, nil
}

// Close closes the underlying database.
func (l *SQLLedger) Close() error { return l.db.Close() }

// Update runs fn inside a writable sql transaction.
func (l *SQLLedger) Update(fn func(Tx) error) error {
	stx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("ledger: begin: %w", err)
	}
	if err := fn(&sqlTx{tx: stx}); err != nil {
		_ = stx.Rollback()
		return err
	}
	if err := stx.Commit(); err != nil {
		return fmt.Errorf("ledger: commit: %w", err)
	}
	return nil
}

// View runs fn inside a transaction that is always rolled back.
func (l *SQLLedger) View(fn func(Tx) error) error {
	stx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("ledger: begin: %w", err)
	}
	defer func() { _ = stx.Rollback() }()
	return fn(&sqlTx{tx: stx})
}

// sqlTx implements Tx over a live sql transaction.
type sqlTx struct {
	tx *sql.Tx
}

var _ Tx = (*sqlTx)(nil)

func encodeAmount(amount uint64) []byte {
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, amount)
	return v
}

// queryAmount reads one amount blob; no row means zero.
func (t *sqlTx) queryAmount(query string, args ...any) (uint64, error) {
	var v []byte
	err := t.tx.QueryRow(query, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ledger: query amount: %w", err)
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("ledger: corrupt amount blob of %d bytes", len(v))
	}
	return binary.BigEndian.Uint64(v), nil
}

func (t *sqlTx) NativeBalance(addr Address) (uint64, error) {
	return t.queryAmount(`SELECT balance FROM native WHERE addr = ?`, addr[:])
}

func (t *sqlTx) setNative(addr Address, amount uint64) error {
	if amount == 0 {
		_, err := t.tx.Exec(`DELETE FROM native WHERE addr = ?`, addr[:])
		return err
	}
	_, err := t.tx.Exec(
		`INSERT INTO native (addr, balance) VALUES (?, ?)
		 ON CONFLICT (addr) DO UPDATE SET balance = excluded.balance`,
		addr[:], encodeAmount(amount))
	return err
}

func (t *sqlTx) CreditNative(addr Address, amount uint64) error {
	cur, err := t.NativeBalance(addr)
	if err != nil {
		return err
	}
	next, err := addOverflow(cur, amount)
	if err != nil {
		return err
	}
	return t.setNative(addr, next)
}

func (t *sqlTx) DebitNative(addr Address, amount uint64) error {
	cur, err := t.NativeBalance(addr)
	if err != nil {
		return err
	}
	next, err := subUnderflow(cur, amount)
	if err != nil {
		return err
	}
	return t.setNative(addr, next)
}

func (t *sqlTx) TokenBalance(tok TokenID, addr Address) (uint64, error) {
	return t.queryAmount(`SELECT balance FROM token WHERE tok = ? AND addr = ?`, tok[:], addr[:])
}

func (t *sqlTx) setToken(tok TokenID, addr Address, amount uint64) error {
	if amount == 0 {
		_, err := t.tx.Exec(`DELETE FROM token WHERE tok = ? AND addr = ?`, tok[:], addr[:])
		return err
	}
	_, err := t.tx.Exec(
		`INSERT INTO token (tok, addr, balance) VALUES (?, ?, ?)
		 ON CONFLICT (tok, addr) DO UPDATE SET balance = excluded.balance`,
		tok[:], addr[:], encodeAmount(amount))
	return err
}

func (t *sqlTx) CreditToken(tok TokenID, addr Address, amount uint64) error {
	cur, err := t.TokenBalance(tok, addr)
	if err != nil {
		return err
	}
	next, err := addOverflow(cur, amount)
	if err != nil {
		return err
	}
	return t.setToken(tok, addr, next)
}

func (t *sqlTx) DebitToken(tok TokenID, addr Address, amount uint64) error {
	cur, err := t.TokenBalance(tok, addr)
	if err != nil {
		return err
	}
	next, err := subUnderflow(cur, amount)
	if err != nil {
		return err
	}
	return t.setToken(tok, addr, next)
}

func (t *sqlTx) Allowance(tok TokenID, owner, spender Address) (uint64, error) {
	return t.queryAmount(
		`SELECT amount FROM allowance WHERE tok = ? AND owner = ? AND spender = ?`,
		tok[:], owner[:], spender[:])
}

func (t *sqlTx) SetAllowance(tok TokenID, owner, spender Address, amount uint64) error {
	if amount == 0 {
		_, err := t.tx.Exec(
			`DELETE FROM allowance WHERE tok = ? AND owner = ? AND spender = ?`,
			tok[:], owner[:], spender[:])
		return err
	}
	_, err := t.tx.Exec(
		`INSERT INTO allowance (tok, owner, spender, amount) VALUES (?, ?, ?, ?)
		 ON CONFLICT (tok, owner, spender) DO UPDATE SET amount = excluded.amount`,
		tok[:], owner[:], spender[:], encodeAmount(amount))
	return err
}

func (t *sqlTx) SeenBatch(key []byte) (bool, error) {
	var one int
	err := t.tx.QueryRow(`SELECT 1 FROM replay WHERE k = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: query replay key: %w", err)
	}
	return true, nil
}

func (t *sqlTx) MarkBatch(key []byte) error {
	_, err := t.tx.Exec(`INSERT OR IGNORE INTO replay (k) VALUES (?)`, key)
	return err
}

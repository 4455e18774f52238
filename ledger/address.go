package ledger

import (
	"encoding/hex"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/bsv-blockchain/go-sdk/script"
)

// AddressSize is the byte length of an account address.
const AddressSize = 20

// Address is a 20-byte account identifier: HASH160 of a compressed public
// key, the same material a P2PKH address encodes.
type Address [AddressSize]byte

// String renders the address as 40 lowercase hex characters.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Base58 renders the address in P2PKH base58check form.
func (a Address) Base58() (string, error) {
	addr, err := script.NewAddressFromPublicKeyHash(a[:], true)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return addr.AddressString, nil
}

// IsZero reports whether the address is all zero bytes.
func (a Address) IsZero() bool {
	return a == Address{}
}

// AddressFromPublicKey derives the address of a compressed public key:
// RIPEMD160(SHA256(pubkey)).
func AddressFromPublicKey(pub *ec.PublicKey) Address {
	var a Address
	copy(a[:], bsvhash.Hash160(pub.Compressed()))
	return a
}

// AddressFromBytes copies a 20-byte slice into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressSize {
		return Address{}, fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidAddress, AddressSize, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// ParseAddress parses an address from its 40-char hex form or its base58
// P2PKH form.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return Address{}, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	if len(s) == AddressSize*2 {
		b, err := hex.DecodeString(s)
		if err == nil {
			return AddressFromBytes(b)
		}
		// 40 chars but not hex: fall through to base58.
	}
	addr, err := script.NewAddressFromString(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, s, err)
	}
	return AddressFromBytes([]byte(addr.PublicKeyHash))
}

// TagAddress derives a deterministic address from an arbitrary tag string.
// Used for well-known internal accounts (e.g. the engine account) that have
// no corresponding key pair.
func TagAddress(tag string) Address {
	var a Address
	copy(a[:], bsvhash.Hash160([]byte(tag)))
	return a
}

// String renders the token id as 64 lowercase hex characters.
func (t TokenID) String() string {
	return hex.EncodeToString(t[:])
}

// ParseTokenID parses a 64-char hex token identifier.
func ParseTokenID(s string) (TokenID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return TokenID{}, fmt.Errorf("%w: %w", ErrInvalidTokenID, err)
	}
	if len(b) != TokenIDSize {
		return TokenID{}, fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidTokenID, TokenIDSize, len(b))
	}
	var t TokenID
	copy(t[:], b)
	return t, nil
}

// TagTokenID derives a deterministic token id from a tag string. Handy for
// tests and for tokens named by convention rather than by hash.
func TagTokenID(tag string) TokenID {
	var t TokenID
	copy(t[:], bsvhash.Sha256([]byte(tag)))
	return t
}

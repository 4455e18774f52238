package paylist

import "errors"

var (
	// ErrInvalidLine indicates a payment list line is malformed.
	ErrInvalidLine = errors.New("paylist: invalid line")

	// ErrNoResolver indicates a handle appeared in a list but no resolver
	// was provided.
	ErrNoResolver = errors.New("paylist: no resolver for handle")

	// ErrInvalidHandle indicates a handle is not of the alias@domain form.
	ErrInvalidHandle = errors.New("paylist: invalid handle")

	// ErrResolveFailed indicates a handle could not be resolved to an address.
	ErrResolveFailed = errors.New("paylist: resolve failed")

	// ErrDNSSECFailed indicates the answer was not DNSSEC-authenticated.
	ErrDNSSECFailed = errors.New("paylist: DNSSEC validation failed")

	// ErrZeroTotal indicates a proportional split of nothing.
	ErrZeroTotal = errors.New("paylist: zero total")

	// ErrNoWeights indicates a proportional split with no recipients.
	ErrNoWeights = errors.New("paylist: no weights")

	// ErrZeroWeightSum indicates every weight is zero.
	ErrZeroWeightSum = errors.New("paylist: zero weight sum")

	// ErrWeightOverflow indicates the weight sum exceeds the uint64 range.
	ErrWeightOverflow = errors.New("paylist: weight sum overflow")
)

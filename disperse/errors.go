package disperse

import "errors"

var (
	// ErrLengthMismatch indicates the recipient and amount counts differ.
	// Surfaced before any transfer is attempted.
	ErrLengthMismatch = errors.New("disperse: recipient and amount counts differ")

	// ErrBatchTooLarge indicates the batch exceeds the configured leg cap.
	ErrBatchTooLarge = errors.New("disperse: batch too large")

	// ErrLegFailed indicates a single leg's transfer failed. The whole
	// batch is rolled back; the wrapped message names the failed leg.
	ErrLegFailed = errors.New("disperse: leg transfer failed")

	// ErrRefundFailed indicates the end-of-batch return of surplus native
	// value failed. The whole call is rolled back so the surplus is never
	// silently dropped.
	ErrRefundFailed = errors.New("disperse: refund failed")

	// ErrDuplicateBatch indicates the replay guard has already seen this
	// exact batch from this caller.
	ErrDuplicateBatch = errors.New("disperse: duplicate batch")

	// errRescueAborted forces a rollback of a best-effort native rescue
	// without surfacing an error to the caller.
	errRescueAborted = errors.New("disperse: rescue aborted")
)

package token

import "errors"

var (
	// ErrInsufficientAllowance indicates the spender's allowance does not
	// cover the requested amount.
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")

	// ErrTransferRejected indicates a transfer leg failed, whether the
	// token signaled it with a false return or with an error.
	ErrTransferRejected = errors.New("token: transfer rejected")
)

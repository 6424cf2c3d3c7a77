package domain

import "errors"

// Rejection reasons for transactions the engine drops. None of these abort
// the stream: the engine consumes them internally and the offending record
// becomes a no-op.
var (
	ErrDuplicateTransaction = errors.New("transaction id already recorded")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrUnknownTransaction   = errors.New("referenced transaction not found")
	ErrClientMismatch       = errors.New("referenced transaction belongs to another client")
	ErrInvalidDisputeState  = errors.New("referenced transaction is in the wrong dispute state")
	ErrAccountLocked        = errors.New("account is locked")
)

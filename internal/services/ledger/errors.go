package ledger

import "errors"

// Service errors
var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidType         = errors.New("unknown transaction type")
	ErrAlreadyClaimed      = errors.New("investment already claimed")
	ErrNotClaimable        = errors.New("investment is not claimable")
	ErrAlreadySettled      = errors.New("withdrawal already settled")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrLedgerInconsistency = errors.New("balance does not match ledger")
)

package investment

import "errors"

// Service errors
var (
	ErrAmountTooSmall        = errors.New("amount is below the minimum investment")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInvalidStatus         = errors.New("invalid investment status")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrPaymentNotApprovable  = errors.New("payment is not pending approval")
	ErrWithdrawalNotPending  = errors.New("withdrawal is not pending approval")
	ErrWithdrawalAlreadyPaid = errors.New("withdrawal already paid")
)

package repositories

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already taken")
	ErrInvestmentNotFound  = errors.New("investment not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrRequestNotFound     = errors.New("deposit request not found")
	ErrTradeNotFound       = errors.New("trade not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

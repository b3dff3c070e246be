package repositories

import (
	"context"
	"time"

	"camillo/internal/models"
)

// LedgerTotals are the completed sums per transaction type.
type LedgerTotals struct {
	Deposits    int64 `json:"total_deposits"`
	Withdrawals int64 `json:"total_withdrawals"`
	Profits     int64 `json:"total_profits"`
}

// TransactionRepository persists ledger entries. Append and Settle are
// the only writes that touch User.balance besides the investment
// compound operations; all of them apply the delta as an atomic
// increment in the same store transaction as the ledger row.
type TransactionRepository interface {
	// Append stores the entry. When the entry is already completed its
	// signed delta is applied to the user's balance atomically.
	Append(ctx context.Context, txn *models.Transaction) error

	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Transaction, error)
	ListAll(ctx context.Context) ([]models.Transaction, error)
	ListPendingWithdrawals(ctx context.Context) ([]models.Transaction, error)
	ListProfitsSince(ctx context.Context, since time.Time) ([]models.Transaction, error)

	// AppendProfitOnce appends a completed profit entry and applies the
	// credit, unless a profit entry for the same investment already
	// exists. applied is false when the investment was already credited,
	// in which case nothing is written. This is the write both the
	// claim winner and the reconciliation pass use, so concurrent
	// repairers across instances cannot double-credit.
	AppendProfitOnce(ctx context.Context, txn *models.Transaction) (applied bool, err error)

	// Settle moves a pending withdrawal to completed or failed; on
	// completed the amount is debited in the same write. matched is
	// false if the entry was not pending.
	Settle(ctx context.Context, id uint, status string) (txn *models.Transaction, matched bool, err error)

	Totals(ctx context.Context) (*LedgerTotals, error)

	// CompletedSumByUser returns sum(deposit)+sum(profit)-sum(withdrawal)
	// over completed entries — the value User.balance must equal.
	CompletedSumByUser(ctx context.Context, userID uint) (int64, error)
}

package ledger

import (
	"context"
	"time"

	"camillo/internal/models"
	"camillo/internal/repositories"
)

// Service defines the ledger service interface. It is the only way
// application code may change a user's balance.
type Service interface {
	// Apply validates and appends a ledger entry. Completed entries move
	// the balance atomically with the entry itself.
	Apply(ctx context.Context, txn *models.Transaction) error

	// CreditInvestment claims the investment and pays out its principal
	// plus profit exactly once. Returns ErrAlreadyClaimed when another
	// caller won the claim.
	CreditInvestment(ctx context.Context, id uint) (*models.Investment, error)

	// RequestWithdrawal records a pending withdrawal after checking the
	// available balance. The balance is not debited until settlement.
	RequestWithdrawal(ctx context.Context, userID uint, amount int64) (*models.Transaction, error)

	// SettleWithdrawal completes or fails a pending withdrawal. On
	// completion the amount is debited in the same write.
	SettleWithdrawal(ctx context.Context, id uint, approve bool) (*models.Transaction, error)

	// Reconcile repairs claimed investments whose profit entry is
	// missing (a crash between claim and credit). Returns how many were
	// repaired.
	Reconcile(ctx context.Context) (int, error)

	// VerifyUser checks the ledger invariant for one user and returns
	// ErrLedgerInconsistency with details when it does not hold.
	VerifyUser(ctx context.Context, userID uint) error

	GetTransaction(ctx context.Context, id uint) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Transaction, error)
	ListAll(ctx context.Context) ([]models.Transaction, error)
	ListPendingWithdrawals(ctx context.Context) ([]models.Transaction, error)
	ListProfitsSince(ctx context.Context, since time.Time) ([]models.Transaction, error)
	Totals(ctx context.Context) (*repositories.LedgerTotals, error)
}

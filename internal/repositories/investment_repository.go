package repositories

import (
	"context"
	"time"

	"camillo/internal/models"
)

// InvestmentStats are the aggregate counts shown on the admin dashboard.
type InvestmentStats struct {
	Total           int64 `json:"total_investments"`
	Active          int64 `json:"active_investments"`
	TotalProfit     int64 `json:"total_profit"`
	PendingPayments int64 `json:"pending_payments"`
	ExpiredActive   int64 `json:"expired_investments"`
}

// InvestmentRepository defines investment persistence operations,
// including the compound writes that must be all-or-nothing. The
// conditional updates (Claim, ApprovePayment, ApproveWithdrawal,
// TransitionStatus) are single guarded writes: callers learn from the
// matched flag whether they won the transition.
type InvestmentRepository interface {
	// Create stores an investment without touching any balance. Used for
	// admin-credited investments whose principal was already funded.
	Create(ctx context.Context, inv *models.Investment) error

	// OpenWithDebit atomically stores the investment, appends the
	// completed principal-debit entry and decrements the user's balance.
	// Fails with ErrInsufficientBalance leaving no trace if the balance
	// does not cover the principal.
	OpenWithDebit(ctx context.Context, inv *models.Investment, debit *models.Transaction) error

	GetByID(ctx context.Context, id uint) (*models.Investment, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Investment, error)

	// ListByPhone matches against the user-phone snapshot taken at
	// creation, for support lookups by phone fragment.
	ListByPhone(ctx context.Context, phone string) ([]models.Investment, error)
	ListAll(ctx context.Context) ([]models.Investment, error)
	ListExpired(ctx context.Context, now time.Time) ([]models.Investment, error)
	ListPendingPayments(ctx context.Context) ([]models.Investment, error)
	ListPendingWithdrawals(ctx context.Context) ([]models.Investment, error)
	ListCompletedSince(ctx context.Context, since *time.Time) ([]models.Investment, error)

	// ListUnreconciled returns investments that were claimed (completed,
	// profit-paid-at set) but have no profit transaction yet — the
	// partial-failure case the reconciliation pass repairs.
	ListUnreconciled(ctx context.Context) ([]models.Investment, error)

	// Claim is the concurrency primitive behind exactly-once crediting:
	// a conditional update active/trading -> completed that also sets
	// withdrawal_status=pending and profit_paid_at. matched is false when
	// another caller already claimed the investment.
	Claim(ctx context.Context, id uint, now time.Time) (inv *models.Investment, matched bool, err error)

	// ApprovePayment is the conditional update pending-payment -> paid,
	// valid only while the investment is still active.
	ApprovePayment(ctx context.Context, id uint, now time.Time) (inv *models.Investment, matched bool, err error)

	// ApproveWithdrawal atomically marks the withdrawal paid (conditional
	// on completed + withdrawal pending) and records the disbursement
	// entry, debiting the balance.
	ApproveWithdrawal(ctx context.Context, id uint, payout *models.Transaction, now time.Time) (inv *models.Investment, matched bool, err error)

	// TransitionStatus performs a guarded forward status move.
	TransitionStatus(ctx context.Context, id uint, from []string, to string) (matched bool, err error)

	// BackfillCompleted initializes withdrawal_status and profit_paid_at
	// on an already-completed investment without re-crediting.
	BackfillCompleted(ctx context.Context, id uint, now time.Time) error

	Stats(ctx context.Context, now time.Time) (*InvestmentStats, error)
}

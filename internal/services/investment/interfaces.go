package investment

import (
	"context"
	"time"

	"camillo/internal/models"
	"camillo/internal/repositories"
)

// Service defines the investment lifecycle interface.
type Service interface {
	// Open creates an active investment for the user and debits the
	// principal atomically. testMode shortens the holding period to one
	// minute for end-to-end verification.
	Open(ctx context.Context, userID uint, amount int64, testMode bool) (*models.Investment, error)

	// OpenFromAdminCredit creates an active investment whose principal
	// was already funded by an admin balance adjustment. Payment is
	// treated as approved and the holding period is one hour.
	OpenFromAdminCredit(ctx context.Context, user *models.User, amount int64) (*models.Investment, error)

	Get(ctx context.Context, id uint) (*models.Investment, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Investment, error)
	ListByPhone(ctx context.Context, phone string) ([]models.Investment, error)
	ListAll(ctx context.Context) ([]models.Investment, error)

	// ListExpired returns active investments whose holding period has
	// elapsed but that the sweep has not completed yet.
	ListExpired(ctx context.Context) ([]models.Investment, error)

	ListPendingPayments(ctx context.Context) ([]models.Investment, error)
	ListPendingWithdrawals(ctx context.Context) ([]models.Investment, error)
	ListCompletedSince(ctx context.Context, since *time.Time) ([]models.Investment, error)

	// ApprovePayment marks the payment received and completes the
	// investment through the same claim the expiry sweep uses, so the
	// two completion paths cannot both credit.
	ApprovePayment(ctx context.Context, id uint) (*models.Investment, error)

	// ApproveWithdrawal pays out a completed investment's pending
	// withdrawal and records the disbursement.
	ApproveWithdrawal(ctx context.Context, id uint) (*models.Investment, error)

	// ForceStatus is the administrative override. Forcing completed
	// routes through profit crediting and never credits twice.
	ForceStatus(ctx context.Context, id uint, status string) (*models.Investment, error)

	Stats(ctx context.Context) (*repositories.InvestmentStats, error)
}

package repositories

import (
	"context"

	"camillo/internal/models"
)

// UserRepository defines user persistence operations.
//
// There is deliberately no balance setter here: balances change only
// through the compound ledger operations on TransactionRepository and
// InvestmentRepository, which apply atomic increments alongside the
// matching transaction row.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	SearchByPhone(ctx context.Context, fragment string) ([]models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

package repositories

import (
	"context"

	"camillo/internal/models"
)

// DepositRepository stores manual deposit requests. Approval/rejection
// happens through UpdateStatus, a guarded write so two admins cannot
// both resolve the same request.
type DepositRepository interface {
	Create(ctx context.Context, req *models.DepositRequest) error
	GetByID(ctx context.Context, id uint) (*models.DepositRequest, error)
	ListAll(ctx context.Context) ([]models.DepositRequest, error)
	ListByUser(ctx context.Context, userID uint) ([]models.DepositRequest, error)

	// UpdateStatus moves the request from -> to. matched is false when the
	// request was not in the from status.
	UpdateStatus(ctx context.Context, id uint, from, to string) (matched bool, err error)
}

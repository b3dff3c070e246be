package repositories

import (
	"context"
	"errors"
	"fmt"

	"camillo/internal/models"

	"gorm.io/gorm"
)

type depositRepository struct {
	db *gorm.DB
}

func NewDepositRepository(db *gorm.DB) DepositRepository {
	return &depositRepository{db: db}
}

func (r *depositRepository) Create(ctx context.Context, req *models.DepositRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create deposit request: %w", err)
	}
	return nil
}

func (r *depositRepository) GetByID(ctx context.Context, id uint) (*models.DepositRequest, error) {
	var req models.DepositRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get deposit request: %w", err)
	}
	return &req, nil
}

func (r *depositRepository) ListAll(ctx context.Context) ([]models.DepositRequest, error) {
	var out []models.DepositRequest
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list deposit requests: %w", err)
	}
	return out, nil
}

func (r *depositRepository) ListByUser(ctx context.Context, userID uint) ([]models.DepositRequest, error) {
	var out []models.DepositRequest
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list deposit requests: %w", err)
	}
	return out, nil
}

func (r *depositRepository) UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.DepositRequest{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update deposit request: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

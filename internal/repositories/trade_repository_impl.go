package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"camillo/internal/models"

	"gorm.io/gorm"
)

type tradeRepository struct {
	db *gorm.DB
}

func NewTradeRepository(db *gorm.DB) TradeRepository {
	return &tradeRepository{db: db}
}

func (r *tradeRepository) Create(ctx context.Context, trade *models.Trade) error {
	if err := r.db.WithContext(ctx).Create(trade).Error; err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	return nil
}

func (r *tradeRepository) GetByID(ctx context.Context, id uint) (*models.Trade, error) {
	var trade models.Trade
	if err := r.db.WithContext(ctx).First(&trade, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTradeNotFound
		}
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return &trade, nil
}

func (r *tradeRepository) ListAll(ctx context.Context) ([]models.Trade, error) {
	var out []models.Trade
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return out, nil
}

func (r *tradeRepository) Complete(ctx context.Context, id uint, profit int64, now time.Time) (*models.Trade, bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Trade{}).
		Where("id = ? AND status = ?", id, models.TradePending).
		Updates(map[string]interface{}{
			"status":       models.TradeCompleted,
			"profit":       profit,
			"completed_at": now,
		})
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to complete trade: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	trade, err := r.GetByID(ctx, id)
	return trade, true, err
}

package repositories

import (
	"context"
	"time"

	"camillo/internal/models"
)

// TradeRepository stores admin trading records.
type TradeRepository interface {
	Create(ctx context.Context, trade *models.Trade) error
	GetByID(ctx context.Context, id uint) (*models.Trade, error)
	ListAll(ctx context.Context) ([]models.Trade, error)

	// Complete marks a pending trade completed with its realized profit.
	// matched is false when the trade was already completed.
	Complete(ctx context.Context, id uint, profit int64, now time.Time) (trade *models.Trade, matched bool, err error)
}

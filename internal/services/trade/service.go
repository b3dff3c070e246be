// Package trade records the admin-side trading activity backing the
// platform's investment pool. Trades are bookkeeping only; they never
// touch user balances.
package trade

import (
	"context"
	"errors"
	"time"

	"camillo/internal/models"
	"camillo/internal/repositories"
)

// Service errors
var (
	ErrInvalidAmount    = errors.New("trade amount must be positive")
	ErrAlreadyCompleted = errors.New("trade already completed")
)

type Service interface {
	Create(ctx context.Context, adminID uint, amount int64) (*models.Trade, error)
	Get(ctx context.Context, id uint) (*models.Trade, error)
	ListAll(ctx context.Context) ([]models.Trade, error)

	// Complete closes a pending trade with its realized profit.
	Complete(ctx context.Context, id uint, profit int64) (*models.Trade, error)
}

type service struct {
	trades repositories.TradeRepository
}

func NewService(trades repositories.TradeRepository) Service {
	if trades == nil {
		panic("trade repository is required")
	}
	return &service{trades: trades}
}

func (s *service) Create(ctx context.Context, adminID uint, amount int64) (*models.Trade, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	trade := &models.Trade{
		AdminID: adminID,
		Amount:  amount,
		Status:  models.TradePending,
	}
	if err := s.trades.Create(ctx, trade); err != nil {
		return nil, err
	}
	return trade, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Trade, error) {
	return s.trades.GetByID(ctx, id)
}

func (s *service) ListAll(ctx context.Context) ([]models.Trade, error) {
	return s.trades.ListAll(ctx)
}

func (s *service) Complete(ctx context.Context, id uint, profit int64) (*models.Trade, error) {
	trade, matched, err := s.trades.Complete(ctx, id, profit, time.Now())
	if err != nil {
		return nil, err
	}
	if !matched {
		if _, err := s.trades.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyCompleted
	}
	return trade, nil
}

package memory

import (
	"context"
	"sort"
	"time"

	"camillo/internal/models"
	"camillo/internal/repositories"
)

type TradeRepository struct {
	s *Store
}

func (r *TradeRepository) Create(ctx context.Context, trade *models.Trade) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextTradeID++
	trade.ID = r.s.nextTradeID
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = time.Now()
	}
	c := *trade
	r.s.trades[trade.ID] = &c
	return nil
}

func (r *TradeRepository) GetByID(ctx context.Context, id uint) (*models.Trade, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.trades[id]
	if !ok {
		return nil, repositories.ErrTradeNotFound
	}
	c := *t
	return &c, nil
}

func (r *TradeRepository) ListAll(ctx context.Context) ([]models.Trade, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Trade
	for _, t := range r.s.trades {
		out = append(out, *t)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (r *TradeRepository) Complete(ctx context.Context, id uint, profit int64, now time.Time) (*models.Trade, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.trades[id]
	if !ok || t.Status != models.TradePending {
		return nil, false, nil
	}
	t.Status = models.TradeCompleted
	t.Profit = profit
	completedAt := now
	t.CompletedAt = &completedAt
	c := *t
	return &c, true, nil
}

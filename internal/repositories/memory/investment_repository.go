package memory

import (
	"context"
	"strings"
	"time"

	"camillo/internal/models"
	"camillo/internal/repositories"
)

type InvestmentRepository struct {
	s *Store
}

func (r *InvestmentRepository) Create(ctx context.Context, inv *models.Investment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.insertInvestment(inv)
	return nil
}

func (s *Store) insertInvestment(inv *models.Investment) {
	s.nextInvestmentID++
	inv.ID = s.nextInvestmentID
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	s.investments[inv.ID] = copyInvestment(inv)
}

func (s *Store) insertTransaction(txn *models.Transaction) {
	s.nextTransactionID++
	txn.ID = s.nextTransactionID
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	s.transactions[txn.ID] = copyTransaction(txn)
}

func (r *InvestmentRepository) OpenWithDebit(ctx context.Context, inv *models.Investment, debit *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[inv.UserID]
	if !ok || u.Balance < inv.Amount {
		return repositories.ErrInsufficientBalance
	}
	u.Balance -= inv.Amount
	r.s.insertInvestment(inv)
	id := inv.ID
	debit.InvestmentID = &id
	r.s.insertTransaction(debit)
	return nil
}

func (r *InvestmentRepository) GetByID(ctx context.Context, id uint) (*models.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.investments[id]
	if !ok {
		return nil, repositories.ErrInvestmentNotFound
	}
	return copyInvestment(inv), nil
}

func (r *InvestmentRepository) ListByUser(ctx context.Context, userID uint) ([]models.Investment, error) {
	return r.list(func(inv *models.Investment) bool { return inv.UserID == userID })
}

func (r *InvestmentRepository) ListByPhone(ctx context.Context, phone string) ([]models.Investment, error) {
	return r.list(func(inv *models.Investment) bool {
		return phone != "" && strings.Contains(inv.UserPhone, phone)
	})
}

func (r *InvestmentRepository) ListAll(ctx context.Context) ([]models.Investment, error) {
	return r.list(func(*models.Investment) bool { return true })
}

func (r *InvestmentRepository) ListExpired(ctx context.Context, now time.Time) ([]models.Investment, error) {
	return r.list(func(inv *models.Investment) bool {
		return inv.Status == models.InvestmentActive && !inv.ExpiryDate.After(now)
	})
}

func (r *InvestmentRepository) ListPendingPayments(ctx context.Context) ([]models.Investment, error) {
	return r.list(func(inv *models.Investment) bool {
		return inv.Status == models.InvestmentActive && inv.PaymentStatus == models.PaymentPending
	})
}

func (r *InvestmentRepository) ListPendingWithdrawals(ctx context.Context) ([]models.Investment, error) {
	return r.list(func(inv *models.Investment) bool {
		return inv.Status == models.InvestmentCompleted && inv.WithdrawalStatus == models.WithdrawalPending
	})
}

func (r *InvestmentRepository) ListCompletedSince(ctx context.Context, since *time.Time) ([]models.Investment, error) {
	return r.list(func(inv *models.Investment) bool {
		if inv.Status != models.InvestmentCompleted {
			return false
		}
		if since == nil {
			return true
		}
		return inv.ProfitPaidAt != nil && !inv.ProfitPaidAt.Before(*since)
	})
}

func (r *InvestmentRepository) ListUnreconciled(ctx context.Context) ([]models.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	credited := make(map[uint]bool)
	for _, t := range r.s.transactions {
		if t.Type == models.TxnProfit && t.InvestmentID != nil {
			credited[*t.InvestmentID] = true
		}
	}
	var out []models.Investment
	for _, inv := range r.s.investments {
		if inv.Status == models.InvestmentCompleted && inv.ProfitPaidAt != nil && !credited[inv.ID] {
			out = append(out, *copyInvestment(inv))
		}
	}
	return out, nil
}

func (r *InvestmentRepository) list(keep func(*models.Investment) bool) ([]models.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Investment
	for _, inv := range r.s.investments {
		if keep(inv) {
			out = append(out, *copyInvestment(inv))
		}
	}
	sortInvestmentsDesc(out)
	return out, nil
}

func (r *InvestmentRepository) Claim(ctx context.Context, id uint, now time.Time) (*models.Investment, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.investments[id]
	if !ok {
		return nil, false, nil
	}
	if inv.Status != models.InvestmentActive && inv.Status != models.InvestmentTrading {
		return nil, false, nil
	}
	inv.Status = models.InvestmentCompleted
	inv.WithdrawalStatus = models.WithdrawalPending
	paidAt := now
	inv.ProfitPaidAt = &paidAt
	return copyInvestment(inv), true, nil
}

func (r *InvestmentRepository) ApprovePayment(ctx context.Context, id uint, now time.Time) (*models.Investment, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.investments[id]
	if !ok || inv.Status != models.InvestmentActive || inv.PaymentStatus != models.PaymentPending {
		return nil, false, nil
	}
	inv.PaymentStatus = models.PaymentPaid
	approvedAt := now
	inv.PaymentApprovedAt = &approvedAt
	return copyInvestment(inv), true, nil
}

func (r *InvestmentRepository) ApproveWithdrawal(ctx context.Context, id uint, payout *models.Transaction, now time.Time) (*models.Investment, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.investments[id]
	if !ok || inv.Status != models.InvestmentCompleted || inv.WithdrawalStatus != models.WithdrawalPending {
		return nil, false, nil
	}
	inv.WithdrawalStatus = models.WithdrawalPaid
	approvedAt := now
	inv.WithdrawalApprovedAt = &approvedAt

	invID := id
	payout.InvestmentID = &invID
	r.s.insertTransaction(payout)
	if u, ok := r.s.users[payout.UserID]; ok {
		u.Balance -= payout.Amount
	}
	return copyInvestment(inv), true, nil
}

func (r *InvestmentRepository) TransitionStatus(ctx context.Context, id uint, from []string, to string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.investments[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if inv.Status == f {
			inv.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (r *InvestmentRepository) BackfillCompleted(ctx context.Context, id uint, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.investments[id]
	if !ok || inv.Status != models.InvestmentCompleted {
		return nil
	}
	if inv.WithdrawalStatus == "" {
		inv.WithdrawalStatus = models.WithdrawalPending
	}
	if inv.ProfitPaidAt == nil {
		paidAt := now
		inv.ProfitPaidAt = &paidAt
	}
	return nil
}

func (r *InvestmentRepository) Stats(ctx context.Context, now time.Time) (*repositories.InvestmentStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stats := &repositories.InvestmentStats{}
	for _, inv := range r.s.investments {
		stats.Total++
		stats.TotalProfit += inv.ProfitAmount
		if inv.Status == models.InvestmentActive {
			stats.Active++
			if inv.PaymentStatus == models.PaymentPending {
				stats.PendingPayments++
			}
			if !inv.ExpiryDate.After(now) {
				stats.ExpiredActive++
			}
		}
	}
	return stats, nil
}

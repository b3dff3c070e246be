package memory

import (
	"context"
	"time"

	"camillo/internal/models"
	"camillo/internal/repositories"
)

type TransactionRepository struct {
	s *Store
}

func (r *TransactionRepository) Append(ctx context.Context, txn *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.insertTransaction(txn)
	if txn.Status == models.TxnCompleted {
		if u, ok := r.s.users[txn.UserID]; ok {
			u.Balance += txn.Delta()
		}
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.transactions[id]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	return copyTransaction(t), nil
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Transaction, error) {
	return r.list(func(t *models.Transaction) bool { return t.UserID == userID })
}

func (r *TransactionRepository) ListAll(ctx context.Context) ([]models.Transaction, error) {
	return r.list(func(*models.Transaction) bool { return true })
}

func (r *TransactionRepository) ListPendingWithdrawals(ctx context.Context) ([]models.Transaction, error) {
	return r.list(func(t *models.Transaction) bool {
		return t.Type == models.TxnWithdrawal && t.Status == models.TxnPending
	})
}

func (r *TransactionRepository) ListProfitsSince(ctx context.Context, since time.Time) ([]models.Transaction, error) {
	return r.list(func(t *models.Transaction) bool {
		return t.Type == models.TxnProfit && !t.CreatedAt.Before(since)
	})
}

func (r *TransactionRepository) list(keep func(*models.Transaction) bool) ([]models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Transaction
	for _, t := range r.s.transactions {
		if keep(t) {
			out = append(out, *copyTransaction(t))
		}
	}
	sortTransactionsDesc(out)
	return out, nil
}

func (r *TransactionRepository) AppendProfitOnce(ctx context.Context, txn *models.Transaction) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if txn.InvestmentID != nil {
		for _, t := range r.s.transactions {
			if t.Type == models.TxnProfit && t.InvestmentID != nil && *t.InvestmentID == *txn.InvestmentID {
				return false, nil
			}
		}
	}
	r.s.insertTransaction(txn)
	if u, ok := r.s.users[txn.UserID]; ok {
		u.Balance += txn.Delta()
	}
	return true, nil
}

func (r *TransactionRepository) Settle(ctx context.Context, id uint, status string) (*models.Transaction, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.transactions[id]
	if !ok || t.Type != models.TxnWithdrawal || t.Status != models.TxnPending {
		return nil, false, nil
	}
	t.Status = status
	if status == models.TxnCompleted {
		if u, ok := r.s.users[t.UserID]; ok {
			u.Balance -= t.Amount
		}
	}
	return copyTransaction(t), true, nil
}

func (r *TransactionRepository) Totals(ctx context.Context) (*repositories.LedgerTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	totals := &repositories.LedgerTotals{}
	for _, t := range r.s.transactions {
		if t.Status != models.TxnCompleted {
			continue
		}
		switch t.Type {
		case models.TxnDeposit:
			totals.Deposits += t.Amount
		case models.TxnWithdrawal:
			totals.Withdrawals += t.Amount
		case models.TxnProfit:
			totals.Profits += t.Amount
		}
	}
	return totals, nil
}

func (r *TransactionRepository) CompletedSumByUser(ctx context.Context, userID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var sum int64
	for _, t := range r.s.transactions {
		if t.UserID == userID && t.Status == models.TxnCompleted {
			sum += t.Delta()
		}
	}
	return sum, nil
}

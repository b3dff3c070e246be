package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"camillo/internal/models"

	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Append(ctx context.Context, txn *models.Transaction) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		if txn.Status != models.TxnCompleted {
			return nil
		}
		return tx.Model(&models.User{}).
			Where("id = ?", txn.UserID).
			Update("balance", gorm.Expr("balance + ?", txn.Delta())).Error
	})
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Transaction, error) {
	var out []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return out, nil
}

func (r *transactionRepository) ListAll(ctx context.Context) ([]models.Transaction, error) {
	var out []models.Transaction
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return out, nil
}

func (r *transactionRepository) ListPendingWithdrawals(ctx context.Context) ([]models.Transaction, error) {
	var out []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("type = ? AND status = ?", models.TxnWithdrawal, models.TxnPending).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending withdrawals: %w", err)
	}
	return out, nil
}

func (r *transactionRepository) ListProfitsSince(ctx context.Context, since time.Time) ([]models.Transaction, error) {
	var out []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("type = ? AND created_at >= ?", models.TxnProfit, since).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list profit transactions: %w", err)
	}
	return out, nil
}

// AppendProfitOnce leans on the partial unique index over profit rows:
// the duplicate-key failure from a second credit of the same investment
// rolls the whole write back and is reported as applied=false.
func (r *transactionRepository) AppendProfitOnce(ctx context.Context, txn *models.Transaction) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", txn.UserID).
			Update("balance", gorm.Expr("balance + ?", txn.Delta())).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("failed to append profit entry: %w", err)
	}
	return true, nil
}

func (r *transactionRepository) Settle(ctx context.Context, id uint, status string) (*models.Transaction, bool, error) {
	matched := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND type = ? AND status = ?", id, models.TxnWithdrawal, models.TxnPending).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		matched = true
		if status != models.TxnCompleted {
			return nil
		}
		var txn models.Transaction
		if err := tx.First(&txn, id).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", txn.UserID).
			Update("balance", gorm.Expr("balance - ?", txn.Amount)).Error
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to settle withdrawal: %w", err)
	}
	if !matched {
		return nil, false, nil
	}
	txn, err := r.GetByID(ctx, id)
	return txn, true, err
}

func (r *transactionRepository) Totals(ctx context.Context) (*LedgerTotals, error) {
	totals := &LedgerTotals{}
	for _, row := range []struct {
		kind string
		dest *int64
	}{
		{models.TxnDeposit, &totals.Deposits},
		{models.TxnWithdrawal, &totals.Withdrawals},
		{models.TxnProfit, &totals.Profits},
	} {
		if err := r.db.WithContext(ctx).Model(&models.Transaction{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("type = ? AND status = ?", row.kind, models.TxnCompleted).
			Scan(row.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to sum %s transactions: %w", row.kind, err)
		}
	}
	return totals, nil
}

func (r *transactionRepository) CompletedSumByUser(ctx context.Context, userID uint) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN -amount ELSE amount END), 0)", models.TxnWithdrawal).
		Where("user_id = ? AND status = ?", userID, models.TxnCompleted).
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger for user: %w", err)
	}
	return sum, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"camillo/internal/models"

	"gorm.io/gorm"
)

type investmentRepository struct {
	db *gorm.DB
}

func NewInvestmentRepository(db *gorm.DB) InvestmentRepository {
	return &investmentRepository{db: db}
}

func (r *investmentRepository) Create(ctx context.Context, inv *models.Investment) error {
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}
	return nil
}

func (r *investmentRepository) OpenWithDebit(ctx context.Context, inv *models.Investment, debit *models.Transaction) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND balance >= ?", inv.UserID, inv.Amount).
			Update("balance", gorm.Expr("balance - ?", inv.Amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientBalance
		}
		if err := tx.Create(inv).Error; err != nil {
			return err
		}
		debit.InvestmentID = &inv.ID
		return tx.Create(debit).Error
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return ErrInsufficientBalance
		}
		return fmt.Errorf("failed to open investment: %w", err)
	}
	return nil
}

func (r *investmentRepository) GetByID(ctx context.Context, id uint) (*models.Investment, error) {
	var inv models.Investment
	if err := r.db.WithContext(ctx).First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvestmentNotFound
		}
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}
	return &inv, nil
}

func (r *investmentRepository) ListByUser(ctx context.Context, userID uint) ([]models.Investment, error) {
	var out []models.Investment
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	return out, nil
}

func (r *investmentRepository) ListByPhone(ctx context.Context, phone string) ([]models.Investment, error) {
	var out []models.Investment
	if err := r.db.WithContext(ctx).
		Where("user_phone LIKE ?", "%"+phone+"%").
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list investments by phone: %w", err)
	}
	return out, nil
}

func (r *investmentRepository) ListAll(ctx context.Context) ([]models.Investment, error) {
	var out []models.Investment
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	return out, nil
}

func (r *investmentRepository) ListExpired(ctx context.Context, now time.Time) ([]models.Investment, error) {
	var out []models.Investment
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expiry_date <= ?", models.InvestmentActive, now).
		Order("expiry_date ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list expired investments: %w", err)
	}
	return out, nil
}

func (r *investmentRepository) ListPendingPayments(ctx context.Context) ([]models.Investment, error) {
	var out []models.Investment
	if err := r.db.WithContext(ctx).
		Where("status = ? AND payment_status = ?", models.InvestmentActive, models.PaymentPending).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending payments: %w", err)
	}
	return out, nil
}

func (r *investmentRepository) ListPendingWithdrawals(ctx context.Context) ([]models.Investment, error) {
	var out []models.Investment
	if err := r.db.WithContext(ctx).
		Where("status = ? AND withdrawal_status = ?", models.InvestmentCompleted, models.WithdrawalPending).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending withdrawals: %w", err)
	}
	return out, nil
}

func (r *investmentRepository) ListCompletedSince(ctx context.Context, since *time.Time) ([]models.Investment, error) {
	q := r.db.WithContext(ctx).Where("status = ?", models.InvestmentCompleted)
	if since != nil {
		q = q.Where("profit_paid_at >= ?", *since)
	}
	var out []models.Investment
	if err := q.Order("profit_paid_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list completed investments: %w", err)
	}
	return out, nil
}

func (r *investmentRepository) ListUnreconciled(ctx context.Context) ([]models.Investment, error) {
	var out []models.Investment
	if err := r.db.WithContext(ctx).
		Where("status = ? AND profit_paid_at IS NOT NULL", models.InvestmentCompleted).
		Where("NOT EXISTS (SELECT 1 FROM transactions t WHERE t.investment_id = investments.id AND t.type = ?)", models.TxnProfit).
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list unreconciled investments: %w", err)
	}
	return out, nil
}

func (r *investmentRepository) Claim(ctx context.Context, id uint, now time.Time) (*models.Investment, bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Investment{}).
		Where("id = ? AND status IN ?", id, []string{models.InvestmentActive, models.InvestmentTrading}).
		Updates(map[string]interface{}{
			"status":            models.InvestmentCompleted,
			"withdrawal_status": models.WithdrawalPending,
			"profit_paid_at":    now,
		})
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to claim investment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	inv, err := r.GetByID(ctx, id)
	return inv, true, err
}

func (r *investmentRepository) ApprovePayment(ctx context.Context, id uint, now time.Time) (*models.Investment, bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Investment{}).
		Where("id = ? AND status = ? AND payment_status = ?", id, models.InvestmentActive, models.PaymentPending).
		Updates(map[string]interface{}{
			"payment_status":      models.PaymentPaid,
			"payment_approved_at": now,
		})
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to approve payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	inv, err := r.GetByID(ctx, id)
	return inv, true, err
}

func (r *investmentRepository) ApproveWithdrawal(ctx context.Context, id uint, payout *models.Transaction, now time.Time) (*models.Investment, bool, error) {
	matched := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Investment{}).
			Where("id = ? AND status = ? AND withdrawal_status = ?", id, models.InvestmentCompleted, models.WithdrawalPending).
			Updates(map[string]interface{}{
				"withdrawal_status":      models.WithdrawalPaid,
				"withdrawal_approved_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		matched = true
		payout.InvestmentID = &id
		if err := tx.Create(payout).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", payout.UserID).
			Update("balance", gorm.Expr("balance - ?", payout.Amount)).Error
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to approve withdrawal: %w", err)
	}
	if !matched {
		return nil, false, nil
	}
	inv, err := r.GetByID(ctx, id)
	return inv, true, err
}

func (r *investmentRepository) TransitionStatus(ctx context.Context, id uint, from []string, to string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Investment{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition status: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *investmentRepository) BackfillCompleted(ctx context.Context, id uint, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Investment{}).
		Where("id = ? AND status = ?", id, models.InvestmentCompleted).
		Updates(map[string]interface{}{
			"withdrawal_status": gorm.Expr("CASE WHEN withdrawal_status = '' OR withdrawal_status IS NULL THEN ? ELSE withdrawal_status END", models.WithdrawalPending),
			"profit_paid_at":    gorm.Expr("COALESCE(profit_paid_at, ?)", now),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to backfill investment: %w", res.Error)
	}
	return nil
}

func (r *investmentRepository) Stats(ctx context.Context, now time.Time) (*InvestmentStats, error) {
	db := r.db.WithContext(ctx)
	var stats InvestmentStats
	if err := db.Model(&models.Investment{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count investments: %w", err)
	}
	if err := db.Model(&models.Investment{}).
		Where("status = ?", models.InvestmentActive).
		Count(&stats.Active).Error; err != nil {
		return nil, fmt.Errorf("failed to count active investments: %w", err)
	}
	if err := db.Model(&models.Investment{}).
		Select("COALESCE(SUM(profit_amount), 0)").
		Scan(&stats.TotalProfit).Error; err != nil {
		return nil, fmt.Errorf("failed to sum profit: %w", err)
	}
	if err := db.Model(&models.Investment{}).
		Where("status = ? AND payment_status = ?", models.InvestmentActive, models.PaymentPending).
		Count(&stats.PendingPayments).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending payments: %w", err)
	}
	if err := db.Model(&models.Investment{}).
		Where("status = ? AND expiry_date <= ?", models.InvestmentActive, now).
		Count(&stats.ExpiredActive).Error; err != nil {
		return nil, fmt.Errorf("failed to count expired investments: %w", err)
	}
	return &stats, nil
}

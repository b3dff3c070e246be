// Package admin implements the administrative operations: balance
// adjustment, user lookup and the dashboard aggregates. Balance
// adjustments are expressed as ledger deltas; a positive adjustment
// also opens an admin-credited investment for the user.
package admin

import (
	"context"
	"errors"
	"time"

	"camillo/internal/models"
	"camillo/internal/repositories"
	"camillo/internal/repositories/cache"
	"camillo/internal/services/investment"
	"camillo/internal/services/ledger"
)

// Service errors
var (
	ErrNoChange = errors.New("balance unchanged")
)

const notificationWindow = 48 * time.Hour

// Notification tells a user an investment of theirs paid out.
type Notification struct {
	InvestmentID uint      `json:"investment_id"`
	Amount       int64     `json:"amount"`
	Profit       int64     `json:"profit"`
	PaidAt       time.Time `json:"paid_at"`
	Message      string    `json:"message"`
}

// Digest bundles everything waiting on an admin into one response:
// payments to confirm, recent payouts and withdrawals to disburse.
type Digest struct {
	PendingPayments    []models.Investment  `json:"pending_payments"`
	RecentProfits      []models.Transaction `json:"recent_profits"`
	PendingWithdrawals []models.Investment  `json:"pending_withdrawals"`
}

// DashboardStats aggregates the admin dashboard counters.
type DashboardStats struct {
	Investments *repositories.InvestmentStats `json:"investments"`
	Ledger      *repositories.LedgerTotals    `json:"ledger"`
	Users       int64                         `json:"total_users"`
}

type Service interface {
	// AdjustBalance sets the user's balance to newBalance by applying
	// the delta through the ledger. A positive delta opens an
	// admin-credited investment; a negative delta records a completed
	// withdrawal.
	AdjustBalance(ctx context.Context, userID uint, newBalance int64) (*models.User, error)

	GetUser(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SearchUsersByPhone(ctx context.Context, fragment string) ([]models.User, error)

	// Notifications returns recent payouts for the user.
	Notifications(ctx context.Context, userID uint) ([]Notification, error)

	// AdminDigest returns the pending-work bundle for admins.
	AdminDigest(ctx context.Context) (*Digest, error)

	Stats(ctx context.Context) (*DashboardStats, error)
}

type service struct {
	users       repositories.UserRepository
	investments investment.Service
	ledger      ledger.Service
	cache       *cache.CacheService
}

// NewService creates a new admin service. cache may be nil.
func NewService(
	users repositories.UserRepository,
	investments investment.Service,
	ledgerSvc ledger.Service,
	cacheSvc *cache.CacheService,
) Service {
	if users == nil {
		panic("user repository is required")
	}
	if investments == nil {
		panic("investment service is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	return &service{
		users:       users,
		investments: investments,
		ledger:      ledgerSvc,
		cache:       cacheSvc,
	}
}

func (s *service) AdjustBalance(ctx context.Context, userID uint, newBalance int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	delta := newBalance - user.Balance
	if delta == 0 {
		return nil, ErrNoChange
	}

	if delta > 0 {
		txn := &models.Transaction{
			UserID:    userID,
			Type:      models.TxnDeposit,
			Amount:    delta,
			Status:    models.TxnCompleted,
			UserName:  user.Name,
			UserPhone: user.Phone,
		}
		if err := s.ledger.Apply(ctx, txn); err != nil {
			return nil, err
		}
		// A credited top-up starts working immediately as a short
		// admin-funded position.
		if _, err := s.investments.OpenFromAdminCredit(ctx, user, delta); err != nil {
			return nil, err
		}
	} else {
		txn := &models.Transaction{
			UserID:    userID,
			Type:      models.TxnWithdrawal,
			Amount:    -delta,
			Status:    models.TxnCompleted,
			UserName:  user.Name,
			UserPhone: user.Phone,
		}
		if err := s.ledger.Apply(ctx, txn); err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		_ = s.cache.InvalidateUser(ctx, userID)
		_ = s.cache.InvalidateStats(ctx)
	}
	return s.users.GetByID(ctx, userID)
}

func (s *service) GetUser(ctx context.Context, id uint) (*models.User, error) {
	if s.cache != nil {
		if user, err := s.cache.GetUser(ctx, s.cache.GenerateKey("user", "id", id)); err == nil {
			return user, nil
		}
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.CacheUser(ctx, user)
	}
	return user, nil
}

func (s *service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *service) SearchUsersByPhone(ctx context.Context, fragment string) ([]models.User, error) {
	return s.users.SearchByPhone(ctx, fragment)
}

func (s *service) Notifications(ctx context.Context, userID uint) ([]Notification, error) {
	since := time.Now().Add(-notificationWindow)
	completed, err := s.investments.ListCompletedSince(ctx, &since)
	if err != nil {
		return nil, err
	}

	out := make([]Notification, 0)
	for i := range completed {
		inv := &completed[i]
		if inv.UserID != userID || inv.ProfitPaidAt == nil {
			continue
		}
		out = append(out, Notification{
			InvestmentID: inv.ID,
			Amount:       inv.Amount,
			Profit:       inv.ProfitAmount,
			PaidAt:       *inv.ProfitPaidAt,
			Message:      "Your investment has matured and the payout was credited to your balance.",
		})
	}
	return out, nil
}

func (s *service) AdminDigest(ctx context.Context) (*Digest, error) {
	pending, err := s.investments.ListPendingPayments(ctx)
	if err != nil {
		return nil, err
	}
	profits, err := s.ledger.ListProfitsSince(ctx, time.Now().Add(-notificationWindow))
	if err != nil {
		return nil, err
	}
	withdrawals, err := s.investments.ListPendingWithdrawals(ctx)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		pending = []models.Investment{}
	}
	if profits == nil {
		profits = []models.Transaction{}
	}
	if withdrawals == nil {
		withdrawals = []models.Investment{}
	}
	return &Digest{
		PendingPayments:    pending,
		RecentProfits:      profits,
		PendingWithdrawals: withdrawals,
	}, nil
}

func (s *service) Stats(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		var cached DashboardStats
		if found, err := s.cache.GetStatsSnapshot(ctx, &cached); err == nil && found {
			return &cached, nil
		}
	}

	invStats, err := s.investments.Stats(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.ledger.Totals(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		Investments: invStats,
		Ledger:      totals,
		Users:       int64(len(users)),
	}
	if s.cache != nil {
		_ = s.cache.CacheStats(ctx, stats)
	}
	return stats, nil
}

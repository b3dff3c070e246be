package investment

import (
	"context"
	"errors"
	"math"
	"time"

	"camillo/internal/metrics"
	"camillo/internal/models"
	"camillo/internal/repositories"
	"camillo/internal/services/ledger"

	"github.com/google/uuid"
)

type service struct {
	investments repositories.InvestmentRepository
	users       repositories.UserRepository
	ledger      ledger.Service
}

// NewService creates a new investment service.
func NewService(
	investments repositories.InvestmentRepository,
	users repositories.UserRepository,
	ledgerSvc ledger.Service,
) Service {
	if investments == nil {
		panic("investment repository is required")
	}
	if users == nil {
		panic("user repository is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	return &service{
		investments: investments,
		users:       users,
		ledger:      ledgerSvc,
	}
}

// ProfitFor returns the profit credited when an investment of the
// given principal matures.
func ProfitFor(amount int64) int64 {
	return int64(math.Round(float64(amount) * ProfitRate))
}

func (s *service) Open(ctx context.Context, userID uint, amount int64, testMode bool) (*models.Investment, error) {
	if amount < MinimumInvestment {
		return nil, ErrAmountTooSmall
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	period := NormalPeriod
	if testMode {
		period = TestPeriod
	}
	now := time.Now()
	inv := &models.Investment{
		UserID:        userID,
		Amount:        amount,
		Status:        models.InvestmentActive,
		PaymentStatus: models.PaymentPending,
		ProfitAmount:  ProfitFor(amount),
		TradingPeriod: int(period / time.Hour),
		ExpiryDate:    now.Add(period),
		CreatedAt:     now,
		UserName:      user.Name,
		UserPhone:     user.Phone,
	}
	debit := &models.Transaction{
		UserID:    userID,
		Type:      models.TxnWithdrawal,
		Amount:    amount,
		Status:    models.TxnCompleted,
		Reference: uuid.NewString(),
		UserName:  user.Name,
		UserPhone: user.Phone,
	}
	if err := s.investments.OpenWithDebit(ctx, inv, debit); err != nil {
		if errors.Is(err, repositories.ErrInsufficientBalance) {
			return nil, ErrInsufficientBalance
		}
		return nil, err
	}

	metrics.InvestmentsOpenedTotal.Inc()
	metrics.TransactionsTotal.WithLabelValues(models.TxnWithdrawal).Inc()
	return inv, nil
}

func (s *service) OpenFromAdminCredit(ctx context.Context, user *models.User, amount int64) (*models.Investment, error) {
	if amount <= 0 {
		return nil, ErrAmountTooSmall
	}
	now := time.Now()
	approvedAt := now
	inv := &models.Investment{
		UserID:            user.ID,
		Amount:            amount,
		Status:            models.InvestmentActive,
		PaymentStatus:     models.PaymentPaid,
		ProfitAmount:      ProfitFor(amount),
		TradingPeriod:     int(AdminCreditPeriod / time.Hour),
		ExpiryDate:        now.Add(AdminCreditPeriod),
		CreatedAt:         now,
		PaymentApprovedAt: &approvedAt,
		UserName:          user.Name,
		UserPhone:         user.Phone,
	}
	if err := s.investments.Create(ctx, inv); err != nil {
		return nil, err
	}
	metrics.InvestmentsOpenedTotal.Inc()
	return inv, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Investment, error) {
	return s.investments.GetByID(ctx, id)
}

func (s *service) ListByUser(ctx context.Context, userID uint) ([]models.Investment, error) {
	return s.investments.ListByUser(ctx, userID)
}

func (s *service) ListByPhone(ctx context.Context, phone string) ([]models.Investment, error) {
	return s.investments.ListByPhone(ctx, phone)
}

func (s *service) ListAll(ctx context.Context) ([]models.Investment, error) {
	return s.investments.ListAll(ctx)
}

func (s *service) ListExpired(ctx context.Context) ([]models.Investment, error) {
	return s.investments.ListExpired(ctx, time.Now())
}

func (s *service) ListPendingPayments(ctx context.Context) ([]models.Investment, error) {
	return s.investments.ListPendingPayments(ctx)
}

func (s *service) ListPendingWithdrawals(ctx context.Context) ([]models.Investment, error) {
	return s.investments.ListPendingWithdrawals(ctx)
}

func (s *service) ListCompletedSince(ctx context.Context, since *time.Time) ([]models.Investment, error) {
	return s.investments.ListCompletedSince(ctx, since)
}

func (s *service) ApprovePayment(ctx context.Context, id uint) (*models.Investment, error) {
	_, matched, err := s.investments.ApprovePayment(ctx, id, time.Now())
	if err != nil {
		return nil, err
	}
	if !matched {
		if _, err := s.investments.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrPaymentNotApprovable
	}

	// Payment approval also completes the investment. Losing the claim
	// here means the expiry sweep got there first, which is fine: the
	// post-condition holds either way.
	inv, err := s.ledger.CreditInvestment(ctx, id)
	if err != nil {
		if errors.Is(err, ledger.ErrAlreadyClaimed) {
			return s.investments.GetByID(ctx, id)
		}
		return nil, err
	}
	return inv, nil
}

func (s *service) ApproveWithdrawal(ctx context.Context, id uint) (*models.Investment, error) {
	inv, err := s.investments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payout := &models.Transaction{
		UserID:    inv.UserID,
		Type:      models.TxnWithdrawal,
		Amount:    inv.Payout(),
		Status:    models.TxnCompleted,
		Reference: uuid.NewString(),
		UserName:  inv.UserName,
		UserPhone: inv.UserPhone,
	}
	updated, matched, err := s.investments.ApproveWithdrawal(ctx, id, payout, time.Now())
	if err != nil {
		return nil, err
	}
	if !matched {
		if inv.WithdrawalStatus == models.WithdrawalPaid {
			return nil, ErrWithdrawalAlreadyPaid
		}
		return nil, ErrWithdrawalNotPending
	}
	metrics.TransactionsTotal.WithLabelValues(models.TxnWithdrawal).Inc()
	return updated, nil
}

func (s *service) ForceStatus(ctx context.Context, id uint, status string) (*models.Investment, error) {
	switch status {
	case models.InvestmentCompleted:
		inv, err := s.ledger.CreditInvestment(ctx, id)
		if err == nil {
			return inv, nil
		}
		if errors.Is(err, ledger.ErrAlreadyClaimed) {
			// Already credited once; only fill in missing bookkeeping.
			if err := s.investments.BackfillCompleted(ctx, id, time.Now()); err != nil {
				return nil, err
			}
			return s.investments.GetByID(ctx, id)
		}
		return nil, err
	case models.InvestmentTrading:
		return s.transition(ctx, id, []string{models.InvestmentActive}, status)
	case models.InvestmentActive:
		return s.transition(ctx, id, []string{models.InvestmentPending}, status)
	case models.InvestmentPending:
		return nil, ErrInvalidTransition
	default:
		return nil, ErrInvalidStatus
	}
}

func (s *service) transition(ctx context.Context, id uint, from []string, to string) (*models.Investment, error) {
	matched, err := s.investments.TransitionStatus(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	if !matched {
		if _, err := s.investments.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}
	return s.investments.GetByID(ctx, id)
}

func (s *service) Stats(ctx context.Context) (*repositories.InvestmentStats, error) {
	return s.investments.Stats(ctx, time.Now())
}

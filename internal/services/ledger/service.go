package ledger

import (
	"context"
	"fmt"
	"log"
	"time"

	"camillo/internal/metrics"
	"camillo/internal/models"
	"camillo/internal/repositories"

	"github.com/google/uuid"
)

type service struct {
	transactions repositories.TransactionRepository
	investments  repositories.InvestmentRepository
	users        repositories.UserRepository
}

// NewService creates a new ledger service.
func NewService(
	transactions repositories.TransactionRepository,
	investments repositories.InvestmentRepository,
	users repositories.UserRepository,
) Service {
	if transactions == nil {
		panic("transaction repository is required")
	}
	if investments == nil {
		panic("investment repository is required")
	}
	if users == nil {
		panic("user repository is required")
	}
	return &service{
		transactions: transactions,
		investments:  investments,
		users:        users,
	}
}

func (s *service) Apply(ctx context.Context, txn *models.Transaction) error {
	if txn.Amount <= 0 {
		return ErrInvalidAmount
	}
	switch txn.Type {
	case models.TxnDeposit, models.TxnWithdrawal, models.TxnProfit:
	default:
		return ErrInvalidType
	}
	if txn.Status == "" {
		txn.Status = models.TxnCompleted
	}
	if txn.Reference == "" {
		txn.Reference = uuid.NewString()
	}

	if _, err := s.users.GetByID(ctx, txn.UserID); err != nil {
		return err
	}

	if err := s.transactions.Append(ctx, txn); err != nil {
		return err
	}
	if txn.Status == models.TxnCompleted {
		metrics.TransactionsTotal.WithLabelValues(txn.Type).Inc()
	}
	return nil
}

func (s *service) CreditInvestment(ctx context.Context, id uint) (*models.Investment, error) {
	inv, err := s.investments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	claimed, matched, err := s.investments.Claim(ctx, id, time.Now())
	if err != nil {
		return nil, err
	}
	if !matched {
		if inv.Status == models.InvestmentCompleted {
			return nil, ErrAlreadyClaimed
		}
		return nil, ErrNotClaimable
	}

	txn := &models.Transaction{
		UserID:       claimed.UserID,
		Type:         models.TxnProfit,
		Amount:       claimed.Payout(),
		Status:       models.TxnCompleted,
		Reference:    uuid.NewString(),
		InvestmentID: &claimed.ID,
		UserName:     claimed.UserName,
		UserPhone:    claimed.UserPhone,
	}
	applied, err := s.transactions.AppendProfitOnce(ctx, txn)
	if err != nil {
		// The claim stuck but the credit did not; Reconcile repairs this.
		log.Printf("ledger: claimed investment %d but credit failed: %v", claimed.ID, err)
		return nil, fmt.Errorf("failed to credit claimed investment %d: %w", claimed.ID, err)
	}
	if !applied {
		// A reconciler on another instance already wrote the credit
		// between our claim and this append.
		return claimed, nil
	}

	metrics.TransactionsTotal.WithLabelValues(models.TxnProfit).Inc()
	metrics.ProfitsCreditedTotal.Inc()
	return claimed, nil
}

func (s *service) RequestWithdrawal(ctx context.Context, userID uint, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Pending withdrawals reserve balance so a user cannot queue more
	// than they hold.
	pending, err := s.transactions.ListPendingWithdrawals(ctx)
	if err != nil {
		return nil, err
	}
	reserved := int64(0)
	for _, p := range pending {
		if p.UserID == userID {
			reserved += p.Amount
		}
	}
	if user.Balance-reserved < amount {
		return nil, ErrInsufficientBalance
	}

	txn := &models.Transaction{
		UserID:    userID,
		Type:      models.TxnWithdrawal,
		Amount:    amount,
		Status:    models.TxnPending,
		Reference: uuid.NewString(),
		UserName:  user.Name,
		UserPhone: user.Phone,
	}
	if err := s.transactions.Append(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) SettleWithdrawal(ctx context.Context, id uint, approve bool) (*models.Transaction, error) {
	status := models.TxnFailed
	if approve {
		status = models.TxnCompleted
	}
	txn, matched, err := s.transactions.Settle(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if !matched {
		if _, err := s.transactions.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadySettled
	}
	if approve {
		metrics.TransactionsTotal.WithLabelValues(models.TxnWithdrawal).Inc()
	}
	return txn, nil
}

func (s *service) Reconcile(ctx context.Context) (int, error) {
	stuck, err := s.investments.ListUnreconciled(ctx)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for i := range stuck {
		inv := &stuck[i]
		txn := &models.Transaction{
			UserID:       inv.UserID,
			Type:         models.TxnProfit,
			Amount:       inv.Payout(),
			Status:       models.TxnCompleted,
			Reference:    uuid.NewString(),
			InvestmentID: &inv.ID,
			UserName:     inv.UserName,
			UserPhone:    inv.UserPhone,
		}
		// Conditional write: the listing above is only a hint, and two
		// reconcilers may both see the same stuck investment. Only the
		// one whose append lands counts it as repaired.
		applied, err := s.transactions.AppendProfitOnce(ctx, txn)
		if err != nil {
			log.Printf("ledger: reconcile failed for investment %d: %v", inv.ID, err)
			continue
		}
		if applied {
			repaired++
		}
	}
	if repaired > 0 {
		log.Printf("ledger: reconciled %d missing profit credits", repaired)
	}
	return repaired, nil
}

func (s *service) VerifyUser(ctx context.Context, userID uint) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	sum, err := s.transactions.CompletedSumByUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Balance != sum {
		return fmt.Errorf("user %d balance %d, ledger sum %d: %w",
			userID, user.Balance, sum, ErrLedgerInconsistency)
	}
	return nil
}

func (s *service) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	return s.transactions.GetByID(ctx, id)
}

func (s *service) ListByUser(ctx context.Context, userID uint) ([]models.Transaction, error) {
	return s.transactions.ListByUser(ctx, userID)
}

func (s *service) ListAll(ctx context.Context) ([]models.Transaction, error) {
	return s.transactions.ListAll(ctx)
}

func (s *service) ListPendingWithdrawals(ctx context.Context) ([]models.Transaction, error) {
	return s.transactions.ListPendingWithdrawals(ctx)
}

func (s *service) ListProfitsSince(ctx context.Context, since time.Time) ([]models.Transaction, error) {
	return s.transactions.ListProfitsSince(ctx, since)
}

func (s *service) Totals(ctx context.Context) (*repositories.LedgerTotals, error) {
	return s.transactions.Totals(ctx)
}

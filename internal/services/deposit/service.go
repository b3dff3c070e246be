// Package deposit implements manual deposit requests: a client asks
// for a top-up, an admin approves or rejects it. Approval credits the
// balance through the ledger service only.
package deposit

import (
	"context"
	"errors"

	"camillo/internal/metrics"
	"camillo/internal/models"
	"camillo/internal/repositories"
	"camillo/internal/services/ledger"
)

// Service errors
var (
	ErrInvalidAmount  = errors.New("deposit amount must be positive")
	ErrAlreadySettled = errors.New("deposit request already settled")
)

type Service interface {
	Create(ctx context.Context, userID uint, amount int64) (*models.DepositRequest, error)
	Get(ctx context.Context, id uint) (*models.DepositRequest, error)
	ListAll(ctx context.Context) ([]models.DepositRequest, error)
	ListByUser(ctx context.Context, userID uint) ([]models.DepositRequest, error)

	// Approve moves the request pending -> approved and credits the
	// amount. Only valid from pending; repeated calls conflict.
	Approve(ctx context.Context, id uint) (*models.DepositRequest, error)

	// Reject moves the request pending -> rejected without touching the
	// balance.
	Reject(ctx context.Context, id uint) (*models.DepositRequest, error)
}

type service struct {
	deposits repositories.DepositRepository
	users    repositories.UserRepository
	ledger   ledger.Service
}

func NewService(deposits repositories.DepositRepository, users repositories.UserRepository, ledgerSvc ledger.Service) Service {
	if deposits == nil {
		panic("deposit repository is required")
	}
	if users == nil {
		panic("user repository is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	return &service{deposits: deposits, users: users, ledger: ledgerSvc}
}

func (s *service) Create(ctx context.Context, userID uint, amount int64) (*models.DepositRequest, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	req := &models.DepositRequest{
		UserID:    userID,
		Amount:    amount,
		Status:    models.DepositRequestPending,
		UserName:  user.Name,
		UserPhone: user.Phone,
	}
	if err := s.deposits.Create(ctx, req); err != nil {
		return nil, err
	}
	metrics.DepositRequestsTotal.WithLabelValues(models.DepositRequestPending).Inc()
	return req, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.DepositRequest, error) {
	return s.deposits.GetByID(ctx, id)
}

func (s *service) ListAll(ctx context.Context) ([]models.DepositRequest, error) {
	return s.deposits.ListAll(ctx)
}

func (s *service) ListByUser(ctx context.Context, userID uint) ([]models.DepositRequest, error) {
	return s.deposits.ListByUser(ctx, userID)
}

func (s *service) Approve(ctx context.Context, id uint) (*models.DepositRequest, error) {
	req, err := s.deposits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	matched, err := s.deposits.UpdateStatus(ctx, id, models.DepositRequestPending, models.DepositRequestApproved)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrAlreadySettled
	}

	txn := &models.Transaction{
		UserID:    req.UserID,
		Type:      models.TxnDeposit,
		Amount:    req.Amount,
		Status:    models.TxnCompleted,
		UserName:  req.UserName,
		UserPhone: req.UserPhone,
	}
	if err := s.ledger.Apply(ctx, txn); err != nil {
		return nil, err
	}
	metrics.DepositRequestsTotal.WithLabelValues(models.DepositRequestApproved).Inc()
	return s.deposits.GetByID(ctx, id)
}

func (s *service) Reject(ctx context.Context, id uint) (*models.DepositRequest, error) {
	if _, err := s.deposits.GetByID(ctx, id); err != nil {
		return nil, err
	}
	matched, err := s.deposits.UpdateStatus(ctx, id, models.DepositRequestPending, models.DepositRequestRejected)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrAlreadySettled
	}
	metrics.DepositRequestsTotal.WithLabelValues(models.DepositRequestRejected).Inc()
	return s.deposits.GetByID(ctx, id)
}

package memory

import (
	"context"
	"sort"
	"time"

	"camillo/internal/models"
	"camillo/internal/repositories"
)

type DepositRepository struct {
	s *Store
}

func (r *DepositRepository) Create(ctx context.Context, req *models.DepositRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextDepositID++
	req.ID = r.s.nextDepositID
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	req.UpdatedAt = req.CreatedAt
	c := *req
	r.s.deposits[req.ID] = &c
	return nil
}

func (r *DepositRepository) GetByID(ctx context.Context, id uint) (*models.DepositRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.deposits[id]
	if !ok {
		return nil, repositories.ErrRequestNotFound
	}
	c := *req
	return &c, nil
}

func (r *DepositRepository) ListAll(ctx context.Context) ([]models.DepositRequest, error) {
	return r.list(func(*models.DepositRequest) bool { return true })
}

func (r *DepositRepository) ListByUser(ctx context.Context, userID uint) ([]models.DepositRequest, error) {
	return r.list(func(req *models.DepositRequest) bool { return req.UserID == userID })
}

func (r *DepositRepository) list(keep func(*models.DepositRequest) bool) ([]models.DepositRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.DepositRequest
	for _, req := range r.s.deposits {
		if keep(req) {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (r *DepositRepository) UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.deposits[id]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = to
	req.UpdatedAt = time.Now()
	return true, nil
}

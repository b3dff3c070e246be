package memory

import (
	"context"
	"strings"
	"time"

	"camillo/internal/models"
	"camillo/internal/repositories"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repositories.ErrEmailTaken
		}
	}
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.s.users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Phone == phone {
			return copyUser(u), nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *UserRepository) SearchByPhone(ctx context.Context, fragment string) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.User
	for _, u := range r.s.users {
		if strings.Contains(u.Phone, fragment) {
			out = append(out, *copyUser(u))
		}
	}
	return out, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.User
	for _, u := range r.s.users {
		out = append(out, *copyUser(u))
	}
	return out, nil
}

// Package auth handles registration, login and token refresh.
package auth

import (
	"context"
	"errors"
	"log"

	"camillo/internal/models"
	"camillo/internal/repositories"
	"camillo/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// Service errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, string, string, error)
	Login(ctx context.Context, email, phone, password string) (*models.User, string, string, error)
	RefreshTokens(ctx context.Context, refreshToken string) (string, string, error)
}

type service struct {
	users repositories.UserRepository
}

func NewService(users repositories.UserRepository) Service {
	if users == nil {
		panic("user repository is required")
	}
	return &service{users: users}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, string, string, error) {
	if input.Email == "" || input.Name == "" {
		return nil, "", "", errors.New("name and email are required")
	}
	if len(input.Password) < 8 {
		return nil, "", "", ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", errors.New("failed to hash password")
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: string(hashed),
		Role:     models.RoleClient,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, "", "", ErrEmailTaken
		}
		return nil, "", "", err
	}

	access, refresh, err := s.tokensFor(user)
	if err != nil {
		return nil, "", "", err
	}
	return user, access, refresh, nil
}

func (s *service) Login(ctx context.Context, email, phone, password string) (*models.User, string, string, error) {
	user, err := s.getUserByIdentifier(ctx, email, phone)
	if err != nil {
		log.Printf("login failed: user not found for %s%s", email, phone)
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("login failed: wrong password for user %d", user.ID)
		return nil, "", "", ErrInvalidCredentials
	}

	access, refresh, err := s.tokensFor(user)
	if err != nil {
		return nil, "", "", err
	}
	return user, access, refresh, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", errors.New("user not found")
	}

	return utils.GenerateTokens(&models.UserClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Phone:  user.Phone,
		Role:   user.Role,
	})
}

func (s *service) tokensFor(user *models.User) (string, string, error) {
	access, refresh, err := utils.GenerateTokens(&models.UserClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Phone:  user.Phone,
		Role:   user.Role,
	})
	if err != nil {
		log.Println("error generating tokens:", err)
		return "", "", errors.New("error generating tokens")
	}
	return access, refresh, nil
}

func (s *service) getUserByIdentifier(ctx context.Context, email, phone string) (*models.User, error) {
	if email != "" {
		return s.users.GetByEmail(ctx, email)
	}
	return s.users.GetByPhone(ctx, phone)
}

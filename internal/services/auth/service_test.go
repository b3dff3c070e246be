package auth

import (
	"context"
	"testing"

	"camillo/internal/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	store := memory.NewStore()
	svc := NewService(store.Users())
	ctx := context.Background()

	input := RegisterInput{
		Name:     "New User",
		Email:    "new@example.com",
		Phone:    "0700000005",
		Password: "supersecret",
	}
	user, access, refresh, err := svc.Register(ctx, input)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, "supersecret", user.Password)

	// Duplicate email
	_, _, _, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrEmailTaken)

	// Login by email
	logged, _, _, err := svc.Login(ctx, "new@example.com", "", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	// Login by phone
	_, _, _, err = svc.Login(ctx, "", "0700000005", "supersecret")
	require.NoError(t, err)

	// Wrong password
	_, _, _, err = svc.Login(ctx, "new@example.com", "", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Users())

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Weak",
		Email:    "weak@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRefreshTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	store := memory.NewStore()
	svc := NewService(store.Users())
	ctx := context.Background()

	_, _, refresh, err := svc.Register(ctx, RegisterInput{
		Name:     "Refresher",
		Email:    "refresh@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	access, newRefresh, err := svc.RefreshTokens(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, newRefresh)

	_, _, err = svc.RefreshTokens(ctx, "not-a-token")
	assert.Error(t, err)
}

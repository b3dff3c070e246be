package deposit

import (
	"context"
	"testing"

	"camillo/internal/models"
	"camillo/internal/repositories/memory"
	"camillo/internal/services/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, ledger.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	ledgerSvc := ledger.NewService(store.Transactions(), store.Investments(), store.Users())
	return NewService(store.Deposits(), store.Users(), ledgerSvc), ledgerSvc, store
}

func seedUser(t *testing.T, store *memory.Store) *models.User {
	t.Helper()
	user := &models.User{Name: "Depositor", Email: "depositor@example.com", Phone: "0700000004"}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func TestCreateRequiresPositiveAmount(t *testing.T) {
	svc, _, store := newTestService(t)
	user := seedUser(t, store)

	_, err := svc.Create(context.Background(), user.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestApproveCreditsBalanceOnce(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store)

	req, err := svc.Create(ctx, user.ID, 3000)
	require.NoError(t, err)
	assert.Equal(t, models.DepositRequestPending, req.Status)

	approved, err := svc.Approve(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DepositRequestApproved, approved.Status)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), got.Balance)
	assert.NoError(t, ledgerSvc.VerifyUser(ctx, user.ID))

	// Repeated approval conflicts and does not credit again.
	_, err = svc.Approve(ctx, req.ID)
	assert.ErrorIs(t, err, ErrAlreadySettled)

	got, err = store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), got.Balance)
}

func TestRejectDoesNotCredit(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store)

	req, err := svc.Create(ctx, user.ID, 3000)
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DepositRequestRejected, rejected.Status)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Balance)

	// A rejected request cannot be approved afterwards.
	_, err = svc.Approve(ctx, req.ID)
	assert.ErrorIs(t, err, ErrAlreadySettled)
}

package admin

import (
	"context"
	"testing"
	"time"

	"camillo/internal/models"
	"camillo/internal/repositories/memory"
	"camillo/internal/services/investment"
	"camillo/internal/services/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, ledger.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	ledgerSvc := ledger.NewService(store.Transactions(), store.Investments(), store.Users())
	invSvc := investment.NewService(store.Investments(), store.Users(), ledgerSvc)
	return NewService(store.Users(), invSvc, ledgerSvc, nil), ledgerSvc, store
}

func seedUser(t *testing.T, store *memory.Store) *models.User {
	t.Helper()
	user := &models.User{Name: "Client", Email: "client@example.com", Phone: "0712345678"}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func TestAdjustBalanceUpOpensAdminCreditedInvestment(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store)

	updated, err := svc.AdjustBalance(ctx, user.ID, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), updated.Balance)
	assert.NoError(t, ledgerSvc.VerifyUser(ctx, user.ID))

	invs, err := store.Investments().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, invs, 1)
	assert.Equal(t, int64(5000), invs[0].Amount)
	assert.Equal(t, int64(3000), invs[0].ProfitAmount)
	assert.Equal(t, models.PaymentPaid, invs[0].PaymentStatus)
	assert.WithinDuration(t, time.Now().Add(time.Hour), invs[0].ExpiryDate, time.Minute)
}

func TestAdjustBalanceDownRecordsWithdrawal(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store)

	_, err := svc.AdjustBalance(ctx, user.ID, 5000)
	require.NoError(t, err)

	updated, err := svc.AdjustBalance(ctx, user.ID, 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), updated.Balance)
	assert.NoError(t, ledgerSvc.VerifyUser(ctx, user.ID))

	txns, err := store.Transactions().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	withdrawals := 0
	for _, txn := range txns {
		if txn.Type == models.TxnWithdrawal && txn.Status == models.TxnCompleted {
			withdrawals++
			assert.Equal(t, int64(3000), txn.Amount)
		}
	}
	assert.Equal(t, 1, withdrawals)
}

func TestAdjustBalanceNoChange(t *testing.T) {
	svc, _, store := newTestService(t)
	user := seedUser(t, store)

	_, err := svc.AdjustBalance(context.Background(), user.ID, 0)
	assert.ErrorIs(t, err, ErrNoChange)
}

func TestNotificationsListRecentPayouts(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store)

	inv := &models.Investment{
		UserID:        user.ID,
		Amount:        1000,
		Status:        models.InvestmentActive,
		PaymentStatus: models.PaymentPending,
		ProfitAmount:  600,
		ExpiryDate:    time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.Investments().Create(ctx, inv))
	_, err := ledgerSvc.CreditInvestment(ctx, inv.ID)
	require.NoError(t, err)

	out, err := svc.Notifications(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, inv.ID, out[0].InvestmentID)
	assert.Equal(t, int64(600), out[0].Profit)
}

func TestAdminDigestBundlesPendingWork(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store)

	// One investment still waiting for payment confirmation.
	waiting := &models.Investment{
		UserID:        user.ID,
		Amount:        2000,
		Status:        models.InvestmentActive,
		PaymentStatus: models.PaymentPending,
		ProfitAmount:  1200,
		ExpiryDate:    time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, store.Investments().Create(ctx, waiting))

	// One matured investment: its payout shows up both as a recent
	// profit and as a withdrawal to disburse.
	matured := &models.Investment{
		UserID:        user.ID,
		Amount:        1000,
		Status:        models.InvestmentActive,
		PaymentStatus: models.PaymentPending,
		ProfitAmount:  600,
		ExpiryDate:    time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.Investments().Create(ctx, matured))
	_, err := ledgerSvc.CreditInvestment(ctx, matured.ID)
	require.NoError(t, err)

	digest, err := svc.AdminDigest(ctx)
	require.NoError(t, err)
	require.Len(t, digest.PendingPayments, 1)
	assert.Equal(t, waiting.ID, digest.PendingPayments[0].ID)
	require.Len(t, digest.RecentProfits, 1)
	assert.Equal(t, int64(1600), digest.RecentProfits[0].Amount)
	require.Len(t, digest.PendingWithdrawals, 1)
	assert.Equal(t, matured.ID, digest.PendingWithdrawals[0].ID)
}

func TestSearchUsersByPhone(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()
	seedUser(t, store)

	out, err := svc.SearchUsersByPhone(ctx, "1234")
	require.NoError(t, err)
	assert.Len(t, out, 1)

	out, err = svc.SearchUsersByPhone(ctx, "9999")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStatsAggregates(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store)

	_, err := svc.AdjustBalance(ctx, user.ID, 5000)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Users)
	assert.Equal(t, int64(1), stats.Investments.Total)
	assert.Equal(t, int64(1), stats.Investments.Active)
	assert.Equal(t, int64(5000), stats.Ledger.Deposits)
	assert.NoError(t, ledgerSvc.VerifyUser(ctx, user.ID))
}

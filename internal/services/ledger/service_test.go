package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"camillo/internal/models"
	"camillo/internal/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewService(store.Transactions(), store.Investments(), store.Users())
	return svc, store
}

func seedUser(t *testing.T, store *memory.Store, balance int64) *models.User {
	t.Helper()
	user := &models.User{Name: "Test User", Email: "user@example.com", Phone: "0700000001", Role: models.RoleClient}
	require.NoError(t, store.Users().Create(context.Background(), user))
	if balance > 0 {
		svc := NewService(store.Transactions(), store.Investments(), store.Users())
		require.NoError(t, svc.Apply(context.Background(), &models.Transaction{
			UserID: user.ID,
			Type:   models.TxnDeposit,
			Amount: balance,
			Status: models.TxnCompleted,
		}))
	}
	return user
}

func seedClaimableInvestment(t *testing.T, store *memory.Store, userID uint, amount int64) *models.Investment {
	t.Helper()
	inv := &models.Investment{
		UserID:        userID,
		Amount:        amount,
		Status:        models.InvestmentActive,
		PaymentStatus: models.PaymentPending,
		ProfitAmount:  int64(float64(amount) * 0.6),
		ExpiryDate:    time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.Investments().Create(context.Background(), inv))
	return inv
}

func TestApplyDepositCreditsBalance(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store, 0)

	err := svc.Apply(ctx, &models.Transaction{
		UserID: user.ID,
		Type:   models.TxnDeposit,
		Amount: 2500,
		Status: models.TxnCompleted,
	})
	require.NoError(t, err)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), got.Balance)
	assert.NoError(t, svc.VerifyUser(ctx, user.ID))
}

func TestApplyManualProfitCredit(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store, 0)

	// Admin-booked profit outside the investment lifecycle.
	err := svc.Apply(ctx, &models.Transaction{
		UserID: user.ID,
		Type:   models.TxnProfit,
		Amount: 750,
		Status: models.TxnCompleted,
	})
	require.NoError(t, err)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(750), got.Balance)

	profits, err := svc.ListProfitsSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, profits, 1)
	assert.Equal(t, int64(750), profits[0].Amount)
	assert.NoError(t, svc.VerifyUser(ctx, user.ID))
}

func TestApplyRejectsInvalidInput(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store, 0)

	err := svc.Apply(ctx, &models.Transaction{UserID: user.ID, Type: models.TxnDeposit, Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	err = svc.Apply(ctx, &models.Transaction{UserID: user.ID, Type: "bonus", Amount: 100})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestCreditInvestmentPaysOutOnce(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store, 0)
	inv := seedClaimableInvestment(t, store, user.ID, 1000)

	claimed, err := svc.CreditInvestment(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentCompleted, claimed.Status)
	assert.Equal(t, models.WithdrawalPending, claimed.WithdrawalStatus)
	require.NotNil(t, claimed.ProfitPaidAt)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), got.Balance)

	_, err = svc.CreditInvestment(ctx, inv.ID)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	got, err = store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), got.Balance)
	assert.NoError(t, svc.VerifyUser(ctx, user.ID))
}

func TestCreditInvestmentConcurrent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store, 0)
	inv := seedClaimableInvestment(t, store, user.ID, 1000)

	const workers = 20
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreditInvestment(ctx, inv.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		switch err {
		case nil:
			wins++
		case ErrAlreadyClaimed:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, workers-1, conflicts)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), got.Balance)

	txns, err := store.Transactions().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	profits := 0
	for _, txn := range txns {
		if txn.Type == models.TxnProfit {
			profits++
		}
	}
	assert.Equal(t, 1, profits)
}

func TestRequestWithdrawalReservesPending(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store, 1000)

	txn, err := svc.RequestWithdrawal(ctx, user.ID, 700)
	require.NoError(t, err)
	assert.Equal(t, models.TxnPending, txn.Status)

	// Balance untouched until settlement, but the pending amount is
	// reserved.
	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.Balance)

	_, err = svc.RequestWithdrawal(ctx, user.ID, 500)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestSettleWithdrawalDebitsOnce(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store, 1000)

	txn, err := svc.RequestWithdrawal(ctx, user.ID, 400)
	require.NoError(t, err)

	settled, err := svc.SettleWithdrawal(ctx, txn.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.TxnCompleted, settled.Status)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(600), got.Balance)

	_, err = svc.SettleWithdrawal(ctx, txn.ID, true)
	assert.ErrorIs(t, err, ErrAlreadySettled)
	assert.NoError(t, svc.VerifyUser(ctx, user.ID))
}

func TestSettleWithdrawalRejectedKeepsBalance(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store, 1000)

	txn, err := svc.RequestWithdrawal(ctx, user.ID, 400)
	require.NoError(t, err)

	settled, err := svc.SettleWithdrawal(ctx, txn.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.TxnFailed, settled.Status)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.Balance)
}

func TestReconcileRepairsMissingCredit(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store, 0)
	inv := seedClaimableInvestment(t, store, user.ID, 1000)

	// Simulate a crash between claim and credit.
	_, matched, err := store.Investments().Claim(ctx, inv.ID, time.Now())
	require.NoError(t, err)
	require.True(t, matched)

	repaired, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), got.Balance)

	// Nothing left to repair.
	repaired, err = svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, repaired)
	assert.NoError(t, svc.VerifyUser(ctx, user.ID))
}

func TestReconcileConcurrentRepairsOnce(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store, 0)
	inv := seedClaimableInvestment(t, store, user.ID, 1000)

	_, matched, err := store.Investments().Claim(ctx, inv.ID, time.Now())
	require.NoError(t, err)
	require.True(t, matched)

	// Every instance reconciles at startup, so several reconcilers can
	// see the same stuck investment at once. Only one repair may land.
	const workers = 8
	var wg sync.WaitGroup
	start := make(chan struct{})
	repairs := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			n, err := svc.Reconcile(ctx)
			assert.NoError(t, err)
			repairs <- n
		}()
	}
	close(start)
	wg.Wait()
	close(repairs)

	total := 0
	for n := range repairs {
		total += n
	}
	assert.Equal(t, 1, total)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), got.Balance)

	txns, err := store.Transactions().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	profits := 0
	for _, txn := range txns {
		if txn.Type == models.TxnProfit {
			profits++
		}
	}
	assert.Equal(t, 1, profits)
	assert.NoError(t, svc.VerifyUser(ctx, user.ID))
}

func TestProfitAppendSkipsCreditedInvestment(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store, 0)
	inv := seedClaimableInvestment(t, store, user.ID, 1000)

	_, matched, err := store.Investments().Claim(ctx, inv.ID, time.Now())
	require.NoError(t, err)
	require.True(t, matched)

	repaired, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repaired)

	// A claim winner that stalled before its credit resumes after the
	// reconciler already repaired it; its append must not land.
	applied, err := store.Transactions().AppendProfitOnce(ctx, &models.Transaction{
		UserID:       user.ID,
		Type:         models.TxnProfit,
		Amount:       1600,
		Status:       models.TxnCompleted,
		Reference:    "late-credit",
		InvestmentID: &inv.ID,
	})
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), got.Balance)
	assert.NoError(t, svc.VerifyUser(ctx, user.ID))
}

func TestVerifyUserDetectsDrift(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	user := &models.User{Name: "Drifted", Email: "drift@example.com", Balance: 500}
	require.NoError(t, store.Users().Create(ctx, user))

	err := svc.VerifyUser(ctx, user.ID)
	assert.ErrorIs(t, err, ErrLedgerInconsistency)
}

package investment

import (
	"context"
	"testing"
	"time"

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
	svc := NewService(store.Investments(), store.Users(), ledgerSvc)
	return svc, ledgerSvc, store
}

func seedFundedUser(t *testing.T, store *memory.Store, ledgerSvc ledger.Service, balance int64) *models.User {
	t.Helper()
	ctx := context.Background()
	user := &models.User{Name: "Investor", Email: "investor@example.com", Phone: "0700000002", Role: models.RoleClient}
	require.NoError(t, store.Users().Create(ctx, user))
	if balance > 0 {
		require.NoError(t, ledgerSvc.Apply(ctx, &models.Transaction{
			UserID: user.ID,
			Type:   models.TxnDeposit,
			Amount: balance,
			Status: models.TxnCompleted,
		}))
		user.Balance = balance
	}
	return user
}

func TestOpenRejectsBelowMinimum(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	user := seedFundedUser(t, store, ledgerSvc, 5000)

	_, err := svc.Open(context.Background(), user.ID, 999, false)
	assert.ErrorIs(t, err, ErrAmountTooSmall)
}

func TestOpenDebitsPrincipalAtomically(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedFundedUser(t, store, ledgerSvc, 5000)

	inv, err := svc.Open(ctx, user.ID, 2000, false)
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentActive, inv.Status)
	assert.Equal(t, models.PaymentPending, inv.PaymentStatus)
	assert.Equal(t, int64(1200), inv.ProfitAmount)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), inv.ExpiryDate, time.Minute)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), got.Balance)
	assert.NoError(t, ledgerSvc.VerifyUser(ctx, user.ID))
}

func TestOpenInsufficientBalanceLeavesNoTrace(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedFundedUser(t, store, ledgerSvc, 1500)

	_, err := svc.Open(ctx, user.ID, 2000, false)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	invs, err := store.Investments().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, invs)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), got.Balance)
}

func TestOpenTestModeShortensExpiry(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	user := seedFundedUser(t, store, ledgerSvc, 1000)

	inv, err := svc.Open(context.Background(), user.ID, 1000, true)
	require.NoError(t, err)
	assert.Equal(t, int64(600), inv.ProfitAmount)
	assert.WithinDuration(t, time.Now().Add(time.Minute), inv.ExpiryDate, 5*time.Second)
}

func TestOpenFromAdminCredit(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()
	user := &models.User{Name: "Credited", Email: "credited@example.com"}
	require.NoError(t, store.Users().Create(ctx, user))

	inv, err := svc.OpenFromAdminCredit(ctx, user, 5000)
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentActive, inv.Status)
	assert.Equal(t, models.PaymentPaid, inv.PaymentStatus)
	assert.Equal(t, int64(3000), inv.ProfitAmount)
	require.NotNil(t, inv.PaymentApprovedAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), inv.ExpiryDate, time.Minute)
}

func TestApprovePaymentCompletesAndCreditsOnce(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedFundedUser(t, store, ledgerSvc, 1000)

	inv, err := svc.Open(ctx, user.ID, 1000, false)
	require.NoError(t, err)

	approved, err := svc.ApprovePayment(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentCompleted, approved.Status)
	assert.Equal(t, models.PaymentPaid, approved.PaymentStatus)
	assert.Equal(t, models.WithdrawalPending, approved.WithdrawalStatus)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), got.Balance)

	_, err = svc.ApprovePayment(ctx, inv.ID)
	assert.ErrorIs(t, err, ErrPaymentNotApprovable)

	got, err = store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), got.Balance)
	assert.NoError(t, ledgerSvc.VerifyUser(ctx, user.ID))
}

func TestApproveWithdrawalPaysOutAndConflictsAfter(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedFundedUser(t, store, ledgerSvc, 1000)

	inv, err := svc.Open(ctx, user.ID, 1000, false)
	require.NoError(t, err)

	_, err = svc.ApprovePayment(ctx, inv.ID)
	require.NoError(t, err)

	paid, err := svc.ApproveWithdrawal(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalPaid, paid.WithdrawalStatus)
	require.NotNil(t, paid.WithdrawalApprovedAt)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Balance)

	// Approving again conflicts and mutates nothing.
	_, err = svc.ApproveWithdrawal(ctx, inv.ID)
	assert.ErrorIs(t, err, ErrWithdrawalAlreadyPaid)

	got, err = store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Balance)
	assert.NoError(t, ledgerSvc.VerifyUser(ctx, user.ID))
}

func TestApproveWithdrawalRequiresCompleted(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedFundedUser(t, store, ledgerSvc, 1000)

	inv, err := svc.Open(ctx, user.ID, 1000, false)
	require.NoError(t, err)

	_, err = svc.ApproveWithdrawal(ctx, inv.ID)
	assert.ErrorIs(t, err, ErrWithdrawalNotPending)
}

func TestForceStatusCompletedDoesNotRecredit(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedFundedUser(t, store, ledgerSvc, 1000)

	inv, err := svc.Open(ctx, user.ID, 1000, false)
	require.NoError(t, err)

	forced, err := svc.ForceStatus(ctx, inv.ID, models.InvestmentCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentCompleted, forced.Status)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), got.Balance)

	// Forcing completed again only backfills, never credits twice.
	again, err := svc.ForceStatus(ctx, inv.ID, models.InvestmentCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentCompleted, again.Status)

	got, err = store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), got.Balance)
	assert.NoError(t, ledgerSvc.VerifyUser(ctx, user.ID))
}

func TestForceStatusTradingPath(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedFundedUser(t, store, ledgerSvc, 1000)

	inv, err := svc.Open(ctx, user.ID, 1000, false)
	require.NoError(t, err)

	trading, err := svc.ForceStatus(ctx, inv.ID, models.InvestmentTrading)
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentTrading, trading.Status)

	// Trading investments still complete through the claim.
	completed, err := svc.ForceStatus(ctx, inv.ID, models.InvestmentCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentCompleted, completed.Status)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), got.Balance)
}

func TestForceStatusRejectsRegression(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedFundedUser(t, store, ledgerSvc, 1000)

	inv, err := svc.Open(ctx, user.ID, 1000, false)
	require.NoError(t, err)

	_, err = svc.ForceStatus(ctx, inv.ID, models.InvestmentPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.ForceStatus(ctx, inv.ID, "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestListByPhoneMatchesSnapshot(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedFundedUser(t, store, ledgerSvc, 5000)

	inv, err := svc.Open(ctx, user.ID, 2000, false)
	require.NoError(t, err)
	assert.Equal(t, user.Phone, inv.UserPhone)

	out, err := svc.ListByPhone(ctx, "0000002")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, inv.ID, out[0].ID)

	out, err = svc.ListByPhone(ctx, "9999")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestListExpiredOnlyPastDueActive(t *testing.T) {
	svc, ledgerSvc, store := newTestService(t)
	ctx := context.Background()
	user := seedFundedUser(t, store, ledgerSvc, 5000)

	_, err := svc.Open(ctx, user.ID, 2000, false)
	require.NoError(t, err)

	pastDue := &models.Investment{
		UserID:        user.ID,
		Amount:        1000,
		Status:        models.InvestmentActive,
		PaymentStatus: models.PaymentPending,
		ProfitAmount:  600,
		ExpiryDate:    time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.Investments().Create(ctx, pastDue))

	out, err := svc.ListExpired(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, pastDue.ID, out[0].ID)
}

func TestProfitForRounds(t *testing.T) {
	assert.Equal(t, int64(600), ProfitFor(1000))
	assert.Equal(t, int64(601), ProfitFor(1001))
	assert.Equal(t, int64(599), ProfitFor(999))
}

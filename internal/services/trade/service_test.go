package trade

import (
	"context"
	"testing"

	"camillo/internal/models"
	"camillo/internal/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeLifecycle(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Trades())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	created, err := svc.Create(ctx, 1, 10000)
	require.NoError(t, err)
	assert.Equal(t, models.TradePending, created.Status)

	completed, err := svc.Complete(ctx, created.ID, 2500)
	require.NoError(t, err)
	assert.Equal(t, models.TradeCompleted, completed.Status)
	assert.Equal(t, int64(2500), completed.Profit)
	require.NotNil(t, completed.CompletedAt)

	_, err = svc.Complete(ctx, created.ID, 9999)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

package integration

import (
	"context"
	"testing"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_FailedWithdrawalReleasesReservation(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	ctx := context.Background()
	seedWallet(t, app, "payout-user-1", 1000)

	txn, err := app.ledgerSvc.Withdraw(ctx, ports.WithdrawRequest{
		OwnerKind: domain.OwnerKindUser,
		OwnerID:   "payout-user-1",
		Amount:    400,
		Currency:  "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, txn.Status)

	mid, err := app.ledgerSvc.GetWallet(ctx, domain.OwnerKindUser, "payout-user-1", "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(600), mid.Available)
	assert.Equal(t, int64(400), mid.Pending)

	failed, err := app.ledgerSvc.FailTransaction(ctx, txn.ID, "payout rejected")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFailed, failed.Status)

	// The reservation flows back; nothing is stranded in pending.
	final, err := app.ledgerSvc.GetWallet(ctx, domain.OwnerKindUser, "payout-user-1", "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), final.Available)
	assert.Equal(t, int64(0), final.Pending)
}

func TestIntegration_CompletedWithdrawalConsumesPending(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	ctx := context.Background()
	seedWallet(t, app, "payout-user-2", 1000)

	txn, err := app.ledgerSvc.Withdraw(ctx, ports.WithdrawRequest{
		OwnerKind: domain.OwnerKindUser,
		OwnerID:   "payout-user-2",
		Amount:    400,
		Currency:  "USD",
	})
	require.NoError(t, err)

	completed, err := app.ledgerSvc.CompleteTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, completed.Status)
	require.NotNil(t, completed.BalanceAfter)
	assert.Equal(t, int64(600), *completed.BalanceAfter)

	final, err := app.ledgerSvc.GetWallet(ctx, domain.OwnerKindUser, "payout-user-2", "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(600), final.Available)
	assert.Equal(t, int64(0), final.Pending)
	assert.Equal(t, int64(600), final.Total())

	// Terminal entries stay terminal.
	_, err = app.ledgerSvc.CompleteTransaction(ctx, txn.ID)
	require.Error(t, err)
}

package notification

import (
	"context"
	"testing"

	"killbill-service/internal/domain/invoice"
	"killbill-service/internal/domain/notification"
	"killbill-service/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotificationService(t *testing.T) {
	stores := testutil.NewStores()
	mailer := testutil.NewFakeMailer()
	notices, err := NewNotices("Kill Bill")
	require.NoError(t, err)
	svc := NewNotificationService(notices, NewDispatcher(mailer, stores.EmailLogs, zap.NewNop()), zap.NewNop())

	sub := acmeSubscription()
	inv := &invoice.Invoice{InvoiceNumber: "INV-0007", Amount: decimal.RequireFromString("100"), DueDate: *sub.EndDate}

	assert.True(t, svc.SendWelcome(context.Background(), sub).Sent)
	assert.True(t, svc.SendRenewalReminder(context.Background(), sub, inv).Sent)
	assert.True(t, svc.SendExpired(context.Background(), sub).Sent)

	assert.Equal(t, []string{
		"Welcome to Kill Bill - Subscription Created",
		"Invoice INV-0007: Subscription Renewal Due",
		"Subscription Expired",
	}, mailer.Subjects())

	logs, err := svc.Logs(context.Background(), &notification.LogFilters{Status: notification.LogSent})
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}

func TestNotificationService_NoClientEmail(t *testing.T) {
	stores := testutil.NewStores()
	mailer := testutil.NewFakeMailer()
	notices, err := NewNotices("Kill Bill")
	require.NoError(t, err)
	svc := NewNotificationService(notices, NewDispatcher(mailer, stores.EmailLogs, zap.NewNop()), zap.NewNop())

	sub := acmeSubscription()
	sub.Client.Email = ""

	res := svc.SendExpired(context.Background(), sub)
	assert.False(t, res.Sent)
	assert.Equal(t, "no recipients", res.Err)
	assert.Zero(t, mailer.Calls)
	assert.Empty(t, stores.EmailLogs.All())
}

package dashboard

import (
	"context"
	"testing"

	"killbill-service/internal/domain/invoice"
	"killbill-service/internal/domain/subscription"
	"killbill-service/internal/pkg/clock"
	"killbill-service/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetSummary(t *testing.T) {
	today := clock.Date(2024, 3, 10)
	stores := testutil.NewStores()
	svc := NewDashboardService(stores.Subscriptions, stores.Invoices, clock.Fixed(today), zap.NewNop())

	acme := stores.SeedClient(t, "Acme", "billing@acme.test")
	basic := stores.SeedPlan(t, "Basic", "100.00", "1000.00")
	expiring := stores.SeedSubscription(t, acme, basic, subscription.CycleMonthly, clock.Date(2024, 3, 1), today)
	stores.SeedSubscription(t, acme, basic, subscription.CycleAnnual, clock.Date(2024, 1, 1), today)
	stores.SeedSubscription(t, acme, basic, subscription.CycleMonthly, clock.Date(2023, 1, 1), today)

	for i, due := range []int{1, 5, 20} {
		stores.Invoices.Put(&invoice.Invoice{
			SubscriptionID: expiring.ID,
			InvoiceNumber:  invoice.FormatNumber(int64(i + 1)),
			Amount:         decimal.RequireFromString("100.50"),
			DueDate:        clock.Date(2024, 3, due),
			Status:         invoice.StatusUnpaid,
			Source:         invoice.SourceManual,
		})
	}

	sum, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.ActiveCount)
	assert.Equal(t, int64(1), sum.ExpiredCount)
	assert.Equal(t, 1, sum.ExpiringCount)
	assert.Equal(t, 2, sum.OverdueCount)
	assert.Equal(t, "201.00", sum.OverdueTotal.StringFixed(2))
}

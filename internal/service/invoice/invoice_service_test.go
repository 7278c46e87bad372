package invoice

import (
	"context"
	"testing"
	"time"

	"killbill-service/internal/domain/invoice"
	"killbill-service/internal/domain/payment"
	"killbill-service/internal/domain/settings"
	"killbill-service/internal/domain/subscription"
	"killbill-service/internal/metrics"
	"killbill-service/internal/pkg/clock"
	xerrors "killbill-service/internal/pkg/errors"
	"killbill-service/internal/testutil"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T, stores *testutil.Stores, today clock.Fixed) (*InvoiceService, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	svc, err := NewInvoiceService(stores.Invoices, stores.Subscriptions, m, today, zap.NewNop())
	require.NoError(t, err)
	return svc, m
}

func seedAcme(t *testing.T, stores *testutil.Stores, today clock.Fixed) *subscription.Subscription {
	t.Helper()
	acme := stores.SeedClient(t, "Acme", "billing@acme.test")
	basic := stores.SeedPlan(t, "Basic", "100.00", "1000.00")
	return stores.SeedSubscription(t, acme, basic, subscription.CycleMonthly, clock.Date(2024, 1, 1), clock.Today(today))
}

func TestGetOrCreateForPeriod_IsIdempotent(t *testing.T) {
	stores := testutil.NewStores()
	today := clock.Fixed(clock.Date(2024, 1, 25))
	svc, m := newService(t, stores, today)
	sub := seedAcme(t, stores, today)

	first, created, err := svc.GetOrCreateForPeriod(context.Background(), sub)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "INV-0001", first.InvoiceNumber)
	assert.Equal(t, "100.00", first.Amount.StringFixed(2))
	assert.Equal(t, clock.Date(2024, 1, 25), first.IssueDate)
	assert.Equal(t, clock.Date(2024, 1, 31), first.DueDate)
	assert.Equal(t, invoice.StatusUnpaid, first.Status)
	assert.Equal(t, invoice.SourceRenewal, first.Source)

	second, created, err := svc.GetOrCreateForPeriod(context.Background(), sub)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	all, err := svc.ListInvoices(context.Background(), &invoice.ListFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.InvoicesCreated.WithLabelValues("renewal")))
}

func TestGetOrCreateForPeriod_SkipsTakenNumber(t *testing.T) {
	stores := testutil.NewStores()
	today := clock.Fixed(clock.Date(2024, 1, 25))
	svc, _ := newService(t, stores, today)
	sub := seedAcme(t, stores, today)

	for _, number := range []string{"INV-0003", "LEGACY"} {
		stores.Invoices.Put(&invoice.Invoice{
			SubscriptionID: sub.ID,
			InvoiceNumber:  number,
			Amount:         decimal.RequireFromString("100.00"),
			IssueDate:      clock.Date(2023, 12, 1),
			DueDate:        clock.Date(2023, 12, 15),
			Status:         invoice.StatusPaid,
			Source:         invoice.SourceManual,
		})
	}

	// LEGACY at id 2 does not parse, so the id fallback proposes INV-0003.
	inv, created, err := svc.GetOrCreateForPeriod(context.Background(), sub)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "INV-0004", inv.InvoiceNumber)
}

func TestGetOrCreateForPeriod_AnnualAmountAndNoEndDate(t *testing.T) {
	stores := testutil.NewStores()
	today := clock.Fixed(clock.Date(2024, 1, 25))
	svc, _ := newService(t, stores, today)

	acme := stores.SeedClient(t, "Acme", "billing@acme.test")
	basic := stores.SeedPlan(t, "Basic", "100.00", "1000.00")
	sub := stores.SeedSubscription(t, acme, basic, subscription.CycleAnnual, clock.Date(2024, 1, 1), clock.Today(today))

	inv, _, err := svc.GetOrCreateForPeriod(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", inv.Amount.StringFixed(2))

	sub.EndDate = nil
	_, _, err = svc.GetOrCreateForPeriod(context.Background(), sub)
	assert.ErrorIs(t, err, ErrNoEndDate)
}

func TestCreateInvoice_ManualDefaults(t *testing.T) {
	stores := testutil.NewStores()
	today := clock.Fixed(clock.Date(2024, 1, 10))
	svc, _ := newService(t, stores, today)
	sub := seedAcme(t, stores, today)

	renewal, _, err := svc.GetOrCreateForPeriod(context.Background(), sub)
	require.NoError(t, err)

	manual, err := svc.CreateInvoice(context.Background(), &invoice.CreateInvoiceRequest{SubscriptionID: sub.ID})
	require.NoError(t, err)
	assert.Equal(t, "INV-0002", manual.InvoiceNumber)
	assert.Equal(t, clock.Date(2024, 1, 10), manual.IssueDate)
	assert.Equal(t, clock.Date(2024, 1, 24), manual.DueDate)
	assert.Equal(t, invoice.SourceManual, manual.Source)

	// A manual invoice on the renewal due date is not deduplicated.
	same, err := svc.CreateInvoice(context.Background(), &invoice.CreateInvoiceRequest{
		SubscriptionID: sub.ID,
		IssueDate:      "2024-01-10",
		DueDate:        renewal.DueDate.Format(clock.DateLayout),
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-0003", same.InvoiceNumber)
}

func TestCreateInvoice_Validation(t *testing.T) {
	stores := testutil.NewStores()
	today := clock.Fixed(clock.Date(2024, 1, 10))
	svc, _ := newService(t, stores, today)
	sub := seedAcme(t, stores, today)

	_, err := svc.CreateInvoice(context.Background(), &invoice.CreateInvoiceRequest{
		SubscriptionID: sub.ID,
		IssueDate:      "2024-01-10",
		DueDate:        "2024-01-09",
	})
	var verr *xerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "due date cannot be before issue date", verr.Fields["due_date"])

	_, err = svc.CreateInvoice(context.Background(), &invoice.CreateInvoiceRequest{SubscriptionID: 42})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "subscription_id")

	all, err := svc.ListInvoices(context.Background(), &invoice.ListFilters{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMarkPaid_OverdueInvoiceRecordsOnePayment(t *testing.T) {
	stores := testutil.NewStores()
	today := clock.Fixed(clock.Date(2024, 2, 10))
	svc, _ := newService(t, stores, today)
	sub := seedAcme(t, stores, today)

	stores.Invoices.Put(&invoice.Invoice{
		SubscriptionID: sub.ID,
		InvoiceNumber:  "INV-0001",
		Amount:         decimal.RequireFromString("100.00"),
		IssueDate:      clock.Date(2024, 1, 1),
		DueDate:        clock.Date(2024, 1, 31),
		Status:         invoice.StatusUnpaid,
		Source:         invoice.SourceRenewal,
	})

	changed, err := svc.RefreshStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	inv, err := svc.GetInvoice(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusOverdue, inv.Status)

	paid, alreadyPaid, err := svc.MarkPaid(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.False(t, alreadyPaid)
	assert.Equal(t, invoice.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	payments := stores.Payments.All()
	require.Len(t, payments, 1)
	assert.Equal(t, clock.Date(2024, 2, 10), payments[0].PaymentDate)
	assert.Equal(t, "100.00", payments[0].Amount.StringFixed(2))
	assert.Equal(t, payment.MethodBankTransfer, payments[0].PaymentMethod)
	assert.Equal(t, payment.StatusReceived, payments[0].Status)
	require.NotNil(t, payments[0].InvoiceID)
	assert.Equal(t, inv.ID, *payments[0].InvoiceID)

	again, alreadyPaid, err := svc.MarkPaid(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.True(t, alreadyPaid)
	assert.Equal(t, invoice.StatusPaid, again.Status)
	assert.Len(t, stores.Payments.All(), 1, "paying twice records no second payment")

	changed, err = svc.RefreshStatuses(context.Background())
	require.NoError(t, err)
	assert.Zero(t, changed, "paid is terminal")
}

func TestReminders(t *testing.T) {
	stores := testutil.NewStores()
	today := clock.Fixed(clock.Date(2024, 3, 10))
	svc, _ := newService(t, stores, today)
	sub := seedAcme(t, stores, today)

	put := func(number string, due time.Time, status invoice.Status) {
		stores.Invoices.Put(&invoice.Invoice{
			SubscriptionID: sub.ID,
			InvoiceNumber:  number,
			Amount:         decimal.RequireFromString("100.00"),
			IssueDate:      clock.Date(2024, 1, 1),
			DueDate:        due,
			Status:         status,
			Source:         invoice.SourceManual,
		})
	}
	put("INV-0001", clock.Date(2024, 3, 10), invoice.StatusUnpaid)
	put("INV-0002", clock.Date(2024, 3, 17), invoice.StatusUnpaid)
	put("INV-0003", clock.Date(2024, 3, 18), invoice.StatusUnpaid)
	put("INV-0004", clock.Date(2024, 3, 5), invoice.StatusOverdue)
	put("INV-0005", clock.Date(2024, 3, 12), invoice.StatusPaid)

	report, err := svc.Reminders(context.Background())
	require.NoError(t, err)

	var upcoming []string
	for _, inv := range report.Upcoming {
		upcoming = append(upcoming, inv.InvoiceNumber)
	}
	assert.Equal(t, []string{"INV-0001", "INV-0002"}, upcoming)

	require.Len(t, report.Overdue, 1)
	assert.Equal(t, "INV-0004", report.Overdue[0].Invoice.InvoiceNumber)
	assert.Equal(t, 5, report.Overdue[0].DaysOverdue)
}

func TestRender(t *testing.T) {
	stores := testutil.NewStores()
	today := clock.Fixed(clock.Date(2024, 1, 25))
	svc, _ := newService(t, stores, today)
	sub := seedAcme(t, stores, today)

	inv, _, err := svc.GetOrCreateForPeriod(context.Background(), sub)
	require.NoError(t, err)

	branding := settings.DefaultInvoice()
	branding.CompanyName = "Kill Bill Ltd"
	branding.BankName = "First Bank"

	html, err := svc.Render(context.Background(), inv.ID, branding)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "INV-0001")
	assert.Contains(t, out, "Kill Bill Ltd")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "2024-01-31")
	assert.Contains(t, out, "First Bank")

	_, err = svc.Render(context.Background(), 999, branding)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

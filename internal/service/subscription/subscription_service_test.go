package subscription

import (
	"context"
	"errors"
	"testing"

	"killbill-service/internal/domain/subscription"
	"killbill-service/internal/pkg/clock"
	xerrors "killbill-service/internal/pkg/errors"
	notifysvc "killbill-service/internal/service/notification"
	"killbill-service/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	stores *testutil.Stores
	mailer *testutil.FakeMailer
	svc    *SubscriptionService
}

func newFixture(t *testing.T, today clock.Fixed) *fixture {
	t.Helper()
	stores := testutil.NewStores()
	mailer := testutil.NewFakeMailer()
	notices, err := notifysvc.NewNotices("Kill Bill")
	require.NoError(t, err)
	notifier := notifysvc.NewNotificationService(notices, notifysvc.NewDispatcher(mailer, stores.EmailLogs, zap.NewNop()), zap.NewNop())

	return &fixture{
		stores: stores,
		mailer: mailer,
		svc:    NewSubscriptionService(stores.Subscriptions, stores.Plans, stores.Clients, notifier, today, zap.NewNop()),
	}
}

func TestCreateSubscription_ComputesEndDateAndSendsWelcome(t *testing.T) {
	f := newFixture(t, clock.Fixed(clock.Date(2024, 1, 15)))
	acme := f.stores.SeedClient(t, "Acme", "billing@acme.test")
	basic := f.stores.SeedPlan(t, "Basic", "100.00", "1000.00")

	sub, err := f.svc.CreateSubscription(context.Background(), &subscription.CreateSubscriptionRequest{
		ClientID:     acme.ID,
		PlanID:       basic.ID,
		BillingCycle: subscription.CycleMonthly,
		StartDate:    "2024-01-31",
	})
	require.NoError(t, err)

	require.NotNil(t, sub.EndDate)
	assert.Equal(t, clock.Date(2024, 2, 28), *sub.EndDate)
	assert.Equal(t, subscription.StatusActive, sub.Status)
	require.NotNil(t, sub.Client)
	assert.Equal(t, "Acme", sub.Client.CompanyName)

	assert.Equal(t, []string{"Welcome to Kill Bill - Subscription Created"}, f.mailer.Subjects())
	assert.Equal(t, []string{"billing@acme.test"}, f.mailer.Sent[0].To)
	assert.Len(t, f.stores.EmailLogs.All(), 1)
}

func TestCreateSubscription_EmailFailureDoesNotFailCreate(t *testing.T) {
	f := newFixture(t, clock.Fixed(clock.Date(2024, 1, 15)))
	f.mailer.Err = errors.New("connection refused")
	acme := f.stores.SeedClient(t, "Acme", "billing@acme.test")
	basic := f.stores.SeedPlan(t, "Basic", "100.00", "1000.00")

	sub, err := f.svc.CreateSubscription(context.Background(), &subscription.CreateSubscriptionRequest{
		ClientID:     acme.ID,
		PlanID:       basic.ID,
		BillingCycle: subscription.CycleAnnual,
		StartDate:    "2024-01-01",
	})
	require.NoError(t, err)
	assert.NotZero(t, sub.ID)

	logs := f.stores.EmailLogs.All()
	require.Len(t, logs, 1)
	assert.EqualValues(t, "failed", logs[0].Status)
}

func TestCreateSubscription_Validation(t *testing.T) {
	f := newFixture(t, clock.Fixed(clock.Date(2024, 1, 15)))
	acme := f.stores.SeedClient(t, "Acme", "billing@acme.test")
	retired := f.stores.SeedPlan(t, "Retired", "10", "100")
	retired.IsActive = false
	require.NoError(t, f.stores.Plans.Update(context.Background(), retired))

	tests := []struct {
		name  string
		req   subscription.CreateSubscriptionRequest
		field string
	}{
		{"missing start date", subscription.CreateSubscriptionRequest{ClientID: acme.ID, PlanID: retired.ID, BillingCycle: subscription.CycleMonthly}, "start_date"},
		{"unknown client", subscription.CreateSubscriptionRequest{ClientID: 99, PlanID: retired.ID, BillingCycle: subscription.CycleMonthly, StartDate: "2024-01-01"}, "client_id"},
		{"unknown plan", subscription.CreateSubscriptionRequest{ClientID: acme.ID, PlanID: 99, BillingCycle: subscription.CycleMonthly, StartDate: "2024-01-01"}, "plan_id"},
		{"inactive plan", subscription.CreateSubscriptionRequest{ClientID: acme.ID, PlanID: retired.ID, BillingCycle: subscription.CycleMonthly, StartDate: "2024-01-01"}, "plan_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateSubscription(context.Background(), &tt.req)
			var verr *xerrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	subs, err := f.svc.ListSubscriptions(context.Background(), &subscription.SubscriptionListFilters{})
	require.NoError(t, err)
	assert.Empty(t, subs, "nothing is persisted on validation failure")
	assert.Empty(t, f.mailer.Sent)
}

func TestUpdateSubscription_RecomputesEndDate(t *testing.T) {
	today := clock.Date(2024, 1, 15)
	f := newFixture(t, clock.Fixed(today))
	acme := f.stores.SeedClient(t, "Acme", "billing@acme.test")
	basic := f.stores.SeedPlan(t, "Basic", "100.00", "1000.00")
	sub := f.stores.SeedSubscription(t, acme, basic, subscription.CycleMonthly, clock.Date(2024, 1, 1), today)

	annual := subscription.CycleAnnual
	updated, err := f.svc.UpdateSubscription(context.Background(), sub.ID, &subscription.UpdateSubscriptionRequest{BillingCycle: &annual})
	require.NoError(t, err)
	assert.Equal(t, clock.Date(2024, 12, 31), *updated.EndDate)

	start := "2023-01-01"
	updated, err = f.svc.UpdateSubscription(context.Background(), sub.ID, &subscription.UpdateSubscriptionRequest{StartDate: &start})
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusExpired, updated.Status)
}

func TestCancelSubscription_IsTerminal(t *testing.T) {
	today := clock.Date(2024, 1, 15)
	f := newFixture(t, clock.Fixed(today))
	acme := f.stores.SeedClient(t, "Acme", "billing@acme.test")
	basic := f.stores.SeedPlan(t, "Basic", "100.00", "1000.00")
	sub := f.stores.SeedSubscription(t, acme, basic, subscription.CycleMonthly, clock.Date(2023, 1, 1), today)

	cancelled, err := f.svc.CancelSubscription(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusCancelled, cancelled.Status)

	changed, err := f.svc.RefreshStatuses(context.Background())
	require.NoError(t, err)
	assert.Zero(t, changed)

	got, err := f.svc.GetSubscription(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusCancelled, got.Status)
}

func TestUpdateSubscription_CancelledCannotBeReactivated(t *testing.T) {
	today := clock.Date(2024, 1, 15)
	f := newFixture(t, clock.Fixed(today))
	acme := f.stores.SeedClient(t, "Acme", "billing@acme.test")
	basic := f.stores.SeedPlan(t, "Basic", "100.00", "1000.00")
	sub := f.stores.SeedSubscription(t, acme, basic, subscription.CycleMonthly, clock.Date(2024, 1, 1), today)

	_, err := f.svc.CancelSubscription(context.Background(), sub.ID)
	require.NoError(t, err)

	active := subscription.StatusActive
	_, err = f.svc.UpdateSubscription(context.Background(), sub.ID, &subscription.UpdateSubscriptionRequest{Status: &active})
	require.Error(t, err)

	var verr *xerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "status")

	got, err := f.svc.GetSubscription(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusCancelled, got.Status)
}

func TestRefreshStatuses_BoundaryDays(t *testing.T) {
	seedDay := clock.Date(2024, 1, 1)
	f := newFixture(t, clock.Fixed(clock.Date(2024, 1, 31)))
	acme := f.stores.SeedClient(t, "Acme", "billing@acme.test")
	basic := f.stores.SeedPlan(t, "Basic", "100.00", "1000.00")

	// Ends 2024-01-31, today: still active.
	endsToday := f.stores.SeedSubscription(t, acme, basic, subscription.CycleMonthly, clock.Date(2024, 1, 1), seedDay)
	// Ends 2024-01-30, yesterday: expired.
	endedYesterday := f.stores.SeedSubscription(t, acme, basic, subscription.CycleMonthly, clock.Date(2023, 12, 31), seedDay)

	changed, err := f.svc.RefreshStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	got, err := f.svc.GetSubscription(context.Background(), endsToday.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, got.Status)

	got, err = f.svc.GetSubscription(context.Background(), endedYesterday.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusExpired, got.Status)
}

func TestListSubscriptions_Filters(t *testing.T) {
	today := clock.Date(2024, 1, 15)
	f := newFixture(t, clock.Fixed(today))
	acme := f.stores.SeedClient(t, "Acme", "billing@acme.test")
	basic := f.stores.SeedPlan(t, "Basic", "100.00", "1000.00")

	f.stores.SeedSubscription(t, acme, basic, subscription.CycleMonthly, clock.Date(2024, 1, 1), today)
	f.stores.SeedSubscription(t, acme, basic, subscription.CycleAnnual, clock.Date(2024, 1, 1), today)
	f.stores.SeedSubscription(t, acme, basic, subscription.CycleMonthly, clock.Date(2023, 1, 1), today)

	active, err := f.svc.ListSubscriptions(context.Background(), &subscription.SubscriptionListFilters{Filter: subscription.FilterActive})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	expiring, err := f.svc.ListSubscriptions(context.Background(), &subscription.SubscriptionListFilters{Filter: subscription.FilterExpiring})
	require.NoError(t, err)
	assert.Len(t, expiring, 1)

	expired, err := f.svc.ListSubscriptions(context.Background(), &subscription.SubscriptionListFilters{Filter: subscription.FilterExpired})
	require.NoError(t, err)
	assert.Len(t, expired, 1)
}

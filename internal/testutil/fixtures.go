package testutil

import (
	"context"
	"testing"
	"time"

	"killbill-service/internal/domain/client"
	"killbill-service/internal/domain/subscription"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// SeedClient stores a client with the given company name and email.
func (s *Stores) SeedClient(t *testing.T, company, email string) *client.Client {
	t.Helper()
	c := &client.Client{
		CompanyName:   company,
		ContactPerson: "Contact " + company,
		Email:         email,
		Phone:         "+1 555 0100",
		Status:        client.StatusActive,
	}
	require.NoError(t, s.Clients.Create(context.Background(), c))
	return c
}

// SeedPlan stores an active plan with the given prices.
func (s *Stores) SeedPlan(t *testing.T, name, monthly, annual string) *subscription.SubscriptionPlan {
	t.Helper()
	p := &subscription.SubscriptionPlan{
		Name:         name,
		PriceMonthly: decimal.RequireFromString(monthly),
		PriceAnnual:  decimal.RequireFromString(annual),
		IsActive:     true,
	}
	require.NoError(t, s.Plans.Create(context.Background(), p))
	return p
}

// SeedSubscription stores a subscription with derived fields computed for today.
func (s *Stores) SeedSubscription(t *testing.T, c *client.Client, p *subscription.SubscriptionPlan, cycle subscription.BillingCycle, start, today time.Time) *subscription.Subscription {
	t.Helper()
	sub := &subscription.Subscription{
		ClientID:     c.ID,
		PlanID:       p.ID,
		BillingCycle: cycle,
		StartDate:    start,
		Status:       subscription.StatusActive,
	}
	sub.Prepare(today)
	require.NoError(t, s.Subscriptions.Create(context.Background(), sub))

	loaded, err := s.Subscriptions.FindByID(context.Background(), sub.ID)
	require.NoError(t, err)
	return loaded
}

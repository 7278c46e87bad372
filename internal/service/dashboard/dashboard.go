// internal/service/dashboard/dashboard.go
package dashboard

import (
	"context"
	"fmt"
	"time"

	"killbill-service/internal/domain/invoice"
	"killbill-service/internal/domain/subscription"
	"killbill-service/internal/pkg/clock"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Summary is the back-office landing page.
type Summary struct {
	Today           time.Time                   `json:"today"`
	ActiveCount     int64                       `json:"active_subscriptions"`
	ExpiringCount   int                         `json:"expiring_subscriptions"`
	ExpiredCount    int64                       `json:"expired_subscriptions"`
	OverdueCount    int                         `json:"overdue_invoices"`
	OverdueTotal    decimal.Decimal             `json:"overdue_total"`
	ExpiringSoon    []subscription.Subscription `json:"expiring_soon"`
	OverdueInvoices []invoice.Invoice           `json:"overdue"`
}

type DashboardService struct {
	subscriptionRepo subscription.Repository
	invoiceRepo      invoice.Repository
	clock            clock.Clock
	logger           *zap.Logger
}

func NewDashboardService(subscriptionRepo subscription.Repository, invoiceRepo invoice.Repository, clk clock.Clock, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		subscriptionRepo: subscriptionRepo,
		invoiceRepo:      invoiceRepo,
		clock:            clk,
		logger:           logger,
	}
}

// GetSummary counts active and expiring subscriptions and totals the open
// invoices already past their due date.
func (s *DashboardService) GetSummary(ctx context.Context) (*Summary, error) {
	today := clock.Today(s.clock)

	active, err := s.subscriptionRepo.CountByStatus(ctx, subscription.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count active subscriptions: %w", err)
	}

	expired, err := s.subscriptionRepo.CountByStatus(ctx, subscription.StatusExpired)
	if err != nil {
		return nil, fmt.Errorf("failed to count expired subscriptions: %w", err)
	}

	expiring, err := s.subscriptionRepo.List(ctx, &subscription.SubscriptionListFilters{
		Filter: subscription.FilterExpiring,
		Today:  today,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring subscriptions: %w", err)
	}

	overdue, err := s.invoiceRepo.ListOpenDueBefore(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue invoices: %w", err)
	}

	total := lo.Reduce(overdue, func(acc decimal.Decimal, inv invoice.Invoice, _ int) decimal.Decimal {
		return acc.Add(inv.Amount)
	}, decimal.Zero)

	return &Summary{
		Today:           today,
		ActiveCount:     active,
		ExpiringCount:   len(expiring),
		ExpiredCount:    expired,
		OverdueCount:    len(overdue),
		OverdueTotal:    total,
		ExpiringSoon:    expiring,
		OverdueInvoices: overdue,
	}, nil
}

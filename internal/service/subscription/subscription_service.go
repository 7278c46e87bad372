// internal/service/subscription/subscription_service.go
package subscription

import (
	"context"
	"fmt"

	"killbill-service/internal/domain/client"
	"killbill-service/internal/domain/notification"
	"killbill-service/internal/domain/subscription"
	"killbill-service/internal/pkg/clock"
	xerrors "killbill-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// WelcomeNotifier sends the subscription-created email.
type WelcomeNotifier interface {
	SendWelcome(ctx context.Context, sub *subscription.Subscription) notification.Result
}

type SubscriptionService struct {
	subscriptionRepo subscription.Repository
	planRepo         subscription.PlanRepository
	clientRepo       client.Repository
	notifier         WelcomeNotifier
	clock            clock.Clock
	logger           *zap.Logger
}

func NewSubscriptionService(
	subscriptionRepo subscription.Repository,
	planRepo subscription.PlanRepository,
	clientRepo client.Repository,
	notifier WelcomeNotifier,
	clk clock.Clock,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		clientRepo:       clientRepo,
		notifier:         notifier,
		clock:            clk,
		logger:           logger,
	}
}

// CreateSubscription stores a new subscription and sends the welcome email.
// A failed email is logged and recorded in the email log; it does not fail
// the creation.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, req *subscription.CreateSubscriptionRequest) (*subscription.Subscription, error) {
	v := xerrors.NewValidationError()

	if req.StartDate == "" {
		v.Add("start_date", "start date is required")
	}
	start, err := clock.ParseDate(req.StartDate)
	if req.StartDate != "" && err != nil {
		v.Add("start_date", "must be a date in YYYY-MM-DD format")
	}
	if !req.BillingCycle.Valid() {
		v.Add("billing_cycle", "must be monthly or annual")
	}

	if _, err := s.clientRepo.FindByID(ctx, req.ClientID); err != nil {
		if !xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load client: %w", err)
		}
		v.Add("client_id", "client not found")
	}

	plan, err := s.planRepo.FindByID(ctx, req.PlanID)
	switch {
	case xerrors.Is(err, xerrors.ErrNotFound):
		v.Add("plan_id", "plan not found")
	case err != nil:
		return nil, fmt.Errorf("failed to load plan: %w", err)
	case !plan.IsActive:
		v.Add("plan_id", "plan is not active")
	}

	if err := v.OrNil(); err != nil {
		return nil, err
	}

	sub := &subscription.Subscription{
		ClientID:     req.ClientID,
		PlanID:       req.PlanID,
		BillingCycle: req.BillingCycle,
		StartDate:    start,
		Status:       req.Status,
	}
	if sub.Status == "" {
		sub.Status = subscription.StatusActive
	}
	sub.Prepare(clock.Today(s.clock))

	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		s.logger.Error("failed to create subscription", zap.Error(err))
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	created, err := s.subscriptionRepo.FindByID(ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload subscription: %w", err)
	}

	s.logger.Info("subscription created",
		zap.Int64("subscription_id", created.ID),
		zap.Int64("client_id", created.ClientID),
		zap.Time("end_date", *created.EndDate),
	)

	if s.notifier != nil {
		res := s.notifier.SendWelcome(ctx, created)
		if !res.Sent {
			s.logger.Warn("welcome email not sent",
				zap.Int64("subscription_id", created.ID),
				zap.String("error", res.Err),
			)
		}
	}

	return created, nil
}

// UpdateSubscription applies the non-nil fields of req and recomputes the
// derived end date and status.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, id int64, req *subscription.UpdateSubscriptionRequest) (*subscription.Subscription, error) {
	sub, err := s.subscriptionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v := xerrors.NewValidationError()
	if req.PlanID != nil && *req.PlanID != sub.PlanID {
		if _, err := s.planRepo.FindByID(ctx, *req.PlanID); err != nil {
			if !xerrors.Is(err, xerrors.ErrNotFound) {
				return nil, fmt.Errorf("failed to load plan: %w", err)
			}
			v.Add("plan_id", "plan not found")
		}
		sub.PlanID = *req.PlanID
	}
	if req.BillingCycle != nil {
		if !req.BillingCycle.Valid() {
			v.Add("billing_cycle", "must be monthly or annual")
		}
		sub.BillingCycle = *req.BillingCycle
	}
	if req.StartDate != nil {
		start, err := clock.ParseDate(*req.StartDate)
		if err != nil {
			v.Add("start_date", "must be a date in YYYY-MM-DD format")
		}
		sub.StartDate = start
	}
	if req.Status != nil {
		switch {
		case !req.Status.Valid():
			v.Add("status", "must be active, expired or cancelled")
		case sub.Status == subscription.StatusCancelled && *req.Status != subscription.StatusCancelled:
			v.Add("status", "a cancelled subscription cannot be reactivated")
		}
		sub.Status = *req.Status
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	return s.save(ctx, sub)
}

// CancelSubscription marks the subscription cancelled. Cancelled is terminal
// for the derived status computation.
func (s *SubscriptionService) CancelSubscription(ctx context.Context, id int64) (*subscription.Subscription, error) {
	sub, err := s.subscriptionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == subscription.StatusCancelled {
		return sub, nil
	}

	sub.Status = subscription.StatusCancelled
	updated, err := s.save(ctx, sub)
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription cancelled", zap.Int64("subscription_id", id))
	return updated, nil
}

func (s *SubscriptionService) save(ctx context.Context, sub *subscription.Subscription) (*subscription.Subscription, error) {
	sub.Prepare(clock.Today(s.clock))
	if err := s.subscriptionRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}
	return s.subscriptionRepo.FindByID(ctx, sub.ID)
}

func (s *SubscriptionService) GetSubscription(ctx context.Context, id int64) (*subscription.Subscription, error) {
	return s.subscriptionRepo.FindByID(ctx, id)
}

// ListSubscriptions lists subscriptions, optionally narrowed to active,
// expiring (within 30 days) or expired.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, filters *subscription.SubscriptionListFilters) ([]subscription.Subscription, error) {
	filters.Today = clock.Today(s.clock)
	subs, err := s.subscriptionRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// RefreshStatuses recomputes the derived status of every non-cancelled
// subscription and persists the ones that changed. It returns how many did.
func (s *SubscriptionService) RefreshStatuses(ctx context.Context) (int, error) {
	today := clock.Today(s.clock)

	subs, err := s.subscriptionRepo.ListNonCancelled(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	changed := 0
	for _, sub := range subs {
		status := subscription.ComputeStatus(sub.Status, sub.EndDate, today)
		if status == sub.Status {
			continue
		}
		if err := s.subscriptionRepo.UpdateStatus(ctx, sub.ID, status); err != nil {
			return changed, fmt.Errorf("failed to update subscription %d status: %w", sub.ID, err)
		}
		changed++
	}

	if changed > 0 {
		s.logger.Info("subscription statuses refreshed", zap.Int("changed", changed))
	}
	return changed, nil
}

// internal/service/plan/plan.go
package plan

import (
	"context"
	"fmt"
	"strings"

	"killbill-service/internal/domain/subscription"
	xerrors "killbill-service/internal/pkg/errors"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PlanService struct {
	planRepo         subscription.PlanRepository
	subscriptionRepo subscription.Repository
	logger           *zap.Logger
}

func NewPlanService(planRepo subscription.PlanRepository, subscriptionRepo subscription.Repository, logger *zap.Logger) *PlanService {
	return &PlanService{
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func validatePrices(monthly, annual decimal.Decimal) error {
	v := xerrors.NewValidationError()
	if monthly.IsNegative() {
		v.Add("price_monthly", "must not be negative")
	}
	if annual.IsNegative() {
		v.Add("price_annual", "must not be negative")
	}
	return v.OrNil()
}

// CreatePlan creates a new subscription plan
func (s *PlanService) CreatePlan(ctx context.Context, req *subscription.CreatePlanRequest) (*subscription.SubscriptionPlan, error) {
	if err := validatePrices(req.PriceMonthly, req.PriceAnnual); err != nil {
		return nil, err
	}

	p := &subscription.SubscriptionPlan{
		Name:         strings.TrimSpace(req.Name),
		PriceMonthly: req.PriceMonthly,
		PriceAnnual:  req.PriceAnnual,
		IsActive:     lo.FromPtrOr(req.IsActive, true),
	}

	if err := s.planRepo.Create(ctx, p); err != nil {
		s.logger.Error("failed to create plan", zap.Error(err))
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	s.logger.Info("subscription plan created", zap.Int64("plan_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

// UpdatePlan applies the non-nil fields of req
func (s *PlanService) UpdatePlan(ctx context.Context, id int64, req *subscription.UpdatePlanRequest) (*subscription.SubscriptionPlan, error) {
	p, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.PriceMonthly != nil {
		p.PriceMonthly = *req.PriceMonthly
	}
	if req.PriceAnnual != nil {
		p.PriceAnnual = *req.PriceAnnual
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := validatePrices(p.PriceMonthly, p.PriceAnnual); err != nil {
		return nil, err
	}

	if err := s.planRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	s.logger.Info("subscription plan updated", zap.Int64("plan_id", p.ID))
	return p, nil
}

// GetPlan returns the plan with the subscriptions that reference it
func (s *PlanService) GetPlan(ctx context.Context, id int64) (*subscription.PlanDetail, error) {
	p, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	subs, err := s.subscriptionRepo.ListByPlan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan subscriptions: %w", err)
	}

	return &subscription.PlanDetail{
		Plan:          p,
		Subscriptions: subs,
		ActiveCount: lo.CountBy(subs, func(sub subscription.Subscription) bool {
			return sub.Status == subscription.StatusActive
		}),
	}, nil
}

// ListPlans lists plans ordered by name
func (s *PlanService) ListPlans(ctx context.Context, activeOnly bool) ([]subscription.SubscriptionPlan, error) {
	return s.planRepo.List(ctx, activeOnly)
}

// DeletePlan removes a plan. Plans still referenced by subscriptions are
// protected and the call fails with xerrors.ErrProtected.
func (s *PlanService) DeletePlan(ctx context.Context, id int64) error {
	if err := s.planRepo.Delete(ctx, id); err != nil {
		if xerrors.Is(err, xerrors.ErrProtected) {
			s.logger.Warn("plan delete refused, still referenced", zap.Int64("plan_id", id))
		}
		return err
	}

	s.logger.Info("subscription plan deleted", zap.Int64("plan_id", id))
	return nil
}

// internal/domain/subscription/entity.go
package subscription

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleAnnual  BillingCycle = "annual"
)

func (c BillingCycle) Valid() bool {
	return c == CycleMonthly || c == CycleAnnual
}

// Months is the length of one billing period.
func (c BillingCycle) Months() int {
	if c == CycleAnnual {
		return 12
	}
	return 1
}

// SubscriptionPlan is a named price tier. Subscriptions reference it and it
// cannot be deleted while any do.
type SubscriptionPlan struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	PriceMonthly decimal.Decimal `json:"price_monthly" db:"price_monthly"`
	PriceAnnual  decimal.Decimal `json:"price_annual" db:"price_annual"`
	IsActive     bool            `json:"is_active" db:"is_active"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// PriceFor returns the price charged for one period of the given cycle.
func (p *SubscriptionPlan) PriceFor(cycle BillingCycle) decimal.Decimal {
	if cycle == CycleMonthly {
		return p.PriceMonthly
	}
	return p.PriceAnnual
}

type PlanRepository interface {
	Create(ctx context.Context, plan *SubscriptionPlan) error
	Update(ctx context.Context, plan *SubscriptionPlan) error
	FindByID(ctx context.Context, id int64) (*SubscriptionPlan, error)
	List(ctx context.Context, activeOnly bool) ([]SubscriptionPlan, error)
	// Delete fails with xerrors.ErrProtected while subscriptions reference the plan.
	Delete(ctx context.Context, id int64) error
}

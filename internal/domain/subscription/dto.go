// internal/domain/subscription/dto.go
package subscription

import "github.com/shopspring/decimal"

type CreatePlanRequest struct {
	Name         string          `json:"name" binding:"required,max=100"`
	PriceMonthly decimal.Decimal `json:"price_monthly"`
	PriceAnnual  decimal.Decimal `json:"price_annual"`
	IsActive     *bool           `json:"is_active"`
}

type UpdatePlanRequest struct {
	Name         *string          `json:"name" binding:"omitempty,max=100"`
	PriceMonthly *decimal.Decimal `json:"price_monthly"`
	PriceAnnual  *decimal.Decimal `json:"price_annual"`
	IsActive     *bool            `json:"is_active"`
}

type PlanDetail struct {
	Plan          *SubscriptionPlan `json:"plan"`
	Subscriptions []Subscription    `json:"subscriptions"`
	ActiveCount   int               `json:"active_count"`
}

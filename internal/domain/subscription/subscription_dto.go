// internal/domain/subscription/subscription_dto.go
package subscription

import "time"

type CreateSubscriptionRequest struct {
	ClientID     int64              `json:"client_id" binding:"required"`
	PlanID       int64              `json:"plan_id" binding:"required"`
	BillingCycle BillingCycle       `json:"billing_cycle" binding:"required,oneof=monthly annual"`
	StartDate    string             `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	Status       SubscriptionStatus `json:"status" binding:"omitempty,oneof=active expired cancelled"`
}

type UpdateSubscriptionRequest struct {
	PlanID       *int64              `json:"plan_id"`
	BillingCycle *BillingCycle       `json:"billing_cycle" binding:"omitempty,oneof=monthly annual"`
	StartDate    *string             `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	Status       *SubscriptionStatus `json:"status" binding:"omitempty,oneof=active expired cancelled"`
}

type SubscriptionListFilters struct {
	// Filter is one of active, expiring or expired; empty lists everything.
	Filter   string    `form:"status" binding:"omitempty,oneof=active expiring expired"`
	ClientID int64     `form:"client_id"`
	Today    time.Time `form:"-"`
}

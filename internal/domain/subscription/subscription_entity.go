// internal/domain/subscription/subscription_entity.go
package subscription

import (
	"context"
	"time"

	"killbill-service/internal/domain/client"
)

type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusExpired   SubscriptionStatus = "expired"
	StatusCancelled SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) Valid() bool {
	return s == StatusActive || s == StatusExpired || s == StatusCancelled
}

// Subscription belongs to one client and one plan. EndDate and Status are
// derived; call Prepare before every write.
type Subscription struct {
	ID           int64              `json:"id" db:"id"`
	ClientID     int64              `json:"client_id" db:"client_id"`
	PlanID       int64              `json:"plan_id" db:"plan_id"`
	BillingCycle BillingCycle       `json:"billing_cycle" db:"billing_cycle"`
	StartDate    time.Time          `json:"start_date" db:"start_date"`
	EndDate      *time.Time         `json:"end_date,omitempty" db:"end_date"`
	Status       SubscriptionStatus `json:"status" db:"status"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" db:"updated_at"`

	// Loaded by the repository on reads.
	Client *client.Client    `json:"client,omitempty" db:"-"`
	Plan   *SubscriptionPlan `json:"plan,omitempty" db:"-"`
}

// ListFilter values accepted by the subscription list.
const (
	FilterActive   = "active"
	FilterExpiring = "expiring"
	FilterExpired  = "expired"
)

type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
	UpdateStatus(ctx context.Context, id int64, status SubscriptionStatus) error
	FindByID(ctx context.Context, id int64) (*Subscription, error)
	List(ctx context.Context, filters *SubscriptionListFilters) ([]Subscription, error)

	// ListExpiringWithin returns active subscriptions with after < end_date <= through.
	ListExpiringWithin(ctx context.Context, after, through time.Time) ([]Subscription, error)
	// ListEndingOn returns every subscription whose end_date equals day, whatever its status.
	ListEndingOn(ctx context.Context, day time.Time) ([]Subscription, error)
	// ListNonCancelled returns the subscriptions whose status is still derived.
	ListNonCancelled(ctx context.Context) ([]Subscription, error)
	ListByPlan(ctx context.Context, planID int64) ([]Subscription, error)
	ListByClient(ctx context.Context, clientID int64) ([]Subscription, error)
	CountByStatus(ctx context.Context, status SubscriptionStatus) (int64, error)
}

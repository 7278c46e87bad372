// internal/repository/postgres/subscription_repo.go
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"killbill-service/internal/domain/client"
	"killbill-service/internal/domain/subscription"
	xerrors "killbill-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Subscriptions are always read with their client and plan.
const subscriptionSelect = `
	SELECT s.id, s.client_id, s.plan_id, s.billing_cycle, s.start_date, s.end_date, s.status, s.created_at, s.updated_at,
	       c.id, c.company_name, c.contact_person, c.email, c.phone, c.status, c.created_at, c.updated_at,
	       p.id, p.name, p.price_monthly, p.price_annual, p.is_active, p.created_at, p.updated_at
	FROM subscriptions s
	JOIN clients c ON c.id = s.client_id
	JOIN subscription_plans p ON p.id = s.plan_id
`

func scanSubscription(row pgx.Row) (*subscription.Subscription, error) {
	var (
		s subscription.Subscription
		c client.Client
		p subscription.SubscriptionPlan
	)
	err := row.Scan(
		&s.ID, &s.ClientID, &s.PlanID, &s.BillingCycle, &s.StartDate, &s.EndDate, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		&c.ID, &c.CompanyName, &c.ContactPerson, &c.Email, &c.Phone, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		&p.ID, &p.Name, &p.PriceMonthly, &p.PriceAnnual, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Client = &c
	s.Plan = &p
	return &s, nil
}

func (r *SubscriptionRepository) query(ctx context.Context, action, where, order string, args ...any) ([]subscription.Subscription, error) {
	query := subscriptionSelect
	if where != "" {
		query += " WHERE " + where
	}
	if order == "" {
		order = "s.start_date DESC, s.id DESC"
	}
	query += " ORDER BY " + order

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, action)
	}
	defer rows.Close()

	var subs []subscription.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, mapError(err, "scan subscription")
		}
		subs = append(subs, *s)
	}
	return subs, mapError(rows.Err(), action)
}

// Create creates a new subscription. Derived fields must already be set.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (client_id, plan_id, billing_cycle, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, sub.ClientID, sub.PlanID, sub.BillingCycle, sub.StartDate, sub.EndDate, sub.Status).
		Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	return mapError(err, "create subscription")
}

// Update updates a subscription. Derived fields must already be set.
func (r *SubscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions
		SET plan_id = $1, billing_cycle = $2, start_date = $3, end_date = $4, status = $5, updated_at = $6
		WHERE id = $7
	`

	sub.UpdatedAt = time.Now()
	result, err := r.db.Exec(ctx, query, sub.PlanID, sub.BillingCycle, sub.StartDate, sub.EndDate, sub.Status, sub.UpdatedAt, sub.ID)
	if err != nil {
		return mapError(err, "update subscription")
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// UpdateStatus updates only the status column
func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, id int64, status subscription.SubscriptionStatus) error {
	result, err := r.db.Exec(ctx, `UPDATE subscriptions SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now(), id)
	if err != nil {
		return mapError(err, "update subscription status")
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// FindByID retrieves a subscription by ID
func (r *SubscriptionRepository) FindByID(ctx context.Context, id int64) (*subscription.Subscription, error) {
	s, err := scanSubscription(r.db.QueryRow(ctx, subscriptionSelect+" WHERE s.id = $1", id))
	if err != nil {
		return nil, mapError(err, "find subscription")
	}
	return s, nil
}

// List applies the list filters
func (r *SubscriptionRepository) List(ctx context.Context, filters *subscription.SubscriptionListFilters) ([]subscription.Subscription, error) {
	var conditions []string
	var args []any
	argPos := 1

	switch filters.Filter {
	case subscription.FilterActive:
		conditions = append(conditions, "s.status = 'active'")
	case subscription.FilterExpired:
		conditions = append(conditions, "s.status = 'expired'")
	case subscription.FilterExpiring:
		conditions = append(conditions, fmt.Sprintf("s.status = 'active' AND s.end_date BETWEEN $%d AND $%d", argPos, argPos+1))
		args = append(args, filters.Today, filters.Today.AddDate(0, 0, subscription.ExpiringSoonWindow))
		argPos += 2
	}

	if filters.ClientID != 0 {
		conditions = append(conditions, fmt.Sprintf("s.client_id = $%d", argPos))
		args = append(args, filters.ClientID)
	}

	return r.query(ctx, "list subscriptions", strings.Join(conditions, " AND "), "", args...)
}

func (r *SubscriptionRepository) ListExpiringWithin(ctx context.Context, after, through time.Time) ([]subscription.Subscription, error) {
	return r.query(ctx, "list expiring subscriptions",
		"s.status = 'active' AND s.end_date > $1 AND s.end_date <= $2", "s.end_date, s.id", after, through)
}

func (r *SubscriptionRepository) ListEndingOn(ctx context.Context, day time.Time) ([]subscription.Subscription, error) {
	return r.query(ctx, "list subscriptions ending on day", "s.end_date = $1", "s.id", day)
}

func (r *SubscriptionRepository) ListNonCancelled(ctx context.Context) ([]subscription.Subscription, error) {
	return r.query(ctx, "list non-cancelled subscriptions", "s.status <> 'cancelled'", "s.id")
}

func (r *SubscriptionRepository) ListByPlan(ctx context.Context, planID int64) ([]subscription.Subscription, error) {
	return r.query(ctx, "list subscriptions by plan", "s.plan_id = $1", "", planID)
}

func (r *SubscriptionRepository) ListByClient(ctx context.Context, clientID int64) ([]subscription.Subscription, error) {
	return r.query(ctx, "list subscriptions by client", "s.client_id = $1", "", clientID)
}

func (r *SubscriptionRepository) CountByStatus(ctx context.Context, status subscription.SubscriptionStatus) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE status = $1`, status).Scan(&n)
	return n, mapError(err, "count subscriptions")
}

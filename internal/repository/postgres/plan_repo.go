// internal/repository/postgres/plan_repo.go
package postgres

import (
	"context"
	"time"

	"killbill-service/internal/domain/subscription"
	xerrors "killbill-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlanRepository struct {
	db *pgxpool.Pool
}

func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `id, name, price_monthly, price_annual, is_active, created_at, updated_at`

func scanPlan(row pgx.Row) (*subscription.SubscriptionPlan, error) {
	var p subscription.SubscriptionPlan
	if err := row.Scan(&p.ID, &p.Name, &p.PriceMonthly, &p.PriceAnnual, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new subscription plan
func (r *PlanRepository) Create(ctx context.Context, plan *subscription.SubscriptionPlan) error {
	query := `
		INSERT INTO subscription_plans (name, price_monthly, price_annual, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, plan.Name, plan.PriceMonthly, plan.PriceAnnual, plan.IsActive).
		Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt)
	return mapError(err, "create subscription plan")
}

// Update updates a subscription plan
func (r *PlanRepository) Update(ctx context.Context, plan *subscription.SubscriptionPlan) error {
	query := `
		UPDATE subscription_plans
		SET name = $1, price_monthly = $2, price_annual = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`

	plan.UpdatedAt = time.Now()
	result, err := r.db.Exec(ctx, query, plan.Name, plan.PriceMonthly, plan.PriceAnnual, plan.IsActive, plan.UpdatedAt, plan.ID)
	if err != nil {
		return mapError(err, "update subscription plan")
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// FindByID retrieves a subscription plan by ID
func (r *PlanRepository) FindByID(ctx context.Context, id int64) (*subscription.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1`

	plan, err := scanPlan(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "find subscription plan")
	}
	return plan, nil
}

// List returns plans ordered by name
func (r *PlanRepository) List(ctx context.Context, activeOnly bool) ([]subscription.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, mapError(err, "list subscription plans")
	}
	defer rows.Close()

	var plans []subscription.SubscriptionPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, mapError(err, "scan subscription plan")
		}
		plans = append(plans, *p)
	}
	return plans, mapError(rows.Err(), "list subscription plans")
}

// Delete deletes a subscription plan. The RESTRICT foreign key rejects
// plans that subscriptions still reference.
func (r *PlanRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM subscription_plans WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete subscription plan")
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

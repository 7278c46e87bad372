// internal/repository/postgres/payment_repo.go
package postgres

import (
	"context"
	"fmt"
	"strings"

	"killbill-service/internal/domain/payment"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func insertPayment(ctx context.Context, q querier, p *payment.Payment) error {
	query := `
		INSERT INTO payments (subscription_id, invoice_id, amount, payment_date, payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query, p.SubscriptionID, p.InvoiceID, p.Amount, p.PaymentDate, p.PaymentMethod, p.Status).
		Scan(&p.ID, &p.CreatedAt)
	return mapError(err, "create payment")
}

// Create records a payment
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	return insertPayment(ctx, r.db, p)
}

// List returns payments, newest first
func (r *PaymentRepository) List(ctx context.Context, filters *payment.ListFilters) ([]payment.Payment, error) {
	var conditions []string
	var args []any
	argPos := 1

	if filters.ClientID != 0 {
		conditions = append(conditions, fmt.Sprintf("s.client_id = $%d", argPos))
		args = append(args, filters.ClientID)
		argPos++
	}
	if !filters.FromDate.IsZero() {
		conditions = append(conditions, fmt.Sprintf("pm.payment_date >= $%d", argPos))
		args = append(args, filters.FromDate)
		argPos++
	}
	if !filters.ToDate.IsZero() {
		conditions = append(conditions, fmt.Sprintf("pm.payment_date <= $%d", argPos))
		args = append(args, filters.ToDate)
	}

	query := `
		SELECT pm.id, pm.subscription_id, pm.invoice_id, pm.amount, pm.payment_date, pm.payment_method, pm.status, pm.created_at,
		       s.client_id, c.company_name
		FROM payments pm
		JOIN subscriptions s ON s.id = pm.subscription_id
		JOIN clients c ON c.id = s.client_id
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY pm.payment_date DESC, pm.id DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list payments")
	}
	defer rows.Close()

	var payments []payment.Payment
	for rows.Next() {
		var p payment.Payment
		err := rows.Scan(&p.ID, &p.SubscriptionID, &p.InvoiceID, &p.Amount, &p.PaymentDate, &p.PaymentMethod, &p.Status, &p.CreatedAt,
			&p.ClientID, &p.CompanyName)
		if err != nil {
			return nil, mapError(err, "scan payment")
		}
		payments = append(payments, p)
	}
	return payments, mapError(rows.Err(), "list payments")
}

// internal/repository/postgres/invoice_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"killbill-service/internal/domain/client"
	"killbill-service/internal/domain/invoice"
	"killbill-service/internal/domain/payment"
	"killbill-service/internal/domain/subscription"
	xerrors "killbill-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

// invoiceNumberLock serialises numbering and period find-or-create.
const invoiceNumberLock int64 = 0x6b62696e76

type InvoiceRepository struct {
	dbWrapper *DB
}

func NewInvoiceRepository(dbWrapper *DB) *InvoiceRepository {
	return &InvoiceRepository{dbWrapper: dbWrapper}
}

const invoiceColumns = `i.id, i.subscription_id, i.invoice_number, i.amount, i.issue_date, i.due_date, i.status, i.source,
	i.last_reminder_sent_at, i.paid_at, i.created_at, i.updated_at`

const invoiceSelect = `
	SELECT ` + invoiceColumns + `,
	       s.id, s.client_id, s.plan_id, s.billing_cycle, s.start_date, s.end_date, s.status, s.created_at, s.updated_at,
	       c.id, c.company_name, c.contact_person, c.email, c.phone, c.status, c.created_at, c.updated_at,
	       p.id, p.name, p.price_monthly, p.price_annual, p.is_active, p.created_at, p.updated_at
	FROM invoices i
	JOIN subscriptions s ON s.id = i.subscription_id
	JOIN clients c ON c.id = s.client_id
	JOIN subscription_plans p ON p.id = s.plan_id
`

func invoiceFields(inv *invoice.Invoice) []any {
	return []any{
		&inv.ID, &inv.SubscriptionID, &inv.InvoiceNumber, &inv.Amount, &inv.IssueDate, &inv.DueDate, &inv.Status, &inv.Source,
		&inv.LastReminderSentAt, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt,
	}
}

func scanInvoice(row pgx.Row) (*invoice.Invoice, error) {
	var (
		inv invoice.Invoice
		s   subscription.Subscription
		c   client.Client
		p   subscription.SubscriptionPlan
	)
	dest := append(invoiceFields(&inv),
		&s.ID, &s.ClientID, &s.PlanID, &s.BillingCycle, &s.StartDate, &s.EndDate, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		&c.ID, &c.CompanyName, &c.ContactPerson, &c.Email, &c.Phone, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		&p.ID, &p.Name, &p.PriceMonthly, &p.PriceAnnual, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	s.Client = &c
	s.Plan = &p
	inv.Subscription = &s
	return &inv, nil
}

func findInvoice(ctx context.Context, q querier, id int64) (*invoice.Invoice, error) {
	inv, err := scanInvoice(q.QueryRow(ctx, invoiceSelect+" WHERE i.id = $1", id))
	if err != nil {
		return nil, mapError(err, "find invoice")
	}
	return inv, nil
}

// lastInvoice returns the most recently created invoice, or nil.
func lastInvoice(ctx context.Context, q querier) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	err := q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices i ORDER BY i.id DESC LIMIT 1`).Scan(invoiceFields(&inv)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err, "read last invoice")
	}
	return &inv, nil
}

func insertInvoice(ctx context.Context, q querier, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (subscription_id, invoice_number, amount, issue_date, due_date, status, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		inv.SubscriptionID, inv.InvoiceNumber, inv.Amount, inv.IssueDate, inv.DueDate, inv.Status, inv.Source,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	return mapError(err, "create invoice")
}

// lockedInsert reads the last invoice, builds and inserts the new one while
// holding the numbering lock for the rest of tx. A built number that is
// already taken is advanced to the next free one.
func lockedInsert(ctx context.Context, tx pgx.Tx, build invoice.BuildFunc) (*invoice.Invoice, error) {
	last, err := lastInvoice(ctx, tx)
	if err != nil {
		return nil, err
	}

	inv := build(last)
	inv.InvoiceNumber, err = invoice.FreeNumber(inv.InvoiceNumber, func(number string) (bool, error) {
		var exists bool
		err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE invoice_number = $1)`, number).Scan(&exists)
		return exists, mapError(err, "check invoice number")
	})
	if err != nil {
		return nil, err
	}
	if err := insertInvoice(ctx, tx, inv); err != nil {
		return nil, err
	}
	return findInvoice(ctx, tx, inv.ID)
}

func (r *InvoiceRepository) begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.dbWrapper.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, invoiceNumberLock); err != nil {
		tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to take invoice lock: %w", err)
	}
	return tx, nil
}

func (r *InvoiceRepository) FindOrCreateForPeriod(ctx context.Context, subID int64, dueDate time.Time, build invoice.BuildFunc) (*invoice.Invoice, bool, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	var existingID int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM invoices WHERE subscription_id = $1 AND due_date = $2 ORDER BY id LIMIT 1`,
		subID, dueDate,
	).Scan(&existingID)

	switch {
	case err == nil:
		inv, err := findInvoice(ctx, tx, existingID)
		if err != nil {
			return nil, false, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return inv, false, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, false, mapError(err, "find period invoice")
	}

	inv, err := lockedInsert(ctx, tx, build)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inv, true, nil
}

func (r *InvoiceRepository) CreateNumbered(ctx context.Context, build invoice.BuildFunc) (*invoice.Invoice, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	inv, err := lockedInsert(ctx, tx, build)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id int64) (*invoice.Invoice, error) {
	return findInvoice(ctx, r.dbWrapper.Pool(), id)
}

func (r *InvoiceRepository) query(ctx context.Context, action, where, order string, args ...any) ([]invoice.Invoice, error) {
	query := invoiceSelect
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY " + order

	rows, err := r.dbWrapper.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, action)
	}
	defer rows.Close()

	var invoices []invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, mapError(err, "scan invoice")
		}
		invoices = append(invoices, *inv)
	}
	return invoices, mapError(rows.Err(), action)
}

func (r *InvoiceRepository) List(ctx context.Context, filters *invoice.ListFilters) ([]invoice.Invoice, error) {
	var conditions []string
	var args []any
	argPos := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("i.status = $%d", argPos))
		args = append(args, filters.Status)
		argPos++
	}
	if filters.SubscriptionID != 0 {
		conditions = append(conditions, fmt.Sprintf("i.subscription_id = $%d", argPos))
		args = append(args, filters.SubscriptionID)
	}

	return r.query(ctx, "list invoices", strings.Join(conditions, " AND "), "i.issue_date DESC, i.id DESC", args...)
}

func (r *InvoiceRepository) ListOpen(ctx context.Context) ([]invoice.Invoice, error) {
	return r.query(ctx, "list open invoices", "i.status <> 'paid'", "i.id")
}

func (r *InvoiceRepository) ListOpenDueBetween(ctx context.Context, from, through time.Time) ([]invoice.Invoice, error) {
	return r.query(ctx, "list invoices due soon",
		"i.status IN ('unpaid', 'overdue') AND i.due_date BETWEEN $1 AND $2", "i.due_date, i.id", from, through)
}

func (r *InvoiceRepository) ListOpenDueBefore(ctx context.Context, day time.Time) ([]invoice.Invoice, error) {
	return r.query(ctx, "list overdue invoices",
		"i.status IN ('unpaid', 'overdue') AND i.due_date < $1", "i.due_date, i.id", day)
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id int64, status invoice.Status) error {
	result, err := r.dbWrapper.Pool().Exec(ctx,
		`UPDATE invoices SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now(), id)
	if err != nil {
		return mapError(err, "update invoice status")
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *InvoiceRepository) MarkReminderSent(ctx context.Context, id int64, at time.Time) error {
	result, err := r.dbWrapper.Pool().Exec(ctx,
		`UPDATE invoices SET last_reminder_sent_at = $1, updated_at = $2 WHERE id = $3`, at, time.Now(), id)
	if err != nil {
		return mapError(err, "stamp invoice reminder")
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *InvoiceRepository) MarkPaid(ctx context.Context, id int64, paidAt time.Time, pay *payment.Payment) (bool, error) {
	tx, err := r.dbWrapper.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status invoice.Status
	err = tx.QueryRow(ctx, `SELECT status FROM invoices WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		return false, mapError(err, "lock invoice")
	}
	if status == invoice.StatusPaid {
		return false, nil
	}

	_, err = tx.Exec(ctx,
		`UPDATE invoices SET status = 'paid', paid_at = $1, updated_at = $1 WHERE id = $2`, paidAt, id)
	if err != nil {
		return false, mapError(err, "mark invoice paid")
	}

	pay.InvoiceID = &id
	if err := insertPayment(ctx, tx, pay); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// internal/domain/invoice/entity.go
package invoice

import (
	"context"
	"time"

	"killbill-service/internal/domain/payment"
	"killbill-service/internal/domain/subscription"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusUnpaid  Status = "unpaid"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

func (s Status) Valid() bool {
	return s == StatusUnpaid || s == StatusPaid || s == StatusOverdue
}

// Source tells renewal invoices, which are unique per period, from manual ones.
type Source string

const (
	SourceRenewal Source = "renewal"
	SourceManual  Source = "manual"
)

// Invoice bills one subscription. InvoiceNumber never changes once assigned.
type Invoice struct {
	ID                 int64           `json:"id" db:"id"`
	SubscriptionID     int64           `json:"subscription_id" db:"subscription_id"`
	InvoiceNumber      string          `json:"invoice_number" db:"invoice_number"`
	Amount             decimal.Decimal `json:"amount" db:"amount"`
	IssueDate          time.Time       `json:"issue_date" db:"issue_date"`
	DueDate            time.Time       `json:"due_date" db:"due_date"`
	Status             Status          `json:"status" db:"status"`
	Source             Source          `json:"source" db:"source"`
	LastReminderSentAt *time.Time      `json:"last_reminder_sent_at,omitempty" db:"last_reminder_sent_at"`
	PaidAt             *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`

	// Loaded by the repository on reads, with its client and plan.
	Subscription *subscription.Subscription `json:"subscription,omitempty" db:"-"`
}

// BuildFunc produces the invoice to insert given the most recently created
// invoice (nil when there is none). It runs while the numbering lock is held.
type BuildFunc func(last *Invoice) *Invoice

type Repository interface {
	// FindOrCreateForPeriod returns the invoice of subID due on dueDate, or
	// inserts build's result when none exists. created reports which happened.
	FindOrCreateForPeriod(ctx context.Context, subID int64, dueDate time.Time, build BuildFunc) (inv *Invoice, created bool, err error)
	// CreateNumbered inserts build's result under the numbering lock.
	CreateNumbered(ctx context.Context, build BuildFunc) (*Invoice, error)

	FindByID(ctx context.Context, id int64) (*Invoice, error)
	List(ctx context.Context, filters *ListFilters) ([]Invoice, error)
	// ListOpen returns every invoice that is not paid.
	ListOpen(ctx context.Context) ([]Invoice, error)
	// ListOpenDueBetween returns unpaid or overdue invoices with from <= due_date <= through.
	ListOpenDueBetween(ctx context.Context, from, through time.Time) ([]Invoice, error)
	// ListOpenDueBefore returns unpaid or overdue invoices with due_date < day.
	ListOpenDueBefore(ctx context.Context, day time.Time) ([]Invoice, error)

	UpdateStatus(ctx context.Context, id int64, status Status) error
	MarkReminderSent(ctx context.Context, id int64, at time.Time) error
	// MarkPaid flips the invoice to paid and inserts pay in one transaction.
	// It returns false without writing when the invoice was already paid.
	MarkPaid(ctx context.Context, id int64, paidAt time.Time, pay *payment.Payment) (bool, error)
}

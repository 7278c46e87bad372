// internal/domain/payment/entity.go
package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodBankTransfer Method = "bank_transfer"
	MethodCheque       Method = "cheque"
)

type Status string

const (
	StatusReceived Status = "received"
	StatusPending  Status = "pending"
)

// Payment records money received against a subscription. InvoiceID is set
// when the payment was created by marking an invoice paid.
type Payment struct {
	ID             int64           `json:"id" db:"id"`
	SubscriptionID int64           `json:"subscription_id" db:"subscription_id"`
	InvoiceID      *int64          `json:"invoice_id,omitempty" db:"invoice_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate    time.Time       `json:"payment_date" db:"payment_date"`
	PaymentMethod  Method          `json:"payment_method" db:"payment_method"`
	Status         Status          `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`

	// Joined on reads.
	ClientID    int64  `json:"client_id" db:"client_id"`
	CompanyName string `json:"company_name,omitempty" db:"company_name"`
}

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	List(ctx context.Context, filters *ListFilters) ([]Payment, error)
}

// internal/domain/payment/dto.go
package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	SubscriptionID int64 `json:"subscription_id" binding:"required"`
	// ClientID is optional; when given it must own the subscription.
	ClientID      int64           `json:"client_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	PaymentMethod Method          `json:"payment_method" binding:"required,oneof=bank_transfer cheque"`
	Status        Status          `json:"status" binding:"omitempty,oneof=received pending"`
}

type ListFilters struct {
	ClientID int64     `form:"client_id"`
	From     string    `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string    `form:"to" binding:"omitempty,datetime=2006-01-02"`
	FromDate time.Time `form:"-"`
	ToDate   time.Time `form:"-"`
}

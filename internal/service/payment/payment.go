// internal/service/payment/payment.go
package payment

import (
	"context"
	"fmt"

	"killbill-service/internal/domain/payment"
	"killbill-service/internal/domain/subscription"
	"killbill-service/internal/pkg/clock"
	xerrors "killbill-service/internal/pkg/errors"

	"go.uber.org/zap"
)

type PaymentService struct {
	paymentRepo      payment.Repository
	subscriptionRepo subscription.Repository
	clock            clock.Clock
	logger           *zap.Logger
}

func NewPaymentService(paymentRepo payment.Repository, subscriptionRepo subscription.Repository, clk clock.Clock, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		paymentRepo:      paymentRepo,
		subscriptionRepo: subscriptionRepo,
		clock:            clk,
		logger:           logger,
	}
}

// RecordPayment stores a manually entered payment. The client is taken from
// the subscription; a client given in the request must match it.
func (s *PaymentService) RecordPayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.Payment, error) {
	v := xerrors.NewValidationError()

	sub, err := s.subscriptionRepo.FindByID(ctx, req.SubscriptionID)
	if err != nil {
		if !xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load subscription: %w", err)
		}
		v.Add("subscription_id", "subscription not found")
	}
	if sub != nil && req.ClientID != 0 && req.ClientID != sub.ClientID {
		v.Add("client_id", "subscription does not belong to this client")
	}
	if !req.Amount.IsPositive() {
		v.Add("amount", "must be greater than zero")
	}

	date := clock.Today(s.clock)
	if req.PaymentDate != "" {
		if date, err = clock.ParseDate(req.PaymentDate); err != nil {
			v.Add("payment_date", "must be a date in YYYY-MM-DD format")
		}
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	p := &payment.Payment{
		SubscriptionID: sub.ID,
		Amount:         req.Amount,
		PaymentDate:    date,
		PaymentMethod:  req.PaymentMethod,
		Status:         req.Status,
	}
	if p.Status == "" {
		p.Status = payment.StatusReceived
	}

	if err := s.paymentRepo.Create(ctx, p); err != nil {
		s.logger.Error("failed to record payment", zap.Int64("subscription_id", sub.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	p.ClientID = sub.ClientID
	if sub.Client != nil {
		p.CompanyName = sub.Client.CompanyName
	}

	s.logger.Info("payment recorded",
		zap.Int64("payment_id", p.ID),
		zap.Int64("subscription_id", p.SubscriptionID),
		zap.String("amount", p.Amount.StringFixed(2)),
	)
	return p, nil
}

// ListPayments lists payments newest first, filtered by client and an
// inclusive payment-date range.
func (s *PaymentService) ListPayments(ctx context.Context, filters *payment.ListFilters) ([]payment.Payment, error) {
	v := xerrors.NewValidationError()
	var err error
	if filters.From != "" {
		if filters.FromDate, err = clock.ParseDate(filters.From); err != nil {
			v.Add("from", "must be a date in YYYY-MM-DD format")
		}
	}
	if filters.To != "" {
		if filters.ToDate, err = clock.ParseDate(filters.To); err != nil {
			v.Add("to", "must be a date in YYYY-MM-DD format")
		}
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// internal/service/invoice/invoice_service.go
package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"killbill-service/internal/domain/invoice"
	"killbill-service/internal/domain/payment"
	"killbill-service/internal/domain/subscription"
	"killbill-service/internal/metrics"
	"killbill-service/internal/pkg/clock"
	xerrors "killbill-service/internal/pkg/errors"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ReminderWindowDays is how far ahead the reminders report looks.
const ReminderWindowDays = 7

// ErrNoEndDate is returned when a period invoice is requested for a
// subscription whose end date has not been computed.
var ErrNoEndDate = errors.New("subscription has no end date")

type InvoiceService struct {
	invoiceRepo      invoice.Repository
	subscriptionRepo subscription.Repository
	renderer         *Renderer
	metrics          *metrics.Metrics
	clock            clock.Clock
	logger           *zap.Logger
}

func NewInvoiceService(
	invoiceRepo invoice.Repository,
	subscriptionRepo subscription.Repository,
	m *metrics.Metrics,
	clk clock.Clock,
	logger *zap.Logger,
) (*InvoiceService, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	return &InvoiceService{
		invoiceRepo:      invoiceRepo,
		subscriptionRepo: subscriptionRepo,
		renderer:         renderer,
		metrics:          m,
		clock:            clk,
		logger:           logger,
	}, nil
}

func (s *InvoiceService) countCreated(source invoice.Source) {
	if s.metrics != nil {
		s.metrics.InvoicesCreated.WithLabelValues(string(source)).Inc()
	}
}

func planOf(sub *subscription.Subscription) (*subscription.SubscriptionPlan, error) {
	if sub.Plan == nil {
		return nil, fmt.Errorf("subscription %d has no plan loaded", sub.ID)
	}
	return sub.Plan, nil
}

// GetOrCreateForPeriod returns the invoice for the period ending on the
// subscription's end date, creating it when none exists. An existing invoice
// is returned untouched with created=false.
func (s *InvoiceService) GetOrCreateForPeriod(ctx context.Context, sub *subscription.Subscription) (*invoice.Invoice, bool, error) {
	if sub.EndDate == nil {
		return nil, false, fmt.Errorf("subscription %d: %w", sub.ID, ErrNoEndDate)
	}
	plan, err := planOf(sub)
	if err != nil {
		return nil, false, err
	}

	today := clock.Today(s.clock)
	dueDate := *sub.EndDate

	inv, created, err := s.invoiceRepo.FindOrCreateForPeriod(ctx, sub.ID, dueDate, func(last *invoice.Invoice) *invoice.Invoice {
		inv := &invoice.Invoice{
			SubscriptionID: sub.ID,
			InvoiceNumber:  invoice.NextNumber(last),
			Amount:         plan.PriceFor(sub.BillingCycle),
			IssueDate:      today,
			DueDate:        dueDate,
			Status:         invoice.StatusUnpaid,
			Source:         invoice.SourceRenewal,
		}
		inv.Prepare(today)
		return inv
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get or create period invoice: %w", err)
	}

	if created {
		s.countCreated(invoice.SourceRenewal)
		s.logger.Info("renewal invoice created",
			zap.Int64("invoice_id", inv.ID),
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.Int64("subscription_id", sub.ID),
			zap.String("amount", inv.Amount.StringFixed(2)),
		)
	}
	return inv, created, nil
}

// CreateInvoice issues a manual invoice. Manual invoices are never
// deduplicated against the renewal period.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req *invoice.CreateInvoiceRequest) (*invoice.Invoice, error) {
	today := clock.Today(s.clock)
	v := xerrors.NewValidationError()

	sub, err := s.subscriptionRepo.FindByID(ctx, req.SubscriptionID)
	if err != nil {
		if !xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load subscription: %w", err)
		}
		v.Add("subscription_id", "subscription not found")
	}

	issue := today
	if req.IssueDate != "" {
		if issue, err = clock.ParseDate(req.IssueDate); err != nil {
			v.Add("issue_date", "must be a date in YYYY-MM-DD format")
		}
	}
	due := issue.AddDate(0, 0, invoice.DefaultTermDays)
	if req.DueDate != "" {
		if due, err = clock.ParseDate(req.DueDate); err != nil {
			v.Add("due_date", "must be a date in YYYY-MM-DD format")
		}
	}
	if due.Before(issue) {
		v.Add("due_date", "due date cannot be before issue date")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	plan, err := planOf(sub)
	if err != nil {
		return nil, err
	}

	inv, err := s.invoiceRepo.CreateNumbered(ctx, func(last *invoice.Invoice) *invoice.Invoice {
		inv := &invoice.Invoice{
			SubscriptionID: sub.ID,
			InvoiceNumber:  invoice.NextNumber(last),
			Amount:         plan.PriceFor(sub.BillingCycle),
			IssueDate:      issue,
			DueDate:        due,
			Status:         invoice.StatusUnpaid,
			Source:         invoice.SourceManual,
		}
		inv.Prepare(today)
		return inv
	})
	if err != nil {
		s.logger.Error("failed to create invoice", zap.Int64("subscription_id", sub.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.countCreated(invoice.SourceManual)
	s.logger.Info("manual invoice created",
		zap.Int64("invoice_id", inv.ID),
		zap.String("invoice_number", inv.InvoiceNumber),
	)
	return inv, nil
}

// MarkPaid settles an invoice and records one received bank transfer for the
// full amount dated today. Paying an already paid invoice changes nothing and
// reports alreadyPaid.
func (s *InvoiceService) MarkPaid(ctx context.Context, id int64) (*invoice.Invoice, bool, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if inv.Status == invoice.StatusPaid {
		return inv, true, nil
	}

	now := s.clock.Now()
	pay := &payment.Payment{
		SubscriptionID: inv.SubscriptionID,
		InvoiceID:      lo.ToPtr(inv.ID),
		Amount:         inv.Amount,
		PaymentDate:    clock.DateOf(now),
		PaymentMethod:  payment.MethodBankTransfer,
		Status:         payment.StatusReceived,
	}

	paid, err := s.invoiceRepo.MarkPaid(ctx, id, now, pay)
	if err != nil {
		return nil, false, fmt.Errorf("failed to mark invoice paid: %w", err)
	}

	updated, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !paid {
		// Settled concurrently between the read and the locked update.
		return updated, true, nil
	}

	s.logger.Info("invoice marked paid",
		zap.Int64("invoice_id", id),
		zap.String("invoice_number", updated.InvoiceNumber),
		zap.Int64("payment_id", pay.ID),
	)
	return updated, false, nil
}

// RefreshStatuses recomputes the status of every open invoice and persists
// the ones that changed. It returns how many did.
func (s *InvoiceService) RefreshStatuses(ctx context.Context) (int, error) {
	today := clock.Today(s.clock)

	open, err := s.invoiceRepo.ListOpen(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list open invoices: %w", err)
	}

	changed := 0
	for _, inv := range open {
		status := invoice.ComputeStatus(inv.Status, inv.DueDate, today)
		if status == inv.Status {
			continue
		}
		if err := s.invoiceRepo.UpdateStatus(ctx, inv.ID, status); err != nil {
			return changed, fmt.Errorf("failed to update invoice %d status: %w", inv.ID, err)
		}
		changed++
	}

	if changed > 0 {
		s.logger.Info("invoice statuses refreshed", zap.Int("changed", changed))
	}
	return changed, nil
}

// Reminders reports open invoices due within the next seven days and those
// already past due. It writes nothing.
func (s *InvoiceService) Reminders(ctx context.Context) (*invoice.ReminderReport, error) {
	today := clock.Today(s.clock)

	upcoming, err := s.invoiceRepo.ListOpenDueBetween(ctx, today, today.AddDate(0, 0, ReminderWindowDays))
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming invoices: %w", err)
	}

	overdue, err := s.invoiceRepo.ListOpenDueBefore(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue invoices: %w", err)
	}

	return &invoice.ReminderReport{
		Today:    today,
		Upcoming: upcoming,
		Overdue: lo.Map(overdue, func(inv invoice.Invoice, _ int) invoice.OverdueItem {
			return invoice.OverdueItem{Invoice: inv, DaysOverdue: inv.DaysOverdue(today)}
		}),
	}, nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, id int64) (*invoice.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, id)
}

func (s *InvoiceService) ListInvoices(ctx context.Context, filters *invoice.ListFilters) ([]invoice.Invoice, error) {
	invoices, err := s.invoiceRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// MarkReminderSent stamps the time the renewal email for inv went out.
func (s *InvoiceService) MarkReminderSent(ctx context.Context, id int64, at time.Time) error {
	return s.invoiceRepo.MarkReminderSent(ctx, id, at)
}

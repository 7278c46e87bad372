// Package expiry runs the daily renewal and expiry notification scan.
package expiry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"killbill-service/internal/domain/invoice"
	"killbill-service/internal/domain/notification"
	"killbill-service/internal/domain/settings"
	"killbill-service/internal/domain/subscription"
	"killbill-service/internal/metrics"
	"killbill-service/internal/pkg/clock"
	"killbill-service/internal/pkg/lock"

	"go.uber.org/zap"
)

// LockName is the run lock shared by every scan process.
const LockName = "expiry-scan"

const (
	kindRenewal = "invoice_reminder"
	kindExpired = "subscription_expired"
)

// StatusRefresher recomputes derived statuses ahead of the scan.
type StatusRefresher interface {
	RefreshStatuses(ctx context.Context) (int, error)
}

// InvoiceEngine is the part of the invoice service the scan drives.
type InvoiceEngine interface {
	StatusRefresher
	GetOrCreateForPeriod(ctx context.Context, sub *subscription.Subscription) (*invoice.Invoice, bool, error)
	MarkReminderSent(ctx context.Context, id int64, at time.Time) error
}

// Notifier sends the scan's two notices.
type Notifier interface {
	SendRenewalReminder(ctx context.Context, sub *subscription.Subscription, inv *invoice.Invoice) notification.Result
	SendExpired(ctx context.Context, sub *subscription.Subscription) notification.Result
}

type Scanner struct {
	subscriptionRepo subscription.Repository
	subscriptions    StatusRefresher
	invoices         InvoiceEngine
	notifier         Notifier
	locker           lock.Locker
	metrics          *metrics.Metrics
	clock            clock.Clock
	logger           *zap.Logger
}

func NewScanner(
	subscriptionRepo subscription.Repository,
	subscriptions StatusRefresher,
	invoices InvoiceEngine,
	notifier Notifier,
	locker lock.Locker,
	m *metrics.Metrics,
	clk clock.Clock,
	logger *zap.Logger,
) *Scanner {
	if locker == nil {
		locker = lock.Noop()
	}
	return &Scanner{
		subscriptionRepo: subscriptionRepo,
		subscriptions:    subscriptions,
		invoices:         invoices,
		notifier:         notifier,
		locker:           locker,
		metrics:          m,
		clock:            clk,
		logger:           logger,
	}
}

func daysBeforeExpiry(cfg *settings.Settings) int {
	if cfg == nil || cfg.Site == nil {
		return settings.DefaultDaysBeforeExpiry
	}
	days := cfg.Site.InvoiceDaysBeforeExpiry
	if days < settings.MinDaysBeforeExpiry || days > settings.MaxDaysBeforeExpiry {
		return settings.DefaultDaysBeforeExpiry
	}
	return days
}

// Run performs one scan. Email failures are counted in the summary and never
// abort the run; repository failures do. A scan already running elsewhere
// makes this one return a summary with Skipped set.
func (s *Scanner) Run(ctx context.Context, cfg *settings.Settings) (*Summary, error) {
	started := time.Now()
	today := clock.Today(s.clock)
	sum := &Summary{Today: today, DaysBeforeExpiry: daysBeforeExpiry(cfg)}

	release, err := s.locker.Acquire(ctx, LockName)
	if errors.Is(err, lock.ErrHeld) {
		s.logger.Info("expiry scan already running elsewhere, skipping")
		sum.Skipped = true
		s.observeRun("skipped", started)
		return sum, nil
	}
	if err != nil {
		s.observeRun("failed", started)
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to release scan lock", zap.Error(err))
		}
	}()

	if err := s.scan(ctx, today, sum); err != nil {
		s.logger.Error("expiry scan failed", zap.Error(err))
		s.observeRun("failed", started)
		return sum, err
	}

	s.observeRun("success", started)
	if s.metrics != nil {
		s.metrics.ScanLastSuccessUnix.SetToCurrentTime()
	}

	s.logger.Info("expiry scan finished",
		zap.Int("subscriptions_found", sum.SubscriptionsFound),
		zap.Int("invoices_created", sum.InvoicesCreated),
		zap.Int("invoices_existing", sum.InvoicesExisting),
		zap.Int("expired_found", sum.ExpiredFound),
		zap.Int("emails_sent", sum.EmailsSent),
		zap.Int("emails_failed", sum.EmailsFailed),
	)
	return sum, nil
}

func (s *Scanner) scan(ctx context.Context, today time.Time, sum *Summary) error {
	if _, err := s.subscriptions.RefreshStatuses(ctx); err != nil {
		return err
	}
	if _, err := s.invoices.RefreshStatuses(ctx); err != nil {
		return err
	}

	if err := s.renewals(ctx, today, sum); err != nil {
		return err
	}
	return s.expirations(ctx, today, sum)
}

// renewals issues the period invoice for every active subscription ending
// after today and no later than the configured horizon. Only a newly created
// invoice triggers an email.
func (s *Scanner) renewals(ctx context.Context, today time.Time, sum *Summary) error {
	horizon := today.AddDate(0, 0, sum.DaysBeforeExpiry)

	subs, err := s.subscriptionRepo.ListExpiringWithin(ctx, today, horizon)
	if err != nil {
		return fmt.Errorf("failed to list expiring subscriptions: %w", err)
	}
	sum.SubscriptionsFound = len(subs)

	for i := range subs {
		sub := &subs[i]

		inv, created, err := s.invoices.GetOrCreateForPeriod(ctx, sub)
		if err != nil {
			return err
		}

		d := Detail{
			Client:        companyOf(sub),
			Email:         emailOf(sub),
			InvoiceNumber: inv.InvoiceNumber,
		}

		if !created {
			d.Action = ActionAlreadyExists
			sum.InvoicesExisting++
			sum.Details = append(sum.Details, d)
			continue
		}

		d.Action = ActionCreated
		sum.InvoicesCreated++

		res := s.notifier.SendRenewalReminder(ctx, sub, inv)
		s.record(sum, &d, kindRenewal, res)
		if res.Sent {
			if err := s.invoices.MarkReminderSent(ctx, inv.ID, s.clock.Now()); err != nil {
				return fmt.Errorf("failed to stamp reminder on invoice %s: %w", inv.InvoiceNumber, err)
			}
		}
		sum.Details = append(sum.Details, d)
	}
	return nil
}

// expirations notifies every subscription whose end date was yesterday,
// whatever its stored status. The boundary is a single day so each
// subscription is told once.
func (s *Scanner) expirations(ctx context.Context, today time.Time, sum *Summary) error {
	yesterday := today.AddDate(0, 0, -1)
	sum.ExpiredOn = yesterday

	subs, err := s.subscriptionRepo.ListEndingOn(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to list expired subscriptions: %w", err)
	}
	sum.ExpiredFound = len(subs)

	for i := range subs {
		sub := &subs[i]
		d := Detail{
			Client: companyOf(sub),
			Email:  emailOf(sub),
			Action: ActionExpiredNotice,
		}
		s.record(sum, &d, kindExpired, s.notifier.SendExpired(ctx, sub))
		sum.Details = append(sum.Details, d)
	}
	return nil
}

func (s *Scanner) record(sum *Summary, d *Detail, kind string, res notification.Result) {
	d.EmailSent = res.Sent
	d.Error = res.Err

	status := string(notification.LogSent)
	if res.Sent {
		sum.EmailsSent++
	} else {
		sum.EmailsFailed++
		status = string(notification.LogFailed)
	}
	if s.metrics != nil {
		s.metrics.EmailsTotal.WithLabelValues(kind, status).Inc()
	}
}

func (s *Scanner) observeRun(outcome string, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ScanRunsTotal.WithLabelValues(outcome).Inc()
	s.metrics.ScanDuration.Observe(time.Since(started).Seconds())
}

func companyOf(sub *subscription.Subscription) string {
	if sub.Client == nil {
		return fmt.Sprintf("subscription #%d", sub.ID)
	}
	return sub.Client.CompanyName
}

func emailOf(sub *subscription.Subscription) string {
	if sub.Client == nil {
		return ""
	}
	return sub.Client.Email
}

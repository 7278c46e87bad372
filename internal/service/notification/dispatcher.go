// Package notification renders lifecycle emails and delivers them, keeping
// an EmailLog row for every recipient of every attempt.
package notification

import (
	"context"
	"strings"

	"killbill-service/internal/domain/notification"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Mailer is the outbound transport.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, text, html string) error
}

type Dispatcher struct {
	mailer Mailer
	logs   notification.LogRepository
	logger *zap.Logger
}

func NewDispatcher(mailer Mailer, logs notification.LogRepository, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, logs: logs, logger: logger}
}

// Send makes one delivery attempt. Failures are captured in the result and
// the log, never returned.
func (d *Dispatcher) Send(ctx context.Context, msg notification.Message) notification.Result {
	to := lo.Uniq(lo.Compact(lo.Map(msg.To, func(addr string, _ int) string {
		return strings.TrimSpace(addr)
	})))

	if len(to) == 0 {
		d.logger.Warn("email has no recipients", zap.String("subject", msg.Subject))
		return notification.Result{Err: "no recipients"}
	}

	result := notification.Result{Sent: true}
	if err := d.mailer.Send(ctx, to, msg.Subject, msg.Text, msg.HTML); err != nil {
		result = notification.Result{Err: err.Error()}
		d.logger.Error("failed to send email",
			zap.Strings("to", to),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
	} else {
		d.logger.Info("email sent", zap.Strings("to", to), zap.String("subject", msg.Subject))
	}

	for _, recipient := range to {
		entry := &notification.EmailLog{
			Recipient: recipient,
			Subject:   msg.Subject,
			Status:    notification.LogSent,
		}
		if !result.Sent {
			entry.Status = notification.LogFailed
			entry.ErrorMessage = lo.ToPtr(result.Err)
		}
		if err := d.logs.Create(ctx, entry); err != nil {
			d.logger.Error("failed to write email log",
				zap.String("recipient", recipient),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
		}
	}

	return result
}

func (d *Dispatcher) Logs(ctx context.Context, filters *notification.LogFilters) ([]notification.EmailLog, error) {
	return d.logs.List(ctx, filters)
}

package notification

import (
	"context"

	"killbill-service/internal/domain/invoice"
	"killbill-service/internal/domain/notification"
	"killbill-service/internal/domain/subscription"

	"go.uber.org/zap"
)

// NotificationService renders a notice and hands it to the dispatcher.
// Rendering failures are reported in the result like transport failures.
type NotificationService struct {
	notices    *Notices
	dispatcher *Dispatcher
	logger     *zap.Logger
}

func NewNotificationService(notices *Notices, dispatcher *Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{notices: notices, dispatcher: dispatcher, logger: logger}
}

func (s *NotificationService) deliver(ctx context.Context, kind string, msg notification.Message, err error) notification.Result {
	if err != nil {
		s.logger.Error("failed to render email", zap.String("kind", kind), zap.Error(err))
		return notification.Result{Err: err.Error()}
	}
	return s.dispatcher.Send(ctx, msg)
}

func (s *NotificationService) SendWelcome(ctx context.Context, sub *subscription.Subscription) notification.Result {
	msg, err := s.notices.SubscriptionCreated(sub)
	return s.deliver(ctx, kindCreated, msg, err)
}

func (s *NotificationService) SendRenewalReminder(ctx context.Context, sub *subscription.Subscription, inv *invoice.Invoice) notification.Result {
	msg, err := s.notices.RenewalReminder(sub, inv)
	return s.deliver(ctx, kindRenewal, msg, err)
}

func (s *NotificationService) SendExpired(ctx context.Context, sub *subscription.Subscription) notification.Result {
	msg, err := s.notices.SubscriptionExpired(sub)
	return s.deliver(ctx, kindExpired, msg, err)
}

// Logs lists the email log for the viewer.
func (s *NotificationService) Logs(ctx context.Context, filters *notification.LogFilters) ([]notification.EmailLog, error) {
	return s.dispatcher.Logs(ctx, filters)
}

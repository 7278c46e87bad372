package expiry

import (
	"context"
	"fmt"

	"killbill-service/internal/domain/settings"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SettingsLoader reads the persisted settings for each scheduled run.
type SettingsLoader interface {
	Load(ctx context.Context) (*settings.Settings, error)
}

// Schedule registers the scan on a new cron scheduler. The caller starts and
// stops it. Each run reloads the settings so changes apply on the next tick.
func Schedule(ctx context.Context, spec string, scanner *Scanner, loader SettingsLoader, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		cfg, err := loader.Load(ctx)
		if err != nil {
			logger.Error("scheduled scan could not load settings", zap.Error(err))
			return
		}

		sum, err := scanner.Run(ctx, cfg)
		if err != nil {
			logger.Error("scheduled scan failed", zap.Error(err))
			return
		}
		if sum.Skipped {
			return
		}
		logger.Info("scheduled scan completed",
			zap.Int("invoices_created", sum.InvoicesCreated),
			zap.Int("emails_sent", sum.EmailsSent),
			zap.Int("emails_failed", sum.EmailsFailed),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid scan schedule %q: %w", spec, err)
	}
	return c, nil
}

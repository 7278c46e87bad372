// internal/app/services.go
package app

import (
	"context"
	"fmt"

	"killbill-service/internal/config"
	"killbill-service/internal/db"
	"killbill-service/internal/metrics"
	"killbill-service/internal/pkg/clock"
	"killbill-service/internal/pkg/jwt"
	"killbill-service/internal/pkg/lock"
	"killbill-service/internal/pkg/session"
	"killbill-service/internal/repository/postgres"
	authUsecase "killbill-service/internal/service/auth"
	clientUsecase "killbill-service/internal/service/client"
	dashboardUsecase "killbill-service/internal/service/dashboard"
	"killbill-service/internal/service/email"
	"killbill-service/internal/service/expiry"
	invoiceUsecase "killbill-service/internal/service/invoice"
	notifyUsecase "killbill-service/internal/service/notification"
	paymentUsecase "killbill-service/internal/service/payment"
	planUsecase "killbill-service/internal/service/plan"
	settingsUsecase "killbill-service/internal/service/settings"
	subscriptionUsecase "killbill-service/internal/service/subscription"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services is the wired service layer shared by the API and the jobs.
type Services struct {
	Pool    *pgxpool.Pool
	Redis   redis.UniversalClient
	Metrics *metrics.Metrics

	Clients       *clientUsecase.ClientService
	Plans         *planUsecase.PlanService
	Subscriptions *subscriptionUsecase.SubscriptionService
	Invoices      *invoiceUsecase.InvoiceService
	Payments      *paymentUsecase.PaymentService
	Settings      *settingsUsecase.SettingsService
	Notifications *notifyUsecase.NotificationService
	Dashboard     *dashboardUsecase.DashboardService
	Scanner       *expiry.Scanner

	// Auth and Revocations are nil unless BuildAuth is called.
	Auth        *authUsecase.AuthService
	Revocations *session.Revocations

	adminRepo *postgres.AdminRepository
	logger    *zap.Logger
}

// BuildServices connects to PostgreSQL, applies migrations, optionally
// connects to Redis and wires every service.
func BuildServices(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (*Services, error) {
	// ----- PostgreSQL -----
	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		return nil, err
	}
	pool, err := db.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	var redisClient redis.UniversalClient
	var locker lock.Locker
	if len(cfg.RedisAddrs) > 0 {
		redisClient, err = db.NewRedisClient(ctx, db.RedisConfig{
			ClusterMode: cfg.RedisCluster,
			Addresses:   cfg.RedisAddrs,
			Password:    cfg.RedisPass,
			PoolSize:    10,
		})
		if err != nil {
			pool.Close()
			return nil, err
		}
		locker = lock.NewRedisLocker(redisClient, cfg.ScanLockTTL)
		logger.Info("redis connected", zap.Strings("addresses", cfg.RedisAddrs))
	} else {
		logger.Warn("REDIS_ADDR not set, expiry scans run without a distributed lock")
	}

	m := metrics.New()
	clk := clock.Real()

	// ----- Email -----
	emailSender := email.NewEmailSender(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.SMTPFrom,
		cfg.SMTPFromName,
		cfg.SMTPSecure,
	)

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	adminRepo := postgres.NewAdminRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	planRepo := postgres.NewPlanRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(dbWrapper)
	paymentRepo := postgres.NewPaymentRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	emailLogRepo := postgres.NewEmailLogRepository(pool)

	// ----- Services -----
	notices, err := notifyUsecase.NewNotices(cfg.SiteName)
	if err != nil {
		pool.Close()
		return nil, err
	}
	dispatcher := notifyUsecase.NewDispatcher(emailSender, emailLogRepo, logger)
	notificationService := notifyUsecase.NewNotificationService(notices, dispatcher, logger)

	invoiceService, err := invoiceUsecase.NewInvoiceService(invoiceRepo, subscriptionRepo, m, clk, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	subscriptionService := subscriptionUsecase.NewSubscriptionService(
		subscriptionRepo,
		planRepo,
		clientRepo,
		notificationService,
		clk,
		logger,
	)

	scanner := expiry.NewScanner(
		subscriptionRepo,
		subscriptionService,
		invoiceService,
		notificationService,
		locker,
		m,
		clk,
		logger,
	)

	return &Services{
		Pool:          pool,
		Redis:         redisClient,
		Metrics:       m,
		Clients:       clientUsecase.NewClientService(clientRepo, subscriptionRepo, logger),
		Plans:         planUsecase.NewPlanService(planRepo, subscriptionRepo, logger),
		Subscriptions: subscriptionService,
		Invoices:      invoiceService,
		Payments:      paymentUsecase.NewPaymentService(paymentRepo, subscriptionRepo, clk, logger),
		Settings:      settingsUsecase.NewSettingsService(settingsRepo, logger),
		Notifications: notificationService,
		Dashboard:     dashboardUsecase.NewDashboardService(subscriptionRepo, invoiceRepo, clk, logger),
		Scanner:       scanner,
		adminRepo:     adminRepo,
		logger:        logger,
	}, nil
}

// BuildAuth loads the signing keys and wires the admin auth service.
func (s *Services) BuildAuth(cfg config.AppConfig) (*jwt.Manager, error) {
	jwtManager, err := jwt.LoadAndBuild(cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("failed to load JWT manager: %w", err)
	}
	s.Revocations = session.NewRevocations(s.Redis)
	s.Auth = authUsecase.NewAuthService(
		s.adminRepo,
		jwtManager,
		session.NewRateLimiter(s.Redis),
		s.Revocations,
		s.logger,
	)
	return jwtManager, nil
}

// Close releases the database pool and the Redis client.
func (s *Services) Close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	s.Pool.Close()
}

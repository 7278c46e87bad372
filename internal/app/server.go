// internal/app/server.go
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"killbill-service/internal/config"
	authHandler "killbill-service/internal/handlers/auth"
	clientHandler "killbill-service/internal/handlers/client"
	dashboardHandler "killbill-service/internal/handlers/dashboard"
	invoiceHandler "killbill-service/internal/handlers/invoice"
	notifyHandler "killbill-service/internal/handlers/notification"
	paymentHandler "killbill-service/internal/handlers/payment"
	planHandler "killbill-service/internal/handlers/plan"
	settingsHandler "killbill-service/internal/handlers/settings"
	subscriptionHandler "killbill-service/internal/handlers/subscription"
	"killbill-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg      config.AppConfig
	engine   *gin.Engine
	http     *http.Server
	logger   *zap.Logger
	services *Services
}

func NewServer(logger *zap.Logger) *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine, logger: logger}
}

// Start wires the API and blocks serving HTTP until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	services, err := BuildServices(ctx, s.cfg, s.logger)
	if err != nil {
		return err
	}
	s.services = services

	// ----- JWT Manager -----
	jwtManager, err := services.BuildAuth(s.cfg)
	if err != nil {
		return err
	}

	// ----- Bootstrap Admin -----
	bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = services.Auth.EnsureBootstrapAdmin(bootCtx, s.cfg.AdminEmail, s.cfg.AdminPassword, s.cfg.AdminName)
	cancel()
	if err != nil {
		// Don't fail startup, just log the error
		s.logger.Error("failed to ensure bootstrap admin", zap.Error(err))
	}

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:         authHandler.NewAuthHandler(services.Auth, s.logger),
		ClientHandler:       clientHandler.NewClientHandler(services.Clients),
		PlanHandler:         planHandler.NewPlanHandler(services.Plans),
		SubscriptionHandler: subscriptionHandler.NewSubscriptionHandler(services.Subscriptions),
		InvoiceHandler:      invoiceHandler.NewInvoiceHandler(services.Invoices, services.Settings),
		PaymentHandler:      paymentHandler.NewPaymentHandler(services.Payments),
		SettingsHandler:     settingsHandler.NewSettingsHandler(services.Settings),
		EmailLogHandler:     notifyHandler.NewEmailLogHandler(services.Notifications),
		DashboardHandler:    dashboardHandler.NewDashboardHandler(services.Dashboard),
		AuthMiddleware:      middleware.NewAuthMiddleware(jwtManager.Verifier, services.Revocations),
	}

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(s.logger),
		middleware.LoggingMiddleware(s.logger),
		middleware.MetricsMiddleware(services.Metrics),
	)

	// ----- Router -----
	SetupRouter(s.engine, s.logger, services.Metrics, handlers)

	// ----- Start HTTP -----
	s.http = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases the connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			return err
		}
	}
	if s.services != nil {
		s.services.Close()
	}
	return nil
}

// internal/app/router.go
package app

import (
	authHandler "killbill-service/internal/handlers/auth"
	clientHandler "killbill-service/internal/handlers/client"
	dashboardHandler "killbill-service/internal/handlers/dashboard"
	invoiceHandler "killbill-service/internal/handlers/invoice"
	notifyHandler "killbill-service/internal/handlers/notification"
	paymentHandler "killbill-service/internal/handlers/payment"
	planHandler "killbill-service/internal/handlers/plan"
	settingsHandler "killbill-service/internal/handlers/settings"
	subscriptionHandler "killbill-service/internal/handlers/subscription"
	"killbill-service/internal/metrics"
	"killbill-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler         *authHandler.AuthHandler
	ClientHandler       *clientHandler.ClientHandler
	PlanHandler         *planHandler.PlanHandler
	SubscriptionHandler *subscriptionHandler.SubscriptionHandler
	InvoiceHandler      *invoiceHandler.InvoiceHandler
	PaymentHandler      *paymentHandler.PaymentHandler
	SettingsHandler     *settingsHandler.SettingsHandler
	EmailLogHandler     *notifyHandler.EmailLogHandler
	DashboardHandler    *dashboardHandler.DashboardHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, m *metrics.Metrics, h *Handlers) {
	// ==================== Health & Metrics ====================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api/v1")

	// ==================== Public Auth Routes ====================
	api.POST("/auth/login", h.AuthHandler.Login)

	// Everything below requires an admin token.
	secured := api.Group("")
	secured.Use(h.AuthMiddleware.Auth())

	// ==================== Auth ====================
	auth := secured.Group("/auth")
	{
		auth.POST("/logout", h.AuthHandler.Logout)
		auth.GET("/me", h.AuthHandler.GetMe)
		auth.PUT("/change-password", h.AuthHandler.ChangePassword)
		auth.POST("/admins", h.AuthHandler.CreateAdmin)
	}

	// ==================== Dashboard ====================
	secured.GET("/dashboard", h.DashboardHandler.GetSummary)

	// ==================== Clients ====================
	clients := secured.Group("/clients")
	{
		clients.GET("", h.ClientHandler.ListClients) // ?search=
		clients.POST("", h.ClientHandler.CreateClient)
		clients.GET("/:id", h.ClientHandler.GetClient)
		clients.PUT("/:id", h.ClientHandler.UpdateClient)
	}

	// ==================== Subscription Plans ====================
	plans := secured.Group("/plans")
	{
		plans.GET("", h.PlanHandler.ListPlans) // ?active=true
		plans.POST("", h.PlanHandler.CreatePlan)
		plans.GET("/:id", h.PlanHandler.GetPlan)
		plans.PUT("/:id", h.PlanHandler.UpdatePlan)
		plans.DELETE("/:id", h.PlanHandler.DeletePlan)
	}

	// ==================== Subscriptions ====================
	subscriptions := secured.Group("/subscriptions")
	{
		subscriptions.GET("", h.SubscriptionHandler.ListSubscriptions) // ?status=active|expiring|expired
		subscriptions.POST("", h.SubscriptionHandler.CreateSubscription)
		subscriptions.GET("/:id", h.SubscriptionHandler.GetSubscription)
		subscriptions.PUT("/:id", h.SubscriptionHandler.UpdateSubscription)
		subscriptions.POST("/:id/cancel", h.SubscriptionHandler.CancelSubscription)
	}

	// ==================== Invoices ====================
	invoices := secured.Group("/invoices")
	{
		invoices.GET("", h.InvoiceHandler.ListInvoices) // ?status=unpaid|paid|overdue
		invoices.POST("", h.InvoiceHandler.CreateInvoice)
		invoices.GET("/reminders", h.InvoiceHandler.Reminders)
		invoices.GET("/:id", h.InvoiceHandler.GetInvoice)
		invoices.GET("/:id/render", h.InvoiceHandler.RenderInvoice)
		invoices.POST("/:id/mark-paid", h.InvoiceHandler.MarkPaid)
	}

	// ==================== Payments ====================
	payments := secured.Group("/payments")
	{
		payments.GET("", h.PaymentHandler.ListPayments) // ?client_id=&from=&to=
		payments.POST("", h.PaymentHandler.RecordPayment)
	}

	// ==================== Settings ====================
	settings := secured.Group("/settings")
	{
		settings.GET("", h.SettingsHandler.GetSettings)
		settings.PUT("/site", h.SettingsHandler.UpdateSite)
		settings.PUT("/invoice", h.SettingsHandler.UpdateInvoice)
	}

	// ==================== Email Logs ====================
	secured.GET("/email-logs", h.EmailLogHandler.ListEmailLogs)

	logger.Info("routes registered", zap.Int("count", len(r.Routes())))
}

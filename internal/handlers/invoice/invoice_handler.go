// internal/handlers/invoice/invoice_handler.go
package invoice

import (
	"net/http"

	"killbill-service/internal/domain/invoice"
	"killbill-service/internal/middleware"
	"killbill-service/internal/pkg/response"
	service "killbill-service/internal/service/invoice"
	settingsservice "killbill-service/internal/service/settings"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService  *service.InvoiceService
	settingsService *settingsservice.SettingsService
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, settingsService *settingsservice.SettingsService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:  invoiceService,
		settingsService: settingsService,
	}
}

// CreateInvoice issues a manual invoice
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req invoice.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.invoiceService.CreateInvoice(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to create invoice", err)
		return
	}

	response.Success(c, http.StatusCreated, "invoice created", result)
}

// ListInvoices lists invoices; ?status=unpaid|paid|overdue
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var filters invoice.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list invoices", err)
		return
	}

	response.Success(c, http.StatusOK, "invoices retrieved", result)
}

// GetInvoice retrieves a single invoice
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := middleware.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "invoice not found", err)
		return
	}

	response.Success(c, http.StatusOK, "invoice retrieved", result)
}

// MarkPaid settles an invoice and records the payment
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	id, ok := middleware.ParamID(c, "id")
	if !ok {
		return
	}

	result, alreadyPaid, err := h.invoiceService.MarkPaid(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "failed to mark invoice paid", err)
		return
	}

	message := "invoice marked as paid"
	if alreadyPaid {
		message = "invoice was already paid"
	}
	response.Success(c, http.StatusOK, message, gin.H{
		"invoice":      result,
		"already_paid": alreadyPaid,
	})
}

// RenderInvoice serves the printable HTML invoice
func (h *InvoiceHandler) RenderInvoice(c *gin.Context) {
	id, ok := middleware.ParamID(c, "id")
	if !ok {
		return
	}

	cfg, err := h.settingsService.Load(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to load invoice branding", err)
		return
	}

	html, err := h.invoiceService.Render(c.Request.Context(), id, cfg.Invoice)
	if err != nil {
		response.FromError(c, "failed to render invoice", err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// Reminders reports invoices due within seven days and overdue invoices
func (h *InvoiceHandler) Reminders(c *gin.Context) {
	result, err := h.invoiceService.Reminders(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to build reminders", err)
		return
	}

	response.Success(c, http.StatusOK, "reminders retrieved", result)
}

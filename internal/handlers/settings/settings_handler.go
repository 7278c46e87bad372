// internal/handlers/settings/settings_handler.go
package settings

import (
	"net/http"

	"killbill-service/internal/domain/settings"
	"killbill-service/internal/pkg/response"
	service "killbill-service/internal/service/settings"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
}

func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings returns the site and invoice configuration
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	result, err := h.settingsService.Load(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to load settings", err)
		return
	}

	response.Success(c, http.StatusOK, "settings retrieved", result)
}

// UpdateSite sets how many days before expiry renewal invoices go out
func (h *SettingsHandler) UpdateSite(c *gin.Context) {
	var req settings.UpdateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.settingsService.UpdateSite(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to update site configuration", err)
		return
	}

	response.Success(c, http.StatusOK, "site configuration updated", result)
}

// UpdateInvoice updates the invoice branding
func (h *SettingsHandler) UpdateInvoice(c *gin.Context) {
	var req settings.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.settingsService.UpdateInvoice(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to update invoice configuration", err)
		return
	}

	response.Success(c, http.StatusOK, "invoice configuration updated", result)
}

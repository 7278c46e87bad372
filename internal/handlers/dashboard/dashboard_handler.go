// internal/handlers/dashboard/dashboard_handler.go
package dashboard

import (
	"net/http"

	"killbill-service/internal/pkg/response"
	service "killbill-service/internal/service/dashboard"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) GetSummary(c *gin.Context) {
	result, err := h.dashboardService.GetSummary(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to build dashboard", err)
		return
	}

	response.Success(c, http.StatusOK, "dashboard retrieved", result)
}

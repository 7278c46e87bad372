// internal/handlers/notification/email_log_handler.go
package notification

import (
	"net/http"

	"killbill-service/internal/domain/notification"
	"killbill-service/internal/pkg/response"
	service "killbill-service/internal/service/notification"

	"github.com/gin-gonic/gin"
)

type EmailLogHandler struct {
	notificationService *service.NotificationService
}

func NewEmailLogHandler(notificationService *service.NotificationService) *EmailLogHandler {
	return &EmailLogHandler{notificationService: notificationService}
}

// ListEmailLogs lists delivery attempts, newest first
func (h *EmailLogHandler) ListEmailLogs(c *gin.Context) {
	var filters notification.LogFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.notificationService.Logs(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list email logs", err)
		return
	}

	response.Success(c, http.StatusOK, "email logs retrieved", result)
}

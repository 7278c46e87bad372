// internal/handlers/payment/payment_handler.go
package payment

import (
	"net/http"

	"killbill-service/internal/domain/payment"
	"killbill-service/internal/pkg/response"
	service "killbill-service/internal/service/payment"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RecordPayment records a manually received payment
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req payment.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to record payment", err)
		return
	}

	response.Success(c, http.StatusCreated, "payment recorded", result)
}

// ListPayments lists payments; ?client_id=&from=&to=
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var filters payment.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.paymentService.ListPayments(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list payments", err)
		return
	}

	response.Success(c, http.StatusOK, "payments retrieved", result)
}

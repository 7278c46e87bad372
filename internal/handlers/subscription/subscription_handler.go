// internal/handlers/subscription/subscription_handler.go
package subscription

import (
	"net/http"

	"killbill-service/internal/domain/subscription"
	"killbill-service/internal/middleware"
	"killbill-service/internal/pkg/response"
	service "killbill-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// CreateSubscription creates a subscription and sends the welcome email
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req subscription.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.subscriptionService.CreateSubscription(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to create subscription", err)
		return
	}

	response.Success(c, http.StatusCreated, "subscription created", result)
}

// UpdateSubscription updates plan, cycle, start date or status
func (h *SubscriptionHandler) UpdateSubscription(c *gin.Context) {
	id, ok := middleware.ParamID(c, "id")
	if !ok {
		return
	}

	var req subscription.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.subscriptionService.UpdateSubscription(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, "failed to update subscription", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription updated", result)
}

// CancelSubscription cancels a subscription
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	id, ok := middleware.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.subscriptionService.CancelSubscription(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "failed to cancel subscription", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription cancelled", result)
}

// GetSubscription retrieves a single subscription
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	id, ok := middleware.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.subscriptionService.GetSubscription(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "subscription not found", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription retrieved", result)
}

// ListSubscriptions lists subscriptions; ?status=active|expiring|expired
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	var filters subscription.SubscriptionListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list subscriptions", err)
		return
	}

	response.Success(c, http.StatusOK, "subscriptions retrieved", result)
}

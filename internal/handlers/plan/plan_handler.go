// internal/handlers/plan/plan_handler.go
package plan

import (
	"net/http"

	"killbill-service/internal/domain/subscription"
	"killbill-service/internal/middleware"
	"killbill-service/internal/pkg/response"
	service "killbill-service/internal/service/plan"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService *service.PlanService
}

func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// ListPlans retrieves subscription plans; ?active=true hides retired ones
func (h *PlanHandler) ListPlans(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	result, err := h.planService.ListPlans(c.Request.Context(), activeOnly)
	if err != nil {
		response.FromError(c, "failed to list plans", err)
		return
	}

	response.Success(c, http.StatusOK, "plans retrieved", result)
}

// GetPlan retrieves a plan with its subscriptions
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, ok := middleware.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.planService.GetPlan(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "plan not found", err)
		return
	}

	response.Success(c, http.StatusOK, "plan retrieved", result)
}

// CreatePlan creates a new subscription plan
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req subscription.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.planService.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to create plan", err)
		return
	}

	response.Success(c, http.StatusCreated, "plan created", result)
}

// UpdatePlan updates a subscription plan
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id, ok := middleware.ParamID(c, "id")
	if !ok {
		return
	}

	var req subscription.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.planService.UpdatePlan(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, "failed to update plan", err)
		return
	}

	response.Success(c, http.StatusOK, "plan updated", result)
}

// DeletePlan deletes a plan no subscription references
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	id, ok := middleware.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), id); err != nil {
		response.FromError(c, "failed to delete plan", err)
		return
	}

	response.Success(c, http.StatusOK, "plan deleted", nil)
}

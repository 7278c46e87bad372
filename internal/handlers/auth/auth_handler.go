// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"killbill-service/internal/domain/admin"
	"killbill-service/internal/middleware"
	"killbill-service/internal/pkg/response"
	service "killbill-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Login authenticates an admin
func (h *AuthHandler) Login(c *gin.Context) {
	var req admin.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	req.IPAddress = c.ClientIP()
	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "invalid email or password", err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", result)
}

// Logout revokes the token used for this request
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, _ := middleware.GetJTI(c)
	expiresAt, _ := middleware.GetTokenExpiry(c)

	if err := h.authService.Logout(c.Request.Context(), middleware.MustGetAdminID(c), jti, expiresAt); err != nil {
		response.FromError(c, "failed to logout", err)
		return
	}

	response.Success(c, http.StatusOK, "logged out", nil)
}

// GetMe returns the authenticated admin
func (h *AuthHandler) GetMe(c *gin.Context) {
	result, err := h.authService.Me(c.Request.Context(), middleware.MustGetAdminID(c))
	if err != nil {
		response.FromError(c, "admin not found", err)
		return
	}

	response.Success(c, http.StatusOK, "admin retrieved", result)
}

// ChangePassword changes the authenticated admin's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req admin.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), middleware.MustGetAdminID(c), &req); err != nil {
		response.FromError(c, "failed to change password", err)
		return
	}

	response.Success(c, http.StatusOK, "password changed", nil)
}

// CreateAdmin adds another admin account
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	var req admin.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.authService.CreateAdmin(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to create admin", err)
		return
	}

	h.logger.Info("admin account created by admin",
		zap.Int64("created_by", middleware.MustGetAdminID(c)),
		zap.Int64("admin_id", result.ID),
	)
	response.Success(c, http.StatusCreated, "admin created", result)
}

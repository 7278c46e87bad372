// internal/middleware/helpers.go
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"killbill-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// GetAdminID gets the authenticated admin ID from context
func GetAdminID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ctxAdminID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetAdminID gets the admin ID from context or panics
func MustGetAdminID(c *gin.Context) int64 {
	id, exists := GetAdminID(c)
	if !exists {
		panic("admin_id not found in context")
	}
	return id
}

// GetJTI gets the token ID from context
func GetJTI(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxJTI)
	if !exists {
		return "", false
	}
	jti, ok := v.(string)
	return jti, ok
}

// GetTokenExpiry gets the access token expiry from context
func GetTokenExpiry(c *gin.Context) (time.Time, bool) {
	v, exists := c.Get(ctxExpiresAt)
	if !exists {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}

// ParamID parses a positive int64 path parameter. On failure it writes a 400
// response and returns false.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid "+name, err)
		return 0, false
	}
	return id, true
}

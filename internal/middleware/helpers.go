// internal/middleware/helpers.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	ctxAdminID   = "admin_id"
	ctxEmail     = "email"
	ctxRole      = "role"
	ctxJTI       = "jti"
	ctxExpiresAt = "token_expires_at"
)

// GetAdminID returns the authenticated admin id.
func GetAdminID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ctxAdminID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetAdminID gets admin ID from context or panics
func MustGetAdminID(c *gin.Context) int64 {
	id, exists := GetAdminID(c)
	if !exists {
		panic("admin_id not found in context")
	}
	return id
}

// MustGetJTI gets the token id from context or panics
func MustGetJTI(c *gin.Context) string {
	jti := c.GetString(ctxJTI)
	if jti == "" {
		panic("jti not found in context")
	}
	return jti
}

// GetTokenExpiry returns when the current token expires.
func GetTokenExpiry(c *gin.Context) time.Time {
	return c.GetTime(ctxExpiresAt)
}

func GetRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}

func GetEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}

// IsAuthenticated checks if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get(ctxAdminID)
	return exists
}

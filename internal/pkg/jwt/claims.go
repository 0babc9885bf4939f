// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by an admin access token.
type Claims struct {
	AdminID int64  `json:"admin_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// IsSuperAdmin checks if the bearer is a super admin
func (c *Claims) IsSuperAdmin() bool {
	return c.Role == "super_admin"
}

// HasAudience checks if the expected audience is listed in the claims.
func (c *Claims) HasAudience(audience string) bool {
	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}
	return false
}

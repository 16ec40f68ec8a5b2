package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/modguard/config"
	"golang.org/x/crypto/bcrypt"
)

const (
	StaffIdentityKey = "staff_identity"
	StaffNameKey     = "staff_name"
	AdminKeyHeader   = "X-Admin-Key"
)

// AdminAuth guards the token-issuing endpoint with the configured admin
// key, compared against its bcrypt hash. An empty hash disables the
// endpoints entirely (503) so the server cannot be deployed unprotected by
// accident.
func AdminAuth(adminKeyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKeyHash == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin endpoints disabled"})
			return
		}
		key := c.GetHeader(AdminKeyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing admin key"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(adminKeyHash), []byte(key)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			return
		}
		c.Next()
	}
}

// StaffAuth validates the Bearer staff JWT and records the staff identity
// on the request context.
func StaffAuth(sec config.SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims, err := ParseToken(tokenStr, sec.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(StaffIdentityKey, claims.StaffIdentity)
		c.Set(StaffNameKey, claims.StaffName)
		c.Next()
	}
}

// GetStaffIdentity retrieves the authenticated staff identity from the
// Gin context.
func GetStaffIdentity(c *gin.Context) string {
	if v, exists := c.Get(StaffIdentityKey); exists {
		return v.(string)
	}
	return ""
}

// GetStaffName retrieves the authenticated staff display name.
func GetStaffName(c *gin.Context) string {
	if v, exists := c.Get(StaffNameKey); exists {
		return v.(string)
	}
	return ""
}

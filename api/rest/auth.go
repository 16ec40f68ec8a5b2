package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/modguard/config"
	"github.com/kasuganosora/modguard/middleware"
	"go.uber.org/zap"
)

// AuthHandler issues staff session tokens. The route is guarded by
// AdminAuth, so reaching the handler means the admin key already checked
// out.
type AuthHandler struct {
	sec    config.SecurityConfig
	logger *zap.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(sec config.SecurityConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{sec: sec, logger: logger}
}

// IssueToken signs a staff JWT for the given identity.
// POST /api/admin/token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req struct {
		Identity string `json:"identity" binding:"required"`
		Name     string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity and name required"})
		return
	}
	token, err := middleware.GenerateToken(req.Identity, req.Name, h.sec.JWTSecret, h.sec.JWTTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	h.logger.Info("staff token issued", zap.String("identity", req.Identity))
	c.JSON(http.StatusOK, gin.H{"token": token})
}

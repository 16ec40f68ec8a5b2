package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/modguard/middleware"
	"github.com/kasuganosora/modguard/punish"
	"github.com/kasuganosora/modguard/store"
	"go.uber.org/zap"
)

// PlayerHandler exposes player records and their name/address history.
type PlayerHandler struct {
	svc    *punish.Service
	store  *store.Store
	logger *zap.Logger
}

// NewPlayerHandler creates a PlayerHandler.
func NewPlayerHandler(svc *punish.Service, st *store.Store, logger *zap.Logger) *PlayerHandler {
	return &PlayerHandler{svc: svc, store: st, logger: logger}
}

// Get returns the player record.
// GET /api/staff/players/:identity
func (h *PlayerHandler) Get(c *gin.Context) {
	p, err := h.svc.GetPlayer(c.Request.Context(), c.Param("identity")).Await()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown player"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListNames returns the deduplicated name history.
// GET /api/staff/players/:identity/names
func (h *PlayerHandler) ListNames(c *gin.Context) {
	names, err := h.store.ListNames(c.Request.Context(), c.Param("identity"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": names})
}

// ListAddresses returns the deduplicated address history.
// GET /api/staff/players/:identity/addresses
func (h *PlayerHandler) ListAddresses(c *gin.Context) {
	addrs, err := h.store.ListAddresses(c.Request.Context(), c.Param("identity"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": addrs})
}

// SetExempt flips address-ban exemption.
// POST /api/staff/players/:identity/exempt
func (h *PlayerHandler) SetExempt(c *gin.Context) {
	var req struct {
		Exempt bool `json:"exempt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	_, err := h.svc.SetAddressBanExempt(c.Request.Context(), c.Param("identity"), req.Exempt,
		middleware.GetStaffIdentity(c), middleware.GetStaffName(c)).Await()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AdjustPoints manually adjusts the decaying point score.
// POST /api/staff/players/:identity/points
func (h *PlayerHandler) AdjustPoints(c *gin.Context) {
	var req struct {
		Delta float64 `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	_, err := h.svc.AdjustPoints(c.Request.Context(), c.Param("identity"), req.Delta,
		middleware.GetStaffIdentity(c), middleware.GetStaffName(c)).Await()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

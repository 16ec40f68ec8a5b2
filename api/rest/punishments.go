package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/modguard/middleware"
	"github.com/kasuganosora/modguard/model"
	"github.com/kasuganosora/modguard/punish"
	"go.uber.org/zap"
)

// PunishmentHandler exposes the punishment lifecycle over HTTP. Handlers
// block on the service futures; this is the one boundary where blocking is
// allowed.
type PunishmentHandler struct {
	svc    *punish.Service
	logger *zap.Logger
}

// NewPunishmentHandler creates a PunishmentHandler.
func NewPunishmentHandler(svc *punish.Service, logger *zap.Logger) *PunishmentHandler {
	return &PunishmentHandler{svc: svc, logger: logger}
}

// Issue creates a punishment.
// POST /api/staff/punishments
func (h *PunishmentHandler) Issue(c *gin.Context) {
	var req struct {
		Type            string `json:"type" binding:"required"`
		TargetIdentity  string `json:"target_identity"`
		TargetName      string `json:"target_name"`
		TargetAddress   string `json:"target_address"`
		Reason          string `json:"reason"`
		DurationSeconds int64  `json:"duration_seconds"`
		Silent          bool   `json:"silent"`
		AddressBased    bool   `json:"address_based"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.svc.Issue(c.Request.Context(), punish.IssueRequest{
		Type: model.Type(req.Type),
		Target: punish.Target{
			Identity: req.TargetIdentity,
			Name:     req.TargetName,
			Address:  req.TargetAddress,
		},
		IssuerIdentity: middleware.GetStaffIdentity(c),
		IssuerName:     middleware.GetStaffName(c),
		Reason:         req.Reason,
		Duration:       time.Duration(req.DurationSeconds) * time.Second,
		Silent:         req.Silent,
		AddressBased:   req.AddressBased,
	}).Await()
	if err != nil {
		switch {
		case errors.Is(err, punish.ErrAlreadyPunished):
			c.JSON(http.StatusConflict, gin.H{"error": "already punished"})
		case errors.Is(err, punish.ErrBanExempt):
			c.JSON(http.StatusConflict, gin.H{"error": "target is address-ban exempt"})
		case errors.Is(err, punish.ErrInvalidType),
			errors.Is(err, punish.ErrNoTarget),
			errors.Is(err, punish.ErrDurationNotAllowed):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Revoke removes the target's effective punishment in a category.
// POST /api/staff/punishments/revoke
func (h *PunishmentHandler) Revoke(c *gin.Context) {
	var req struct {
		Category       string `json:"category" binding:"required"`
		TargetIdentity string `json:"target_identity"`
		TargetAddress  string `json:"target_address"`
		Reason         string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ok, err := h.svc.Revoke(c.Request.Context(), punish.RevokeRequest{
		Category:        model.Category(req.Category),
		TargetIdentity:  req.TargetIdentity,
		TargetAddress:   req.TargetAddress,
		RemoverIdentity: middleware.GetStaffIdentity(c),
		RemoverName:     middleware.GetStaffName(c),
		Reason:          req.Reason,
	}).Await()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"revoked": ok})
}

// GetEffective answers the point lookup.
// GET /api/staff/punishments/effective?category=ban&identity=...&address=...
func (h *PunishmentHandler) GetEffective(c *gin.Context) {
	cat := model.Category(c.Query("category"))
	identity := c.Query("identity")
	address := c.Query("address")
	if identity == "" && address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity or address required"})
		return
	}

	p, err := h.svc.GetEffective(c.Request.Context(), cat, identity, address).Await()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusOK, gin.H{"punished": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"punished": true, "punishment": p})
}

// GetByID fetches one row.
// GET /api/staff/punishments/id/:id
func (h *PunishmentHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := h.svc.GetByID(c.Request.Context(), id).Await()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListActive pages through active punishments in a category.
// GET /api/staff/punishments/active?category=ban&page=1&page_size=20
func (h *PunishmentHandler) ListActive(c *gin.Context) {
	cat := model.Category(c.Query("category"))
	page, pageSize := pageParams(c)

	res, err := h.svc.ListActive(c.Request.Context(), cat, page, pageSize).Await()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": res.Items, "total": res.Total, "page": page})
}

// ListHistory returns the full punishment history for a target.
// GET /api/staff/players/:identity/history
func (h *PunishmentHandler) ListHistory(c *gin.Context) {
	items, err := h.svc.ListHistory(c.Request.Context(), c.Param("identity")).Await()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// ListIssued pages through a staff member's issued punishments.
// GET /api/staff/punishments/issued/:identity?page=1
func (h *PunishmentHandler) ListIssued(c *gin.Context) {
	page, pageSize := pageParams(c)
	res, err := h.svc.ListIssued(c.Request.Context(), c.Param("identity"), page, pageSize).Await()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": res.Items, "total": res.Total, "page": page})
}

// CountActive returns the active count for a category.
// GET /api/staff/punishments/count?category=ban
func (h *PunishmentHandler) CountActive(c *gin.Context) {
	n, err := h.svc.CountActive(c.Request.Context(), model.Category(c.Query("category"))).Await()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

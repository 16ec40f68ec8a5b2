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
	"github.com/kasuganosora/modguard/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// cooldownReport keys the per-reporter throttle in the cooldown tier.
const cooldownReport = "report"

// ModerationHandler covers notes, reports and appeals.
type ModerationHandler struct {
	svc            *punish.Service
	store          *store.Store
	reportCooldown time.Duration
	logger         *zap.Logger
}

// NewModerationHandler creates a ModerationHandler. reportCooldown
// throttles repeat reports per reporter; zero disables it.
func NewModerationHandler(svc *punish.Service, st *store.Store, reportCooldown time.Duration, logger *zap.Logger) *ModerationHandler {
	return &ModerationHandler{svc: svc, store: st, reportCooldown: reportCooldown, logger: logger}
}

// AddNote records a staff annotation.
// POST /api/staff/notes
func (h *ModerationHandler) AddNote(c *gin.Context) {
	var req struct {
		TargetIdentity string `json:"target_identity" binding:"required"`
		TargetName     string `json:"target_name"`
		Body           string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_identity and body required"})
		return
	}
	note := &model.Note{
		TargetIdentity: req.TargetIdentity,
		TargetName:     req.TargetName,
		IssuerIdentity: middleware.GetStaffIdentity(c),
		IssuerName:     middleware.GetStaffName(c),
		Body:           req.Body,
		CreatedAt:      time.Now(),
	}
	if err := h.store.AddNote(c.Request.Context(), note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusCreated, note)
}

// ListNotes returns all notes on a player.
// GET /api/staff/notes/:identity
func (h *ModerationHandler) ListNotes(c *gin.Context) {
	notes, err := h.store.ListNotes(c.Request.Context(), c.Param("identity"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": notes})
}

// DeleteNote removes a note.
// DELETE /api/staff/notes/:id
func (h *ModerationHandler) DeleteNote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	ok, err := h.store.DeleteNote(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// CreateReport files a report.
// POST /api/staff/reports
func (h *ModerationHandler) CreateReport(c *gin.Context) {
	var req struct {
		TargetIdentity   string `json:"target_identity" binding:"required"`
		TargetName       string `json:"target_name"`
		ReporterIdentity string `json:"reporter_identity" binding:"required"`
		ReporterName     string `json:"reporter_name"`
		Reason           string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target, reporter and reason required"})
		return
	}
	if until, throttled := h.svc.Cooldown(cooldownReport, req.ReporterIdentity); throttled {
		c.Header("Retry-After", strconv.Itoa(int(time.Until(until).Seconds())+1))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "report cooldown active"})
		return
	}
	report := &model.Report{
		TargetIdentity:   req.TargetIdentity,
		TargetName:       req.TargetName,
		ReporterIdentity: req.ReporterIdentity,
		ReporterName:     req.ReporterName,
		Reason:           req.Reason,
		CreatedAt:        time.Now(),
	}
	if err := h.store.CreateReport(c.Request.Context(), report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	h.svc.StartCooldown(cooldownReport, req.ReporterIdentity, h.reportCooldown)
	c.JSON(http.StatusCreated, report)
}

// ListReports pages reports by status.
// GET /api/staff/reports?status=pending&page=1
func (h *ModerationHandler) ListReports(c *gin.Context) {
	status := model.Status(c.DefaultQuery("status", string(model.StatusPending)))
	page, pageSize := pageParams(c)
	items, total, err := h.store.ListReports(c.Request.Context(), status, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "page": page})
}

// ResolveReport moves a pending report to a terminal status.
// POST /api/staff/reports/:id/resolve
func (h *ModerationHandler) ResolveReport(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}
	ok, err := h.store.ResolveReport(c.Request.Context(), id, model.Status(req.Status),
		middleware.GetStaffIdentity(c), time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "report missing or already resolved"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// CreateAppeal files an appeal against an existing punishment.
// POST /api/staff/appeals
func (h *ModerationHandler) CreateAppeal(c *gin.Context) {
	var req struct {
		PunishmentID      int64  `json:"punishment_id" binding:"required"`
		AppellantIdentity string `json:"appellant_identity" binding:"required"`
		AppellantName     string `json:"appellant_name"`
		Body              string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "punishment_id, appellant and body required"})
		return
	}
	appeal := &model.Appeal{
		PunishmentID:      req.PunishmentID,
		AppellantIdentity: req.AppellantIdentity,
		AppellantName:     req.AppellantName,
		Body:              req.Body,
		CreatedAt:         time.Now(),
	}
	if err := h.store.CreateAppeal(c.Request.Context(), appeal); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown punishment"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusCreated, appeal)
}

// ListAppeals pages appeals by status.
// GET /api/staff/appeals?status=pending&page=1
func (h *ModerationHandler) ListAppeals(c *gin.Context) {
	status := model.Status(c.DefaultQuery("status", string(model.StatusPending)))
	page, pageSize := pageParams(c)
	items, total, err := h.store.ListAppeals(c.Request.Context(), status, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "page": page})
}

// DecideAppeal accepts or denies a pending appeal.
// POST /api/staff/appeals/:id/decide
func (h *ModerationHandler) DecideAppeal(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}
	ok, err := h.store.DecideAppeal(c.Request.Context(), id, model.Status(req.Status),
		middleware.GetStaffIdentity(c), req.Reason, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "appeal missing or already decided"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

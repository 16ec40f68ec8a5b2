package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/modguard/config"
	"github.com/kasuganosora/modguard/middleware"
	"github.com/kasuganosora/modguard/punish"
	"github.com/kasuganosora/modguard/scheduler"
	"github.com/kasuganosora/modguard/store"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewRouter builds the staff/admin HTTP surface. Everything under
// /api/staff requires a staff JWT; token issuance itself is guarded by the
// admin key.
func NewRouter(cfg *config.Config, svc *punish.Service, st *store.Store, sched *scheduler.Scheduler, logger *zap.Logger) *gin.Engine {
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.TraceID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	auth := NewAuthHandler(cfg.Security, logger)
	ph := NewPunishmentHandler(svc, logger)
	plh := NewPlayerHandler(svc, st, logger)
	mh := NewModerationHandler(svc, st, cfg.Punish.ReportCooldown, logger)
	th := NewTasksHandler(sched, logger)

	admin := r.Group("/api/admin", middleware.AdminAuth(cfg.Security.AdminKeyHash))
	admin.POST("/token", auth.IssueToken)
	admin.GET("/tasks", th.List)
	admin.POST("/tasks/:name/stop", th.Stop)

	staff := r.Group("/api/staff", middleware.StaffAuth(cfg.Security))
	{
		staff.POST("/punishments", ph.Issue)
		staff.POST("/punishments/revoke", ph.Revoke)
		staff.GET("/punishments/effective", ph.GetEffective)
		staff.GET("/punishments/active", ph.ListActive)
		staff.GET("/punishments/count", ph.CountActive)
		staff.GET("/punishments/id/:id", ph.GetByID)
		staff.GET("/punishments/issued/:identity", ph.ListIssued)

		staff.GET("/players/:identity", plh.Get)
		staff.GET("/players/:identity/history", ph.ListHistory)
		staff.GET("/players/:identity/names", plh.ListNames)
		staff.GET("/players/:identity/addresses", plh.ListAddresses)
		staff.POST("/players/:identity/exempt", plh.SetExempt)
		staff.POST("/players/:identity/points", plh.AdjustPoints)

		staff.POST("/notes", mh.AddNote)
		staff.GET("/notes/:identity", mh.ListNotes)
		staff.DELETE("/notes/:id", mh.DeleteNote)
		staff.POST("/reports", mh.CreateReport)
		staff.GET("/reports", mh.ListReports)
		staff.POST("/reports/:id/resolve", mh.ResolveReport)
		staff.POST("/appeals", mh.CreateAppeal)
		staff.GET("/appeals", mh.ListAppeals)
		staff.POST("/appeals/:id/decide", mh.DecideAppeal)
	}

	return r
}

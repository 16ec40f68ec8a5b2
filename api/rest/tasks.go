package rest

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/modguard/scheduler"
	"go.uber.org/zap"
)

// TasksHandler exposes the background task registry to operators.
type TasksHandler struct {
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

// NewTasksHandler creates a TasksHandler.
func NewTasksHandler(sched *scheduler.Scheduler, logger *zap.Logger) *TasksHandler {
	return &TasksHandler{sched: sched, logger: logger}
}

// List returns the names of the registered periodic tasks.
// GET /api/admin/tasks
func (h *TasksHandler) List(c *gin.Context) {
	names := h.sched.ListTickers()
	slices.Sort(names)
	c.JSON(http.StatusOK, gin.H{"items": names})
}

// Stop unregisters a periodic task by name, switching off a sweep on a
// live server without a restart.
// POST /api/admin/tasks/:name/stop
func (h *TasksHandler) Stop(c *gin.Context) {
	name := c.Param("name")
	if !slices.Contains(h.sched.ListTickers(), name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown task"})
		return
	}
	h.sched.Remove(name)
	h.logger.Warn("background task stopped", zap.String("task", name))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

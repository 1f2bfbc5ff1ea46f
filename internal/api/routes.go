// Package api exposes a thin REST controller over the Generation Core's
// run lifecycle plus a websocket progress feed, adapted from the teacher's
// internal/api/routes.go CORS-and-gin wiring — the network surface is a
// collaborator here, not a core concern (spec §1/§6).
package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rawblock/datasynth-engine/internal/db"
)

// RunController is implemented by whatever owns the orchestrator lifecycle
// (typically cmd/engine's wiring) so this package stays decoupled from the
// orchestrator's concrete type.
type RunController interface {
	StartRun(cfgJSON []byte) (uuid.UUID, error)
	PauseRun(id uuid.UUID) error
	ResumeRun(id uuid.UUID) error
	CancelRun(id uuid.UUID) error
	RunStatus(id uuid.UUID) (any, error)
}

// APIHandler aggregates the dependencies the lifecycle routes need.
type APIHandler struct {
	dbStore    *db.PostgresStore
	wsHub      *Hub
	controller RunController
}

// SetupRouter wires the run-lifecycle endpoints and progress websocket onto
// a gin engine, carrying over the teacher's configurable-CORS middleware.
func SetupRouter(dbStore *db.PostgresStore, wsHub *Hub, controller RunController) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.Use(AuthMiddleware())
	r.Use(NewRateLimiter(60, 20).Middleware())

	h := &APIHandler{dbStore: dbStore, wsHub: wsHub, controller: controller}

	r.POST("/runs", h.startRun)
	r.POST("/runs/:id/pause", h.pauseRun)
	r.POST("/runs/:id/resume", h.resumeRun)
	r.POST("/runs/:id/cancel", h.cancelRun)
	r.GET("/runs/:id", h.getRunStatus)
	r.GET("/runs/:id/progress", func(c *gin.Context) { wsHub.Subscribe(c) })

	return r
}

func (h *APIHandler) startRun(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	id, err := h.controller.StartRun(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"run_id": id})
}

func (h *APIHandler) parseRunID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *APIHandler) pauseRun(c *gin.Context) {
	id, ok := h.parseRunID(c)
	if !ok {
		return
	}
	if err := h.controller.PauseRun(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "paused"})
}

func (h *APIHandler) resumeRun(c *gin.Context) {
	id, ok := h.parseRunID(c)
	if !ok {
		return
	}
	if err := h.controller.ResumeRun(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resumed"})
}

func (h *APIHandler) cancelRun(c *gin.Context) {
	id, ok := h.parseRunID(c)
	if !ok {
		return
	}
	if err := h.controller.CancelRun(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (h *APIHandler) getRunStatus(c *gin.Context) {
	id, ok := h.parseRunID(c)
	if !ok {
		return
	}
	status, err := h.controller.RunStatus(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

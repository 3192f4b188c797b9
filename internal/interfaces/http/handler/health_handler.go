package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/signage/backend/internal/infrastructure/persistence"
	"github.com/signage/backend/internal/interfaces/http/dto"
)

// DatabaseChecker reports database health
type DatabaseChecker interface {
	Ping(ctx context.Context) error
	Stats() (persistence.ConnectionStats, error)
}

// HealthHandler serves liveness and readiness checks
type HealthHandler struct {
	BaseHandler
	db          DatabaseChecker
	pingTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db DatabaseChecker) *HealthHandler {
	return &HealthHandler{db: db, pingTimeout: 2 * time.Second}
}

// ReadinessResponse describes the readiness of the service
type ReadinessResponse struct {
	Status   string                       `json:"status"`
	Database string                       `json:"database"`
	Pool     *persistence.ConnectionStats `json:"pool,omitempty"`
}

// RegisterRoutes registers the liveness and readiness checks
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/ready", h.Ready)
}

// Health godoc
// @Summary      Liveness check
// @Description  Reports that the process is serving requests
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{"status": "ok"})
}

// Ready godoc
// @Summary      Readiness check
// @Description  Reports whether the database is reachable, with pool statistics
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=ReadinessResponse}
// @Failure      503 {object} dto.Response{data=ReadinessResponse,error=dto.ErrorInfo}
// @Router       /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    ReadinessResponse{Status: "unavailable", Database: "down"},
			Error:   &dto.ErrorInfo{Code: dto.ErrCodeInternal, Message: "database unreachable"},
		})
		return
	}

	resp := ReadinessResponse{Status: "ready", Database: "up"}
	if stats, err := h.db.Stats(); err == nil {
		resp.Pool = &stats
	}
	h.Success(c, resp)
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dbdesk/mysql-admin/internal/responses"
)

// Pinger checks connectivity of the active pool.
type Pinger interface {
	Ping(ctx context.Context) error
	Database() string
}

type HealthHandler struct {
	pool Pinger
}

func NewHealthHandler(pool Pinger) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Check handles GET /api/health
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		_ = c.Error(err)
		responses.Fail(c, http.StatusServiceUnavailable, "Database is unreachable")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"status":   "ok",
		"database": h.pool.Database(),
	})
}

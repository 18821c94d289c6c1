package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dbdesk/mysql-admin/internal/responses"
	"github.com/dbdesk/mysql-admin/internal/services"
)

type QueryHandler struct {
	queryService *services.QueryService
}

func NewQueryHandler(queryService *services.QueryService) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
	}
}

// ExecuteQuery handles POST /api/query
func (h *QueryHandler) ExecuteQuery(c *gin.Context) {
	var req services.ExecuteQueryRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, "")
		return
	}

	result, err := h.queryService.Execute(c.Request.Context(), req.Query)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) || errors.Is(err, services.ErrConnection) {
			writeError(c, err, "")
			return
		}
		// Any statement the server rejects is reported as-is.
		_ = c.Error(err)
		responses.FailWithDetails(c, http.StatusInternalServerError, services.EngineMessage(err), nil, services.EngineCode(err))
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetHistory handles GET /api/query/history
func (h *QueryHandler) GetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			responses.Fail(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	history, err := h.queryService.History(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err, "Failed to fetch query history")
		return
	}

	responses.Success(c, http.StatusOK, history)
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dbdesk/mysql-admin/internal/responses"
	"github.com/dbdesk/mysql-admin/internal/services"
)

var statusBySentinel = []struct {
	sentinel error
	status   int
}{
	{services.ErrInvalidInput, http.StatusBadRequest},
	{services.ErrSchema, http.StatusBadRequest},
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrAlreadyExists, http.StatusConflict},
	{services.ErrConnection, http.StatusServiceUnavailable},
	{services.ErrEngine, http.StatusInternalServerError},
}

// writeError maps a service error to its status code and body. action
// prefixes the message of server-side failures.
func writeError(c *gin.Context, err error, action string) {
	_ = c.Error(err)

	var conflict *services.ConstraintConflictError
	if errors.As(err, &conflict) {
		details := responses.ConflictDetails{
			Message:  conflict.Detail,
			Solution: conflict.Solution,
		}
		if len(conflict.Constraints) > 0 {
			details.Constraints = conflict.Constraints
		}
		responses.FailWithDetails(c, http.StatusConflict, conflict.Summary, details, services.EngineCode(err))
		return
	}

	status := http.StatusInternalServerError
	var matched error
	for _, m := range statusBySentinel {
		if errors.Is(err, m.sentinel) {
			status = m.status
			matched = m.sentinel
			break
		}
	}

	message := errorMessage(err, matched)
	if status >= http.StatusInternalServerError && action != "" {
		message = fmt.Sprintf("%s: %s", action, message)
	}
	responses.FailWithDetails(c, status, message, nil, services.EngineCode(err))
}

// errorMessage returns the text shown to the caller: the server message for
// engine errors, otherwise the error without its category prefix.
func errorMessage(err, sentinel error) string {
	if code := services.EngineCode(err); code != "" {
		return services.EngineMessage(err)
	}
	msg := err.Error()
	if sentinel != nil {
		msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	}
	return msg
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dbdesk/mysql-admin/internal/responses"
	"github.com/dbdesk/mysql-admin/internal/services"
)

type TableHandler struct {
	tableService *services.TableService
}

func NewTableHandler(tableService *services.TableService) *TableHandler {
	return &TableHandler{
		tableService: tableService,
	}
}

// ListTables handles GET /api/tables
func (h *TableHandler) ListTables(c *gin.Context) {
	tables, err := h.tableService.ListTables(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to fetch tables")
		return
	}

	responses.Success(c, http.StatusOK, tables)
}

// CreateTable handles POST /api/tables
func (h *TableHandler) CreateTable(c *gin.Context) {
	var req services.CreateTableRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, "")
		return
	}

	statement, err := h.tableService.CreateTable(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to create table")
		return
	}

	responses.Success(c, http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Table %s created successfully", req.TableName),
		"sql":     statement,
	})
}

// PreviewCreateTable handles POST /api/tables/preview
func (h *TableHandler) PreviewCreateTable(c *gin.Context) {
	var req services.CreateTableRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, "")
		return
	}

	statement, err := h.tableService.PreviewCreateTable(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to build table definition")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"sql": statement})
}

// DropTable handles DELETE /api/tables/:tableName
func (h *TableHandler) DropTable(c *gin.Context) {
	table := c.Param("tableName")

	if err := h.tableService.DropTable(c.Request.Context(), table); err != nil {
		writeError(c, err, fmt.Sprintf("Failed to drop table %s", table))
		return
	}

	responses.Message(c, http.StatusOK, fmt.Sprintf("Table %s dropped successfully", table))
}

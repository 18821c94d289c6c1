package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dbdesk/mysql-admin/internal/responses"
	"github.com/dbdesk/mysql-admin/internal/services"
)

type DatabaseHandler struct {
	catalogService *services.CatalogService
}

func NewDatabaseHandler(catalogService *services.CatalogService) *DatabaseHandler {
	return &DatabaseHandler{
		catalogService: catalogService,
	}
}

type createDatabaseRequest struct {
	DatabaseName string `json:"databaseName"`
}

type useDatabaseRequest struct {
	Database string `json:"database"`
}

// ListDatabases handles GET /api/databases
func (h *DatabaseHandler) ListDatabases(c *gin.Context) {
	databases, err := h.catalogService.ListDatabases(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to fetch databases")
		return
	}

	responses.Success(c, http.StatusOK, databases)
}

// CreateDatabase handles POST /api/databases
func (h *DatabaseHandler) CreateDatabase(c *gin.Context) {
	var req createDatabaseRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, "")
		return
	}

	if err := h.catalogService.CreateDatabase(c.Request.Context(), req.DatabaseName); err != nil {
		writeError(c, err, "Failed to create database")
		return
	}

	responses.Message(c, http.StatusCreated, fmt.Sprintf("Database %s created successfully", req.DatabaseName))
}

// DropDatabase handles DELETE /api/databases/:name
func (h *DatabaseHandler) DropDatabase(c *gin.Context) {
	name := c.Param("name")

	if err := h.catalogService.DropDatabase(c.Request.Context(), name); err != nil {
		writeError(c, err, "Failed to drop database")
		return
	}

	responses.Message(c, http.StatusOK, fmt.Sprintf("Database %s dropped successfully", name))
}

// UseDatabase handles POST /api/use-database
func (h *DatabaseHandler) UseDatabase(c *gin.Context) {
	var req useDatabaseRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, "")
		return
	}

	if err := h.catalogService.UseDatabase(c.Request.Context(), req.Database); err != nil {
		writeError(c, err, "Failed to switch database")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"message":  fmt.Sprintf("Using database: %s", req.Database),
		"database": h.catalogService.ActiveDatabase(),
	})
}

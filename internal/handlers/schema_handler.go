package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dbdesk/mysql-admin/internal/responses"
	"github.com/dbdesk/mysql-admin/internal/services"
)

type SchemaHandler struct {
	schemaService *services.SchemaService
}

func NewSchemaHandler(schemaService *services.SchemaService) *SchemaHandler {
	return &SchemaHandler{
		schemaService: schemaService,
	}
}

// GetStructure handles GET /api/tables/:tableName/structure
func (h *SchemaHandler) GetStructure(c *gin.Context) {
	table := c.Param("tableName")

	schema, err := h.schemaService.GetTableStructure(c.Request.Context(), table)
	if err != nil {
		writeError(c, err, fmt.Sprintf("Failed to fetch structure for table %s", table))
		return
	}

	responses.Success(c, http.StatusOK, schema)
}

// GetReferencedData handles GET /api/tables/:tableName/referenced-data/:columnName
func (h *SchemaHandler) GetReferencedData(c *gin.Context) {
	table := c.Param("tableName")
	column := c.Param("columnName")

	data, err := h.schemaService.GetReferencedData(c.Request.Context(), table, column)
	if err != nil {
		writeError(c, err, "Failed to fetch referenced data")
		return
	}

	responses.Success(c, http.StatusOK, data)
}

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dbdesk/mysql-admin/internal/handlers"
)

// Handlers groups every handler served under /api.
type Handlers struct {
	Database *handlers.DatabaseHandler
	Table    *handlers.TableHandler
	Schema   *handlers.SchemaHandler
	Data     *handlers.DataHandler
	Query    *handlers.QueryHandler
	Health   *handlers.HealthHandler
}

func RegisterRoutes(router *gin.Engine, h Handlers) {
	api := router.Group("/api")

	databaseRoutes := NewDatabaseRoutes(h.Database)
	databaseRoutes.RegisterRoutes(api)

	tableRoutes := NewTableRoutes(h.Table, h.Schema, h.Data)
	tableRoutes.RegisterRoutes(api)

	queryRoutes := NewQueryRoutes(h.Query)
	queryRoutes.RegisterRoutes(api)

	api.GET("/health", h.Health.Check)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}

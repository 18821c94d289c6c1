package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dbdesk/mysql-admin/internal/handlers"
)

type DatabaseRoutes struct {
	handler *handlers.DatabaseHandler
}

func NewDatabaseRoutes(handler *handlers.DatabaseHandler) *DatabaseRoutes {
	return &DatabaseRoutes{handler: handler}
}

func (r *DatabaseRoutes) RegisterRoutes(router *gin.RouterGroup) {
	databases := router.Group("/databases")
	{
		databases.GET("", r.handler.ListDatabases)
		databases.POST("", r.handler.CreateDatabase)
		databases.DELETE("/:name", r.handler.DropDatabase)
	}

	router.POST("/use-database", r.handler.UseDatabase)
}

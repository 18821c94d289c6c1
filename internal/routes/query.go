package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dbdesk/mysql-admin/internal/handlers"
)

type QueryRoutes struct {
	handler *handlers.QueryHandler
}

func NewQueryRoutes(handler *handlers.QueryHandler) *QueryRoutes {
	return &QueryRoutes{handler: handler}
}

func (r *QueryRoutes) RegisterRoutes(router *gin.RouterGroup) {
	query := router.Group("/query")
	{
		query.POST("", r.handler.ExecuteQuery)
		query.GET("/history", r.handler.GetHistory)
	}
}

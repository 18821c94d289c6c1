package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dbdesk/mysql-admin/internal/handlers"
)

type TableRoutes struct {
	tableHandler  *handlers.TableHandler
	schemaHandler *handlers.SchemaHandler
	dataHandler   *handlers.DataHandler
}

func NewTableRoutes(tableHandler *handlers.TableHandler, schemaHandler *handlers.SchemaHandler, dataHandler *handlers.DataHandler) *TableRoutes {
	return &TableRoutes{
		tableHandler:  tableHandler,
		schemaHandler: schemaHandler,
		dataHandler:   dataHandler,
	}
}

func (r *TableRoutes) RegisterRoutes(router *gin.RouterGroup) {
	tables := router.Group("/tables")
	{
		tables.GET("", r.tableHandler.ListTables)
		tables.POST("", r.tableHandler.CreateTable)
		tables.POST("/preview", r.tableHandler.PreviewCreateTable)
		tables.DELETE("/:tableName", r.tableHandler.DropTable)

		tables.GET("/:tableName/structure", r.schemaHandler.GetStructure)
		tables.GET("/:tableName/referenced-data/:columnName", r.schemaHandler.GetReferencedData)

		tables.GET("/:tableName/data", r.dataHandler.GetData)
		tables.POST("/:tableName/data", r.dataHandler.InsertRecord)
		tables.PUT("/:tableName/data/:id", r.dataHandler.UpdateRecord)
		tables.DELETE("/:tableName/data/:id", r.dataHandler.DeleteRecord)
	}
}

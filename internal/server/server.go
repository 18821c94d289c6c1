package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dbdesk/mysql-admin/internal/config"
	"github.com/dbdesk/mysql-admin/internal/database"
	"github.com/dbdesk/mysql-admin/internal/handlers"
	"github.com/dbdesk/mysql-admin/internal/middlewares"
	"github.com/dbdesk/mysql-admin/internal/repositories"
	"github.com/dbdesk/mysql-admin/internal/routes"
	"github.com/dbdesk/mysql-admin/internal/services"
)

// NewRouter wires repositories, services and handlers onto a gin engine.
// history may be nil, which disables query history.
func NewRouter(cfg *config.Config, logger *logrus.Logger, manager *database.Manager, history services.QueryHistoryStore) *gin.Engine {
	// Dependency injection
	schemaRepo := repositories.NewSchemaRepository()
	tableRepo := repositories.NewTableRepository()

	schemaService := services.NewSchemaService(manager, schemaRepo, tableRepo, logger)
	mutationService := services.NewMutationService(manager, schemaService, schemaRepo, tableRepo, logger)
	dataService := services.NewDataService(manager, schemaService, tableRepo, logger)
	tableService := services.NewTableService(manager, schemaRepo, tableRepo, logger)
	catalogService := services.NewCatalogService(manager, manager, schemaRepo, tableRepo, logger)
	queryService := services.NewQueryService(manager, tableRepo, history, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestLogger(logger))
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	routes.RegisterRoutes(router, routes.Handlers{
		Database: handlers.NewDatabaseHandler(catalogService),
		Table:    handlers.NewTableHandler(tableService),
		Schema:   handlers.NewSchemaHandler(schemaService),
		Data:     handlers.NewDataHandler(dataService, mutationService),
		Query:    handlers.NewQueryHandler(queryService),
		Health:   handlers.NewHealthHandler(manager),
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middlewares.RequestIDHeader}
	c.ExposeHeaders = []string{middlewares.RequestIDHeader}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

func NewServer(cfg *config.Config, logger *logrus.Logger, manager *database.Manager, history services.QueryHistoryStore) *http.Server {
	// Create and configure the HTTP server
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(cfg, logger, manager, history),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

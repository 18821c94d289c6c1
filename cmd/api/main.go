package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dbdesk/mysql-admin/internal/config"
	"github.com/dbdesk/mysql-admin/internal/database"
	"github.com/dbdesk/mysql-admin/internal/repositories"
	"github.com/dbdesk/mysql-admin/internal/server"
	"github.com/dbdesk/mysql-admin/internal/services"
	"github.com/dbdesk/mysql-admin/internal/utils"
)

func main() {
	var (
		envFile  string
		logLevel string
		port     int
	)

	rootCmd := &cobra.Command{
		Use:   "mysql-admin",
		Short: "HTTP API for browsing and editing MySQL databases",
		Long: `MySQL Admin API

Serves a JSON API to list databases and tables, inspect table structure
and foreign keys, page through and edit rows, build tables and run
free-form SQL against a MySQL server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if port != 0 {
				cfg.Port = port
			}

			return run(cfg)
		},
	}

	rootCmd.Flags().StringVarP(&envFile, "env-file", "e", ".env", "Path to .env file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (default: $PORT or 5000)")

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := utils.SetupLogging(cfg.LogLevel)
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	pool := database.DefaultPoolConfig()
	pool.MaxOpenConns = cfg.DBMaxOpenConns

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	manager, err := database.Connect(connectCtx, cfg.MySQLConfig(cfg.DBName), logger, database.WithPoolConfig(pool))
	cancel()
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	defer manager.Close()

	var history services.QueryHistoryStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		// Query history is optional; the API still serves without Redis.
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warnf("Redis at %s is unreachable, query history disabled: %v", cfg.RedisAddr, err)
		} else {
			logger.Infof("Connected to Redis at %s", cfg.RedisAddr)
			history = repositories.NewQueryHistoryRepository(rdb, cfg.QueryHistoryLimit)
		}
		cancel()
	}

	srv := server.NewServer(cfg, logger, manager, history)

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	case <-quit:
	}

	logger.Info("Shutting down server gracefully ...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server Shutdown: %v", err)
	}
	logger.Info("Server exiting")
	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"weather-stats/internal/config"
	"weather-stats/internal/handlers"
	"weather-stats/internal/repository"
	"weather-stats/internal/services"
	"weather-stats/pkg/database"
	"weather-stats/pkg/logging"
	"weather-stats/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.Logger("weather-api", version, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid logging configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting weather stats API server", logging.Fields{
		"version":      version,
		"app_env":      cfg.AppEnv,
		"server_host":  cfg.Server.Host,
		"server_port":  cfg.Server.Port,
		"dataset_path": cfg.Dataset.Path,
		"db_driver":    cfg.Database.Driver,
	})

	metricsCollector := metrics.NewCollector("weather_stats")

	// The dataset is loaded once and served read-only
	ds, err := services.NewDatasetService(logger, metricsCollector).LoadFile(ctx, cfg.Dataset.Path)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to load dataset", logging.Fields{
			"dataset_path": cfg.Dataset.Path,
		}, err)
	}

	db, err := database.Open(ctx, cfg.Connection(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db, logger, repository.Up); err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to prepare report store", logging.Fields{}, err)
	}

	reportRepo := repository.NewReportRepository(db, logger, metricsCollector)

	weatherService := services.NewWeatherService(ds, cfg.Dataset.Path)
	reportService := services.NewReportService(reportRepo, logger, metricsCollector)

	router := handlers.NewRouter(
		handlers.NewWeatherHandler(weatherService, logger, metricsCollector),
		handlers.NewReportHandler(weatherService, reportService, logger, metricsCollector),
		promhttp.Handler(),
		logger,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
			"records": ds.Size(),
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}

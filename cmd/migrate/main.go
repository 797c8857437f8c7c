package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"weather-stats/internal/config"
	"weather-stats/internal/repository"
	"weather-stats/pkg/database"
	"weather-stats/pkg/metrics"
)

func main() {
	direction := flag.String("direction", repository.Up, "Migration direction: up or down")
	printOnly := flag.Bool("print", false, "Print the schema for the configured driver and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if *printOnly {
		ddl, err := repository.Schema(cfg.Database.Driver, *direction)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		fmt.Print(ddl)
		return
	}

	logger, err := cfg.Logger("weather-migrate", "1.0.0", os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid logging configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	collector := metrics.NewCollectorWith("weather_migrate", prometheus.NewRegistry())

	db, err := database.Open(ctx, cfg.Connection(), logger, collector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Running %s migration for %s\n", *direction, cfg.Database.Driver)

	if err := repository.Migrate(ctx, db, logger, *direction); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute migration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration completed successfully")
}

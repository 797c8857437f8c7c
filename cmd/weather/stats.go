package main

import (
	"encoding/json"
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"

	"weather-stats/internal/config"
	"weather-stats/internal/display"
	"weather-stats/internal/repository"
	"weather-stats/internal/services"
	"weather-stats/pkg/database"
	"weather-stats/pkg/metrics"
)

type StatsCommand struct {
	Reasons bool   `long:"reasons" description:"break skipped lines down by reason"`
	JSON    bool   `long:"json" description:"print the full report as JSON instead of text"`
	Save    string `long:"save" value-name:"NAME" description:"store the report in the configured report store"`

	Args struct {
		File flags.Filename
	} `positional-args:"yes" required:"yes"`

	env *env
}

func (c *StatsCommand) Execute(args []string) error {
	path := string(c.Args.File)
	ds, err := c.env.load(path)
	if err != nil {
		return err
	}

	reports := services.NewReportService(nil, c.env.logger(), nil)
	if c.Save != "" {
		store, closeStore, err := c.openStore()
		if err != nil {
			return err
		}
		defer closeStore()
		reports = store
	}

	report := reports.Build(ds, c.Save, path)
	if c.Save != "" {
		if err := reports.Save(c.env.ctx, report); err != nil {
			return err
		}
	}

	if c.JSON {
		enc := json.NewEncoder(c.env.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if err := display.Summary(c.env.stdout, ds); err != nil {
		return err
	}
	if c.Reasons {
		fmt.Fprintln(c.env.stdout, "\nSkipped lines by reason:")
		if err := display.SkipBreakdown(c.env.stdout, ds); err != nil {
			return err
		}
	}
	if err := display.WeatherInfo(c.env.stdout, ds); err != nil {
		return err
	}
	if c.Save != "" {
		_, err = fmt.Fprintf(c.env.stdout, "Report %q saved with id %d\n", report.Name, report.ID)
	}
	return err
}

// openStore connects to the report store described by the environment.
func (c *StatsCommand) openStore() (*services.ReportService, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := c.env.logger()
	collector := metrics.NewCollectorWith("weather_cli", prometheus.NewRegistry())

	db, err := database.Open(c.env.ctx, cfg.Connection(), logger, collector)
	if err != nil {
		return nil, nil, err
	}
	if err := repository.Migrate(c.env.ctx, db, logger, repository.Up); err != nil {
		db.Close()
		return nil, nil, err
	}

	repo := repository.NewReportRepository(db, logger, collector)
	return services.NewReportService(repo, logger, collector), func() { db.Close() }, nil
}

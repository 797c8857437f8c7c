package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weather-stats/internal/dataset"
	"weather-stats/internal/models"
	"weather-stats/internal/repository"
	"weather-stats/pkg/logging"
	"weather-stats/pkg/metrics"
)

// ErrNoStore is returned by the persistence methods of a ReportService built
// without a repository.
var ErrNoStore = errors.New("report store not configured")

// ReportService builds weather reports from datasets and stores them
type ReportService struct {
	repo    repository.ReportRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	now     func() time.Time
}

// NewReportService creates a new report service. repo may be nil when reports
// are only built, never stored.
func NewReportService(repo repository.ReportRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ReportService {
	return &ReportService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Build runs every query against ds. Insolation is computed for dates, or for
// every date in ds when none are given; dates with no records are left out.
func (s *ReportService) Build(ds *dataset.Dataset, name, source string, dates ...models.Date) *models.WeatherReport {
	if len(dates) == 0 {
		dates = ds.Dates()
	}

	report := &models.WeatherReport{
		Name:           name,
		Source:         source,
		CreatedAt:      s.now(),
		Records:        ds.Size(),
		Skipped:        ds.Skipped(),
		Missing:        missingCounts(ds),
		MaxWindSpeed:   extremeOf(ds.MaxWindSpeed, windSpeed),
		MinTemperature: extremeOf(ds.MinTemperature, temperature),
		MaxTemperature: extremeOf(ds.MaxTemperature, temperature),
		MinHumidity:    extremeOf(ds.MinHumidity, humidity),
		MaxHumidity:    extremeOf(ds.MaxHumidity, humidity),
		Insolation:     make([]models.DailyInsolation, 0, len(dates)),
	}

	for _, date := range dates {
		if result, ok := ds.Insolation(date); ok {
			report.Insolation = append(report.Insolation, models.DailyInsolation{
				Date:   date,
				Energy: result.Energy,
				Hours:  result.Hours,
			})
		}
	}

	return report
}

func windSpeed(r models.WeatherRecord) models.NullFloat64   { return r.WindSpeed }
func temperature(r models.WeatherRecord) models.NullFloat64 { return r.Temperature }
func humidity(r models.WeatherRecord) models.NullFloat64    { return r.Humidity }

func extremeOf(query func() (models.WeatherRecord, bool), field func(models.WeatherRecord) models.NullFloat64) *models.Extreme {
	r, ok := query()
	if !ok {
		return nil
	}
	v, _ := field(r).Get()
	return &models.Extreme{Value: v, Time: r.Time}
}

// Save stores report and sets its ID.
func (s *ReportService) Save(ctx context.Context, report *models.WeatherReport) error {
	if s.repo == nil {
		return ErrNoStore
	}

	if err := s.repo.CreateReport(ctx, report); err != nil {
		s.logger.Error(ctx, "[REPORT_SAVE_ERROR] Failed to save report", logging.Fields{
			"name":   report.Name,
			"source": report.Source,
		}, err)
		return fmt.Errorf("failed to save report: %w", err)
	}

	s.logger.Info(ctx, "[REPORT_SAVED] Weather report saved", logging.Fields{
		"report_id":  report.ID,
		"name":       report.Name,
		"records":    report.Records,
		"insolation": len(report.Insolation),
	})
	return nil
}

// Get retrieves a stored report. A missing report is a *repository.NotFoundError.
func (s *ReportService) Get(ctx context.Context, id int64) (*models.WeatherReport, error) {
	if s.repo == nil {
		return nil, ErrNoStore
	}
	return s.repo.GetReport(ctx, id)
}

// List retrieves stored reports, newest first.
func (s *ReportService) List(ctx context.Context, limit, offset int) ([]*models.WeatherReport, error) {
	if s.repo == nil {
		return nil, ErrNoStore
	}
	return s.repo.ListReports(ctx, limit, offset)
}

// Delete removes a stored report.
func (s *ReportService) Delete(ctx context.Context, id int64) error {
	if s.repo == nil {
		return ErrNoStore
	}
	if err := s.repo.DeleteReport(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "[REPORT_DELETED] Weather report deleted", logging.Fields{
		"report_id": id,
	})
	return nil
}

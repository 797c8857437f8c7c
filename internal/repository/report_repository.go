package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"weather-stats/internal/models"
	"weather-stats/pkg/database"
	"weather-stats/pkg/logging"
	"weather-stats/pkg/metrics"
)

// ReportRepository stores weather reports
type ReportRepository interface {
	CreateReport(ctx context.Context, report *models.WeatherReport) error
	GetReport(ctx context.Context, id int64) (*models.WeatherReport, error)
	ListReports(ctx context.Context, limit, offset int) ([]*models.WeatherReport, error)
	DeleteReport(ctx context.Context, id int64) error

	HealthCheck(ctx context.Context) error
}

// reportRepository implements ReportRepository
type reportRepository struct {
	db      *database.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.DB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) ReportRepository {
	return &reportRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// reportRow is the flat weather_reports row.
type reportRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Source    string    `db:"source"`
	CreatedAt time.Time `db:"created_at"`

	Records            int `db:"records"`
	Skipped            int `db:"skipped"`
	MissingWindSpeed   int `db:"missing_wind_speed"`
	MissingTemperature int `db:"missing_temperature"`
	MissingIrradiance  int `db:"missing_irradiance"`
	MissingHumidity    int `db:"missing_humidity"`

	MaxWindSpeed     models.NullFloat64 `db:"max_wind_speed"`
	MaxWindSpeedAt   *time.Time         `db:"max_wind_speed_at"`
	MinTemperature   models.NullFloat64 `db:"min_temperature"`
	MinTemperatureAt *time.Time         `db:"min_temperature_at"`
	MaxTemperature   models.NullFloat64 `db:"max_temperature"`
	MaxTemperatureAt *time.Time         `db:"max_temperature_at"`
	MinHumidity      models.NullFloat64 `db:"min_humidity"`
	MinHumidityAt    *time.Time         `db:"min_humidity_at"`
	MaxHumidity      models.NullFloat64 `db:"max_humidity"`
	MaxHumidityAt    *time.Time         `db:"max_humidity_at"`
}

const reportColumns = `
	id, name, source, created_at, records, skipped,
	missing_wind_speed, missing_temperature, missing_irradiance, missing_humidity,
	max_wind_speed, max_wind_speed_at, min_temperature, min_temperature_at,
	max_temperature, max_temperature_at, min_humidity, min_humidity_at,
	max_humidity, max_humidity_at`

func extremeArgs(e *models.Extreme) (*float64, *time.Time) {
	if e == nil {
		return nil, nil
	}
	v, t := e.Value, e.Time.UTC()
	return &v, &t
}

func extremeFromRow(v models.NullFloat64, at *time.Time) *models.Extreme {
	value, ok := v.Get()
	if !ok || at == nil {
		return nil
	}
	return &models.Extreme{Value: value, Time: at.UTC()}
}

func (row *reportRow) toModel() *models.WeatherReport {
	return &models.WeatherReport{
		ID:        row.ID,
		Name:      row.Name,
		Source:    row.Source,
		CreatedAt: row.CreatedAt.UTC(),
		Records:   row.Records,
		Skipped:   row.Skipped,
		Missing: models.MissingCounts{
			WindSpeed:   row.MissingWindSpeed,
			Temperature: row.MissingTemperature,
			Irradiance:  row.MissingIrradiance,
			Humidity:    row.MissingHumidity,
		},
		MaxWindSpeed:   extremeFromRow(row.MaxWindSpeed, row.MaxWindSpeedAt),
		MinTemperature: extremeFromRow(row.MinTemperature, row.MinTemperatureAt),
		MaxTemperature: extremeFromRow(row.MaxTemperature, row.MaxTemperatureAt),
		MinHumidity:    extremeFromRow(row.MinHumidity, row.MinHumidityAt),
		MaxHumidity:    extremeFromRow(row.MaxHumidity, row.MaxHumidityAt),
	}
}

// CreateReport inserts a report and its daily insolation rows in one
// transaction and sets report.ID.
func (r *reportRepository) CreateReport(ctx context.Context, report *models.WeatherReport) error {
	timer := time.Now()
	defer func() {
		r.metrics.DBQueryDuration.WithLabelValues("insert_report").Observe(time.Since(timer).Seconds())
	}()

	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	maxWind, maxWindAt := extremeArgs(report.MaxWindSpeed)
	minTemp, minTempAt := extremeArgs(report.MinTemperature)
	maxTemp, maxTempAt := extremeArgs(report.MaxTemperature)
	minHumid, minHumidAt := extremeArgs(report.MinHumidity)
	maxHumid, maxHumidAt := extremeArgs(report.MaxHumidity)

	query := tx.Rebind(`
		INSERT INTO weather_reports (
			name, source, created_at, records, skipped,
			missing_wind_speed, missing_temperature, missing_irradiance, missing_humidity,
			max_wind_speed, max_wind_speed_at, min_temperature, min_temperature_at,
			max_temperature, max_temperature_at, min_humidity, min_humidity_at,
			max_humidity, max_humidity_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err = tx.QueryRowxContext(ctx, query,
		report.Name,
		report.Source,
		report.CreatedAt.UTC(),
		report.Records,
		report.Skipped,
		report.Missing.WindSpeed,
		report.Missing.Temperature,
		report.Missing.Irradiance,
		report.Missing.Humidity,
		maxWind, maxWindAt,
		minTemp, minTempAt,
		maxTemp, maxTempAt,
		minHumid, minHumidAt,
		maxHumid, maxHumidAt,
	).Scan(&report.ID)
	if err != nil {
		r.metrics.RecordDBError("insert_error")
		return fmt.Errorf("failed to create report: %w", err)
	}

	if len(report.Insolation) > 0 {
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
			INSERT INTO weather_report_insolation (report_id, date, energy, hours)
			VALUES (?, ?, ?, ?)
		`))
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, day := range report.Insolation {
			if _, err := stmt.ExecContext(ctx, report.ID, day.Date, day.Energy, day.Hours); err != nil {
				r.metrics.RecordDBError("insert_error")
				return fmt.Errorf("failed to insert insolation for %s: %w", day.Date, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_CREATE_REPORT] Report created", logging.Fields{
		"report_id":  report.ID,
		"name":       report.Name,
		"insolation": len(report.Insolation),
	})

	return nil
}

// GetReport retrieves a report and its daily insolation by ID
func (r *reportRepository) GetReport(ctx context.Context, id int64) (*models.WeatherReport, error) {
	var row reportRow
	err := r.db.GetContext(ctx, "get_report", &row,
		`SELECT `+reportColumns+` FROM weather_reports WHERE id = ?`, id)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "weather_report",
			ID:       strconv.FormatInt(id, 10),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	report := row.toModel()
	report.Insolation = []models.DailyInsolation{}
	err = r.db.SelectContext(ctx, "get_report_insolation", &report.Insolation, `
		SELECT date, energy, hours
		FROM weather_report_insolation
		WHERE report_id = ?
		ORDER BY date
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report insolation: %w", err)
	}

	return report, nil
}

// ListReports returns reports newest first, without their insolation rows
func (r *reportRepository) ListReports(ctx context.Context, limit, offset int) ([]*models.WeatherReport, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var rows []reportRow
	err := r.db.SelectContext(ctx, "list_reports", &rows, `
		SELECT `+reportColumns+`
		FROM weather_reports
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]*models.WeatherReport, 0, len(rows))
	for i := range rows {
		reports = append(reports, rows[i].toModel())
	}
	return reports, nil
}

// DeleteReport removes a report and its insolation rows
func (r *reportRepository) DeleteReport(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// sqlite does not enforce the cascade unless foreign keys are enabled
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM weather_report_insolation WHERE report_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete report insolation: %w", err)
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM weather_reports WHERE id = ?`), id)
	if err != nil {
		r.metrics.RecordDBError("delete_error")
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return &NotFoundError{
			Resource: "weather_report",
			ID:       strconv.FormatInt(id, 10),
		}
	}

	return tx.Commit()
}

// HealthCheck performs a repository health check
func (r *reportRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}

package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-stats/internal/dataset"
	"weather-stats/internal/models"
	"weather-stats/internal/repository"
	"weather-stats/internal/source"
	"weather-stats/pkg/database"
	"weather-stats/pkg/logging"
	"weather-stats/pkg/metrics"
)

var lines = source.StaticLines{
	"01/07/2019 09:00,7.38,267.7,13.78,15.378,15.66,174.9,75.8",
	"01/07/2019 10:00,6.83,265.1,14.38,15.476,15.78,149.7,76.6",
	"01/07/2019 11:00,5.525,272.4,17.87,15.7,15.96,107.6,75.5",
	"01/07/2019 12:00,7.95,283.2,14.51,18.59,19.03,564.8,62.77",
	"01/07/2019 13:00,7.83,285.7,16.51,18.334,18.71,676.8,57.59",
	"01/07/2019 14:00,7.1",
	"02/07/2019 09:00,3.2,250,10,14.1,14.3,,80.0",
}

func july(day, hour int) time.Time {
	return time.Date(2019, time.July, day, hour, 0, 0, 0, time.UTC)
}

func loadLines(t *testing.T) *dataset.Dataset {
	t.Helper()
	svc := NewDatasetService(logging.Discard(), nil)
	ds, err := svc.Load(context.Background(), lines, "static", time.Now())
	require.NoError(t, err)
	return ds
}

func TestDatasetService_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.csv")
	content := source.Header + "\n" + strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	collector := metrics.NewCollectorWith("test", prometheus.NewRegistry())
	svc := NewDatasetService(logging.Discard(), collector)

	ds, err := svc.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 6, ds.Size())
	assert.Equal(t, 1, ds.Skipped())
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.DatasetSkippedTotal.WithLabelValues("field_count")))
}

func TestDatasetService_LoadFileMissing(t *testing.T) {
	svc := NewDatasetService(logging.Discard(), nil)
	_, err := svc.LoadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))

	var notFound *source.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestWeatherService_Summary(t *testing.T) {
	svc := NewWeatherService(loadLines(t), "static")
	summary := svc.Summary()

	assert.Equal(t, "static", summary.Source)
	assert.Equal(t, 6, summary.Records)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.SkippedBy["field_count"])
	assert.Equal(t, 0, summary.SkippedBy["bad_time"])
	assert.Equal(t, models.MissingCounts{Irradiance: 1}, summary.Missing)
	assert.Equal(t, []models.Date{
		models.NewDate(2019, time.July, 1),
		models.NewDate(2019, time.July, 2),
	}, summary.Dates)
}

func TestWeatherService_Records(t *testing.T) {
	svc := NewWeatherService(loadLines(t), "static")

	tests := []struct {
		name          string
		offset, limit int
		wantLen       int
		wantFirst     time.Time
	}{
		{"first page", 0, 2, 2, july(1, 9)},
		{"middle", 4, 10, 2, july(1, 13)},
		{"past end", 6, 10, 0, time.Time{}},
		{"negative offset", -3, 1, 1, july(1, 9)},
		{"zero limit", 0, 0, 0, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, total := svc.Records(tt.offset, tt.limit)
			assert.Equal(t, 6, total)
			require.Len(t, records, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, records[0].Time)
			}
		})
	}
}

func TestWeatherService_Extreme(t *testing.T) {
	svc := NewWeatherService(loadLines(t), "static")

	tests := []struct {
		query string
		want  time.Time
	}{
		{dataset.QueryMaxWindSpeed, july(1, 12)},
		{dataset.QueryMinTemperature, july(2, 9)},
		{dataset.QueryMaxTemperature, july(1, 12)},
		{dataset.QueryMinHumidity, july(1, 13)},
		{dataset.QueryMaxHumidity, july(2, 9)},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			record, ok, err := svc.Extreme(tt.query)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, record.Time)
		})
	}

	_, _, err := svc.Extreme("maxIrradiance")
	assert.ErrorIs(t, err, ErrUnknownQuery)
}

func TestWeatherService_RecordOutOfRange(t *testing.T) {
	svc := NewWeatherService(loadLines(t), "static")
	_, err := svc.Record(6)
	assert.ErrorIs(t, err, dataset.ErrIndexOutOfRange)
}

func newReportService(t *testing.T) *ReportService {
	t.Helper()
	ctx := context.Background()
	logger := logging.Discard()
	collector := metrics.NewCollectorWith("test", prometheus.NewRegistry())

	db, err := database.Open(ctx, &database.Config{
		Driver:       database.SQLite,
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger, collector)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repository.Migrate(ctx, db, logger, repository.Up))

	return NewReportService(repository.NewReportRepository(db, logger, collector), logger, collector)
}

func TestReportService_Build(t *testing.T) {
	svc := NewReportService(nil, logging.Discard(), nil)
	svc.now = func() time.Time { return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC) }

	report := svc.Build(loadLines(t), "july", "static")

	assert.Equal(t, "july", report.Name)
	assert.Equal(t, 6, report.Records)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Missing.Irradiance)

	require.NotNil(t, report.MaxWindSpeed)
	assert.Equal(t, &models.Extreme{Value: 7.95, Time: july(1, 12)}, report.MaxWindSpeed)
	assert.Equal(t, &models.Extreme{Value: 14.1, Time: july(2, 9)}, report.MinTemperature)
	assert.Equal(t, &models.Extreme{Value: 57.59, Time: july(1, 13)}, report.MinHumidity)

	require.Len(t, report.Insolation, 2)
	assert.InDelta(t, 6025680.0, report.Insolation[0].Energy, 0.001)
	assert.Equal(t, 5, report.Insolation[0].Hours)
	assert.Equal(t, models.DailyInsolation{Date: models.NewDate(2019, time.July, 2)}, report.Insolation[1])
}

func TestReportService_BuildSelectedDates(t *testing.T) {
	svc := NewReportService(nil, logging.Discard(), nil)

	report := svc.Build(loadLines(t), "one day", "static",
		models.NewDate(2019, time.July, 1),
		models.NewDate(2020, time.January, 1),
	)
	require.Len(t, report.Insolation, 1, "dates without records are left out")
	assert.Equal(t, "2019-07-01", report.Insolation[0].Date.String())
}

func TestReportService_BuildEmpty(t *testing.T) {
	svc := NewReportService(nil, logging.Discard(), nil)
	ds, err := dataset.Load(context.Background(), source.StaticLines{})
	require.NoError(t, err)

	report := svc.Build(ds, "empty", "static")
	assert.Nil(t, report.MaxWindSpeed)
	assert.Nil(t, report.MaxHumidity)
	assert.Empty(t, report.Insolation)
}

func TestReportService_NoStore(t *testing.T) {
	svc := NewReportService(nil, logging.Discard(), nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Save(ctx, &models.WeatherReport{}), ErrNoStore)
	_, err := svc.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNoStore)
	_, err = svc.List(ctx, 10, 0)
	assert.ErrorIs(t, err, ErrNoStore)
	assert.ErrorIs(t, svc.Delete(ctx, 1), ErrNoStore)
}

func TestReportService_SaveGetListDelete(t *testing.T) {
	svc := newReportService(t)
	ctx := context.Background()

	report := svc.Build(loadLines(t), "july", "static")
	require.NoError(t, svc.Save(ctx, report))
	require.NotZero(t, report.ID)

	got, err := svc.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Records, got.Records)
	require.NotNil(t, got.MinTemperature)
	assert.Equal(t, 14.1, got.MinTemperature.Value)
	assert.True(t, july(2, 9).Equal(got.MinTemperature.Time))
	require.Len(t, got.Insolation, 2)

	list, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, report.ID, list[0].ID)

	require.NoError(t, svc.Delete(ctx, report.ID))
	_, err = svc.Get(ctx, report.ID)
	var notFound *repository.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

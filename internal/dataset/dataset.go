package dataset

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"weather-stats/internal/models"
	"weather-stats/internal/source"
	"weather-stats/pkg/logging"
	"weather-stats/pkg/metrics"
)

// ErrIndexOutOfRange is returned by Get for an index outside [0, Size()).
var ErrIndexOutOfRange = errors.New("index out of range")

// Query names, used as cache keys and metric labels.
const (
	QueryMissingWindSpeed   = "missingWindSpeed"
	QueryMissingTemperature = "missingTemperature"
	QueryMissingIrradiance  = "missingIrradiance"
	QueryMissingHumidity    = "missingHumidity"
	QueryMaxWindSpeed       = "maxWindSpeed"
	QueryMinTemperature     = "minTemperature"
	QueryMaxTemperature     = "maxTemperature"
	QueryMinHumidity        = "minHumidity"
	QueryMaxHumidity        = "maxHumidity"
)

// Dataset is the sequence of records read from a weather file, together with
// a count of the lines that had to be skipped.
//
// A Dataset is read-only once Load returns. Missing-value counts and extremum
// queries are computed on first use and cached for the lifetime of the
// Dataset; all methods are safe for concurrent use.
type Dataset struct {
	records   []models.WeatherRecord
	skipped   int
	skippedBy map[models.SkipReason]int

	missing memo[int]
	extrema memo[int] // index into records, -1 when no record qualifies

	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// Option configures a Dataset.
type Option func(*Dataset)

// WithLogger logs load progress and skipped lines.
func WithLogger(logger *logging.StructuredLogger) Option {
	return func(d *Dataset) { d.logger = logger }
}

// WithMetrics records load and query metrics.
func WithMetrics(collector *metrics.Collector) Option {
	return func(d *Dataset) { d.metrics = collector }
}

// Load reads every line from src and builds a Dataset. Lines that fail to
// parse are counted as skipped. An error from src, or cancellation of ctx,
// aborts the load and no Dataset is returned.
func Load(ctx context.Context, src source.LineSource, opts ...Option) (*Dataset, error) {
	d := &Dataset{skippedBy: make(map[models.SkipReason]int)}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logging.Discard()
	}

	startTime := time.Now()
	lineNumber := 1 // the header

	for line, err := range src.Lines() {
		if err != nil {
			d.logger.Error(ctx, "[DATASET_LOAD_ERROR] Failed to read weather data", logging.Fields{
				"line_number": lineNumber,
			}, err)
			return nil, fmt.Errorf("failed to load dataset: %w", err)
		}
		lineNumber++
		if lineNumber%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("failed to load dataset: %w", err)
			}
		}

		record, err := ParseLine(line)
		if err != nil {
			d.skip(ctx, lineNumber, err)
			continue
		}
		d.records = append(d.records, record)
	}

	duration := time.Since(startTime)
	if d.metrics != nil {
		d.metrics.DatasetLinesTotal.Add(float64(lineNumber - 1))
		d.metrics.DatasetRecordsTotal.Add(float64(len(d.records)))
		d.metrics.DatasetLoadDuration.Observe(duration.Seconds())
	}

	d.logger.Info(ctx, "[DATASET_LOAD_COMPLETE] Weather dataset loaded", logging.Fields{
		"records":     len(d.records),
		"skipped":     d.skipped,
		"duration_ms": duration.Milliseconds(),
	})

	return d, nil
}

func (d *Dataset) skip(ctx context.Context, lineNumber int, err error) {
	reason := models.SkipInvalidValue
	var skipErr *SkipError
	if errors.As(err, &skipErr) {
		reason = skipErr.Reason
	}

	d.skipped++
	d.skippedBy[reason]++
	if d.metrics != nil {
		d.metrics.RecordSkippedLine(reason.String())
	}
	d.logger.Debug(ctx, "[DATASET_SKIP] Skipping invalid line", logging.Fields{
		"line_number": lineNumber,
		"reason":      reason.String(),
		"error":       err.Error(),
	})
}

// Size returns the number of records.
func (d *Dataset) Size() int {
	return len(d.records)
}

// Skipped returns the number of data lines that were rejected.
func (d *Dataset) Skipped() int {
	return d.skipped
}

// SkippedBy breaks Skipped down by reason. Reasons with no skips are included
// with a zero count.
func (d *Dataset) SkippedBy() map[models.SkipReason]int {
	out := make(map[models.SkipReason]int, len(models.SkipReasons))
	for _, r := range models.SkipReasons {
		out[r] = d.skippedBy[r]
	}
	return out
}

// Get returns the record at a zero-based index.
func (d *Dataset) Get(index int) (models.WeatherRecord, error) {
	if index < 0 || index >= len(d.records) {
		return models.WeatherRecord{}, fmt.Errorf("record %d of %d: %w", index, len(d.records), ErrIndexOutOfRange)
	}
	return d.records[index], nil
}

// All iterates over the records in file order. It can be ranged over any
// number of times, concurrently.
func (d *Dataset) All() iter.Seq2[int, models.WeatherRecord] {
	return func(yield func(int, models.WeatherRecord) bool) {
		for i, r := range d.records {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Dates returns the distinct calendar dates covered, in order of first appearance.
func (d *Dataset) Dates() []models.Date {
	var dates []models.Date
	seen := make(map[models.Date]bool)
	for _, r := range d.records {
		date := r.Date()
		if !seen[date] {
			seen[date] = true
			dates = append(dates, date)
		}
	}
	return dates
}

func windSpeed(r models.WeatherRecord) models.NullFloat64   { return r.WindSpeed }
func temperature(r models.WeatherRecord) models.NullFloat64 { return r.Temperature }
func irradiance(r models.WeatherRecord) models.NullFloat64  { return r.Irradiance }
func humidity(r models.WeatherRecord) models.NullFloat64    { return r.Humidity }

// MissingWindSpeed returns the number of records without a wind speed.
func (d *Dataset) MissingWindSpeed() int {
	return d.countMissing(QueryMissingWindSpeed, windSpeed)
}

// MissingTemperature returns the number of records without a temperature.
func (d *Dataset) MissingTemperature() int {
	return d.countMissing(QueryMissingTemperature, temperature)
}

// MissingIrradiance returns the number of records without an irradiance.
func (d *Dataset) MissingIrradiance() int {
	return d.countMissing(QueryMissingIrradiance, irradiance)
}

// MissingHumidity returns the number of records without a humidity.
func (d *Dataset) MissingHumidity() int {
	return d.countMissing(QueryMissingHumidity, humidity)
}

func (d *Dataset) countMissing(query string, field func(models.WeatherRecord) models.NullFloat64) int {
	n, hit := d.missing.get(query, func() int {
		count := 0
		for _, r := range d.records {
			if !field(r).HasValue {
				count++
			}
		}
		return count
	})
	d.recordCacheLookup(query, hit)
	return n
}

// MaxWindSpeed finds the record with the highest wind speed. ok is false if
// no record has a wind speed.
func (d *Dataset) MaxWindSpeed() (models.WeatherRecord, bool) {
	return d.extremum(QueryMaxWindSpeed, windSpeed, true)
}

// MinTemperature finds the record with the lowest temperature.
func (d *Dataset) MinTemperature() (models.WeatherRecord, bool) {
	return d.extremum(QueryMinTemperature, temperature, false)
}

// MaxTemperature finds the record with the highest temperature.
func (d *Dataset) MaxTemperature() (models.WeatherRecord, bool) {
	return d.extremum(QueryMaxTemperature, temperature, true)
}

// MinHumidity finds the record with the lowest humidity.
func (d *Dataset) MinHumidity() (models.WeatherRecord, bool) {
	return d.extremum(QueryMinHumidity, humidity, false)
}

// MaxHumidity finds the record with the highest humidity.
func (d *Dataset) MaxHumidity() (models.WeatherRecord, bool) {
	return d.extremum(QueryMaxHumidity, humidity, true)
}

// extremum returns the record holding the largest (highest) or smallest value of
// field. Missing values never win; ties go to the earliest record.
func (d *Dataset) extremum(query string, field func(models.WeatherRecord) models.NullFloat64, highest bool) (models.WeatherRecord, bool) {
	index, hit := d.extrema.get(query, func() int {
		best := -1
		var bestValue float64
		for i, r := range d.records {
			v, ok := field(r).Get()
			if !ok {
				continue
			}
			if best < 0 || (highest && v > bestValue) || (!highest && v < bestValue) {
				best, bestValue = i, v
			}
		}
		return best
	})
	d.recordCacheLookup(query, hit)

	if index < 0 {
		return models.WeatherRecord{}, false
	}
	return d.records[index], true
}

func (d *Dataset) recordCacheLookup(query string, hit bool) {
	if d.metrics != nil {
		d.metrics.RecordCacheLookup(query, hit)
	}
}

// cachedQueries returns how many distinct queries have been cached.
func (d *Dataset) cachedQueries() int {
	return d.missing.len() + d.extrema.len()
}

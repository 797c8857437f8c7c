package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"weather-stats/internal/models"
)

// Column layout of a weather file line. Only five of the eight columns are
// read, but every line must have all eight.
const (
	NumFields = 8

	timeField  = 0
	windField  = 1
	tempField  = 4
	sunField   = 6
	humidField = 7
)

// SkipError reports a line that could not be turned into a record.
type SkipError struct {
	Reason models.SkipReason
	Err    error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *SkipError) Unwrap() error {
	return e.Err
}

// ParseLine turns one data line into a record. Only the timestamp decides
// whether a line is usable: blank or unparseable measurements become missing
// values. Any returned error is a *SkipError.
func ParseLine(line string) (models.WeatherRecord, error) {
	fields := strings.Split(line, ",")
	if len(fields) != NumFields {
		return models.WeatherRecord{}, &SkipError{
			Reason: models.SkipFieldCount,
			Err:    fmt.Errorf("expected %d fields, got %d", NumFields, len(fields)),
		}
	}

	if strings.TrimSpace(fields[timeField]) == "" {
		return models.WeatherRecord{}, &SkipError{
			Reason: models.SkipBlankTime,
			Err:    fmt.Errorf("blank time field"),
		}
	}

	t, err := time.Parse(models.TimeLayout, fields[timeField])
	if err != nil {
		return models.WeatherRecord{}, &SkipError{
			Reason: models.SkipBadTime,
			Err: &models.ValidationError{
				Field:   "time",
				Value:   fields[timeField],
				Message: "invalid time format, expected dd/MM/yyyy HH:mm",
			},
		}
	}

	record, err := models.NewWeatherRecord(t,
		parseMeasurement(fields[windField]),
		parseMeasurement(fields[tempField]),
		parseMeasurement(fields[sunField]),
		parseMeasurement(fields[humidField]),
	)
	if err != nil {
		return models.WeatherRecord{}, &SkipError{Reason: models.SkipInvalidValue, Err: err}
	}
	return record, nil
}

// parseMeasurement treats blank, non-numeric and non-finite values as missing.
func parseMeasurement(s string) models.NullFloat64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Null
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return models.Null
	}
	return models.Float(v)
}

// FormatLine renders a record as a full weather file line. The columns the
// parser ignores are left blank, so ParseLine(FormatLine(r)) == r.
func FormatLine(r models.WeatherRecord) string {
	fields := make([]string, NumFields)
	fields[timeField] = r.Time.Format(models.TimeLayout)
	fields[windField] = r.WindSpeed.String()
	fields[tempField] = r.Temperature.String()
	fields[sunField] = r.Irradiance.String()
	fields[humidField] = r.Humidity.String()
	return strings.Join(fields, ",")
}

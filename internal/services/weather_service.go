package services

import (
	"errors"
	"fmt"

	"weather-stats/internal/dataset"
	"weather-stats/internal/models"
)

// ErrUnknownQuery is returned for an extremum query name that does not exist.
var ErrUnknownQuery = errors.New("unknown query")

// ExtremeQueries lists the extremum query names accepted by Extreme.
var ExtremeQueries = []string{
	dataset.QueryMaxWindSpeed,
	dataset.QueryMinTemperature,
	dataset.QueryMaxTemperature,
	dataset.QueryMinHumidity,
	dataset.QueryMaxHumidity,
}

// WeatherService answers queries against one loaded dataset
type WeatherService struct {
	ds     *dataset.Dataset
	source string
}

// NewWeatherService creates a new weather service over ds
func NewWeatherService(ds *dataset.Dataset, source string) *WeatherService {
	return &WeatherService{ds: ds, source: source}
}

// Dataset returns the dataset being queried.
func (s *WeatherService) Dataset() *dataset.Dataset {
	return s.ds
}

// Source returns the location the dataset was loaded from.
func (s *WeatherService) Source() string {
	return s.source
}

// Summary returns record and skip counts, missing counts and covered dates.
func (s *WeatherService) Summary() models.DatasetSummary {
	skippedBy := make(map[string]int)
	for reason, n := range s.ds.SkippedBy() {
		skippedBy[reason.String()] = n
	}
	return models.DatasetSummary{
		Source:    s.source,
		Records:   s.ds.Size(),
		Skipped:   s.ds.Skipped(),
		SkippedBy: skippedBy,
		Missing:   missingCounts(s.ds),
		Dates:     s.ds.Dates(),
	}
}

// Records returns up to limit records starting at offset, and the total count.
func (s *WeatherService) Records(offset, limit int) ([]models.WeatherRecord, int) {
	total := s.ds.Size()
	if offset < 0 {
		offset = 0
	}
	if offset >= total || limit <= 0 {
		return []models.WeatherRecord{}, total
	}
	end := min(offset+limit, total)

	records := make([]models.WeatherRecord, 0, end-offset)
	for i, r := range s.ds.All() {
		if i >= end {
			break
		}
		if i >= offset {
			records = append(records, r)
		}
	}
	return records, total
}

// Record returns the record at index.
func (s *WeatherService) Record(index int) (models.WeatherRecord, error) {
	return s.ds.Get(index)
}

// Extreme runs a named extremum query. ok is false when no record has the
// measurement.
func (s *WeatherService) Extreme(query string) (record models.WeatherRecord, ok bool, err error) {
	switch query {
	case dataset.QueryMaxWindSpeed:
		record, ok = s.ds.MaxWindSpeed()
	case dataset.QueryMinTemperature:
		record, ok = s.ds.MinTemperature()
	case dataset.QueryMaxTemperature:
		record, ok = s.ds.MaxTemperature()
	case dataset.QueryMinHumidity:
		record, ok = s.ds.MinHumidity()
	case dataset.QueryMaxHumidity:
		record, ok = s.ds.MaxHumidity()
	default:
		return models.WeatherRecord{}, false, fmt.Errorf("%w %q (allowed: %v)", ErrUnknownQuery, query, ExtremeQueries)
	}
	return record, ok, nil
}

// Insolation computes the insolation on date.
func (s *WeatherService) Insolation(date models.Date) (dataset.Insolation, bool) {
	return s.ds.Insolation(date)
}

func missingCounts(ds *dataset.Dataset) models.MissingCounts {
	return models.MissingCounts{
		WindSpeed:   ds.MissingWindSpeed(),
		Temperature: ds.MissingTemperature(),
		Irradiance:  ds.MissingIrradiance(),
		Humidity:    ds.MissingHumidity(),
	}
}

package models

import "time"

// Extreme is the winning record of a min/max query.
type Extreme struct {
	Value float64   `json:"value"`
	Time  time.Time `json:"time"`
}

// MissingCounts holds the number of records without each measurement.
type MissingCounts struct {
	WindSpeed   int `json:"wind_speed"`
	Temperature int `json:"temperature"`
	Irradiance  int `json:"irradiance"`
	Humidity    int `json:"humidity"`
}

// DailyInsolation is the solar energy received on one date.
type DailyInsolation struct {
	Date   Date    `json:"date" db:"date"`
	Energy float64 `json:"energy_j_per_m2" db:"energy"`
	Hours  int     `json:"hours" db:"hours"`
}

// WeatherReport is a snapshot of the query results for one dataset. Extremes
// are nil when no record has the measurement.
type WeatherReport struct {
	ID        int64     `json:"id,omitempty"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`

	Records int           `json:"records"`
	Skipped int           `json:"skipped"`
	Missing MissingCounts `json:"missing"`

	MaxWindSpeed   *Extreme `json:"max_wind_speed"`
	MinTemperature *Extreme `json:"min_temperature"`
	MaxTemperature *Extreme `json:"max_temperature"`
	MinHumidity    *Extreme `json:"min_humidity"`
	MaxHumidity    *Extreme `json:"max_humidity"`

	Insolation []DailyInsolation `json:"insolation"`
}

// DatasetSummary describes a loaded dataset.
type DatasetSummary struct {
	Source    string         `json:"source"`
	Records   int            `json:"records"`
	Skipped   int            `json:"skipped"`
	SkippedBy map[string]int `json:"skipped_by_reason"`
	Missing   MissingCounts  `json:"missing"`
	Dates     []Date         `json:"dates"`
}

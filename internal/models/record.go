package models

import (
	"strings"
	"time"
)

// TimeLayout is the layout of the station timestamp column (dd/MM/yyyy HH:mm).
const TimeLayout = "02/01/2006 15:04"

// WeatherRecord is a set of station measurements made at one point in time.
// The time is always present; each measurement may be missing because of a
// fault, instrument maintenance or an invalid reading.
// Records are values and are never modified after construction.
type WeatherRecord struct {
	Time        time.Time   `json:"time"`
	WindSpeed   NullFloat64 `json:"wind_speed"`  // m/s
	Temperature NullFloat64 `json:"temperature"` // °C
	Irradiance  NullFloat64 `json:"irradiance"`  // W/m²
	Humidity    NullFloat64 `json:"humidity"`    // %
}

// NewWeatherRecord validates the measurements and builds a record.
// Wind speed, irradiance and humidity cannot be negative; temperature can.
func NewWeatherRecord(t time.Time, windSpeed, temperature, irradiance, humidity NullFloat64) (WeatherRecord, error) {
	for _, m := range []struct {
		field string
		value NullFloat64
	}{
		{"wind_speed", windSpeed},
		{"irradiance", irradiance},
		{"humidity", humidity},
	} {
		if m.value.HasValue && m.value.Value < 0 {
			return WeatherRecord{}, &ValidationError{
				Field:   m.field,
				Value:   m.value.String(),
				Message: m.field + " cannot be negative",
			}
		}
	}

	return WeatherRecord{
		Time:        t,
		WindSpeed:   windSpeed,
		Temperature: temperature,
		Irradiance:  irradiance,
		Humidity:    humidity,
	}, nil
}

// Date returns the calendar date of the measurement.
func (r WeatherRecord) Date() Date {
	return DateOf(r.Time)
}

// String renders the record as "time,wind,temperature,irradiance,humidity"
// with missing measurements left blank.
func (r WeatherRecord) String() string {
	var b strings.Builder
	b.WriteString(r.Time.Format(TimeLayout))
	for _, v := range []NullFloat64{r.WindSpeed, r.Temperature, r.Irradiance, r.Humidity} {
		b.WriteByte(',')
		b.WriteString(v.String())
	}
	return b.String()
}

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}

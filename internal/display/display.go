// Package display formats dataset query results for terminals.
package display

import (
	"fmt"
	"io"
	"time"

	"weather-stats/internal/dataset"
	"weather-stats/internal/models"
)

const measuredAt = "2006-01-02T15:04"

// Summary writes the record/skip totals and the missing-value counts.
func Summary(w io.Writer, ds *dataset.Dataset) error {
	_, err := fmt.Fprintf(w, `
%d valid records, %d skipped

Missing wind speed  : %d
Missing temperature : %d
Missing irradiance  : %d
Missing humidity    : %d
`,
		ds.Size(), ds.Skipped(),
		ds.MissingWindSpeed(),
		ds.MissingTemperature(),
		ds.MissingIrradiance(),
		ds.MissingHumidity(),
	)
	return err
}

// SkipBreakdown writes one line per skip reason.
func SkipBreakdown(w io.Writer, ds *dataset.Dataset) error {
	by := ds.SkippedBy()
	for _, reason := range models.SkipReasons {
		if _, err := fmt.Fprintf(w, "  %-14s: %d\n", reason, by[reason]); err != nil {
			return err
		}
	}
	return nil
}

// WeatherInfo writes the extreme wind, humidity and temperature readings.
// Each temperature extreme is followed by the insolation on its date.
func WeatherInfo(w io.Writer, ds *dataset.Dataset) error {
	p := &printer{w: w}

	if rec, ok := ds.MaxWindSpeed(); ok {
		p.printf("\nHighest wind speed = %.1f m/s\n", rec.WindSpeed.Value)
		p.printf("(Measurement made at %s)\n\n", at(rec.Time))
	}

	if rec, ok := ds.MinHumidity(); ok {
		p.printf("Lowest humidity = %.1f%%\n", rec.Humidity.Value)
		p.printf("(Measured at %s)\n\n", at(rec.Time))
	}
	if rec, ok := ds.MaxHumidity(); ok {
		p.printf("Highest humidity = %.1f%%\n", rec.Humidity.Value)
		p.printf("(Measured at %s)\n\n", at(rec.Time))
	}

	if rec, ok := ds.MinTemperature(); ok {
		p.printf("Lowest temperature = %.1f°C\n", rec.Temperature.Value)
		p.printf("(Measured at %s)\n", at(rec.Time))
		p.dayInsolation(ds, rec.Date())
	}
	if rec, ok := ds.MaxTemperature(); ok {
		p.printf("Highest temperature = %.1f°C\n", rec.Temperature.Value)
		p.printf("(Measured at %s)\n", at(rec.Time))
		p.dayInsolation(ds, rec.Date())
	}

	return p.err
}

// Insolation writes the insolation for date, or a not-found message.
func Insolation(w io.Writer, ds *dataset.Dataset, date models.Date) error {
	p := &printer{w: w}
	if result, ok := ds.Insolation(date); ok {
		p.printf("Insolation on %s = %s J/m²\n", date, formatEnergy(result.Energy))
		p.printf("Computed for %d hours of measurements\n", result.Hours)
	} else {
		p.printf("Date not found in dataset!\n")
	}
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) dayInsolation(ds *dataset.Dataset, date models.Date) {
	if result, ok := ds.Insolation(date); ok {
		p.printf("Insolation on %s = %s J/m²\n\n", date, formatEnergy(result.Energy))
	}
}

func at(t time.Time) string {
	return t.Format(measuredAt)
}

// formatEnergy prints four significant digits.
func formatEnergy(joules float64) string {
	return fmt.Sprintf("%.4g", joules)
}

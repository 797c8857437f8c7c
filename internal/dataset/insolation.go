package dataset

import (
	"iter"

	"weather-stats/internal/models"
)

// SecondsPerHour converts an hourly irradiance sample (W/m²) into energy (J/m²).
const SecondsPerHour = 3600

// Insolation is the solar energy incident on one square metre over a period.
type Insolation struct {
	Energy float64 `json:"energy"` // J/m²
	Hours  int     `json:"hours"`  // records with an irradiance measurement
}

// Integrate sums hourly irradiance over records, in order. Records without an
// irradiance contribute nothing to the energy and are not counted in Hours.
// ok is false when records is empty.
func Integrate(records iter.Seq[models.WeatherRecord]) (result Insolation, ok bool) {
	sum := 0.0
	for r := range records {
		ok = true
		if v, present := r.Irradiance.Get(); present {
			sum += v
			result.Hours++
		}
	}
	result.Energy = SecondsPerHour * sum
	return result, ok
}

// Insolation computes the insolation for one calendar date. ok is false if no
// record falls on date. Results are not cached.
func (d *Dataset) Insolation(date models.Date) (Insolation, bool) {
	result, ok := Integrate(d.on(date))
	if d.metrics != nil {
		d.metrics.RecordInsolationQuery(ok)
	}
	return result, ok
}

func (d *Dataset) on(date models.Date) iter.Seq[models.WeatherRecord] {
	return func(yield func(models.WeatherRecord) bool) {
		for _, r := range d.records {
			if date.Contains(r.Time) && !yield(r) {
				return
			}
		}
	}
}

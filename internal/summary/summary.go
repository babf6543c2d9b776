// Package summary derives the user-facing weather Summary from a provider Observation.
package summary

import (
	"math"
	"time"

	"github.com/kjstillabower/weather-narrator/internal/models"
)

// Build derives a Summary for geo from obs. Temperature and wind are rounded to whole units;
// Celsius is converted from the rounded Fahrenheit value.
func Build(geo models.GeoResult, obs models.Observation) models.Summary {
	tempF := Round(obs.TempF)
	return models.Summary{
		Location:      DisplayName(geo),
		Temp:          tempF,
		TempC:         FahrenheitToCelsius(float64(tempF)),
		Humidity:      obs.Humidity,
		Wind:          Round(obs.WindMph),
		Clouds:        obs.Clouds,
		Pressure:      obs.PressureHPa,
		Precipitation: ClassifyPrecipitation(obs.Rain1hMM, obs.Snow1hMM),
		Daylight:      IsDaylight(obs.ObservedAt, obs.Sunrise, obs.Sunset),
	}
}

// DisplayName formats a geocoding match as "Name, CC". The country is omitted when unknown.
func DisplayName(geo models.GeoResult) string {
	if geo.Country == "" {
		return geo.Name
	}
	return geo.Name + ", " + geo.Country
}

// Round rounds half up, so -2.5 becomes -2 and 2.5 becomes 3.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// FahrenheitToCelsius returns round((f-32)*5/9).
func FahrenheitToCelsius(f float64) int {
	return Round((f - 32) * 5 / 9)
}

// ClassifyPrecipitation maps hourly accumulations (mm) to a class. Snow wins over rain.
func ClassifyPrecipitation(rainMM, snowMM float64) models.Precipitation {
	switch {
	case snowMM > 0:
		return models.PrecipitationSnow
	case rainMM > 0:
		return models.PrecipitationRain
	default:
		return models.PrecipitationNone
	}
}

// IsDaylight reports whether at lies within [sunrise, sunset], bounds inclusive.
// Missing timestamps yield true so the prompt never claims darkness without evidence.
func IsDaylight(at, sunrise, sunset time.Time) bool {
	if at.IsZero() || sunrise.IsZero() || sunset.IsZero() {
		return true
	}
	return !at.Before(sunrise) && !at.After(sunset)
}

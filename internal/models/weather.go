package models

import "time"

// Precipitation is the categorical precipitation class derived from hourly accumulation.
type Precipitation string

const (
	PrecipitationNone Precipitation = "none"
	PrecipitationRain Precipitation = "rain"
	PrecipitationSnow Precipitation = "snow"
)

// GeoResult is the first match returned by the geocoding provider.
type GeoResult struct {
	Lat     float64
	Lon     float64
	Name    string
	Country string
}

// Observation is the current-conditions snapshot from the weather provider, imperial units.
type Observation struct {
	TempF       float64
	Humidity    int
	WindMph     float64
	Clouds      int
	PressureHPa int
	Rain1hMM    float64
	Snow1hMM    float64
	ObservedAt  time.Time
	Sunrise     time.Time
	Sunset      time.Time
}

// Summary is the user-facing subset of an Observation plus the resolved location.
// Daylight only steers the prompt and is never serialized.
type Summary struct {
	Location      string        `json:"location"`
	Temp          int           `json:"temp"`
	TempC         int           `json:"tempC"`
	Humidity      int           `json:"humidity"`
	Wind          int           `json:"wind"`
	Clouds        int           `json:"clouds"`
	Pressure      int           `json:"pressure"`
	Precipitation Precipitation `json:"precipitation"`
	Daylight      bool          `json:"-"`
}

// Narration is the flat response body: Summary fields merged with the narrative.
type Narration struct {
	Summary
	Narrative string `json:"narrative"`
}

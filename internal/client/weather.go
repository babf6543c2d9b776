package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kjstillabower/weather-narrator/internal/models"
)

// DefaultWeatherURL is the OpenWeather current-weather endpoint.
const DefaultWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// WeatherClient fetches current conditions for coordinates.
type WeatherClient interface {
	CurrentObservation(ctx context.Context, lat, lon float64) (models.Observation, error)
}

// OpenWeatherClient implements WeatherClient in imperial units.
type OpenWeatherClient struct {
	apiKey string
	apiURL string
	endpoint
}

// NewOpenWeatherClient returns a weather client. An empty apiKey is rejected.
func NewOpenWeatherClient(apiKey, apiURL string, timeout time.Duration) (*OpenWeatherClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OpenWeather API key is required", ErrInvalidAPIKey)
	}
	if apiURL == "" {
		apiURL = DefaultWeatherURL
	}
	return &OpenWeatherClient{
		apiKey:   apiKey,
		apiURL:   apiURL,
		endpoint: newEndpoint("weather", timeout),
	}, nil
}

type accumulation struct {
	OneHour float64 `json:"1h"`
}

type openWeatherResponse struct {
	Dt   int64 `json:"dt"`
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
		Pressure *float64 `json:"pressure"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Clouds *struct {
		All *float64 `json:"all"`
	} `json:"clouds"`
	Rain *accumulation `json:"rain"`
	Snow *accumulation `json:"snow"`
	Sys  struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

// CurrentObservation fetches current weather at lat/lon with units=imperial.
func (c *OpenWeatherClient) CurrentObservation(ctx context.Context, lat, lon float64) (models.Observation, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return models.Observation{}, fmt.Errorf("invalid weather URL: %w", err)
	}
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("units", "imperial")
	params.Set("appid", c.apiKey)
	u.RawQuery = params.Encode()

	body, err := c.call(ctx, http.MethodGet, u.String(), nil, nil)
	if err != nil {
		return models.Observation{}, err
	}

	var apiResp openWeatherResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return models.Observation{}, c.fail(fmt.Errorf("%w: weather: %v", ErrMalformedResponse, err))
	}
	obs, err := mapObservation(apiResp)
	if err != nil {
		return models.Observation{}, c.fail(err)
	}
	return obs, nil
}

// mapObservation validates required fields and converts to an Observation.
// main.temp, main.humidity, main.pressure, wind.speed and clouds.all are required;
// rain, snow and sys are optional.
func mapObservation(r openWeatherResponse) (models.Observation, error) {
	var missing string
	switch {
	case r.Main == nil:
		missing = "main"
	case r.Main.Temp == nil:
		missing = "main.temp"
	case r.Main.Humidity == nil:
		missing = "main.humidity"
	case r.Main.Pressure == nil:
		missing = "main.pressure"
	case r.Wind == nil || r.Wind.Speed == nil:
		missing = "wind.speed"
	case r.Clouds == nil || r.Clouds.All == nil:
		missing = "clouds.all"
	}
	if missing != "" {
		return models.Observation{}, fmt.Errorf("%w: weather missing %s", ErrMalformedResponse, missing)
	}

	obs := models.Observation{
		TempF:       *r.Main.Temp,
		Humidity:    int(*r.Main.Humidity),
		WindMph:     *r.Wind.Speed,
		Clouds:      int(*r.Clouds.All),
		PressureHPa: int(*r.Main.Pressure),
		ObservedAt:  unixOrZero(r.Dt),
		Sunrise:     unixOrZero(r.Sys.Sunrise),
		Sunset:      unixOrZero(r.Sys.Sunset),
	}
	if r.Rain != nil {
		obs.Rain1hMM = r.Rain.OneHour
	}
	if r.Snow != nil {
		obs.Snow1hMM = r.Snow.OneHour
	}
	return obs, nil
}

func unixOrZero(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

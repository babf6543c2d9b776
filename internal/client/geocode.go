package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kjstillabower/weather-narrator/internal/models"
)

// DefaultGeocodeURL is the OpenWeather direct geocoding endpoint.
const DefaultGeocodeURL = "https://api.openweathermap.org/geo/1.0/direct"

// Geocoder resolves a free-text place name to its best match.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (models.GeoResult, error)
}

// OpenWeatherGeocoder implements Geocoder against the OpenWeather geocoding API.
type OpenWeatherGeocoder struct {
	apiKey string
	apiURL string
	endpoint
}

// NewOpenWeatherGeocoder returns a geocoder. An empty apiKey is rejected.
func NewOpenWeatherGeocoder(apiKey, apiURL string, timeout time.Duration) (*OpenWeatherGeocoder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OpenWeather API key is required", ErrInvalidAPIKey)
	}
	if apiURL == "" {
		apiURL = DefaultGeocodeURL
	}
	return &OpenWeatherGeocoder{
		apiKey:   apiKey,
		apiURL:   apiURL,
		endpoint: newEndpoint("geocode", timeout),
	}, nil
}

type geocodeMatch struct {
	Name    string   `json:"name"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Country string   `json:"country"`
}

// Geocode requests a single match for query. It returns ErrNoMatch when the provider
// answers with an empty list; ranking among candidates is the provider's.
func (g *OpenWeatherGeocoder) Geocode(ctx context.Context, query string) (models.GeoResult, error) {
	u, err := url.Parse(g.apiURL)
	if err != nil {
		return models.GeoResult{}, fmt.Errorf("invalid geocode URL: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "1")
	params.Set("appid", g.apiKey)
	u.RawQuery = params.Encode()

	body, err := g.call(ctx, http.MethodGet, u.String(), nil, nil)
	if err != nil {
		return models.GeoResult{}, err
	}

	var matches []geocodeMatch
	if err := json.Unmarshal(body, &matches); err != nil {
		return models.GeoResult{}, g.fail(fmt.Errorf("%w: geocode: %v", ErrMalformedResponse, err))
	}
	if len(matches) == 0 {
		return models.GeoResult{}, ErrNoMatch
	}

	m := matches[0]
	if m.Lat == nil || m.Lon == nil {
		return models.GeoResult{}, g.fail(fmt.Errorf("%w: geocode match missing coordinates", ErrMalformedResponse))
	}
	return models.GeoResult{
		Lat:     *m.Lat,
		Lon:     *m.Lon,
		Name:    m.Name,
		Country: m.Country,
	}, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-narrator/internal/client"
	"github.com/kjstillabower/weather-narrator/internal/models"
	"github.com/kjstillabower/weather-narrator/internal/observability"
	"github.com/kjstillabower/weather-narrator/internal/prompt"
	"github.com/kjstillabower/weather-narrator/internal/summary"
)

// ErrLocationNotFound is returned when the city is empty or has no geocoding match.
var ErrLocationNotFound = errors.New("location not found")

// GenerationError reports that the generation provider answered without usable text.
// ProviderResponse holds the raw body for diagnosis.
type GenerationError struct {
	ProviderResponse json.RawMessage
}

func (e *GenerationError) Error() string {
	return "narrative generation unavailable"
}

// NarrationService runs geocode, weather and generation in strict sequence for one city.
// It keeps no state between calls.
type NarrationService struct {
	geocoder  client.Geocoder
	weather   client.WeatherClient
	generator client.TextGenerator
	prompts   *prompt.Builder
}

// NewNarrationService creates a NarrationService with the provided provider clients.
func NewNarrationService(geocoder client.Geocoder, weather client.WeatherClient, generator client.TextGenerator, prompts *prompt.Builder) *NarrationService {
	return &NarrationService{
		geocoder:  geocoder,
		weather:   weather,
		generator: generator,
		prompts:   prompts,
	}
}

// Narrate resolves city, fetches its current weather and asks for a narrative.
// Each step depends on the previous one; the first failure ends the request.
func (s *NarrationService) Narrate(ctx context.Context, city string) (models.Narration, error) {
	start := time.Now()
	logger := observability.LoggerFromContext(ctx)

	city = strings.TrimSpace(city)
	if city == "" {
		observability.NarrationsTotal.WithLabelValues("location_not_found").Inc()
		return models.Narration{}, ErrLocationNotFound
	}

	geo, err := s.geocoder.Geocode(ctx, city)
	if err != nil {
		if errors.Is(err, client.ErrNoMatch) {
			observability.NarrationsTotal.WithLabelValues("location_not_found").Inc()
			logger.Debug("no geocoding match", zap.String("city", city))
			return models.Narration{}, ErrLocationNotFound
		}
		observability.NarrationsTotal.WithLabelValues("error").Inc()
		return models.Narration{}, fmt.Errorf("geocode %q: %w", city, err)
	}
	logger.Debug("geocoded", zap.String("city", city), zap.String("name", geo.Name),
		zap.String("country", geo.Country), zap.Float64("lat", geo.Lat), zap.Float64("lon", geo.Lon))

	obs, err := s.weather.CurrentObservation(ctx, geo.Lat, geo.Lon)
	if err != nil {
		observability.NarrationsTotal.WithLabelValues("error").Inc()
		return models.Narration{}, fmt.Errorf("weather for %s: %w", summary.DisplayName(geo), err)
	}

	sum := summary.Build(geo, obs)
	observability.PrecipitationTotal.WithLabelValues(string(sum.Precipitation)).Inc()
	logger.Debug("summary built", zap.String("location", sum.Location), zap.Int("temp", sum.Temp),
		zap.String("precipitation", string(sum.Precipitation)), zap.Bool("daylight", sum.Daylight))

	messages, err := s.prompts.Build(sum)
	if err != nil {
		observability.NarrationsTotal.WithLabelValues("error").Inc()
		return models.Narration{}, fmt.Errorf("build prompt: %w", err)
	}

	text, err := s.generator.Generate(ctx, messages)
	if err != nil {
		var noText *client.NoTextError
		if errors.As(err, &noText) {
			observability.NarrationsTotal.WithLabelValues("generation_unavailable").Inc()
			return models.Narration{}, &GenerationError{ProviderResponse: noText.Raw}
		}
		observability.NarrationsTotal.WithLabelValues("error").Inc()
		return models.Narration{}, fmt.Errorf("generate narrative: %w", err)
	}

	observability.NarrationsTotal.WithLabelValues("success").Inc()
	logger.Debug("narration served", zap.String("location", sum.Location), zap.Duration("duration", time.Since(start)))
	return models.Narration{Summary: sum, Narrative: text}, nil
}

//go:build integration
// +build integration

package testhelpers

import (
	"os"
	"testing"
	"time"

	"github.com/kjstillabower/weather-narrator/internal/client"
	"github.com/kjstillabower/weather-narrator/internal/prompt"
	"github.com/kjstillabower/weather-narrator/internal/service"
)

// IntegrationTestConfig holds live provider settings for integration tests.
type IntegrationTestConfig struct {
	OpenWeatherAPIKey string
	OpenAIAPIKey      string
	GenerationModel   string
	Timeout           time.Duration
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips the test unless both provider keys are set.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	t.Helper()
	owm := os.Getenv("OPENWEATHER_API_KEY")
	if owm == "" {
		t.Skip("OPENWEATHER_API_KEY not set, skipping integration test")
	}
	openai := os.Getenv("OPENAI_API_KEY")
	if openai == "" {
		t.Skip("OPENAI_API_KEY not set, skipping integration test")
	}
	model := os.Getenv("GENERATION_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return IntegrationTestConfig{
		OpenWeatherAPIKey: owm,
		OpenAIAPIKey:      openai,
		GenerationModel:   model,
		Timeout:           10 * time.Second,
	}
}

// SetupIntegrationService wires a NarrationService against the live providers.
func SetupIntegrationService(t *testing.T, cfg IntegrationTestConfig) *service.NarrationService {
	t.Helper()
	geocoder, err := client.NewOpenWeatherGeocoder(cfg.OpenWeatherAPIKey, "", cfg.Timeout)
	if err != nil {
		t.Fatalf("NewOpenWeatherGeocoder() error = %v", err)
	}
	generator, err := client.NewOpenAIClient(cfg.OpenAIAPIKey, "", cfg.GenerationModel, cfg.Timeout)
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	prompts, err := prompt.NewBuilder()
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	return service.NewNarrationService(geocoder, SetupIntegrationWeatherClient(t, cfg), generator, prompts)
}

// SetupIntegrationWeatherClient creates a live weather client.
func SetupIntegrationWeatherClient(t *testing.T, cfg IntegrationTestConfig) client.WeatherClient {
	t.Helper()
	c, err := client.NewOpenWeatherClient(cfg.OpenWeatherAPIKey, "", cfg.Timeout)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	return c
}

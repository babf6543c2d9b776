package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML, .env and the environment.
// It is built once at startup and passed to the components that need it.
type Config struct {
	ServerPort string

	OpenWeatherAPIKey string
	OpenAIAPIKey      string

	GeocodeURL      string
	WeatherURL      string
	GenerationURL   string
	GenerationModel string

	ProviderTimeout time.Duration
	RequestTimeout  time.Duration

	CityMaxLength int

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration

	DegradedWindow   time.Duration
	DegradedErrorPct int

	TracingEndpoint    string
	TracingServiceName string
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Providers struct {
		Timeout       string `yaml:"timeout"`
		GeocodeURL    string `yaml:"geocode_url"`
		WeatherURL    string `yaml:"weather_url"`
		GenerationURL string `yaml:"generation_url"`
	} `yaml:"providers"`

	Generation struct {
		Model string `yaml:"model"`
	} `yaml:"generation"`

	Validation struct {
		CityMaxLength int `yaml:"city_max_length"`
	} `yaml:"validation"`

	Shutdown struct {
		Timeout         string `yaml:"timeout"`
		InFlightTimeout string `yaml:"in_flight_timeout"`
	} `yaml:"shutdown"`

	Lifecycle struct {
		DegradedWindow   string `yaml:"degraded_window"`
		DegradedErrorPct int    `yaml:"degraded_error_pct"`
	} `yaml:"lifecycle"`

	Tracing struct {
		Endpoint    string `yaml:"endpoint"`
		ServiceName string `yaml:"service_name"`
	} `yaml:"tracing"`
}

type secretsFile struct {
	OpenWeatherAPIKey string `yaml:"openweather_api_key"`
	OpenAIAPIKey      string `yaml:"openai_api_key"`
}

// Load reads config/{ENV_NAME}.yaml (default dev), an optional .env, and config/secrets.yaml.
// API keys come from OPENWEATHER_API_KEY / OPENAI_API_KEY or the secrets file; a missing key
// fails Load. Call from project root.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	// .env never overrides variables that are already set.
	if err := godotenv.Load(filepath.Join(cwd, ".env")); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = firstNonEmpty(os.Getenv("PORT"), fc.Server.Port, "8080")

	sec, err := loadSecrets(filepath.Join(cwd, "config", "secrets.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.OpenWeatherAPIKey = firstNonEmpty(os.Getenv("OPENWEATHER_API_KEY"), sec.OpenWeatherAPIKey)
	if cfg.OpenWeatherAPIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY required (set env, .env or config/secrets.yaml openweather_api_key)")
	}
	cfg.OpenAIAPIKey = firstNonEmpty(os.Getenv("OPENAI_API_KEY"), sec.OpenAIAPIKey)
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY required (set env, .env or config/secrets.yaml openai_api_key)")
	}

	cfg.GeocodeURL = firstNonEmpty(fc.Providers.GeocodeURL, "https://api.openweathermap.org/geo/1.0/direct")
	cfg.WeatherURL = firstNonEmpty(fc.Providers.WeatherURL, "https://api.openweathermap.org/data/2.5/weather")
	cfg.GenerationURL = firstNonEmpty(fc.Providers.GenerationURL, "https://api.openai.com/v1/responses")
	cfg.GenerationModel = firstNonEmpty(os.Getenv("GENERATION_MODEL"), fc.Generation.Model, "gpt-4o-mini")

	cfg.ProviderTimeout = parseDurationOrZero(fc.Providers.Timeout, 5*time.Second)
	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 20*time.Second)

	cfg.CityMaxLength = fc.Validation.CityMaxLength
	if cfg.CityMaxLength <= 0 {
		cfg.CityMaxLength = 120
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = 100 * time.Millisecond

	cfg.DegradedWindow = parseDuration(fc.Lifecycle.DegradedWindow, 60*time.Second)
	cfg.DegradedErrorPct = fc.Lifecycle.DegradedErrorPct
	if cfg.DegradedErrorPct <= 0 {
		cfg.DegradedErrorPct = 50
	}

	cfg.TracingEndpoint = strings.TrimSpace(firstNonEmpty(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"), fc.Tracing.Endpoint))
	cfg.TracingServiceName = firstNonEmpty(fc.Tracing.ServiceName, "weather-narrator")

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadSecrets reads the optional secrets file. A missing file yields empty secrets.
func loadSecrets(path string) (secretsFile, error) {
	var sec secretsFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sec, nil
		}
		return sec, fmt.Errorf("read secrets file: %w", err)
	}
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return sec, fmt.Errorf("parse secrets file: %w", err)
	}
	return sec, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Returns zero or negative durations as-is (caller should handle fallback).
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation. ProviderTimeout must be positive; RequestTimeout is
// raised so three sequential provider calls fit inside one request.
func validate(cfg *Config) error {
	if cfg.ProviderTimeout <= 0 {
		return fmt.Errorf("providers.timeout must be positive")
	}
	if minimum := 3 * cfg.ProviderTimeout; cfg.RequestTimeout <= minimum {
		cfg.RequestTimeout = minimum + time.Second
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalEnvYAML = `
server:
  port: "8080"
providers:
  timeout: 5s
`

// setupDir creates a temp project root with config/dev.yaml, clears key env vars and
// changes into it for the duration of the test.
func setupDir(t *testing.T, yamlContent string) string {
	t.Helper()
	t.Setenv("ENV_NAME", "")
	t.Setenv("PORT", "")
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GENERATION_MODEL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	dir := t.TempDir()
	writeEnvFile(t, dir, yamlContent)
	t.Chdir(dir)
	return dir
}

func setKeys(t *testing.T) {
	t.Helper()
	t.Setenv("OPENWEATHER_API_KEY", "owm-key-12345")
	t.Setenv("OPENAI_API_KEY", "sk-test-12345")
}

func TestLoad_FailsWhenNoOpenWeatherKey(t *testing.T) {
	setupDir(t, minimalEnvYAML)
	t.Setenv("OPENAI_API_KEY", "sk-test-12345")

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load() expected error when no OPENWEATHER_API_KEY, got nil")
	}
	if cfg != nil {
		t.Fatalf("Load() expected nil config on error, got %+v", cfg)
	}
	if !strings.Contains(err.Error(), "OPENWEATHER_API_KEY") {
		t.Errorf("Load() error = %v, want message containing OPENWEATHER_API_KEY", err)
	}
}

func TestLoad_FailsWhenNoOpenAIKey(t *testing.T) {
	setupDir(t, minimalEnvYAML)
	t.Setenv("OPENWEATHER_API_KEY", "owm-key-12345")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("Load() error = %v, want message containing OPENAI_API_KEY", err)
	}
}

func TestLoad_SucceedsWithSecretsFile(t *testing.T) {
	dir := setupDir(t, minimalEnvYAML)
	writeSecretsFile(t, dir, "openweather_api_key: owm-from-file\nopenai_api_key: sk-from-file\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OpenWeatherAPIKey != "owm-from-file" {
		t.Errorf("OpenWeatherAPIKey = %q, want key from secrets file", cfg.OpenWeatherAPIKey)
	}
	if cfg.OpenAIAPIKey != "sk-from-file" {
		t.Errorf("OpenAIAPIKey = %q, want key from secrets file", cfg.OpenAIAPIKey)
	}
}

func TestLoad_EnvOverridesSecretsFile(t *testing.T) {
	dir := setupDir(t, minimalEnvYAML)
	writeSecretsFile(t, dir, "openweather_api_key: owm-from-file\nopenai_api_key: sk-from-file\n")
	setKeys(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OpenWeatherAPIKey != "owm-key-12345" || cfg.OpenAIAPIKey != "sk-test-12345" {
		t.Errorf("keys = %q/%q, want env values", cfg.OpenWeatherAPIKey, cfg.OpenAIAPIKey)
	}
}

// TestLoad_DotEnvFile verifies keys are picked up from .env when absent from the environment.
func TestLoad_DotEnvFile(t *testing.T) {
	dir := setupDir(t, minimalEnvYAML)
	// Registered for restore, then removed so godotenv treats them as unset.
	os.Unsetenv("OPENWEATHER_API_KEY")
	os.Unsetenv("OPENAI_API_KEY")
	content := "OPENWEATHER_API_KEY=owm-from-dotenv\nOPENAI_API_KEY=sk-from-dotenv\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OpenWeatherAPIKey != "owm-from-dotenv" || cfg.OpenAIAPIKey != "sk-from-dotenv" {
		t.Errorf("keys = %q/%q, want .env values", cfg.OpenWeatherAPIKey, cfg.OpenAIAPIKey)
	}
}

func TestLoad_EnvFileNotFound(t *testing.T) {
	setupDir(t, minimalEnvYAML)
	setKeys(t)
	t.Setenv("ENV_NAME", "nonexistent")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("Load() error = %v, want config file not found", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setupDir(t, "server: {}\n")
	setKeys(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.ProviderTimeout != 5*time.Second {
		t.Errorf("ProviderTimeout = %v, want 5s", cfg.ProviderTimeout)
	}
	if cfg.RequestTimeout != 20*time.Second {
		t.Errorf("RequestTimeout = %v, want 20s", cfg.RequestTimeout)
	}
	if cfg.GenerationModel != "gpt-4o-mini" {
		t.Errorf("GenerationModel = %q, want gpt-4o-mini", cfg.GenerationModel)
	}
	if cfg.GeocodeURL != "https://api.openweathermap.org/geo/1.0/direct" {
		t.Errorf("GeocodeURL = %q", cfg.GeocodeURL)
	}
	if cfg.CityMaxLength != 120 {
		t.Errorf("CityMaxLength = %d, want 120", cfg.CityMaxLength)
	}
	if cfg.DegradedErrorPct != 50 {
		t.Errorf("DegradedErrorPct = %d, want 50", cfg.DegradedErrorPct)
	}
	if cfg.TracingEndpoint != "" {
		t.Errorf("TracingEndpoint = %q, want empty", cfg.TracingEndpoint)
	}
}

func TestLoad_InvalidDurationFallsBackToDefault(t *testing.T) {
	setupDir(t, `
providers:
  timeout: not-a-duration
request:
  timeout: also-bad
shutdown:
  timeout: "-5s"
`)
	setKeys(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ProviderTimeout != 5*time.Second {
		t.Errorf("ProviderTimeout = %v, want 5s", cfg.ProviderTimeout)
	}
	if cfg.RequestTimeout != 20*time.Second {
		t.Errorf("RequestTimeout = %v, want 20s", cfg.RequestTimeout)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
}

func TestLoad_ValidationFailsWhenProviderTimeoutZero(t *testing.T) {
	setupDir(t, "providers:\n  timeout: 0s\n")
	setKeys(t)

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "providers.timeout") {
		t.Errorf("Load() error = %v, want providers.timeout validation error", err)
	}
}

// TestLoad_RequestTimeoutRaised verifies the overall deadline is raised above three provider calls.
func TestLoad_RequestTimeoutRaised(t *testing.T) {
	setupDir(t, "providers:\n  timeout: 10s\nrequest:\n  timeout: 5s\n")
	setKeys(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RequestTimeout != 31*time.Second {
		t.Errorf("RequestTimeout = %v, want 31s", cfg.RequestTimeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setupDir(t, `
server:
  port: "9000"
generation:
  model: gpt-4o
tracing:
  endpoint: http://collector:4318
`)
	setKeys(t)
	t.Setenv("PORT", "7070")
	t.Setenv("GENERATION_MODEL", "gpt-4.1-mini")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://otel:4318")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "7070" {
		t.Errorf("ServerPort = %q, want 7070", cfg.ServerPort)
	}
	if cfg.GenerationModel != "gpt-4.1-mini" {
		t.Errorf("GenerationModel = %q, want gpt-4.1-mini", cfg.GenerationModel)
	}
	if cfg.TracingEndpoint != "http://otel:4318" {
		t.Errorf("TracingEndpoint = %q, want http://otel:4318", cfg.TracingEndpoint)
	}
}

func TestLoad_InvalidSecretsYAML(t *testing.T) {
	dir := setupDir(t, minimalEnvYAML)
	writeSecretsFile(t, dir, "openweather_api_key: [unclosed\n")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse secrets file") {
		t.Errorf("Load() error = %v, want parse secrets file", err)
	}
}

func TestLoad_InvalidConfigYAML(t *testing.T) {
	setupDir(t, "server: [unclosed\n")
	setKeys(t)

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse config file") {
		t.Errorf("Load() error = %v, want parse config file", err)
	}
}

// TestLoad_RepositoryConfig verifies the checked-in config/dev.yaml parses.
func TestLoad_RepositoryConfig(t *testing.T) {
	root := findProjectRoot(t)
	data, err := os.ReadFile(filepath.Join(root, "config", "dev.yaml"))
	if err != nil {
		t.Fatalf("read config/dev.yaml: %v", err)
	}
	setupDir(t, string(data))
	setKeys(t)

	if _, err := Load(); err != nil {
		t.Fatalf("Load() with repository config error = %v", err)
	}
}

func writeEnvFile(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, "config")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "dev.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
}

func writeSecretsFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config", "secrets.yaml"), []byte(content), 0600); err != nil {
		t.Fatalf("write secrets file: %v", err)
	}
}

func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("go.mod not found")
		}
		dir = parent
	}
}

package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-narrator/internal/lifecycle"
	"github.com/kjstillabower/weather-narrator/internal/models"
	"github.com/kjstillabower/weather-narrator/internal/observability"
	"github.com/kjstillabower/weather-narrator/internal/service"
	"github.com/kjstillabower/weather-narrator/internal/traffic"
	"github.com/kjstillabower/weather-narrator/internal/validation"
)

//go:embed web/index.html
var indexHTML []byte

const (
	msgLocationNotFound      = "Location not found"
	msgGenerationUnavailable = "Narrative generation unavailable"
	msgGeneric               = "Something went wrong"
	msgInvalidBody           = "Invalid request body"

	// maxRequestBodyBytes bounds POST /api/narrate bodies; a city is at most a few hundred bytes.
	maxRequestBodyBytes = 4 << 10
)

// Narrator produces a narration for one city.
type Narrator interface {
	Narrate(ctx context.Context, city string) (models.Narration, error)
}

// HealthConfig holds lifecycle thresholds for the health handler.
type HealthConfig struct {
	DegradedWindow   time.Duration
	DegradedErrorPct int
	StartTime        time.Time
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	narrator      Narrator
	healthConfig  *HealthConfig
	logger        *zap.Logger
	clock         clockwork.Clock
	outcomes      *traffic.Tracker
	cityMaxLength int

	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler. A nil clock uses the real clock; healthConfig may be nil.
func NewHandler(narrator Narrator, healthConfig *HealthConfig, logger *zap.Logger, clock clockwork.Clock, cityMaxLength int) *Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if healthConfig == nil {
		healthConfig = &HealthConfig{}
	}
	if healthConfig.StartTime.IsZero() {
		healthConfig.StartTime = clock.Now()
	}
	return &Handler{
		narrator:      narrator,
		healthConfig:  healthConfig,
		logger:        logger,
		clock:         clock,
		outcomes:      traffic.NewTracker(clock, healthConfig.DegradedWindow),
		cityMaxLength: cityMaxLength,
	}
}

// errorResponse is the body of every non-2xx narrate response.
type errorResponse struct {
	Error            string          `json:"error"`
	ProviderResponse json.RawMessage `json:"providerResponse,omitempty"`
}

// GetIndex handles GET / and serves the single-page UI.
func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexHTML)
}

// PostNarrate handles POST /api/narrate.
func (h *Handler) PostNarrate(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context())

	var req validation.NarrateRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		logger.Debug("invalid request body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	city, err := validation.ValidateCity(req.City, h.cityMaxLength)
	if err != nil {
		logger.Debug("city rejected", zap.Error(err))
		h.outcomes.RecordSuccess()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgLocationNotFound})
		return
	}

	result, err := h.narrator.Narrate(r.Context(), city)
	if err != nil {
		h.writeNarrateError(w, r, err)
		return
	}
	h.outcomes.RecordSuccess()
	writeJSON(w, http.StatusOK, result)
}

// writeNarrateError maps service errors to the three client-facing failures.
// Only 5xx outcomes count against health.
func (h *Handler) writeNarrateError(w http.ResponseWriter, r *http.Request, err error) {
	logger := observability.LoggerFromContext(r.Context())

	if errors.Is(err, service.ErrLocationNotFound) {
		h.outcomes.RecordSuccess()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgLocationNotFound})
		return
	}

	h.outcomes.RecordError()
	var genErr *service.GenerationError
	if errors.As(err, &genErr) {
		logger.Warn("generation returned no text", zap.ByteString("provider_response", genErr.ProviderResponse))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:            msgGenerationUnavailable,
			ProviderResponse: genErr.ProviderResponse,
		})
		return
	}

	logger.Error("narrate failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgGeneric})
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := map[string]string{"narration": "healthy"}
	if result.status == "degraded" {
		checks["narration"] = "unhealthy"
	}
	now := h.clock.Now()
	body := map[string]interface{}{
		"status":    result.status,
		"service":   "weather-narrator",
		"version":   "dev",
		"checks":    checks,
		"uptime":    now.Sub(h.healthConfig.StartTime).Round(time.Second).String(),
		"timestamp": now.UTC().Format(time.RFC3339),
	}
	if lifecycle.IsShuttingDown() {
		body["draining"] = lifecycle.DrainingFor(now).Round(time.Second).String()
	}
	writeJSON(w, result.statusCode, body)
}

// computeHealthStatus evaluates conditions in priority order: shutting-down > degraded > healthy.
func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if h.outcomes.Breached(h.healthConfig.DegradedWindow, h.healthConfig.DegradedErrorPct) {
		return healthResult{"degraded", http.StatusServiceUnavailable, "error_rate_breach"}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

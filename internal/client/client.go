// Package client talks to the three external providers: OpenWeather geocoding,
// OpenWeather current weather, and the OpenAI Responses API.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kjstillabower/weather-narrator/internal/observability"
)

var (
	ErrInvalidAPIKey     = errors.New("invalid API key")
	ErrNotFound          = errors.New("not found")
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstreamFailure   = errors.New("upstream failure")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNoMatch           = errors.New("no geocoding match")
)

// maxResponseBytes caps how much of a provider body is read.
const maxResponseBytes = 1 << 20

// endpoint is the shared transport for one provider: per-call timeout, correlation and
// trace headers, status classification, metrics and a client span.
type endpoint struct {
	provider string
	client   *http.Client
	timeout  time.Duration
}

func newEndpoint(provider string, timeout time.Duration) endpoint {
	return endpoint{
		provider: provider,
		timeout:  timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// call issues one request and returns the body of a 2xx response. It never retries.
func (e endpoint) call(ctx context.Context, method, rawURL string, body []byte, header http.Header) ([]byte, error) {
	ctx, span := observability.Tracer().Start(ctx, e.provider,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider", e.provider),
			attribute.String("http.request.method", method),
		),
	)
	defer span.End()

	data, err := e.roundTrip(ctx, method, rawURL, body, header, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(CategorizeError(err)))
		return nil, e.fail(err)
	}
	return data, nil
}

// fail counts err under its category and returns it unchanged. Client methods route
// decode and extraction failures through it so parsing and no_text are counted too.
func (e endpoint) fail(err error) error {
	observability.ProviderErrorsTotal.WithLabelValues(e.provider, string(CategorizeError(err))).Inc()
	return err
}

func (e endpoint) roundTrip(ctx context.Context, method, rawURL string, body []byte, header http.Header, span trace.Span) ([]byte, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if corrID := observability.CorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}
	otel.GetTextMapPropagator().Inject(reqCtx, propagation.HeaderCarrier(req.Header))

	resp, err := e.client.Do(req)
	if err != nil {
		observability.RecordProviderCall(e.provider, "error", time.Since(start))
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%s request timeout: %w", e.provider, err)
		}
		return nil, fmt.Errorf("%s request failed: %w", e.provider, err)
	}
	defer resp.Body.Close()

	observability.RecordProviderCall(e.provider, statusLabel(resp.StatusCode), time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if err := handleErrorResponse(resp); err != nil {
		return nil, fmt.Errorf("%s: %w", e.provider, err)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s read response body: %w", e.provider, err)
	}
	return data, nil
}

func handleErrorResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d", ErrInvalidAPIKey, resp.StatusCode)
	case http.StatusNotFound:
		return fmt.Errorf("%w: HTTP %d", ErrNotFound, resp.StatusCode)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	return nil
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}

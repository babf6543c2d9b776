package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

// TestCategorizeError verifies that CategorizeError maps sentinel, wrapped and typed errors
// to the correct ErrorCategory for metrics labeling.
func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ""},
		{"timeout context", context.DeadlineExceeded, ErrorCategoryTimeout},
		{"canceled context", context.Canceled, ErrorCategoryTimeout},
		{"invalid API key", ErrInvalidAPIKey, ErrorCategoryInvalidAPIKey},
		{"wrapped invalid API key", fmt.Errorf("geocode: %w", ErrInvalidAPIKey), ErrorCategoryInvalidAPIKey},
		{"not found", ErrNotFound, ErrorCategoryNotFound},
		{"rate limited", ErrRateLimited, ErrorCategoryRateLimited},
		{"upstream failure", ErrUpstreamFailure, ErrorCategoryUpstream5xx},
		{"malformed", fmt.Errorf("%w: missing main", ErrMalformedResponse), ErrorCategoryParsing},
		{"no text", &NoTextError{Raw: json.RawMessage(`{}`)}, ErrorCategoryNoText},
		{"network in message", errors.New("dial tcp: connection refused"), ErrorCategoryNetwork},
		{"unknown", errors.New("something else"), ErrorCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategorizeError(tt.err)
			if got != tt.want {
				t.Errorf("CategorizeError() = %v, want %v", got, tt.want)
			}
		})
	}
}

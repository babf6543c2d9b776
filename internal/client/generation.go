package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kjstillabower/weather-narrator/internal/prompt"
)

const (
	// DefaultGenerationURL is the OpenAI Responses API endpoint.
	DefaultGenerationURL = "https://api.openai.com/v1/responses"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"

	outputTextType = "output_text"
)

// TextGenerator produces a single completion for role-tagged messages.
type TextGenerator interface {
	Generate(ctx context.Context, messages []prompt.Message) (string, error)
}

// NoTextError reports a reachable provider whose response held no usable text.
// Raw is the provider body, kept for diagnosis.
type NoTextError struct {
	Raw json.RawMessage
}

func (e *NoTextError) Error() string {
	return "generation response contained no output text"
}

// OpenAIClient implements TextGenerator against the OpenAI Responses API.
type OpenAIClient struct {
	apiKey string
	apiURL string
	model  string
	endpoint
}

// NewOpenAIClient returns a generation client. An empty apiKey is rejected.
func NewOpenAIClient(apiKey, apiURL, model string, timeout time.Duration) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", ErrInvalidAPIKey)
	}
	if apiURL == "" {
		apiURL = DefaultGenerationURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClient{
		apiKey:   apiKey,
		apiURL:   apiURL,
		model:    model,
		endpoint: newEndpoint("generation", timeout),
	}, nil
}

type responsesRequest struct {
	Model string           `json:"model"`
	Input []prompt.Message `json:"input"`
}

type responsesResponse struct {
	OutputText *string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// Generate submits messages and returns the narrative text. A 2xx response without text
// yields *NoTextError.
func (c *OpenAIClient) Generate(ctx context.Context, messages []prompt.Message) (string, error) {
	payload, err := json.Marshal(responsesRequest{Model: c.model, Input: messages})
	if err != nil {
		return "", fmt.Errorf("marshal generation request: %w", err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)
	header.Set("Content-Type", "application/json")

	body, err := c.call(ctx, http.MethodPost, c.apiURL, payload, header)
	if err != nil {
		return "", err
	}

	if !json.Valid(body) {
		return "", c.fail(fmt.Errorf("%w: generation body is not JSON", ErrMalformedResponse))
	}
	text, ok := ExtractOutputText(body)
	if !ok {
		return "", c.fail(&NoTextError{Raw: json.RawMessage(body)})
	}
	return text, nil
}

// ExtractOutputText returns the direct output_text field when non-empty, otherwise the
// text of the first content item typed output_text across output[].content[].
func ExtractOutputText(body []byte) (string, bool) {
	var resp responsesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false
	}
	if resp.OutputText != nil && *resp.OutputText != "" {
		return *resp.OutputText, true
	}
	for _, item := range resp.Output {
		for _, content := range item.Content {
			if content.Type == outputTextType {
				return content.Text, content.Text != ""
			}
		}
	}
	return "", false
}

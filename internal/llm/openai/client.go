// Package openai implements port.MarkerExtractor on the OpenAI Chat
// Completions API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"labparse/internal/config"
	"labparse/internal/llm"
	"labparse/internal/logging"
	"labparse/internal/port"
)

const (
	apiURL       = "https://api.openai.com/v1/chat/completions"
	defaultModel = "gpt-4o"
)

// Client calls the OpenAI Chat Completions API.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	maxRetries int
	backoff    time.Duration
	client     *http.Client
	log        logging.Logger
}

var _ port.MarkerExtractor = (*Client)(nil)

// NewClient creates an OpenAI extractor from a provider config.
func NewClient(cfg *config.ProviderConfig, log logging.Logger) *Client {
	return newClient(cfg, apiURL, log)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.ProviderConfig, endpoint string, log logging.Logger) *Client {
	return newClient(cfg, endpoint, log)
}

// Factory adapts NewClient to llm.ProviderFactory.
func Factory(cfg *config.ProviderConfig, log logging.Logger) (port.MarkerExtractor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	return NewClient(cfg, log), nil
}

func newClient(cfg *config.ProviderConfig, endpoint string, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		model:      model,
		endpoint:   endpoint,
		maxRetries: cfg.MaxRetries,
		backoff:    500 * time.Millisecond,
		client:     &http.Client{Timeout: timeout},
		log:        log.Named("openai"),
	}
}

func (c *Client) Extract(ctx context.Context, req port.ExtractionRequest) (*port.ExtractionResponse, error) {
	reqBody := map[string]any{
		"model":                 c.model,
		"max_completion_tokens": 8192,
		"messages": []map[string]any{
			{"role": "system", "content": "Return ONLY JSON. No prose."},
			{"role": "user", "content": llm.BuildPrompt(req.Text)},
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var raw []byte
	err := llm.Retry(ctx, c.maxRetries, c.backoff, func() error {
		var err error
		raw, err = llm.SendJSON(ctx, c.client, "openai", c.endpoint, reqBody, headers, c.log)
		return err
	})
	if err != nil {
		return nil, err
	}
	return parseResponse(raw, c.model)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string) (*port.ExtractionResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}
	return &port.ExtractionResponse{Content: resp.Choices[0].Message.Content, Model: model}, nil
}

// Package claude implements port.MarkerExtractor on the Anthropic Messages API.
package claude

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
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	defaultModel = "claude-sonnet-4-20250514"
	maxTokens    = 8192
)

// Client calls the Anthropic Messages API.
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

// NewClient creates a Claude extractor from a provider config.
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
		return nil, errors.New("claude: api key is required")
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
		log:        log.Named("claude"),
	}
}

func (c *Client) Extract(ctx context.Context, req port.ExtractionRequest) (*port.ExtractionResponse, error) {
	reqBody := map[string]any{
		"model":      c.model,
		"max_tokens": maxTokens,
		"messages": []map[string]any{
			{
				"role":    "user",
				"content": llm.BuildPrompt(req.Text),
			},
		},
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": apiVersion,
	}

	var raw []byte
	err := llm.Retry(ctx, c.maxRetries, c.backoff, func() error {
		var err error
		raw, err = llm.SendJSON(ctx, c.client, "claude", c.endpoint, reqBody, headers, c.log)
		return err
	})
	if err != nil {
		return nil, err
	}
	return parseResponse(raw, c.model)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string) (*port.ExtractionResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}
	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			return &port.ExtractionResponse{Content: block.Text, Model: model}, nil
		}
	}
	return nil, fmt.Errorf("no text block in response")
}

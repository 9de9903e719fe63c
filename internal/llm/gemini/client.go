// Package gemini implements port.MarkerExtractor on Google's Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"labparse/internal/config"
	"labparse/internal/llm"
	"labparse/internal/logging"
	"labparse/internal/port"
)

const (
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel = "gemini-2.0-flash"
)

// Client calls the Gemini generateContent API.
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

// NewClient creates a Gemini extractor from a provider config.
func NewClient(cfg *config.ProviderConfig, log logging.Logger) *Client {
	return newClient(cfg, "", log)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.ProviderConfig, endpoint string, log logging.Logger) *Client {
	return newClient(cfg, endpoint, log)
}

// Factory adapts NewClient to llm.ProviderFactory.
func Factory(cfg *config.ProviderConfig, log logging.Logger) (port.MarkerExtractor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
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
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Client{
		apiKey:     cfg.APIKey,
		model:      model,
		endpoint:   endpoint,
		maxRetries: cfg.MaxRetries,
		backoff:    500 * time.Millisecond,
		client:     &http.Client{Timeout: timeout},
		log:        log.Named("gemini"),
	}
}

func (c *Client) Extract(ctx context.Context, req port.ExtractionRequest) (*port.ExtractionResponse, error) {
	reqBody := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]any{{"text": llm.BuildPrompt(req.Text)}},
			},
		},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"maxOutputTokens":  8192,
		},
	}
	headers := map[string]string{"x-goog-api-key": c.apiKey}

	var raw []byte
	err := llm.Retry(ctx, c.maxRetries, c.backoff, func() error {
		var err error
		raw, err = llm.SendJSON(ctx, c.client, "gemini", c.endpoint, reqBody, headers, c.log)
		return err
	})
	if err != nil {
		return nil, err
	}
	return parseResponse(raw, c.model)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte, model string) (*port.ExtractionResponse, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from API: no candidates")
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == "MAX_TOKENS" {
		return nil, fmt.Errorf("output truncated (finishReason: MAX_TOKENS): response exceeded output token limit")
	}
	if len(cand.Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from API: no parts")
	}
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	return &port.ExtractionResponse{Content: sb.String(), Model: model}, nil
}

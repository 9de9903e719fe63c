package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"labparse/internal/logging"
)

// SendJSON posts body as JSON to url and returns the raw response body.
// HTTP 429 becomes a *RateLimitError; any other non-2xx status is an error
// carrying the response text.
func SendJSON(ctx context.Context, client *http.Client, provider, url string, body any, headers map[string]string, log logging.Logger) ([]byte, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	log.Debug("llm.http.request",
		logging.String("req_id", reqID),
		logging.String("provider", provider),
		logging.Int("content_length", len(bs)),
	)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s API: %w", provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	log.Debug("llm.http.response",
		logging.String("req_id", reqID),
		logging.String("provider", provider),
		logging.Int("status", resp.StatusCode),
		logging.Int("bytes", len(raw)),
		logging.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode/100 != 2 {
		baseErr := fmt.Errorf("%s API error (status %d): %s", provider, resp.StatusCode, Truncate(string(raw), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, NewRateLimitError(provider, baseErr, ParseRetryAfterHeader(resp.Header.Get("Retry-After")))
		}
		return nil, baseErr
	}
	return raw, nil
}

// Truncate cuts s to maxLen bytes, marking the cut with "...".
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Retry runs fn up to retries+1 times, sleeping backoff between attempts.
// Rate limits and context cancellation are returned immediately.
func Retry(ctx context.Context, retries int, backoff time.Duration, fn func() error) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff * time.Duration(attempt)):
			}
		}
		if err = fn(); err == nil {
			return nil
		}
		var rl *RateLimitError
		if errors.As(err, &rl) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

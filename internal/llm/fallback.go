package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"labparse/internal/logging"
	"labparse/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackExtractor tries extractors in order, skipping those whose circuit
// is open after a rate limit.
type FallbackExtractor struct {
	extractors []port.MarkerExtractor
	circuits   []*circuitState
	names      []string
	log        logging.Logger
	now        func() time.Time
}

var _ port.MarkerExtractor = (*FallbackExtractor)(nil)

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of
// extractors and their names.
func NewFallbackExtractor(extractors []port.MarkerExtractor, names []string, log logging.Logger) *FallbackExtractor {
	if log == nil {
		log = logging.NewNopLogger()
	}
	circuits := make([]*circuitState, len(extractors))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackExtractor{
		extractors: extractors,
		circuits:   circuits,
		names:      names,
		log:        log,
		now:        time.Now,
	}
}

func (f *FallbackExtractor) Extract(ctx context.Context, req port.ExtractionRequest) (*port.ExtractionResponse, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, e := range f.extractors {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.log.Info("llm.fallback.skip",
				logging.String("provider", f.names[i]),
				logging.String("circuit_open_until", resetAt.Format(time.RFC3339)),
			)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := e.Extract(ctx, req)
		if err == nil {
			return out, nil
		}

		f.log.Warn("llm.fallback.provider_failed", logging.String("provider", f.names[i]), logging.Err(err))
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all providers rate limited"), int(retryAfter.Seconds()))
	}
	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}

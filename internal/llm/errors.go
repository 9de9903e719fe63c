package llm

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrNoItems is returned when a provider reply holds no JSON array.
var ErrNoItems = errors.New("no JSON array in provider response")

// DefaultRetryAfter is the cool-down used when a throttled provider gives no hint.
const DefaultRetryAfter = time.Minute

// RateLimitError is a provider's HTTP 429. FallbackExtractor benches the
// provider for RetryAfter.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("llm: %s throttled, retry in %s: %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// NewRateLimitError wraps err for provider. Zero or negative seconds fall
// back to DefaultRetryAfter.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	wait := time.Duration(retryAfterSecs) * time.Second
	if wait <= 0 {
		wait = DefaultRetryAfter
	}
	return &RateLimitError{Provider: provider, RetryAfter: wait, Err: err}
}

// ParseRetryAfterHeader returns the wait a Retry-After header asks for, in
// whole seconds. Both delta-seconds and HTTP-date forms are understood;
// anything else, or a date already past, yields 0.
func ParseRetryAfterHeader(val string) int {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return max(secs, 0)
	}
	at, err := http.ParseTime(val)
	if err != nil {
		return 0
	}
	return max(int(math.Ceil(time.Until(at).Seconds())), 0)
}

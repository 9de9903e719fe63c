package llm_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"labparse/internal/config"
	"labparse/internal/llm"
	"labparse/internal/logging"
	"labparse/internal/port"
	"labparse/mocks"
)

var extractReq = port.ExtractionRequest{Text: "Glucose 95", Filename: "report.pdf"}

func response(model string) *port.ExtractionResponse {
	return &port.ExtractionResponse{Content: `[]`, Model: model}
}

func TestFallbackExtractor_FirstSucceeds(t *testing.T) {
	e1 := new(mocks.MockMarkerExtractor)
	e2 := new(mocks.MockMarkerExtractor)
	e1.On("Extract", mock.Anything, extractReq).Return(response("claude"), nil)

	fe := llm.NewFallbackExtractor([]port.MarkerExtractor{e1, e2}, []string{"claude", "openai"}, nil)
	got, err := fe.Extract(context.Background(), extractReq)

	require.NoError(t, err)
	assert.Equal(t, "claude", got.Model)
	e2.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestFallbackExtractor_FirstFails_SecondSucceeds(t *testing.T) {
	e1 := new(mocks.MockMarkerExtractor)
	e2 := new(mocks.MockMarkerExtractor)
	e1.On("Extract", mock.Anything, extractReq).Return(nil, errors.New("boom"))
	e2.On("Extract", mock.Anything, extractReq).Return(response("openai"), nil)

	fe := llm.NewFallbackExtractor([]port.MarkerExtractor{e1, e2}, []string{"claude", "openai"}, logging.NewNopLogger())
	got, err := fe.Extract(context.Background(), extractReq)

	require.NoError(t, err)
	assert.Equal(t, "openai", got.Model)
}

func TestFallbackExtractor_RateLimitedProviderIsSkippedNextTime(t *testing.T) {
	e1 := new(mocks.MockMarkerExtractor)
	e2 := new(mocks.MockMarkerExtractor)
	e1.On("Extract", mock.Anything, extractReq).Return(nil, llm.NewRateLimitError("claude", errors.New("429"), 60)).Once()
	e2.On("Extract", mock.Anything, extractReq).Return(response("gemini"), nil)

	fe := llm.NewFallbackExtractor([]port.MarkerExtractor{e1, e2}, []string{"claude", "gemini"}, nil)

	_, err := fe.Extract(context.Background(), extractReq)
	require.NoError(t, err)
	_, err = fe.Extract(context.Background(), extractReq)
	require.NoError(t, err)

	e1.AssertNumberOfCalls(t, "Extract", 1)
	e2.AssertNumberOfCalls(t, "Extract", 2)
}

func TestFallbackExtractor_AllRateLimited(t *testing.T) {
	e1 := new(mocks.MockMarkerExtractor)
	e2 := new(mocks.MockMarkerExtractor)
	e1.On("Extract", mock.Anything, extractReq).Return(nil, llm.NewRateLimitError("claude", errors.New("429"), 30))
	e2.On("Extract", mock.Anything, extractReq).Return(nil, llm.NewRateLimitError("openai", errors.New("429"), 90))

	fe := llm.NewFallbackExtractor([]port.MarkerExtractor{e1, e2}, []string{"claude", "openai"}, nil)
	_, err := fe.Extract(context.Background(), extractReq)

	var rl *llm.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, "all", rl.Provider)
	assert.InDelta(t, 30, rl.RetryAfter.Seconds(), 1)
}

func TestFallbackExtractor_AllFail(t *testing.T) {
	e1 := new(mocks.MockMarkerExtractor)
	e2 := new(mocks.MockMarkerExtractor)
	e1.On("Extract", mock.Anything, extractReq).Return(nil, llm.NewRateLimitError("claude", errors.New("429"), 30))
	e2.On("Extract", mock.Anything, extractReq).Return(nil, errors.New("server error"))

	fe := llm.NewFallbackExtractor([]port.MarkerExtractor{e1, e2}, []string{"claude", "openai"}, nil)
	_, err := fe.Extract(context.Background(), extractReq)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
	var rl *llm.RateLimitError
	assert.False(t, errors.As(err, &rl))
}

func TestNewChain(t *testing.T) {
	llm.RegisterProvider("stub", func(cfg *config.ProviderConfig, _ logging.Logger) (port.MarkerExtractor, error) {
		return &stubExtractor{model: cfg.DefaultModel}, nil
	})

	none, err := llm.NewChain(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, none)

	one, err := llm.NewChain([]*config.ProviderConfig{{Provider: "stub", DefaultModel: "m1"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &stubExtractor{}, one)

	two, err := llm.NewChain([]*config.ProviderConfig{
		{Provider: "stub", DefaultModel: "m1"},
		{Provider: "stub", DefaultModel: "m2"},
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &llm.FallbackExtractor{}, two)

	_, err = llm.NewChain([]*config.ProviderConfig{{Provider: "nonexistent-provider-xyz"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown extraction provider")
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, llm.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, llm.ParseRetryAfterHeader("soon"))
	assert.Equal(t, 42, llm.ParseRetryAfterHeader(" 42 "))
	assert.Equal(t, 0, llm.ParseRetryAfterHeader("-5"))

	future := time.Now().Add(2 * time.Minute).UTC().Format(http.TimeFormat)
	secs := llm.ParseRetryAfterHeader(future)
	assert.GreaterOrEqual(t, secs, 100)
	assert.LessOrEqual(t, secs, 120)
	assert.Equal(t, 0, llm.ParseRetryAfterHeader("Wed, 21 Oct 2015 07:28:00 GMT"))
}

func TestNewRateLimitError(t *testing.T) {
	err := llm.NewRateLimitError("claude", errors.New("429"), 0)
	assert.Equal(t, llm.DefaultRetryAfter, err.RetryAfter)
	assert.Equal(t, "llm: claude throttled, retry in 1m0s: 429", err.Error())
	assert.Equal(t, 15*time.Second, llm.NewRateLimitError("claude", errors.New("429"), 15).RetryAfter)
}

// stubExtractor is a minimal MarkerExtractor for testing the factory.
type stubExtractor struct {
	model string
}

func (s *stubExtractor) Extract(_ context.Context, _ port.ExtractionRequest) (*port.ExtractionResponse, error) {
	return &port.ExtractionResponse{Model: s.model}, nil
}

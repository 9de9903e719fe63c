package parser_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"labparse/internal/domain"
	"labparse/internal/parser"
	"labparse/internal/port"
	"labparse/mocks"
)

type recorded struct {
	adapter string
	success bool
	markers int
}

type fakeRecorder struct {
	calls []recorded
}

func (f *fakeRecorder) ObserveParse(adapter string, success bool, _ domain.ConfidenceLevel, markers int, _ time.Duration) {
	f.calls = append(f.calls, recorded{adapter, success, markers})
}

func parsingAdapter(name string, res *domain.ParseResult, err error) *mocks.MockFormatAdapter {
	a := adapter(name, 10, true)
	a.On("Parse", mock.Anything, mock.Anything).Return(res, err)
	return a
}

func TestRouter_Route_Success(t *testing.T) {
	ext := new(mocks.MockTextExtractor)
	ext.On("Extract", mock.Anything, []byte("pdf"), "r.pdf").
		Return(&port.ExtractedText{Text: "Glucose 95", PageCount: 3, Warnings: []string{"ocr used"}}, nil)

	res := &domain.ParseResult{
		Success:     true,
		ParserUsed:  "quest",
		Confidence:  domain.ConfidenceHigh,
		Markers:     []domain.MarkerResult{{CanonicalName: "glucose", Confidence: 1}},
		Warnings:    []string{"adapter note"},
		ParseTimeMS: 123456,
	}
	reg := parser.NewRegistry(nil)
	reg.Register(parsingAdapter("quest", res, nil))
	rec := &fakeRecorder{}

	got := parser.NewRouter(reg, ext, nil, parser.WithRecorder(rec)).Route(context.Background(), []byte("pdf"), "r.pdf")

	require.True(t, got.Success)
	assert.Equal(t, []string{"ocr used", "adapter note"}, got.Warnings)
	assert.Equal(t, 3, got.PageCount)
	assert.Less(t, got.ParseTimeMS, 123456.0)
	assert.False(t, got.NeedsReview)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, recorded{"quest", true, 1}, rec.calls[0])
}

func TestRouter_Route_ExtractionFailure(t *testing.T) {
	ext := new(mocks.MockTextExtractor)
	ext.On("Extract", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("corrupt xref"))

	got := parser.NewRouter(parser.NewRegistry(nil), ext, nil).Route(context.Background(), []byte("x"), "r.pdf")

	assert.False(t, got.Success)
	assert.Equal(t, domain.ConfidenceUncertain, got.Confidence)
	assert.Contains(t, got.Error, "corrupt xref")
	assert.NotEmpty(t, got.Warnings)
}

func TestRouter_RouteText_EmptyText(t *testing.T) {
	got := parser.NewRouter(parser.NewRegistry(nil), nil, nil).RouteText(context.Background(), "   ", "r.txt")

	assert.False(t, got.Success)
	assert.Equal(t, domain.ErrEmptyText.Error(), got.Error)
	assert.Equal(t, domain.ConfidenceUncertain, got.Confidence)
}

func TestRouter_RouteText_NoAdapter(t *testing.T) {
	reg := parser.NewRegistry(nil)
	reg.Register(adapter("quest", 10, false))

	got := parser.NewRouter(reg, nil, nil).RouteText(context.Background(), "text", "")

	assert.False(t, got.Success)
	assert.Equal(t, domain.ErrNoAdapter.Error(), got.Error)
}

func TestRouter_RouteText_AdapterError(t *testing.T) {
	reg := parser.NewRegistry(nil)
	reg.Register(parsingAdapter("labcorp", nil, errors.New("bad table")))

	got := parser.NewRouter(reg, nil, nil).RouteText(context.Background(), "text", "")

	assert.False(t, got.Success)
	assert.Equal(t, "labcorp", got.ParserUsed)
	assert.Contains(t, got.Error, "labcorp")
	assert.Contains(t, got.Error, "bad table")
}

func TestRouter_RouteText_AdapterPanic(t *testing.T) {
	a := adapter("quest", 10, true)
	a.On("Parse", mock.Anything, mock.Anything).Panic("index out of range")
	reg := parser.NewRegistry(nil)
	reg.Register(a)

	var got *domain.ParseResult
	require.NotPanics(t, func() {
		got = parser.NewRouter(reg, nil, nil).RouteText(context.Background(), "text", "")
	})
	assert.False(t, got.Success)
	assert.Contains(t, got.Error, "quest")
	assert.Contains(t, got.Error, "index out of range")
}

func TestRouter_RouteText_NilResult(t *testing.T) {
	reg := parser.NewRegistry(nil)
	reg.Register(parsingAdapter("quest", nil, nil))

	got := parser.NewRouter(reg, nil, nil).RouteText(context.Background(), "text", "")
	assert.False(t, got.Success)
	assert.Contains(t, got.Error, "quest")
}

func TestRouter_EnforcesNeedsReview(t *testing.T) {
	res := &domain.ParseResult{
		Success: true,
		Markers: []domain.MarkerResult{{CanonicalName: "glucose", Confidence: 0.65}},
	}
	reg := parser.NewRegistry(nil)
	reg.Register(parsingAdapter("quest", res, nil))

	got := parser.NewRouter(reg, nil, nil).RouteText(context.Background(), "text", "")
	assert.True(t, got.NeedsReview)
}

func TestRouter_RouteTextWith(t *testing.T) {
	forced := parsingAdapter("labcorp", &domain.ParseResult{Success: true, ParserUsed: "labcorp"}, nil)
	reg := parser.NewRegistry(nil)
	reg.Register(adapter("quest", 1, true))
	reg.Register(forced)
	router := parser.NewRouter(reg, nil, nil)

	got := router.RouteTextWith(context.Background(), "text", "", "labcorp")
	assert.Equal(t, "labcorp", got.ParserUsed)

	got = router.RouteTextWith(context.Background(), "text", "", "nope")
	assert.False(t, got.Success)
	assert.Contains(t, got.Error, domain.ErrAdapterNotFound.Error())
}

type noteChecker struct{ calls int }

func (c *noteChecker) Check(res *domain.ParseResult) {
	c.calls++
	res.AddWarning("checked %d markers", len(res.Markers))
}

func TestRouter_WithChecker(t *testing.T) {
	res := &domain.ParseResult{
		Success: true,
		Markers: []domain.MarkerResult{{CanonicalName: "glucose", Confidence: 1}},
	}
	reg := parser.NewRegistry(nil)
	reg.Register(parsingAdapter("quest", res, nil))
	checker := &noteChecker{}
	router := parser.NewRouter(reg, nil, nil, parser.WithChecker(checker))

	got := router.RouteText(context.Background(), "text", "")
	assert.Equal(t, []string{"checked 1 markers"}, got.Warnings)

	router.RouteText(context.Background(), "   ", "")
	assert.Equal(t, 1, checker.calls)
}

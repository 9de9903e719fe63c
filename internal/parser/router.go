package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"labparse/internal/domain"
	"labparse/internal/logging"
	"labparse/internal/port"
)

// Recorder observes completed parses.
type Recorder interface {
	ObserveParse(adapter string, success bool, level domain.ConfidenceLevel, markers int, elapsed time.Duration)
}

// Checker inspects a finished result and may append warnings.
type Checker interface {
	Check(res *domain.ParseResult)
}

// Router runs extraction, detection and parsing for one document and always
// returns a well-formed result.
type Router struct {
	registry        *Registry
	extractor       port.TextExtractor
	log             logging.Logger
	recorder        Recorder
	checker         Checker
	reviewThreshold float64
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRecorder attaches a parse observer.
func WithRecorder(rec Recorder) RouterOption {
	return func(r *Router) { r.recorder = rec }
}

// WithChecker runs c over every result that has markers.
func WithChecker(c Checker) RouterOption {
	return func(r *Router) { r.checker = c }
}

// WithReviewThreshold overrides the per-marker review threshold.
func WithReviewThreshold(t float64) RouterOption {
	return func(r *Router) { r.reviewThreshold = t }
}

// NewRouter creates a Router.
func NewRouter(registry *Registry, extractor port.TextExtractor, log logging.Logger, opts ...RouterOption) *Router {
	if log == nil {
		log = logging.NewNopLogger()
	}
	r := &Router{
		registry:        registry,
		extractor:       extractor,
		log:             log,
		reviewThreshold: domain.MediumThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the adapter registry.
func (r *Router) Registry() *Registry {
	return r.registry
}

// Route extracts text from fileBytes and parses it with the detected adapter.
func (r *Router) Route(ctx context.Context, fileBytes []byte, filename string) *domain.ParseResult {
	return r.route(ctx, fileBytes, filename, "")
}

// RouteWith parses with the named adapter instead of detecting one.
func (r *Router) RouteWith(ctx context.Context, fileBytes []byte, filename, adapter string) *domain.ParseResult {
	return r.route(ctx, fileBytes, filename, adapter)
}

func (r *Router) route(ctx context.Context, fileBytes []byte, filename, adapter string) *domain.ParseResult {
	started := time.Now()
	extracted, err := r.extractor.Extract(ctx, fileBytes, filename)
	if err != nil {
		r.log.Warn("parser.router.extract_failed", logging.String("filename", filename), logging.Err(err))
		res := FailedResult("", "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err))
		return r.finish(res, started)
	}
	input := port.ParseInput{Text: extracted.Text, FileBytes: fileBytes, Filename: filename}
	res := r.dispatch(ctx, input, adapter, extracted.Warnings)
	if res.PageCount == 0 {
		res.PageCount = extracted.PageCount
	}
	return r.finish(res, started)
}

// RouteText parses already-extracted text.
func (r *Router) RouteText(ctx context.Context, text, filename string) *domain.ParseResult {
	started := time.Now()
	res := r.dispatch(ctx, port.ParseInput{Text: text, Filename: filename}, "", nil)
	return r.finish(res, started)
}

// RouteTextWith parses already-extracted text with the named adapter.
func (r *Router) RouteTextWith(ctx context.Context, text, filename, adapter string) *domain.ParseResult {
	started := time.Now()
	res := r.dispatch(ctx, port.ParseInput{Text: text, Filename: filename}, adapter, nil)
	return r.finish(res, started)
}

func (r *Router) dispatch(ctx context.Context, input port.ParseInput, name string, warnings []string) *domain.ParseResult {
	if strings.TrimSpace(input.Text) == "" {
		return FailedResult("", "", domain.ErrEmptyText, warnings...)
	}

	var a port.FormatAdapter
	if name != "" {
		found, ok := r.registry.Get(name)
		if !ok {
			return FailedResult("", "", fmt.Errorf("%w: %s", domain.ErrAdapterNotFound, name), warnings...)
		}
		a = found
	} else {
		a = r.registry.DetectFormat(input.Text, input.Filename)
	}
	if a == nil {
		return FailedResult("", "", domain.ErrNoAdapter, warnings...)
	}

	r.log.Info("parser.router.dispatch",
		logging.String("adapter", a.Name()),
		logging.String("filename", input.Filename),
		logging.Bool("forced", name != ""),
	)

	res, err := r.invoke(ctx, a, input)
	if err == nil && res == nil {
		err = fmt.Errorf("adapter returned no result")
	}
	if err != nil {
		aerr := &AdapterError{Adapter: a.Name(), Err: err}
		r.log.Error("parser.router.adapter_failed", logging.String("adapter", a.Name()), logging.Err(err))
		return FailedResult(a.Name(), a.DisplayName(), aerr, warnings...)
	}

	if len(warnings) > 0 {
		res.Warnings = append(append([]string{}, warnings...), res.Warnings...)
	}
	return res
}

func (r *Router) invoke(ctx context.Context, a port.FormatAdapter, input port.ParseInput) (res *domain.ParseResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res, err = nil, &PanicError{Value: rec}
		}
	}()
	return a.Parse(ctx, input)
}

func (r *Router) finish(res *domain.ParseResult, started time.Time) *domain.ParseResult {
	if res.Markers == nil {
		res.Markers = []domain.MarkerResult{}
	}
	if res.Warnings == nil {
		res.Warnings = []string{}
	}
	if r.checker != nil && len(res.Markers) > 0 {
		r.checker.Check(res)
	}
	for _, m := range res.Markers {
		if m.Confidence < r.reviewThreshold {
			res.NeedsReview = true
			break
		}
	}
	elapsed := time.Since(started)
	res.ParseTimeMS = float64(elapsed.Microseconds()) / 1000
	if r.recorder != nil {
		r.recorder.ObserveParse(res.ParserUsed, res.Success, res.Confidence, len(res.Markers), elapsed)
	}
	r.log.Info("parser.router.done",
		logging.String("adapter", res.ParserUsed),
		logging.Bool("success", res.Success),
		logging.String("confidence", string(res.Confidence)),
		logging.Int("markers", len(res.Markers)),
		logging.Bool("needs_review", res.NeedsReview),
		logging.Duration("elapsed", elapsed),
	)
	return res
}

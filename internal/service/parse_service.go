package service

import (
	"context"
	"errors"
	"fmt"
	"path"

	"labparse/internal/domain"
	"labparse/internal/logging"
	"labparse/internal/parser"
	"labparse/internal/port"
)

// DocumentRouter is the routing surface the services need.
type DocumentRouter interface {
	Route(ctx context.Context, fileBytes []byte, filename string) *domain.ParseResult
	RouteWith(ctx context.Context, fileBytes []byte, filename, adapter string) *domain.ParseResult
	Registry() *parser.Registry
}

var _ DocumentRouter = (*parser.Router)(nil)

// ParseInput is the DTO for parsing one uploaded document.
type ParseInput struct {
	Filename string
	Data     []byte
	// Adapter forces a specific adapter; empty means detect.
	Adapter string
}

// FormatInfo describes one registered adapter.
type FormatInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Priority    int    `json:"priority"`
}

// ErrUnknownAdapter is returned when a forced adapter is not registered.
var ErrUnknownAdapter = errors.New("unknown adapter")

// ParseService defines the document parsing operations.
type ParseService interface {
	Parse(ctx context.Context, input ParseInput) (*domain.ParseResult, error)
	ParseObject(ctx context.Context, bucket, key, adapter string) (*domain.ParseResult, error)
	Formats() []FormatInfo
}

type parseService struct {
	router  DocumentRouter
	storage port.ObjectStorage
	log     logging.Logger
}

// NewParseService creates a ParseService. storage may be nil when objects
// are never parsed by key.
func NewParseService(router DocumentRouter, storage port.ObjectStorage, log logging.Logger) ParseService {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &parseService{router: router, storage: storage, log: log.Named("parse_service")}
}

// Parse routes one document. Parse failures are reported inside the result;
// the error is reserved for requests that name an unknown adapter.
func (s *parseService) Parse(ctx context.Context, input ParseInput) (*domain.ParseResult, error) {
	if input.Adapter != "" {
		if _, ok := s.router.Registry().Get(input.Adapter); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAdapter, input.Adapter)
		}
		return s.router.RouteWith(ctx, input.Data, input.Filename, input.Adapter), nil
	}
	return s.router.Route(ctx, input.Data, input.Filename), nil
}

// ParseObject downloads bucket/key and parses it.
func (s *parseService) ParseObject(ctx context.Context, bucket, key, adapter string) (*domain.ParseResult, error) {
	if s.storage == nil {
		return nil, errors.New("object storage is not configured")
	}
	data, err := s.storage.Download(ctx, bucket, key)
	if err != nil {
		s.log.Warn("service.parse.download_failed",
			logging.String("bucket", bucket),
			logging.String("key", key),
			logging.Err(err),
		)
		return nil, fmt.Errorf("downloading %s: %w", key, err)
	}
	return s.Parse(ctx, ParseInput{Filename: path.Base(key), Data: data, Adapter: adapter})
}

// Formats lists the registered adapters in detection order.
func (s *parseService) Formats() []FormatInfo {
	adapters := s.router.Registry().Adapters()
	out := make([]FormatInfo, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, FormatInfo{Name: a.Name(), DisplayName: a.DisplayName(), Priority: a.Priority()})
	}
	return out
}

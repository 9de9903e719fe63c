// Package app assembles the parsing engine and its surfaces from Config.
package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"labparse/internal/config"
	"labparse/internal/handler"
	"labparse/internal/llm"
	"labparse/internal/llm/claude"
	"labparse/internal/llm/gemini"
	"labparse/internal/llm/openai"
	"labparse/internal/logging"
	"labparse/internal/metrics"
	"labparse/internal/normalize"
	"labparse/internal/parser"
	"labparse/internal/parser/builtin"
	"labparse/internal/port"
	"labparse/internal/router"
	"labparse/internal/service"
	s3storage "labparse/internal/storage/s3"
	"labparse/internal/textextract"
	"labparse/internal/validator"
)

func init() {
	llm.RegisterProvider("claude", claude.Factory)
	llm.RegisterProvider("openai", openai.Factory)
	llm.RegisterProvider("gemini", gemini.Factory)
}

// App holds the wired components.
type App struct {
	Config  *config.Config
	Log     logging.Logger
	Metrics *metrics.Metrics

	Registry *parser.Registry
	Router   *parser.Router
	Storage  port.ObjectStorage

	ParseService service.ParseService
	BatchService service.BatchService
}

// Option customizes New.
type Option func(*options)

type options struct {
	extractor    port.MarkerExtractor
	hasExtractor bool
	storage      port.ObjectStorage
}

// WithExtractor replaces the provider chain built from config. A nil
// extractor disables AI extraction.
func WithExtractor(e port.MarkerExtractor) Option {
	return func(o *options) {
		o.extractor = e
		o.hasExtractor = true
	}
}

// WithStorage replaces the S3 client built from config.
func WithStorage(s port.ObjectStorage) Option {
	return func(o *options) { o.storage = s }
}

// New wires every component from cfg.
func New(cfg *config.Config, log logging.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Log: log}

	if cfg.Metrics.Enabled {
		m, err := metrics.New(cfg.Metrics.Namespace)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
		a.Metrics = m
	}

	extractor := o.extractor
	if !o.hasExtractor {
		chain, err := llm.NewChain(cfg.Extraction.Providers(), log.Named("llm"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize extraction providers: %w", err)
		}
		extractor = chain
	}
	if extractor == nil {
		log.Info("app.no_extraction_provider")
	}

	maxBytes := cfg.Server.MaxUploadMB << 20
	a.Storage = o.storage
	if a.Storage == nil && cfg.S3.Bucket != "" {
		s3Client, err := s3storage.NewS3Client(&cfg.S3, maxBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		a.Storage = s3Client
	}

	a.Registry = builtin.NewRegistry(parser.Options{
		HeaderChars:     cfg.Parser.HeaderChars,
		MinLineLength:   cfg.Parser.MinLineLength,
		ReviewThreshold: cfg.Parser.ReviewThreshold,
		Dictionary:      normalize.Default(),
		Logger:          log.Named("parser"),
	}, extractor, cfg.Extraction.MaxInputChars)
	a.Registry.SetDetectionWindow(cfg.Parser.DetectWindow)

	routerOpts := []parser.RouterOption{
		parser.WithReviewThreshold(cfg.Parser.ReviewThreshold),
		parser.WithChecker(validator.NewEngine(nil, log)),
	}
	var batchObserver service.BatchObserver
	if a.Metrics != nil {
		routerOpts = append(routerOpts, parser.WithRecorder(a.Metrics))
		batchObserver = a.Metrics
	}
	a.Router = parser.NewRouter(a.Registry, textextract.New(maxBytes, log.Named("textextract")), log.Named("router"), routerOpts...)

	a.ParseService = service.NewParseService(a.Router, a.Storage, log)
	a.BatchService = service.NewBatchService(a.Router, cfg.Batch.Concurrency, batchObserver, log)
	return a, nil
}

// HTTPHandler builds the gin engine serving the API.
func (a *App) HTTPHandler() *gin.Engine {
	if a.Config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	d := router.Deps{
		Log:            a.Log,
		AllowedOrigins: a.Config.CORS.AllowedOrigins,
		ParseHandler:   handler.NewParseHandler(a.ParseService, a.Config.Server.MaxUploadMB<<20, a.Config.Parser.ReviewThreshold, a.Log),
		HealthHandler:  handler.NewHealthHandler(a.ParseService),
	}
	if a.Metrics != nil {
		d.Observer = a.Metrics
		d.MetricsHandler = a.Metrics.Handler()
	}
	return router.Setup(d)
}

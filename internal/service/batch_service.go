package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"labparse/internal/domain"
	"labparse/internal/logging"
	"labparse/internal/parser"
)

// BatchDocument is one document of a batch. Load is called lazily so that
// at most Concurrency documents are held in memory at once.
type BatchDocument struct {
	Filename string
	Load     func(ctx context.Context) ([]byte, error)
}

// BatchItem is the outcome for one document.
type BatchItem struct {
	Filename string              `json:"filename"`
	Result   *domain.ParseResult `json:"result"`
}

// BatchResult summarizes a batch run. Items keep the input order.
type BatchResult struct {
	JobID       uuid.UUID   `json:"job_id"`
	StartedAt   time.Time   `json:"started_at"`
	FinishedAt  time.Time   `json:"finished_at"`
	Items       []BatchItem `json:"items"`
	Succeeded   int         `json:"succeeded"`
	Failed      int         `json:"failed"`
	NeedsReview int         `json:"needs_review"`
}

// BatchObserver counts processed documents by outcome.
type BatchObserver interface {
	ObserveBatchDocument(outcome string)
}

// Batch outcomes reported to the BatchObserver.
const (
	OutcomeSucceeded  = "succeeded"
	OutcomeFailed     = "failed"
	OutcomeLoadFailed = "load_failed"
)

// BatchService parses many documents concurrently.
type BatchService interface {
	Run(ctx context.Context, docs []BatchDocument, adapter string) (*BatchResult, error)
}

type batchService struct {
	router      DocumentRouter
	concurrency int
	observer    BatchObserver
	log         logging.Logger
}

// NewBatchService creates a BatchService running at most concurrency parses
// at a time. observer may be nil.
func NewBatchService(router DocumentRouter, concurrency int, observer BatchObserver, log logging.Logger) BatchService {
	if concurrency <= 0 {
		concurrency = 1
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &batchService{router: router, concurrency: concurrency, observer: observer, log: log.Named("batch")}
}

// Run parses docs and returns one item per document. A document that fails
// to load or parse gets a failed result; only cancellation of ctx aborts
// the whole run.
func (s *batchService) Run(ctx context.Context, docs []BatchDocument, adapter string) (*BatchResult, error) {
	res := &BatchResult{
		JobID:     uuid.New(),
		StartedAt: time.Now().UTC(),
		Items:     make([]BatchItem, len(docs)),
	}
	log := s.log.With(logging.String("job_id", res.JobID.String()))
	log.Info("batch.started", logging.Int("documents", len(docs)), logging.Int("concurrency", s.concurrency))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res.Items[i] = BatchItem{Filename: doc.Filename, Result: s.parseOne(gctx, doc, adapter, log)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("batch.aborted", logging.Err(err))
		return nil, fmt.Errorf("batch %s aborted: %w", res.JobID, err)
	}

	for _, item := range res.Items {
		if item.Result.Success {
			res.Succeeded++
		} else {
			res.Failed++
		}
		if item.Result.NeedsReview {
			res.NeedsReview++
		}
	}
	res.FinishedAt = time.Now().UTC()
	log.Info("batch.done",
		logging.Int("succeeded", res.Succeeded),
		logging.Int("failed", res.Failed),
		logging.Int("needs_review", res.NeedsReview),
		logging.Duration("elapsed", res.FinishedAt.Sub(res.StartedAt)),
	)
	return res, nil
}

func (s *batchService) parseOne(ctx context.Context, doc BatchDocument, adapter string, log logging.Logger) *domain.ParseResult {
	data, err := doc.Load(ctx)
	if err != nil {
		log.Warn("batch.load_failed", logging.String("filename", doc.Filename), logging.Err(err))
		s.observe(OutcomeLoadFailed)
		return parser.FailedResult("", "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err))
	}
	var out *domain.ParseResult
	if adapter != "" {
		out = s.router.RouteWith(ctx, data, doc.Filename, adapter)
	} else {
		out = s.router.Route(ctx, data, doc.Filename)
	}
	if out.Success {
		s.observe(OutcomeSucceeded)
	} else {
		s.observe(OutcomeFailed)
	}
	return out
}

func (s *batchService) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveBatchDocument(outcome)
	}
}

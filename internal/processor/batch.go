// Package processor runs scoring over many texts: an ordered worker-pool
// batch mode and a CSV file mode built on top of it.
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lexiscan/lexiscan/internal/detector"
	"github.com/lexiscan/lexiscan/internal/domain"
	"github.com/lexiscan/lexiscan/internal/engine"
	"github.com/lexiscan/lexiscan/internal/telemetry"
)

const defaultConcurrency = 10

// ErrUnknownDetector is returned when a batch names a detector that is not
// registered.
var ErrUnknownDetector = errors.New("unknown detector")

// Logger defines the logging interface.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// ProcessResult holds the outcome for a single batch item. Index is the
// item's position in the input; results always come back in input order.
type ProcessResult struct {
	Index  int                   `json:"index"`
	Text   string                `json:"-"`
	Result *domain.ScoringResult `json:"result"`
}

// BatchProcessor scores batches of texts in parallel using a worker pool.
// Each text is scored independently, exactly as a lone Score call would.
type BatchProcessor struct {
	registry    *detector.Registry
	concurrency int
	logger      Logger
	tp          *telemetry.Provider
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(registry *detector.Registry, concurrency int, logger Logger, tp *telemetry.Provider) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &BatchProcessor{
		registry:    registry,
		concurrency: concurrency,
		logger:      logger,
		tp:          tp,
	}
}

// Concurrency returns the worker pool size.
func (b *BatchProcessor) Concurrency() int {
	return b.concurrency
}

// Process scores texts against the named detector. A negative sensitivity
// selects the profile default. The result slice is index-aligned with the
// input: results[i] is always the outcome for texts[i].
func (b *BatchProcessor) Process(ctx context.Context, detectorName string, texts []string, sensitivity float64) ([]*ProcessResult, error) {
	eng, ok := b.registry.Engine(detectorName)
	if !ok {
		if b.tp != nil {
			b.tp.RecordScoringFailure(ctx, detectorName, "unknown_detector")
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownDetector, detectorName)
	}
	if len(texts) == 0 {
		return []*ProcessResult{}, nil
	}

	if b.tp != nil {
		var span trace.Span
		ctx, span = b.tp.StartSpan(ctx, "processor.batch",
			attribute.String("detector", detectorName),
			attribute.Int("batch_size", len(texts)),
		)
		defer span.End()
	}

	b.logger.Info("Starting batch scoring",
		"detector", detectorName,
		"batch_size", len(texts),
		"concurrency", b.concurrency,
	)
	startTime := time.Now()

	results := make([]*ProcessResult, len(texts))
	jobs := make(chan int, len(texts))

	var wg sync.WaitGroup
	for w := 0; w < b.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				// Each worker writes only its own slot; no further
				// coordination is needed to keep input order.
				results[i] = b.scoreItem(ctx, eng, i, texts[i], sensitivity)
			}
		}()
	}

	for i := range texts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch scoring interrupted: %w", err)
	}

	duration := time.Since(startTime)
	if b.tp != nil {
		b.tp.RecordBatch(len(texts), duration)
	}
	b.logger.Info("Batch scoring complete",
		"detector", detectorName,
		"total", len(texts),
		"duration_ms", duration.Milliseconds(),
	)

	return results, nil
}

func (b *BatchProcessor) scoreItem(ctx context.Context, eng *engine.Engine, index int, text string, sensitivity float64) *ProcessResult {
	var result *domain.ScoringResult
	var err error
	if sensitivity < 0 {
		result, err = eng.Score(ctx, text)
	} else {
		result, err = eng.ScoreWithSensitivity(ctx, text, sensitivity)
	}
	if err != nil {
		// Cannot happen once the profile compiled; keep the item slot
		// deterministic anyway.
		b.logger.Error("Scoring failed for batch item", "index", index, "error", err)
		return &ProcessResult{Index: index, Text: text}
	}
	return &ProcessResult{Index: index, Text: text, Result: result}
}

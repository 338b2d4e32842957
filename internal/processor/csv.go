package processor

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lexiscan/lexiscan/internal/domain"
)

// DefaultTextColumn is the input column scored when none is configured.
const DefaultTextColumn = "text"

// ErrMissingTextColumn is returned when the input header lacks the text
// column.
var ErrMissingTextColumn = errors.New("input has no text column")

// CSVOptions configures a file batch run.
type CSVOptions struct {
	Detector    string
	Sensitivity float64 // negative selects the profile default
	TextColumn  string  // defaults to "text"
	RowsPerSec  int     // 0 disables throttling
}

var csvHeader = []string{
	"text",
	"classification",
	"aggregate_score",
	"confidence",
	"top_category",
	"matched_terms",
	"empty_input",
}

// RunCSV reads rows from r, scores the text column against the configured
// detector and writes one result row per input row to w. Output order
// always matches input order, and each row is scored exactly as an
// isolated Score call would score it. Returns the number of rows scored.
func (b *BatchProcessor) RunCSV(ctx context.Context, r io.Reader, w io.Writer, opts CSVOptions) (int, error) {
	eng, ok := b.registry.Engine(opts.Detector)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDetector, opts.Detector)
	}

	column := opts.TextColumn
	if column == "" {
		column = DefaultTextColumn
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read input header: %w", err)
	}
	textIdx := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			textIdx = i
			break
		}
	}
	if textIdx < 0 {
		return 0, fmt.Errorf("%w: %q", ErrMissingTextColumn, column)
	}

	var texts []string
	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return 0, fmt.Errorf("read input row %d: %w", len(texts)+2, readErr)
		}
		if textIdx >= len(record) {
			texts = append(texts, "")
			continue
		}
		texts = append(texts, record[textIdx])
	}

	b.logger.Info("Starting file batch run",
		"detector", opts.Detector,
		"rows", len(texts),
		"concurrency", b.concurrency,
	)

	var limiter *RateLimiter
	if opts.RowsPerSec > 0 {
		limiter = NewRateLimiter(opts.RowsPerSec, opts.RowsPerSec, b.logger)
	}

	results := make([]*domain.ScoringResult, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	var waitErr error
	for i, text := range texts {
		if limiter != nil {
			if waitErr = limiter.Wait(gctx); waitErr != nil {
				break
			}
		}
		g.Go(func() error {
			var res *domain.ScoringResult
			var scoreErr error
			if opts.Sensitivity < 0 {
				res, scoreErr = eng.Score(gctx, text)
			} else {
				res, scoreErr = eng.ScoreWithSensitivity(gctx, text, opts.Sensitivity)
			}
			if scoreErr != nil {
				return fmt.Errorf("score row %d: %w", i+2, scoreErr)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if waitErr != nil {
		return 0, fmt.Errorf("batch throttle interrupted: %w", waitErr)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("write output header: %w", err)
	}
	for i, res := range results {
		row, rowErr := resultRow(texts[i], res)
		if rowErr != nil {
			return 0, rowErr
		}
		if err := writer.Write(row); err != nil {
			return 0, fmt.Errorf("write output row %d: %w", i+2, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("flush output: %w", err)
	}

	b.logger.Info("File batch run complete", "detector", opts.Detector, "rows", len(results))
	return len(results), nil
}

func resultRow(text string, res *domain.ScoringResult) ([]string, error) {
	matched, err := json.Marshal(res.MatchedTerms)
	if err != nil {
		return nil, fmt.Errorf("encode matched terms: %w", err)
	}
	topCategory, _ := res.TopCategory()
	return []string{
		text,
		res.Classification,
		strconv.FormatFloat(res.AggregateScore, 'f', 4, 64),
		strconv.FormatFloat(res.Confidence, 'f', 4, 64),
		topCategory,
		string(matched),
		strconv.FormatBool(res.EmptyInput),
	}, nil
}

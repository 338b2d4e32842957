// Package engine implements the lexical scoring engine: it transforms free
// text into a structured, explainable classification by matching weighted
// indicator categories and structural signals against the input.
//
// Literal terms across all categories are matched in a single pass with an
// Aho-Corasick automaton; regular expression terms are compiled once when
// the engine is built. A compiled engine is immutable and safe for
// concurrent use; Score performs no I/O and holds no locks.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"github.com/lexiscan/lexiscan/internal/domain"
	"github.com/lexiscan/lexiscan/internal/logger"
	"github.com/lexiscan/lexiscan/internal/telemetry"
)

// structuralSlot marks a signal bound to the structural pseudo-category.
const structuralSlot = -1

type termRef struct {
	cat  int // category index
	term int // index into the category's Terms
}

type compiledPattern struct {
	cat    int
	source string // pattern as written in the profile, for explainability
	re     *regexp.Regexp
}

type boundSignal struct {
	name      string
	weight    float64
	threshold float64
	cat       int // category index, or structuralSlot
	pred      Predicate
}

// Engine is a compiled detector profile. Build one with New and reuse it
// across goroutines; all state is written during compilation.
type Engine struct {
	profile domain.DetectorProfile
	logger  logger.Logger
	tp      *telemetry.Provider
	custom  map[string]Predicate

	matcher  *ahocorasick.Matcher
	terms    []string  // folded literal terms, automaton order
	termRefs [][]termRef
	patterns []compiledPattern
	signals  []boundSignal

	hasStructural bool
}

// Option configures an Engine before compilation.
type Option func(*Engine)

// WithTelemetry attaches a telemetry provider; the engine records scoring
// duration and label distribution through it.
func WithTelemetry(tp *telemetry.Provider) Option {
	return func(e *Engine) { e.tp = tp }
}

// WithPredicate registers a custom structural predicate under the given
// name, overriding a builtin of the same name if one exists.
func WithPredicate(name string, pred Predicate) Option {
	return func(e *Engine) { e.custom[name] = pred }
}

// New validates and compiles a detector profile. Configuration errors are
// fatal here, before any text is scored: an empty category set returns
// domain.ErrNoCategories and a malformed regex returns a *PatternError
// naming the offending term.
func New(profile domain.DetectorProfile, log logger.Logger, opts ...Option) (*Engine, error) {
	if log == nil {
		log = logger.NewNop()
	}

	e := &Engine{
		profile: cloneProfile(profile),
		logger:  log,
		custom:  make(map[string]Predicate),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.profile.Validate(); err != nil {
		return nil, err
	}
	e.profile.Normalize()

	if err := e.compile(); err != nil {
		return nil, err
	}

	e.logger.Info("scoring engine compiled",
		logger.String("detector", e.profile.Name),
		logger.Int("categories", len(e.profile.Categories)),
		logger.Int("terms", len(e.terms)),
		logger.Int("patterns", len(e.patterns)),
		logger.Int("signals", len(e.signals)),
	)

	return e, nil
}

// compile builds the Aho-Corasick automaton, compiles regex terms and
// binds structural signals to their target categories.
func (e *Engine) compile() error {
	catIndex := make(map[string]int, len(e.profile.Categories))
	for i := range e.profile.Categories {
		catIndex[e.profile.Categories[i].Name] = i
	}

	// Literal terms: one automaton across all categories, with folded
	// terms deduplicated and mapped back to every category that uses them.
	termIdx := make(map[string]int)
	for ci := range e.profile.Categories {
		cat := &e.profile.Categories[ci]
		for ti, term := range cat.Terms {
			folded := Fold(strings.TrimSpace(term))
			if folded == "" {
				continue
			}
			idx, ok := termIdx[folded]
			if !ok {
				idx = len(e.terms)
				termIdx[folded] = idx
				e.terms = append(e.terms, folded)
				e.termRefs = append(e.termRefs, nil)
			}
			// A term listed more than once in one category (including
			// fold-equal spellings) counts once; the first spelling wins
			// for explainability.
			duplicate := false
			for _, ref := range e.termRefs[idx] {
				if ref.cat == ci {
					duplicate = true
					break
				}
			}
			if duplicate {
				continue
			}
			e.termRefs[idx] = append(e.termRefs[idx], termRef{cat: ci, term: ti})
		}

		for _, pattern := range cat.Patterns {
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return &PatternError{
					Detector: e.profile.Name,
					Category: cat.Name,
					Pattern:  pattern,
					Err:      err,
				}
			}
			e.patterns = append(e.patterns, compiledPattern{cat: ci, source: pattern, re: re})
		}
	}
	if len(e.terms) > 0 {
		e.matcher = ahocorasick.NewStringMatcher(e.terms)
	}

	for _, sig := range e.profile.Signals {
		pred, ok := e.custom[sig.Name]
		if !ok {
			pred, ok = builtinSignals[sig.Name]
		}
		if !ok {
			return fmt.Errorf("detector %q: unknown structural signal %q", e.profile.Name, sig.Name)
		}

		slot := structuralSlot
		if sig.Category != "" && sig.Category != domain.StructuralCategory {
			ci, found := catIndex[sig.Category]
			if !found {
				return fmt.Errorf("detector %q: signal %q targets undefined category %q",
					e.profile.Name, sig.Name, sig.Category)
			}
			slot = ci
		} else {
			e.hasStructural = true
		}
		e.signals = append(e.signals, boundSignal{
			name:      sig.Name,
			weight:    sig.Weight,
			threshold: sig.Threshold,
			cat:       slot,
			pred:      pred,
		})
	}

	return nil
}

// Profile returns a copy of the compiled profile.
func (e *Engine) Profile() domain.DetectorProfile {
	return cloneProfile(e.profile)
}

// Name returns the detector name.
func (e *Engine) Name() string {
	return e.profile.Name
}

// Score scores text with the profile's default sensitivity.
func (e *Engine) Score(ctx context.Context, text string) (*domain.ScoringResult, error) {
	return e.ScoreWithSensitivity(ctx, text, e.profile.Sensitivity.Default)
}

// ScoreWithSensitivity runs the full scan-accumulate-clamp-combine-classify
// sequence. Sensitivity rescales the aggregate multiplicatively without
// touching category weights; with the default base/scale a sensitivity of
// 0.5 leaves the aggregate unchanged.
func (e *Engine) ScoreWithSensitivity(ctx context.Context, text string, sensitivity float64) (*domain.ScoringResult, error) {
	start := time.Now()

	result := &domain.ScoringResult{
		Detector:       e.profile.Name,
		CategoryScores: make(map[string]float64, len(e.profile.Categories)+1),
		MatchedTerms:   make(map[string][]string),
		Sensitivity:    sensitivity,
	}
	for i := range e.profile.Categories {
		result.CategoryScores[e.profile.Categories[i].Name] = 0
	}
	if e.hasStructural {
		result.CategoryScores[domain.StructuralCategory] = 0
	}

	// Empty input is legal and deterministic: all-zero scores, the
	// lowest-severity label, and the EmptyInput marker so callers can
	// surface it distinctly from a genuine low-risk classification.
	if strings.TrimSpace(text) == "" {
		result.EmptyInput = true
		result.Classification = e.profile.LowestLabel()
		result.Confidence = e.confidence(0, result.CategoryScores)
		e.record(ctx, result, time.Since(start))
		return result, nil
	}

	raw := make([]float64, len(e.profile.Categories))
	structuralRaw := 0.0
	matchedLiterals := make(map[termRef]bool)
	matchedPatterns := make(map[int]bool)

	// Lexical terms scan the folded text; every occurrence counts.
	folded := Fold(text)
	if e.matcher != nil {
		for _, hit := range e.matcher.Match([]byte(folded)) {
			if hit >= len(e.terms) {
				continue
			}
			n := strings.Count(folded, e.terms[hit])
			if n == 0 {
				continue
			}
			for _, ref := range e.termRefs[hit] {
				raw[ref.cat] += float64(n) * e.profile.Categories[ref.cat].TermWeight
				matchedLiterals[ref] = true
			}
		}
	}
	for pi, cp := range e.patterns {
		n := len(cp.re.FindAllStringIndex(folded, -1))
		if n == 0 {
			continue
		}
		raw[cp.cat] += float64(n) * e.profile.Categories[cp.cat].TermWeight
		matchedPatterns[pi] = true
	}

	// Structural signals read the original text so casing and punctuation
	// survive.
	for _, bs := range e.signals {
		if !bs.pred(text, bs.threshold) {
			continue
		}
		if bs.cat == structuralSlot {
			structuralRaw += bs.weight
		} else {
			raw[bs.cat] += bs.weight
		}
		result.SignalsFired = append(result.SignalsFired, bs.name)
	}

	// Clamp per category before combining: under the max rule, early
	// clamping decides which category dominates.
	for i := range e.profile.Categories {
		cat := &e.profile.Categories[i]
		result.CategoryScores[cat.Name] = clamp(raw[i], 0, cat.Ceiling)
	}
	if e.hasStructural {
		result.CategoryScores[domain.StructuralCategory] = clamp(structuralRaw, 0, domain.DefaultCeiling)
	}

	aggregate := e.combine(result.CategoryScores)
	aggregate = clamp(aggregate*(e.profile.Sensitivity.Base+sensitivity*e.profile.Sensitivity.Scale), 0, 1)

	result.AggregateScore = aggregate
	result.Classification = e.profile.ResolveLabel(aggregate)
	result.Confidence = e.confidence(aggregate, result.CategoryScores)
	e.collectMatches(result, matchedLiterals, matchedPatterns)

	e.record(ctx, result, time.Since(start))
	return result, nil
}

// combine collapses clamped category scores into the aggregate.
func (e *Engine) combine(scores map[string]float64) float64 {
	if e.profile.Combine == domain.CombineRatio {
		var positive, negative float64
		for i := range e.profile.Categories {
			cat := &e.profile.Categories[i]
			if cat.Polarity == domain.PolarityNegative {
				negative += scores[cat.Name]
			} else {
				positive += scores[cat.Name]
			}
		}
		if e.hasStructural {
			positive += scores[domain.StructuralCategory]
		}
		total := positive + negative
		if total == 0 {
			// No evidence either way: neutral balance.
			return 0.5
		}
		return positive / total
	}

	var best float64
	for _, s := range scores {
		if s > best {
			best = s
		}
	}
	return best
}

// confidence derives how decisively the result sits in its band: distance
// from the midpoint for two-label detectors, the top category's share of
// the category total otherwise.
func (e *Engine) confidence(aggregate float64, scores map[string]float64) float64 {
	if len(e.profile.Cutoffs) == 2 {
		if aggregate > 1-aggregate {
			return aggregate
		}
		return 1 - aggregate
	}
	var total, top float64
	for _, s := range scores {
		total += s
		if s > top {
			top = s
		}
	}
	if total == 0 {
		return 1
	}
	return top / total
}

// collectMatches fills MatchedTerms in term-definition order so identical
// inputs always produce identical results.
func (e *Engine) collectMatches(result *domain.ScoringResult, literals map[termRef]bool, patterns map[int]bool) {
	for ci := range e.profile.Categories {
		cat := &e.profile.Categories[ci]
		var matched []string
		for ti, term := range cat.Terms {
			if literals[termRef{cat: ci, term: ti}] {
				matched = append(matched, term)
			}
		}
		for pi, cp := range e.patterns {
			if cp.cat == ci && patterns[pi] {
				matched = append(matched, cp.source)
			}
		}
		if len(matched) > 0 {
			result.MatchedTerms[cat.Name] = matched
		}
	}
}

func (e *Engine) record(ctx context.Context, result *domain.ScoringResult, duration time.Duration) {
	if e.tp != nil {
		e.tp.RecordScore(ctx, e.profile.Name, result.Classification, duration)
		if result.EmptyInput {
			e.tp.RecordEmptyInput(ctx)
		}
	}
	e.logger.Debug("text scored",
		logger.String("detector", e.profile.Name),
		logger.Float64("aggregate_score", result.AggregateScore),
		logger.String("classification", result.Classification),
		logger.Float64("confidence", result.Confidence),
		logger.Bool("empty_input", result.EmptyInput),
		logger.Duration("duration", duration),
	)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// cloneProfile deep-copies a profile so engine state cannot alias caller
// slices.
func cloneProfile(p domain.DetectorProfile) domain.DetectorProfile {
	cp := p
	cp.Categories = make([]domain.IndicatorCategory, len(p.Categories))
	for i, cat := range p.Categories {
		cat.Terms = slices.Clone(cat.Terms)
		cat.Patterns = slices.Clone(cat.Patterns)
		cp.Categories[i] = cat
	}
	cp.Signals = slices.Clone(p.Signals)
	cp.Cutoffs = slices.Clone(p.Cutoffs)
	return cp
}

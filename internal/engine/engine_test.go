package engine_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/lexiscan/lexiscan/internal/domain"
	"github.com/lexiscan/lexiscan/internal/engine"
)

func testProfile() domain.DetectorProfile {
	return domain.DetectorProfile{
		Name:    "harassment",
		Combine: domain.CombineMax,
		Categories: []domain.IndicatorCategory{
			{
				Name:       "threats",
				Terms:      []string{"kill you", "hurt you"},
				TermWeight: 0.3,
			},
			{
				Name:       "insults",
				Terms:      []string{"idiot", "loser"},
				Patterns:   []string{`you('re| are) (so |such a )?stupid`},
				TermWeight: 0.1,
				Ceiling:    0.5,
			},
		},
		Cutoffs: []domain.Cutoff{
			{LowerBound: 0.6, Label: "severe"},
			{LowerBound: 0.3, Label: "moderate"},
			{LowerBound: 0, Label: "clean"},
		},
	}
}

func mustEngine(t *testing.T, profile domain.DetectorProfile, opts ...engine.Option) *engine.Engine {
	t.Helper()
	eng, err := engine.New(profile, nil, opts...)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return eng
}

func score(t *testing.T, eng *engine.Engine, text string) *domain.ScoringResult {
	t.Helper()
	result, err := eng.Score(context.Background(), text)
	if err != nil {
		t.Fatalf("Score(%q): %v", text, err)
	}
	return result
}

func TestScore_Classification(t *testing.T) {
	eng := mustEngine(t, testProfile())

	testCases := []struct {
		name      string
		text      string
		wantLabel string
		wantScore float64
	}{
		{
			name:      "clean text",
			text:      "What a lovely day for a walk.",
			wantLabel: "clean",
			wantScore: 0,
		},
		{
			name:      "single threat term sits on the moderate boundary",
			text:      "I will kill you",
			wantLabel: "moderate",
			wantScore: 0.3,
		},
		{
			name:      "repeated threats cross into severe",
			text:      "I will kill you and then kill you again",
			wantLabel: "severe",
			wantScore: 0.6,
		},
		{
			name:      "case and diacritics are folded",
			text:      "I will KÏLL YOU",
			wantLabel: "moderate",
			wantScore: 0.3,
		},
		{
			name:      "insults clamp at the category ceiling",
			text:      "idiot idiot idiot loser loser loser loser",
			wantLabel: "moderate",
			wantScore: 0.5,
		},
		{
			name:      "pattern term matches",
			text:      "you are so stupid",
			wantLabel: "clean",
			wantScore: 0.1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := score(t, eng, tc.text)
			if result.Classification != tc.wantLabel {
				t.Errorf("classification = %q, want %q", result.Classification, tc.wantLabel)
			}
			if !closeTo(result.AggregateScore, tc.wantScore) {
				t.Errorf("aggregate = %v, want %v", result.AggregateScore, tc.wantScore)
			}
		})
	}
}

func TestScore_AggregateAlwaysInRange(t *testing.T) {
	eng := mustEngine(t, testProfile())

	texts := []string{
		"",
		"plain text",
		"kill you kill you kill you kill you kill you kill you kill you",
		"idiot loser idiot loser you are stupid kill you hurt you",
	}
	for _, text := range texts {
		result := score(t, eng, text)
		if result.AggregateScore < 0 || result.AggregateScore > 1 {
			t.Errorf("Score(%q) aggregate = %v, outside [0,1]", text, result.AggregateScore)
		}
		for cat, s := range result.CategoryScores {
			if s < 0 || s > 1 {
				t.Errorf("Score(%q) category %q = %v, outside [0,1]", text, cat, s)
			}
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	eng := mustEngine(t, testProfile())
	text := "you idiot, I will kill you and hurt you"

	first := score(t, eng, text)
	for range 5 {
		again := score(t, eng, text)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("results differ between identical calls:\nfirst: %+v\nagain: %+v", first, again)
		}
	}
}

func TestScore_EmptyInput(t *testing.T) {
	eng := mustEngine(t, testProfile())

	for _, text := range []string{"", "   ", "\n\t"} {
		result := score(t, eng, text)
		if !result.EmptyInput {
			t.Errorf("Score(%q): EmptyInput = false, want true", text)
		}
		if result.AggregateScore != 0 {
			t.Errorf("Score(%q): aggregate = %v, want 0", text, result.AggregateScore)
		}
		if result.Classification != "clean" {
			t.Errorf("Score(%q): classification = %q, want clean", text, result.Classification)
		}
		for cat, s := range result.CategoryScores {
			if s != 0 {
				t.Errorf("Score(%q): category %q = %v, want 0", text, cat, s)
			}
		}
	}
}

func TestScore_MatchedTermsInDefinitionOrder(t *testing.T) {
	eng := mustEngine(t, testProfile())

	// "loser" appears before "idiot" in the text but after it in the
	// category definition; the explanation follows the definition.
	result := score(t, eng, "you loser, you idiot, I will kill you")

	want := map[string][]string{
		"threats": {"kill you"},
		"insults": {"idiot", "loser"},
	}
	if !reflect.DeepEqual(result.MatchedTerms, want) {
		t.Errorf("MatchedTerms = %v, want %v", result.MatchedTerms, want)
	}
}

func TestScoreWithSensitivity(t *testing.T) {
	eng := mustEngine(t, testProfile())
	ctx := context.Background()
	text := "I will kill you"

	testCases := []struct {
		name        string
		sensitivity float64
		wantScore   float64
	}{
		{"zero halves the aggregate", 0, 0.15},
		{"midpoint is identity", 0.5, 0.3},
		{"one multiplies by 1.5", 1, 0.45},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := eng.ScoreWithSensitivity(ctx, text, tc.sensitivity)
			if err != nil {
				t.Fatalf("ScoreWithSensitivity: %v", err)
			}
			if !closeTo(result.AggregateScore, tc.wantScore) {
				t.Errorf("aggregate = %v, want %v", result.AggregateScore, tc.wantScore)
			}
			if result.Sensitivity != tc.sensitivity {
				t.Errorf("result.Sensitivity = %v, want %v", result.Sensitivity, tc.sensitivity)
			}
		})
	}
}

func TestScoreWithSensitivity_Monotonic(t *testing.T) {
	eng := mustEngine(t, testProfile())
	ctx := context.Background()
	text := "you idiot, I will kill you"

	prev := -1.0
	for _, s := range []float64{0, 0.25, 0.5, 0.75, 1} {
		result, err := eng.ScoreWithSensitivity(ctx, text, s)
		if err != nil {
			t.Fatalf("ScoreWithSensitivity(%v): %v", s, err)
		}
		if result.AggregateScore < prev {
			t.Errorf("aggregate decreased at sensitivity %v: %v < %v", s, result.AggregateScore, prev)
		}
		prev = result.AggregateScore
	}
}

func ratioProfile() domain.DetectorProfile {
	return domain.DetectorProfile{
		Name:    "authenticity",
		Combine: domain.CombineRatio,
		Categories: []domain.IndicatorCategory{
			{
				Name:       "genuine",
				Terms:      []string{"purchased", "after a month"},
				TermWeight: 0.2,
				Polarity:   domain.PolarityPositive,
			},
			{
				Name:       "suspect",
				Terms:      []string{"best product ever"},
				TermWeight: 0.2,
				Polarity:   domain.PolarityNegative,
			},
		},
		Cutoffs: []domain.Cutoff{
			{LowerBound: 0.65, Label: "authentic"},
			{LowerBound: 0.4, Label: "uncertain"},
			{LowerBound: 0, Label: "suspect"},
		},
	}
}

func TestScore_RatioCombine(t *testing.T) {
	eng := mustEngine(t, ratioProfile())

	testCases := []struct {
		name      string
		text      string
		wantScore float64
		wantLabel string
	}{
		{
			// genuine 3*0.2=0.6, suspect 1*0.2=0.2, ratio 0.6/0.8
			name:      "positive outweighs negative",
			text:      "purchased it, purchased again, after a month it held up. best product ever though.",
			wantScore: 0.75,
			wantLabel: "authentic",
		},
		{
			name:      "only negative evidence",
			text:      "best product ever",
			wantScore: 0,
			wantLabel: "suspect",
		},
		{
			name:      "no evidence is neutral",
			text:      "it arrived on a tuesday",
			wantScore: 0.5,
			wantLabel: "uncertain",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := score(t, eng, tc.text)
			if !closeTo(result.AggregateScore, tc.wantScore) {
				t.Errorf("aggregate = %v, want %v", result.AggregateScore, tc.wantScore)
			}
			if result.Classification != tc.wantLabel {
				t.Errorf("classification = %q, want %q", result.Classification, tc.wantLabel)
			}
		})
	}
}

func TestScore_StructuralSignals(t *testing.T) {
	profile := testProfile()
	profile.Signals = []domain.StructuralSignal{
		{Name: "exclamation_count", Weight: 0.2},
		{Name: "uppercase_ratio", Weight: 0.3, Category: "threats"},
	}
	eng := mustEngine(t, profile)

	result := score(t, eng, "STOP THAT NOW!!! I MEAN IT!!!")

	if got := result.CategoryScores[domain.StructuralCategory]; !closeTo(got, 0.2) {
		t.Errorf("structural score = %v, want 0.2", got)
	}
	if got := result.CategoryScores["threats"]; !closeTo(got, 0.3) {
		t.Errorf("threats score = %v, want 0.3", got)
	}
	want := []string{"exclamation_count", "uppercase_ratio"}
	if !reflect.DeepEqual(result.SignalsFired, want) {
		t.Errorf("SignalsFired = %v, want %v", result.SignalsFired, want)
	}
}

func TestScore_SignalsReadOriginalText(t *testing.T) {
	profile := testProfile()
	profile.Signals = []domain.StructuralSignal{
		{Name: "uppercase_ratio", Weight: 0.4},
	}
	eng := mustEngine(t, profile)

	// Folding lowercases the text for lexical matching; the signal must
	// still see the original casing.
	result := score(t, eng, "BUY NOW OR ELSE")
	if len(result.SignalsFired) != 1 {
		t.Fatalf("SignalsFired = %v, want uppercase_ratio", result.SignalsFired)
	}
}

func TestScore_CustomPredicate(t *testing.T) {
	profile := testProfile()
	profile.Signals = []domain.StructuralSignal{
		{Name: "has_emoji_spam", Weight: 0.5},
	}
	eng := mustEngine(t, profile, engine.WithPredicate("has_emoji_spam", func(text string, _ float64) bool {
		return len([]rune(text)) != len(text)
	}))

	result := score(t, eng, "free money 🤑🤑🤑")
	if got := result.CategoryScores[domain.StructuralCategory]; !closeTo(got, 0.5) {
		t.Errorf("structural score = %v, want 0.5", got)
	}
}

func TestNew_ConfigurationErrors(t *testing.T) {
	t.Run("invalid pattern", func(t *testing.T) {
		profile := testProfile()
		profile.Categories[1].Patterns = []string{`[unclosed`}

		_, err := engine.New(profile, nil)
		var patternErr *engine.PatternError
		if !errors.As(err, &patternErr) {
			t.Fatalf("err = %v, want *PatternError", err)
		}
		if patternErr.Category != "insults" || patternErr.Pattern != `[unclosed` {
			t.Errorf("PatternError = %+v, want category insults, pattern [unclosed", patternErr)
		}
	})

	t.Run("no categories", func(t *testing.T) {
		profile := testProfile()
		profile.Categories = nil

		_, err := engine.New(profile, nil)
		if !errors.Is(err, domain.ErrNoCategories) {
			t.Fatalf("err = %v, want ErrNoCategories", err)
		}
	})

	t.Run("unknown signal", func(t *testing.T) {
		profile := testProfile()
		profile.Signals = []domain.StructuralSignal{{Name: "no_such_signal", Weight: 0.1}}

		if _, err := engine.New(profile, nil); err == nil {
			t.Fatal("expected error for unknown signal")
		}
	})

	t.Run("signal targets undefined category", func(t *testing.T) {
		profile := testProfile()
		profile.Signals = []domain.StructuralSignal{{Name: "digit_run", Weight: 0.1, Category: "missing"}}

		if _, err := engine.New(profile, nil); err == nil {
			t.Fatal("expected error for undefined target category")
		}
	})
}

func TestScore_Confidence(t *testing.T) {
	t.Run("two-label detector uses distance from midpoint", func(t *testing.T) {
		profile := testProfile()
		profile.Cutoffs = []domain.Cutoff{
			{LowerBound: 0.5, Label: "flagged"},
			{LowerBound: 0, Label: "clean"},
		}
		eng := mustEngine(t, profile)

		result := score(t, eng, "I will kill you") // aggregate 0.3
		if !closeTo(result.Confidence, 0.7) {
			t.Errorf("confidence = %v, want 0.7", result.Confidence)
		}
	})

	t.Run("multi-label detector uses top category share", func(t *testing.T) {
		eng := mustEngine(t, testProfile())

		// threats 0.3, insults 0.1: top share 0.3/0.4
		result := score(t, eng, "you idiot, I will kill you")
		if !closeTo(result.Confidence, 0.75) {
			t.Errorf("confidence = %v, want 0.75", result.Confidence)
		}
	})

	t.Run("no evidence is fully confident", func(t *testing.T) {
		eng := mustEngine(t, testProfile())

		result := score(t, eng, "nothing to see here")
		if !closeTo(result.Confidence, 1) {
			t.Errorf("confidence = %v, want 1", result.Confidence)
		}
	})
}

func TestEngine_ProfileIsolation(t *testing.T) {
	profile := testProfile()
	eng := mustEngine(t, profile)

	// Mutating the caller's slice after compilation must not affect the
	// engine.
	profile.Categories[0].Terms[0] = "changed"

	result := score(t, eng, "I will kill you")
	if result.Classification != "moderate" {
		t.Errorf("classification = %q, want moderate", result.Classification)
	}

	// Mutating a returned copy must not affect the engine either.
	copied := eng.Profile()
	copied.Cutoffs[0].Label = "tampered"
	if got := eng.Profile().Cutoffs[0].Label; got != "severe" {
		t.Errorf("profile cutoff label = %q, want severe", got)
	}
}

func TestScore_DuplicateTermsCountOnce(t *testing.T) {
	// The same term listed twice in one category, in three fold-equal
	// spellings, must neither double-count its weight nor repeat in the
	// matched terms.
	eng := mustEngine(t, domain.DetectorProfile{
		Name:    "dupes",
		Combine: domain.CombineMax,
		Categories: []domain.IndicatorCategory{
			{
				Name:       "insult",
				Terms:      []string{"idiot", "Idiot", "idïot"},
				TermWeight: 0.25,
			},
		},
		Cutoffs: []domain.Cutoff{
			{LowerBound: 0.5, Label: "flagged"},
			{LowerBound: 0, Label: "ok"},
		},
	})

	result := score(t, eng, "you idiot")
	if !closeTo(result.CategoryScores["insult"], 0.25) {
		t.Errorf("insult score = %v, want 0.25 (counted once)", result.CategoryScores["insult"])
	}
	if got := result.MatchedTerms["insult"]; !reflect.DeepEqual(got, []string{"idiot"}) {
		t.Errorf("matched terms = %v, want [idiot]", got)
	}

	// Two genuine occurrences still count twice.
	result = score(t, eng, "idiot, you total idiot")
	if !closeTo(result.CategoryScores["insult"], 0.5) {
		t.Errorf("insult score = %v, want 0.5 for two occurrences", result.CategoryScores["insult"])
	}
}

func closeTo(got, want float64) bool {
	const eps = 1e-9
	diff := got - want
	return diff < eps && diff > -eps
}

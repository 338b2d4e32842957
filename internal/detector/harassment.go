package detector

import "github.com/lexiscan/lexiscan/internal/domain"

// Harassment weights. Dehumanizing language and direct targeting carry the
// most weight; exclusionary phrasing alone stays below the hostile cutoff.
const (
	harassmentDehumanizeWeight = 0.35
	harassmentTargetingWeight  = 0.3
	harassmentExclusionWeight  = 0.2
	harassmentIntimidateWeight = 0.3
)

// Harassment classification labels.
const (
	LabelHarassment = "harassment"
	LabelHostile    = "hostile"
	LabelNeutral    = "neutral"
)

// HarassmentProfile detects targeted hostile speech aimed at a person or a
// group, distinct from general toxicity: the indicators here are about who
// the hostility is directed at, not how crude the language is.
func HarassmentProfile() domain.DetectorProfile {
	return domain.DetectorProfile{
		Name:        "harassment",
		Description: "Targeted harassment detection across dehumanizing, targeting, exclusion and intimidation buckets",
		Combine:     domain.CombineMax,
		Categories: []domain.IndicatorCategory{
			{
				Name: "dehumanizing",
				Terms: []string{
					"subhuman", "vermin", "parasite", "scum", "garbage people",
				},
				TermWeight: harassmentDehumanizeWeight,
			},
			{
				Name: "targeting",
				Terms: []string{
					"you people", "your kind", "people like you",
				},
				Patterns: []string{
					`you('re| are) all (the same|alike)`,
					`go back to (where|your)`,
				},
				TermWeight: harassmentTargetingWeight,
			},
			{
				Name: "exclusion",
				Terms: []string{
					"not welcome", "don't belong", "get out of", "stay away from us",
				},
				TermWeight: harassmentExclusionWeight,
			},
			{
				Name: "intimidation",
				Terms: []string{
					"we know where you", "watch your back", "you'll pay for",
					"everyone will know",
				},
				TermWeight: harassmentIntimidateWeight,
			},
		},
		Signals: []domain.StructuralSignal{
			{Name: "all_caps_words", Weight: 0.1, Category: "intimidation"},
			{Name: "exclamation_count", Weight: 0.1, Category: "intimidation", Threshold: 3},
		},
		Cutoffs: []domain.Cutoff{
			{LowerBound: 0.7, Label: LabelHarassment},
			{LowerBound: 0.35, Label: LabelHostile},
			{LowerBound: 0, Label: LabelNeutral},
		},
	}
}

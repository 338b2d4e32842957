package detector

import "github.com/lexiscan/lexiscan/internal/domain"

// Toxicity weights. Threat phrases dominate: a single one is already most
// of the way to the category ceiling.
const (
	toxicitySevereWeight  = 0.3
	toxicityThreatWeight  = 0.4
	toxicityInsultWeight  = 0.25
	toxicityObsceneWeight = 0.2
)

// Toxicity classification labels.
const (
	LabelToxic     = "toxic"
	LabelOffensive = "offensive"
	LabelClean     = "clean"
)

// ToxicityProfile detects hostile or abusive language in comments.
func ToxicityProfile() domain.DetectorProfile {
	return domain.DetectorProfile{
		Name:        "toxicity",
		Description: "Comment toxicity detection across severity, threat, insult and obscenity buckets",
		Combine:     domain.CombineMax,
		Categories: []domain.IndicatorCategory{
			{
				Name:       "severe",
				Terms:      []string{"kill", "death", "die", "murder", "destroy"},
				TermWeight: toxicitySevereWeight,
			},
			{
				Name: "threat",
				Terms: []string{
					"will kill", "gonna hurt", "watch out", "be sorry", "regret",
				},
				Patterns: []string{
					`i\s+will\s+\w+\s+you`,
				},
				TermWeight: toxicityThreatWeight,
			},
			{
				Name: "insult",
				Terms: []string{
					"idiot", "stupid", "dumb", "moron", "fool", "loser", "pathetic",
				},
				TermWeight: toxicityInsultWeight,
			},
			{
				Name:       "obscene",
				Terms:      []string{"damn", "hell", "crap", "suck"},
				TermWeight: toxicityObsceneWeight,
			},
		},
		Signals: []domain.StructuralSignal{
			{Name: "uppercase_ratio", Weight: 0.15, Category: "insult"},
			{Name: "elongated_word", Weight: 0.1, Category: "insult"},
		},
		Cutoffs: []domain.Cutoff{
			{LowerBound: 0.75, Label: LabelToxic},
			{LowerBound: 0.4, Label: LabelOffensive},
			{LowerBound: 0, Label: LabelClean},
		},
	}
}

package detector

import "github.com/lexiscan/lexiscan/internal/domain"

// Clickbait weights.
const (
	clickbaitSensationalWeight = 0.25
	clickbaitListicleWeight    = 0.3
	clickbaitAddressWeight     = 0.35
)

// Clickbait classification labels.
const (
	LabelClickbait  = "clickbait"
	LabelBorderline = "borderline"
	LabelStandard   = "standard"
)

// ClickbaitProfile detects sensationalist headline patterns.
func ClickbaitProfile() domain.DetectorProfile {
	return domain.DetectorProfile{
		Name:        "clickbait",
		Description: "Headline clickbait detection via sensationalism and curiosity-gap patterns",
		Combine:     domain.CombineMax,
		Categories: []domain.IndicatorCategory{
			{
				Name: "sensational",
				Terms: []string{
					"shocking", "unbelievable", "amazing", "incredible",
					"mind-blowing", "jaw-dropping", "outrageous", "insane",
				},
				TermWeight: clickbaitSensationalWeight,
			},
			{
				Name: "listicle",
				Patterns: []string{
					`\d+\s+(?:ways|reasons|things|facts|secrets|tips|tricks)`,
					`top\s+\d+`,
					`\d+\s+of\s+the`,
				},
				TermWeight: clickbaitListicleWeight,
			},
			{
				Name: "direct_address",
				Terms: []string{
					"you won't believe", "you need", "you have to",
					"you'll never", "this will", "you must see",
					"what happened next",
				},
				TermWeight: clickbaitAddressWeight,
			},
		},
		Signals: []domain.StructuralSignal{
			{Name: "exclamation_count", Weight: 0.15, Threshold: 1},
			{Name: "all_caps_words", Weight: 0.15, Threshold: 1},
		},
		Cutoffs: []domain.Cutoff{
			{LowerBound: 0.65, Label: LabelClickbait},
			{LowerBound: 0.35, Label: LabelBorderline},
			{LowerBound: 0, Label: LabelStandard},
		},
	}
}

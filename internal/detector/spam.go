// Package detector ships the builtin detector profiles and the registry
// that compiles and serves them. Each profile is pure data consumed by the
// scoring engine; adding a detector flavor means adding a profile, not code.
package detector

import "github.com/lexiscan/lexiscan/internal/domain"

// Spam weights. Promotional phrases carry less weight individually than
// pressure phrases because they appear in legitimate marketing too.
const (
	spamPromoWeight    = 0.15
	spamPressureWeight = 0.25
	spamShadyWeight    = 0.3
	spamSignalWeight   = 0.1
)

// Spam classification labels.
const (
	LabelSpam       = "spam"
	LabelSuspicious = "suspicious"
	LabelHam        = "ham"
)

// SpamProfile detects unsolicited promotional messages (email/SMS style).
func SpamProfile() domain.DetectorProfile {
	return domain.DetectorProfile{
		Name:        "spam",
		Description: "Email/SMS spam detection via promotional keyword and pattern analysis",
		Combine:     domain.CombineMax,
		Categories: []domain.IndicatorCategory{
			{
				Name: "promotion",
				Terms: []string{
					"free", "winner", "prize", "cash", "offer", "discount",
					"limited time", "buy now", "call now", "subscribe",
					"guarantee", "risk free", "congratulations",
				},
				TermWeight: spamPromoWeight,
			},
			{
				Name: "pressure",
				Terms: []string{
					"urgent", "act now", "click here", "don't miss",
					"last chance", "expires", "instant",
				},
				TermWeight: spamPressureWeight,
			},
			{
				Name: "shady",
				Terms: []string{
					"viagra", "pharmacy", "loan", "credit", "$$$",
				},
				Patterns: []string{
					`\$\d+`,
				},
				TermWeight: spamShadyWeight,
			},
		},
		Signals: []domain.StructuralSignal{
			{Name: "uppercase_ratio", Weight: 2 * spamSignalWeight},
			{Name: "exclamation_count", Weight: spamSignalWeight},
			{Name: "digit_run", Weight: spamSignalWeight},
			{Name: "currency_amount", Weight: spamSignalWeight},
			{Name: "url_count", Weight: spamSignalWeight},
		},
		Cutoffs: []domain.Cutoff{
			{LowerBound: 0.7, Label: LabelSpam},
			{LowerBound: 0.4, Label: LabelSuspicious},
			{LowerBound: 0, Label: LabelHam},
		},
	}
}

package detector

import "github.com/lexiscan/lexiscan/internal/domain"

// Review authenticity weights. This is a ratio-rule detector: balanced,
// specific language counts FOR authenticity; generic praise and promo
// language count AGAINST it.
const (
	authBalancedWeight = 0.3
	authSpecificWeight = 0.15
	authGenericWeight  = 0.4
	authPromoWeight    = 0.5
)

// Authenticity classification labels.
const (
	LabelAuthentic = "authentic"
	LabelUncertain = "uncertain"
	LabelSuspect   = "suspect"
)

// AuthenticityProfile judges whether a product review reads as genuine.
// Aggregate = authentic_total / (authentic_total + fake_total).
func AuthenticityProfile() domain.DetectorProfile {
	return domain.DetectorProfile{
		Name:        "authenticity",
		Description: "Review authenticity judgment balancing genuine-experience evidence against fake-review markers",
		Combine:     domain.CombineRatio,
		Categories: []domain.IndicatorCategory{
			{
				Name: "balanced_language",
				Terms: []string{
					"however", "but", "although", "wish", "could be better",
					"pros and cons", "disappointed", "satisfied",
				},
				TermWeight: authBalancedWeight,
				Polarity:   domain.PolarityPositive,
			},
			{
				Name: "specificity",
				Terms: []string{
					"after a week", "after a month", "compared to", "returned",
					"customer service", "battery", "size", "fit",
				},
				Patterns: []string{
					`\b\d+\s*(?:days?|weeks?|months?|years?)\b`,
				},
				TermWeight: authSpecificWeight,
				Polarity:   domain.PolarityPositive,
			},
			{
				Name: "generic_praise",
				Terms: []string{
					"best product ever", "highly recommend", "must buy",
					"amazing product", "life changing", "perfect",
					"excellent quality",
				},
				TermWeight: authGenericWeight,
				Polarity:   domain.PolarityNegative,
			},
			{
				Name: "promo_language",
				Terms: []string{
					"click here", "check out", "limited time", "discount",
					"promo", "coupon",
				},
				TermWeight: authPromoWeight,
				Polarity:   domain.PolarityNegative,
			},
		},
		Cutoffs: []domain.Cutoff{
			{LowerBound: 0.7, Label: LabelAuthentic},
			{LowerBound: 0.45, Label: LabelUncertain},
			{LowerBound: 0, Label: LabelSuspect},
		},
	}
}

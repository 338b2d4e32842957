package detector

import "github.com/lexiscan/lexiscan/internal/domain"

// Urgency weights.
const (
	urgencyCriticalWeight   = 0.3
	urgencyTimeWeight       = 0.2
	urgencyActionWeight     = 0.15
	urgencyEscalationWeight = 0.2
)

// Urgency classification labels.
const (
	LabelCritical = "critical"
	LabelHigh     = "high"
	LabelMedium   = "medium"
	LabelLow      = "low"
)

// UrgencyProfile grades how time-critical a message is (inbox triage).
func UrgencyProfile() domain.DetectorProfile {
	return domain.DetectorProfile{
		Name:        "urgency",
		Description: "Message urgency grading for inbox and ticket triage",
		Combine:     domain.CombineMax,
		Categories: []domain.IndicatorCategory{
			{
				Name: "critical",
				Terms: []string{
					"urgent", "asap", "emergency", "critical", "immediate",
					"right now", "priority", "crucial",
				},
				TermWeight: urgencyCriticalWeight,
			},
			{
				Name: "time_sensitive",
				Terms: []string{
					"today", "tonight", "deadline", "due", "expires",
					"tomorrow", "this week", "end of day", "eod",
				},
				TermWeight: urgencyTimeWeight,
			},
			{
				Name: "action_required",
				Terms: []string{
					"must", "required", "respond", "reply", "confirm",
					"approve", "complete", "action needed",
				},
				TermWeight: urgencyActionWeight,
			},
			{
				Name: "escalation",
				Terms: []string{
					"escalate", "alert", "attention", "warning", "notice",
					"remind", "follow up",
				},
				TermWeight: urgencyEscalationWeight,
			},
		},
		Signals: []domain.StructuralSignal{
			{Name: "exclamation_count", Weight: 0.2, Category: "critical", Threshold: 1},
			{Name: "all_caps_words", Weight: 0.15, Category: "critical"},
		},
		Cutoffs: []domain.Cutoff{
			{LowerBound: 0.75, Label: LabelCritical},
			{LowerBound: 0.5, Label: LabelHigh},
			{LowerBound: 0.25, Label: LabelMedium},
			{LowerBound: 0, Label: LabelLow},
		},
	}
}

// Package domain defines the core types shared across the lexiscan service.
package domain

import (
	"errors"
	"fmt"
	"sort"
)

// CombineRule selects how per-category scores collapse into the aggregate.
type CombineRule string

const (
	// CombineMax takes the worst category (harm/risk style detectors).
	CombineMax CombineRule = "max"
	// CombineRatio balances positive against negative evidence
	// (credibility/authenticity style detectors).
	CombineRatio CombineRule = "ratio"
)

// Polarity marks which side of the ratio rule a category feeds.
// Under CombineMax polarity is ignored.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// Default tuning values applied by Normalize.
const (
	DefaultCeiling          = 1.0
	DefaultTermWeight       = 0.1
	DefaultSensitivityBase  = 0.5
	DefaultSensitivityScale = 1.0
	DefaultSensitivity      = 0.5
)

// IndicatorCategory is a named bucket of detection rules.
// Terms are literal substrings; Patterns are regular expressions.
// Both match case-insensitively. Each occurrence contributes TermWeight
// to the category score, which is clamped to Ceiling before combining.
type IndicatorCategory struct {
	Name       string   `db:"name"        json:"name"                 yaml:"name"`
	Terms      []string `db:"terms"       json:"terms,omitempty"      yaml:"terms,omitempty"`
	Patterns   []string `db:"patterns"    json:"patterns,omitempty"   yaml:"patterns,omitempty"`
	TermWeight float64  `db:"term_weight" json:"term_weight"          yaml:"term_weight"`
	Ceiling    float64  `db:"ceiling"     json:"ceiling,omitempty"    yaml:"ceiling,omitempty"`
	Polarity   Polarity `db:"polarity"    json:"polarity,omitempty"   yaml:"polarity,omitempty"`
}

// StructuralSignal binds a named text-shape predicate to a weight and a
// target category. The predicate evaluates against the original text,
// before lexical normalization, so casing and punctuation survive.
type StructuralSignal struct {
	Name      string  `json:"name"                yaml:"name"`
	Weight    float64 `json:"weight"              yaml:"weight"`
	Category  string  `json:"category,omitempty"  yaml:"category,omitempty"`
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// StructuralCategory receives signal weights when a signal names no
// explicit target category.
const StructuralCategory = "structural"

// Cutoff maps a score band to a discrete label. Bands are evaluated from
// the highest lower bound down; the first bound at or below the aggregate
// wins, so an aggregate sitting exactly on a boundary resolves to the
// higher-severity label.
type Cutoff struct {
	LowerBound float64 `json:"lower_bound" yaml:"lower_bound"`
	Label      string  `json:"label"       yaml:"label"`
}

// SensitivityConfig controls how the caller-supplied sensitivity knob
// rescales the aggregate: aggregate' = aggregate * (Base + s*Scale),
// re-clamped to [0,1]. With the defaults a sensitivity of 0.5 is identity.
type SensitivityConfig struct {
	Base    float64 `json:"base,omitempty"    yaml:"base,omitempty"`
	Scale   float64 `json:"scale,omitempty"   yaml:"scale,omitempty"`
	Default float64 `json:"default,omitempty" yaml:"default,omitempty"`
}

// DetectorProfile is the full declarative configuration of one detector
// flavor. Profiles are immutable once compiled into an engine.
type DetectorProfile struct {
	Name        string             `json:"name"                  yaml:"name"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Combine     CombineRule        `json:"combine"               yaml:"combine"`
	Categories  []IndicatorCategory `json:"categories"           yaml:"categories"`
	Signals     []StructuralSignal `json:"signals,omitempty"     yaml:"signals,omitempty"`
	Cutoffs     []Cutoff           `json:"cutoffs"               yaml:"cutoffs"`
	Sensitivity SensitivityConfig  `json:"sensitivity,omitempty" yaml:"sensitivity,omitempty"`
}

// Validation errors surfaced at configuration time, before any text is
// scored. Scoring itself cannot fail once a profile compiles.
var (
	ErrNoName       = errors.New("detector profile has no name")
	ErrNoCategories = errors.New("detector profile has no indicator categories")
	ErrNoCutoffs    = errors.New("detector profile has no classification cutoffs")
)

// Validate checks the profile for configuration errors.
func (p *DetectorProfile) Validate() error {
	if p.Name == "" {
		return ErrNoName
	}
	if len(p.Categories) == 0 {
		return fmt.Errorf("profile %q: %w", p.Name, ErrNoCategories)
	}
	if len(p.Cutoffs) == 0 {
		return fmt.Errorf("profile %q: %w", p.Name, ErrNoCutoffs)
	}
	switch p.Combine {
	case CombineMax, CombineRatio:
	default:
		return fmt.Errorf("profile %q: unknown combine rule %q", p.Name, p.Combine)
	}
	seen := make(map[string]bool, len(p.Categories))
	for i := range p.Categories {
		c := &p.Categories[i]
		if c.Name == "" {
			return fmt.Errorf("profile %q: category %d has no name", p.Name, i)
		}
		if seen[c.Name] {
			return fmt.Errorf("profile %q: duplicate category %q", p.Name, c.Name)
		}
		seen[c.Name] = true
		if len(c.Terms) == 0 && len(c.Patterns) == 0 {
			return fmt.Errorf("profile %q: category %q has no terms or patterns", p.Name, c.Name)
		}
		switch c.Polarity {
		case "", PolarityPositive, PolarityNegative:
		default:
			return fmt.Errorf("profile %q: category %q has unknown polarity %q", p.Name, c.Name, c.Polarity)
		}
	}
	return nil
}

// Normalize fills zero-valued tuning fields with defaults and sorts the
// cutoff table descending. Called once at compile time.
func (p *DetectorProfile) Normalize() {
	for i := range p.Categories {
		c := &p.Categories[i]
		if c.TermWeight == 0 {
			c.TermWeight = DefaultTermWeight
		}
		if c.Ceiling <= 0 {
			c.Ceiling = DefaultCeiling
		}
		if c.Polarity == "" {
			c.Polarity = PolarityPositive
		}
	}
	if p.Sensitivity.Base == 0 && p.Sensitivity.Scale == 0 {
		p.Sensitivity.Base = DefaultSensitivityBase
		p.Sensitivity.Scale = DefaultSensitivityScale
	}
	if p.Sensitivity.Default == 0 {
		p.Sensitivity.Default = DefaultSensitivity
	}
	sort.SliceStable(p.Cutoffs, func(i, j int) bool {
		return p.Cutoffs[i].LowerBound > p.Cutoffs[j].LowerBound
	})
}

// ResolveLabel maps an aggregate score onto the cutoff table.
// Cutoffs must already be sorted descending (Normalize does this).
// A score below every bound falls through to the lowest band.
func (p *DetectorProfile) ResolveLabel(score float64) string {
	for _, c := range p.Cutoffs {
		if score >= c.LowerBound {
			return c.Label
		}
	}
	return p.Cutoffs[len(p.Cutoffs)-1].Label
}

// LowestLabel returns the label of the lowest-severity band.
func (p *DetectorProfile) LowestLabel() string {
	return p.Cutoffs[len(p.Cutoffs)-1].Label
}

package engine

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Predicate is a structural signal check. It evaluates the original,
// unnormalized text and reports whether the signal fired. The threshold
// parameter comes from the profile; 0 means "use this signal's default".
type Predicate func(text string, threshold float64) bool

// Default thresholds for the builtin predicates.
const (
	defaultUppercaseRatio   = 0.5
	defaultExclamationCount = 2
	defaultURLCount         = 1
	defaultAllCapsWords     = 2
	defaultQuoteCount       = 4
)

var (
	digitRunRe  = regexp.MustCompile(`\d{3,}`)
	currencyRe  = regexp.MustCompile(`[$€£]\s?\d+`)
	urlRe      = regexp.MustCompile(`https?://`)
	capsWordRe = regexp.MustCompile(`\b[A-Z]{3,}\b`)
)

// hasElongatedRun reports whether text contains the same ASCII letter
// three or more times in a row. It implements the backreference pattern
// `([a-zA-Z])\1{2,}`, which Go's RE2 regexp engine cannot compile.
func hasElongatedRun(text string) bool {
	run := 1
	var prev byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if isLetter && c == prev {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 1
		}
		prev = c
	}
	return false
}

// builtinSignals is the catalog of structural predicates the demo
// detectors rely on. Profiles reference these by name; unknown names are
// rejected when the engine is built.
var builtinSignals = map[string]Predicate{
	// Ratio of uppercase letters to all letters exceeds the threshold.
	"uppercase_ratio": func(text string, threshold float64) bool {
		if threshold == 0 {
			threshold = defaultUppercaseRatio
		}
		var upper, letters int
		for _, r := range text {
			if unicode.IsLetter(r) {
				letters++
				if unicode.IsUpper(r) {
					upper++
				}
			}
		}
		if letters == 0 {
			return false
		}
		return float64(upper)/float64(letters) > threshold
	},

	// More exclamation marks than the threshold.
	"exclamation_count": func(text string, threshold float64) bool {
		if threshold == 0 {
			threshold = defaultExclamationCount
		}
		return float64(strings.Count(text, "!")) > threshold
	},

	// A run of three or more digits (phone numbers, promo codes).
	"digit_run": func(text string, _ float64) bool {
		return digitRunRe.MatchString(text)
	},

	// A currency symbol followed by an amount.
	"currency_amount": func(text string, _ float64) bool {
		return currencyRe.MatchString(text)
	},

	// More URLs than the threshold.
	"url_count": func(text string, threshold float64) bool {
		if threshold == 0 {
			threshold = defaultURLCount
		}
		return float64(len(urlRe.FindAllStringIndex(text, -1))) > threshold
	},

	// A letter repeated three or more times ("soooo good").
	"elongated_word": func(text string, _ float64) bool {
		return hasElongatedRun(text)
	},

	// More fully capitalized words than the threshold.
	"all_caps_words": func(text string, threshold float64) bool {
		if threshold == 0 {
			threshold = defaultAllCapsWords
		}
		return float64(len(capsWordRe.FindAllString(text, -1))) > threshold
	},

	// More quote marks than the threshold.
	"quote_density": func(text string, threshold float64) bool {
		if threshold == 0 {
			threshold = defaultQuoteCount
		}
		n := strings.Count(text, `"`) + strings.Count(text, "'")
		return float64(n) > threshold
	},
}

// BuiltinSignalNames returns the names of all builtin structural signals.
func BuiltinSignalNames() []string {
	names := make([]string, 0, len(builtinSignals))
	for name := range builtinSignals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

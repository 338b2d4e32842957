package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases text and strips combining diacritical marks so that
// lexical terms also match accented variants ("gratuït", "prémium").
// Punctuation is preserved: term lists and patterns depend on it
// ("$$$", "click here!", `\$\d+`). Structural signals never see folded
// text; they read the original input.
func Fold(text string) string {
	lowered := strings.ToLower(text)

	// The transformer chain carries state, so build it per call rather
	// than sharing one across goroutines.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, lowered)
	if err != nil {
		return lowered
	}
	return folded
}

package engine_test

import (
	"testing"

	"github.com/lexiscan/lexiscan/internal/engine"
)

func TestFold(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "FREE MONEY", "free money"},
		{"strips diacritics", "grátis prémium crédito", "gratis premium credito"},
		{"mixed case with accents", "Señor CAFÉ", "senor cafe"},
		{"preserves punctuation", "win $$$ now!!!", "win $$$ now!!!"},
		{"preserves digits", "call 555-0199", "call 555-0199"},
		{"empty", "", ""},
		{"already folded", "plain text", "plain text"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := engine.Fold(tc.in); got != tc.want {
				t.Errorf("Fold(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFold_Concurrent(t *testing.T) {
	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 100 {
				if got := engine.Fold("Ñandú CRÈME brûlée"); got != "nandu creme brulee" {
					t.Errorf("Fold = %q, want %q", got, "nandu creme brulee")
					return
				}
			}
		}()
	}
	for range 8 {
		<-done
	}
}

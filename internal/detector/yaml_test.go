package detector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiscan/lexiscan/internal/detector"
	"github.com/lexiscan/lexiscan/internal/domain"
	"github.com/lexiscan/lexiscan/internal/engine"
)

const phishingYAML = `
name: phishing
description: Credential phishing detection
combine: max
categories:
  - name: credentials
    terms:
      - verify your account
      - password expired
      - confirm your identity
    term_weight: 0.4
  - name: spoofing
    patterns:
      - 'https?://\d+\.\d+\.\d+\.\d+'
    term_weight: 0.5
signals:
  - name: url_count
    weight: 0.2
cutoffs:
  - lower_bound: 0.6
    label: phishing
  - lower_bound: 0.3
    label: suspicious
  - lower_bound: 0
    label: legitimate
`

func TestParseProfile(t *testing.T) {
	profile, err := detector.ParseProfile([]byte(phishingYAML))
	require.NoError(t, err)

	assert.Equal(t, "phishing", profile.Name)
	assert.Equal(t, domain.CombineMax, profile.Combine)
	require.Len(t, profile.Categories, 2)
	assert.Equal(t, 0.4, profile.Categories[0].TermWeight)
	assert.Equal(t, []string{"verify your account", "password expired", "confirm your identity"},
		profile.Categories[0].Terms)
	require.Len(t, profile.Cutoffs, 3)
	assert.Equal(t, "phishing", profile.Cutoffs[0].Label)
}

func TestParsedProfileScores(t *testing.T) {
	profile, err := detector.ParseProfile([]byte(phishingYAML))
	require.NoError(t, err)

	eng, err := engine.New(profile, nil)
	require.NoError(t, err)

	result, err := eng.Score(context.Background(),
		"Your password expired. Verify your account at http://192.168.10.1/login")
	require.NoError(t, err)

	// credentials 2*0.4=0.8 beats spoofing 0.5 under max
	assert.Equal(t, "phishing", result.Classification)
	assert.InDelta(t, 0.8, result.AggregateScore, 1e-9)
	assert.Equal(t, []string{"verify your account", "password expired"},
		result.MatchedTerms["credentials"])
}

func TestParseProfile_Invalid(t *testing.T) {
	_, err := detector.ParseProfile([]byte("categories: {not: [valid"))
	assert.Error(t, err)
}

func TestMarshalProfileRoundTrip(t *testing.T) {
	original := detector.SpamProfile()

	data, err := detector.MarshalProfile(original)
	require.NoError(t, err)

	parsed, err := detector.ParseProfile(data)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

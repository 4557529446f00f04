package features_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"ytharvest/internal/catalog"
	"ytharvest/internal/features"
)

func TestParseDuration(t *testing.T) {
	tests := map[string]int64{
		"PT1H2M3S":             3723,
		"PT45S":                45,
		"PT2M30S":              150,
		"PT1H":                 3600,
		"PT10M":                600,
		"PT":                   0,
		"":                     0,
		"garbage":              0,
		"P1DT2H":               0,
		"PT1M2H":               0,
		"PT1.5S":               0,
		"xPT5S":                0,
		"PT5Sx":                0,
		"PT99999999999999999H": 0,
	}
	for input, want := range tests {
		assert.Equal(t, want, features.ParseDuration(input), "ParseDuration(%q)", input)
	}
}

func TestParseDurationRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for range 500 {
		h, m, s := rng.Int64N(1000), rng.Int64N(60), rng.Int64N(60)
		formatted := fmt.Sprintf("PT%dH%dM%dS", h, m, s)
		assert.Equal(t, 3600*h+60*m+s, features.ParseDuration(formatted), formatted)
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, features.TitleFeatures{Words: 2, Punctuation: 2, Digits: 0, UppercaseWords: 2}, features.Title("Hello World!!"))
	assert.Equal(t, features.TitleFeatures{Words: 2, Punctuation: 2, Digits: 1, UppercaseWords: 1}, features.Title("Top 5!!"))
	assert.Equal(t, features.TitleFeatures{Words: 4, Punctuation: 3, Digits: 4, UppercaseWords: 2}, features.Title("Why 2024 is\tLOUD?!?"))
	assert.Equal(t, features.TitleFeatures{}, features.Title(""))
	assert.Equal(t, features.TitleFeatures{Words: 1, UppercaseWords: 1}, features.Title("Ça"))
}

func TestDescription(t *testing.T) {
	assert.Equal(t, features.DescriptionFeatures{Words: 2, Hashtags: 2}, features.Description("#fun #day"))
	assert.Equal(t, features.DescriptionFeatures{Words: 3, Hashtags: 3}, features.Description("a ## b#"))
	assert.Equal(t, features.DescriptionFeatures{}, features.Description("   \n\t"))
}

func TestDayOfWeek(t *testing.T) {
	tests := map[string]string{
		"2024-01-01T10:00:00Z":      "Monday",
		"2024-01-06T23:30:00Z":      "Saturday",
		"2024-01-06T23:30:00-05:00": "Saturday",
		"2024-01-07T01:30:00+09:00": "Sunday",
		"2024-01-02T03:04:05.123Z":  "Tuesday",
		"2024-01-03T08:00:00":       "Wednesday",
		"2024-01-04":                "Thursday",
		"":                          "",
		"yesterday":                 "",
		"2024-13-01T00:00:00Z":      "",
	}
	for input, want := range tests {
		assert.Equal(t, want, features.DayOfWeek(input), "DayOfWeek(%q)", input)
	}
}

func TestExtract(t *testing.T) {
	got := features.Extract(catalog.Video{
		Title:       "Top 5!!",
		Description: "#fun #day",
		Duration:    "PT2M30S",
		PublishedAt: "2024-01-01T10:00:00Z",
	})
	assert.Equal(t, catalog.Features{
		TitleWordCount:        2,
		TitlePunctuationCount: 2,
		TitleDigitCount:       1,
		TitleUppercaseWords:   1,
		DescriptionWordCount:  2,
		DescriptionHashtags:   2,
		DurationSeconds:       150,
		DayOfWeek:             "Monday",
	}, got)

	assert.Equal(t, catalog.Features{}, features.Extract(catalog.Video{Duration: "bad", PublishedAt: "bad"}))
}

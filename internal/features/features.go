package features

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"ytharvest/internal/catalog"
)

var durationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// TitleFeatures are the counts derived from a video title.
type TitleFeatures struct {
	Words          int
	Punctuation    int
	Digits         int
	UppercaseWords int
}

// DescriptionFeatures are the counts derived from a video description.
type DescriptionFeatures struct {
	Words    int
	Hashtags int
}

// ParseDuration converts PT[nH][nM][nS] into seconds. Any other input yields 0.
func ParseDuration(value string) int64 {
	match := durationPattern.FindStringSubmatch(value)
	if match == nil {
		return 0
	}
	var total int64
	for i, unit := range []int64{3600, 60, 1} {
		part := match[i+1]
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n > (math.MaxInt64-total)/unit {
			return 0
		}
		total += n * unit
	}
	return total
}

// Title counts words, '!' and '?' marks, digits, and words containing an
// uppercase letter.
func Title(title string) TitleFeatures {
	words := strings.Fields(title)
	out := TitleFeatures{Words: len(words)}
	for _, r := range title {
		switch {
		case r == '!' || r == '?':
			out.Punctuation++
		case unicode.IsDigit(r):
			out.Digits++
		}
	}
	for _, word := range words {
		if strings.IndexFunc(word, unicode.IsUpper) >= 0 {
			out.UppercaseWords++
		}
	}
	return out
}

// Description counts words and '#' characters.
func Description(description string) DescriptionFeatures {
	return DescriptionFeatures{
		Words:    len(strings.Fields(description)),
		Hashtags: strings.Count(description, "#"),
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// DayOfWeek returns the English weekday of an ISO-8601 timestamp in its own
// offset, or "" when it cannot be parsed.
func DayOfWeek(timestamp string) string {
	timestamp = strings.TrimSpace(timestamp)
	if timestamp == "" {
		return ""
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, timestamp); err == nil {
			return ts.Weekday().String()
		}
	}
	return ""
}

// Extract derives the full feature set for v.
func Extract(v catalog.Video) catalog.Features {
	title := Title(v.Title)
	description := Description(v.Description)
	return catalog.Features{
		TitleWordCount:        title.Words,
		TitlePunctuationCount: title.Punctuation,
		TitleDigitCount:       title.Digits,
		TitleUppercaseWords:   title.UppercaseWords,
		DescriptionWordCount:  description.Words,
		DescriptionHashtags:   description.Hashtags,
		DurationSeconds:       ParseDuration(v.Duration),
		DayOfWeek:             DayOfWeek(v.PublishedAt),
	}
}

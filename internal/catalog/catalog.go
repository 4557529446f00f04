// Package catalog defines the records that flow through the harvesting
// pipeline and the table contract that couples its two stages.
package catalog

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

// Channel is a discovered channel. It is never mutated after discovery.
type Channel struct {
	ID              string
	Title           string
	SubscriberCount int64
	VideoCount      int64
	ViewCount       int64
	Country         string
}

// Video is a fully enriched video record. Counts are nil when the API omits them.
type Video struct {
	ID           string
	Title        string
	Description  string
	Duration     string
	CategoryID   string
	PublishedAt  string
	ViewCount    *int64
	LikeCount    *int64
	CommentCount *int64
}

// Features are derived from a Video on demand.
type Features struct {
	TitleWordCount        int
	TitlePunctuationCount int
	TitleDigitCount       int
	TitleUppercaseWords   int
	DescriptionWordCount  int
	DescriptionHashtags   int
	DurationSeconds       int64
	DayOfWeek             string
}

// Row is one output line. Video and Features are nil when no video resolved
// for the channel.
type Row struct {
	Channel  Channel
	Video    *Video
	Features *Features
}

// ChannelTable persists the stage-one channel set for stage two.
// LoadChannels reports services.ErrMissingInput when nothing was saved.
type ChannelTable interface {
	SaveChannels(ctx context.Context, channels []Channel) error
	LoadChannels(ctx context.Context) ([]Channel, error)
}

// RowWriter receives the merged output table.
type RowWriter interface {
	WriteRows(ctx context.Context, rows []Row) error
}

// NormalizeCountry canonicalises an ISO 3166 region code. Unknown values are
// upper-cased and returned as-is.
func NormalizeCountry(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	return region.String()
}

package catalog

import "strconv"

// Channel table columns.
const (
	ColChannelID         = "channelId"
	ColTitle             = "title"
	ColSubscriberCount   = "subscriberCount"
	ColChannelVideoCount = "channel_video_count"
	ColChannelViewCount  = "channel_view_count"
	ColUploaderCountry   = "uploader_country"
	ColChannelTitle      = "channel_title"
)

// ChannelColumns is the header of the intermediate channel table.
var ChannelColumns = []string{
	ColChannelID,
	ColTitle,
	ColSubscriberCount,
	ColChannelVideoCount,
	ColChannelViewCount,
	ColUploaderCountry,
}

// VideoColumns are the video and feature columns of the output table.
var VideoColumns = []string{
	"videoId",
	"video_title",
	"video_description",
	"title_word_count",
	"title_exclamation_question_count",
	"how_many_numbers_in_title",
	"words_with_uppercase_in_title",
	"description_word_count",
	"number_of_hashtags_in_description",
	"video_duration",
	"category",
	"day_of_week_uploaded",
	"view_count",
	"like_count",
	"comment_count",
}

// OutputColumns is the full output header. The channel title is renamed to
// channel_title so it never collides with video_title.
var OutputColumns = append(append([]string{}, VideoColumns...),
	ColChannelID,
	ColChannelTitle,
	ColSubscriberCount,
	ColChannelVideoCount,
	ColChannelViewCount,
	ColUploaderCountry,
)

// ChannelRecord renders c in ChannelColumns order.
func ChannelRecord(c Channel) []string {
	return []string{
		c.ID,
		c.Title,
		formatInt(c.SubscriberCount),
		formatInt(c.VideoCount),
		formatInt(c.ViewCount),
		c.Country,
	}
}

// Record renders r in OutputColumns order. Video columns are empty when no
// video resolved.
func (r Row) Record() []string {
	out := make([]string, 0, len(OutputColumns))
	if r.Video != nil && r.Features != nil {
		v, f := r.Video, r.Features
		out = append(out,
			v.ID,
			v.Title,
			v.Description,
			strconv.Itoa(f.TitleWordCount),
			strconv.Itoa(f.TitlePunctuationCount),
			strconv.Itoa(f.TitleDigitCount),
			strconv.Itoa(f.TitleUppercaseWords),
			strconv.Itoa(f.DescriptionWordCount),
			strconv.Itoa(f.DescriptionHashtags),
			formatInt(f.DurationSeconds),
			v.CategoryID,
			f.DayOfWeek,
			formatOptional(v.ViewCount),
			formatOptional(v.LikeCount),
			formatOptional(v.CommentCount),
		)
	} else {
		out = append(out, make([]string, len(VideoColumns))...)
	}
	c := r.Channel
	return append(out,
		c.ID,
		c.Title,
		formatInt(c.SubscriberCount),
		formatInt(c.VideoCount),
		formatInt(c.ViewCount),
		c.Country,
	)
}

// Resolved reports whether a video was attached to the row.
func (r Row) Resolved() bool {
	return r.Video != nil
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatOptional(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

package youtube

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"ytharvest/internal/catalog"
)

// Count is a statistics value. The API sends counts as JSON strings; numbers
// and null are tolerated too. Present is false when the field was absent or null.
type Count struct {
	Raw     string
	Present bool
}

// UnmarshalJSON accepts "123", 123, and null.
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Count{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Count{Raw: s, Present: true}
		return nil
	}
	*c = Count{Raw: string(data), Present: true}
	return nil
}

// Int64 parses the count. ok is false when absent or not an integer.
func (c Count) Int64() (int64, bool) {
	if !c.Present {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(c.Raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Ptr returns the parsed count or nil.
func (c Count) Ptr() *int64 {
	n, ok := c.Int64()
	if !ok {
		return nil
	}
	return &n
}

// ChannelStatistics is the statistics part of a channel resource.
type ChannelStatistics struct {
	SubscriberCount       Count `json:"subscriberCount"`
	HiddenSubscriberCount bool  `json:"hiddenSubscriberCount"`
	VideoCount            Count `json:"videoCount"`
	ViewCount             Count `json:"viewCount"`
}

// ChannelSnippet is the snippet part of a channel resource.
type ChannelSnippet struct {
	Title   string `json:"title"`
	Country string `json:"country"`
}

// ChannelContentDetails carries the uploads playlist reference.
type ChannelContentDetails struct {
	RelatedPlaylists struct {
		Uploads string `json:"uploads"`
	} `json:"relatedPlaylists"`
}

// Channel is a channel resource as returned by channels.list.
type Channel struct {
	ID             string                `json:"id"`
	Snippet        ChannelSnippet        `json:"snippet"`
	Statistics     ChannelStatistics     `json:"statistics"`
	ContentDetails ChannelContentDetails `json:"contentDetails"`
}

// UploadsPlaylistID returns the channel's uploads playlist, or "".
func (c Channel) UploadsPlaylistID() string {
	return strings.TrimSpace(c.ContentDetails.RelatedPlaylists.Uploads)
}

// Record converts c into a catalog channel with the admitted subscriber count.
// Unparsable lifetime counts become 0.
func (c Channel) Record(subscribers int64) catalog.Channel {
	videos, _ := c.Statistics.VideoCount.Int64()
	views, _ := c.Statistics.ViewCount.Int64()
	return catalog.Channel{
		ID:              c.ID,
		Title:           c.Snippet.Title,
		SubscriberCount: subscribers,
		VideoCount:      videos,
		ViewCount:       views,
		Country:         catalog.NormalizeCountry(c.Snippet.Country),
	}
}

// Video is a video resource as returned by videos.list.
type Video struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		CategoryID  string `json:"categoryId"`
		PublishedAt string `json:"publishedAt"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount    Count `json:"viewCount"`
		LikeCount    Count `json:"likeCount"`
		CommentCount Count `json:"commentCount"`
	} `json:"statistics"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

// Record converts v into a catalog video.
func (v Video) Record() catalog.Video {
	return catalog.Video{
		ID:           v.ID,
		Title:        v.Snippet.Title,
		Description:  v.Snippet.Description,
		Duration:     v.ContentDetails.Duration,
		CategoryID:   v.Snippet.CategoryID,
		PublishedAt:  v.Snippet.PublishedAt,
		ViewCount:    v.Statistics.ViewCount.Ptr(),
		LikeCount:    v.Statistics.LikeCount.Ptr(),
		CommentCount: v.Statistics.CommentCount.Ptr(),
	}
}

// Page is one page of playlist video ids.
type Page struct {
	Items []string
	Next  string
}

type searchResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID struct {
			Kind      string `json:"kind"`
			ChannelID string `json:"channelId"`
		} `json:"id"`
		Snippet struct {
			ChannelID string `json:"channelId"`
		} `json:"snippet"`
	} `json:"items"`
}

type channelsResponse struct {
	Items []Channel `json:"items"`
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			ResourceID struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []Video `json:"items"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
			Domain string `json:"domain"`
		} `json:"errors"`
	} `json:"error"`
}

package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakeChannel describes a channel served by FakeYouTube.
type FakeChannel struct {
	Title       string
	Subscribers string
	Hidden      bool
	Videos      string
	Views       string
	Country     string
	Uploads     string
}

// FakeVideo describes a video served by FakeYouTube.
type FakeVideo struct {
	Title       string
	Description string
	Duration    string
	CategoryID  string
	PublishedAt string
	Views       string
	Likes       string
	Comments    string
}

// FakeYouTube is an httptest server speaking the subset of the YouTube Data
// API v3 the harvester uses. Search calls return Searches in order, then
// empty results.
type FakeYouTube struct {
	Searches  [][]string
	Channels  map[string]FakeChannel
	Playlists map[string][]string
	Videos    map[string]FakeVideo
	// Unavailable makes the named endpoint answer 503 this many times before
	// serving normally.
	Unavailable map[string]int

	server *httptest.Server
	mu     sync.Mutex
	calls  map[string]int
	keys   map[string]struct{}
}

// NewFakeYouTube starts a fake API server and registers cleanup.
func NewFakeYouTube(t testing.TB) *FakeYouTube {
	t.Helper()

	f := &FakeYouTube{
		Channels:    map[string]FakeChannel{},
		Playlists:   map[string][]string{},
		Videos:      map[string]FakeVideo{},
		Unavailable: map[string]int{},
		calls:       map[string]int{},
		keys:        map[string]struct{}{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the base URL to configure as youtube.base_url.
func (f *FakeYouTube) URL() string {
	return f.server.URL
}

// Calls returns how many requests hit endpoint.
func (f *FakeYouTube) Calls(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

// SawKey reports whether any request carried key.
func (f *FakeYouTube) SawKey(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.keys[key]
	return ok
}

func (f *FakeYouTube) serve(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.Trim(r.URL.Path, "/")
	query := r.URL.Query()

	f.mu.Lock()
	call := f.calls[endpoint]
	f.calls[endpoint]++
	f.keys[query.Get("key")] = struct{}{}
	unavailable := f.Unavailable[endpoint] > 0
	if unavailable {
		f.Unavailable[endpoint]--
	}
	f.mu.Unlock()

	if unavailable {
		writeError(w, http.StatusServiceUnavailable, "backendError", "temporarily unavailable")
		return
	}

	switch endpoint {
	case "search":
		f.serveSearch(w, call)
	case "channels":
		f.serveChannels(w, splitIDs(query.Get("id")))
	case "playlistItems":
		f.servePlaylist(w, query.Get("playlistId"))
	case "videos":
		f.serveVideos(w, splitIDs(query.Get("id")))
	default:
		writeError(w, http.StatusNotFound, "notFound", "unknown endpoint")
	}
}

func (f *FakeYouTube) serveSearch(w http.ResponseWriter, call int) {
	var ids []string
	if call < len(f.Searches) {
		ids = f.Searches[call]
	}
	items := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		items = append(items, map[string]any{
			"id":      map[string]any{"kind": "youtube#channel", "channelId": id},
			"snippet": map[string]any{"channelId": id},
		})
	}
	writeJSON(w, map[string]any{"items": items})
}

func (f *FakeYouTube) serveChannels(w http.ResponseWriter, ids []string) {
	items := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		ch, ok := f.Channels[id]
		if !ok {
			continue
		}
		stats := map[string]any{"hiddenSubscriberCount": ch.Hidden}
		setCount(stats, "subscriberCount", ch.Subscribers)
		setCount(stats, "videoCount", ch.Videos)
		setCount(stats, "viewCount", ch.Views)
		items = append(items, map[string]any{
			"id":         id,
			"snippet":    map[string]any{"title": ch.Title, "country": ch.Country},
			"statistics": stats,
			"contentDetails": map[string]any{
				"relatedPlaylists": map[string]any{"uploads": ch.Uploads},
			},
		})
	}
	writeJSON(w, map[string]any{"items": items})
}

func (f *FakeYouTube) servePlaylist(w http.ResponseWriter, playlistID string) {
	videos, ok := f.Playlists[playlistID]
	if !ok {
		writeError(w, http.StatusNotFound, "playlistNotFound", "playlist not found")
		return
	}
	items := make([]map[string]any, 0, len(videos))
	for _, id := range videos {
		items = append(items, map[string]any{
			"snippet": map[string]any{"resourceId": map[string]any{"kind": "youtube#video", "videoId": id}},
		})
	}
	writeJSON(w, map[string]any{"items": items})
}

func (f *FakeYouTube) serveVideos(w http.ResponseWriter, ids []string) {
	items := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		v, ok := f.Videos[id]
		if !ok {
			continue
		}
		stats := map[string]any{}
		setCount(stats, "viewCount", v.Views)
		setCount(stats, "likeCount", v.Likes)
		setCount(stats, "commentCount", v.Comments)
		items = append(items, map[string]any{
			"id": id,
			"snippet": map[string]any{
				"title":       v.Title,
				"description": v.Description,
				"categoryId":  v.CategoryID,
				"publishedAt": v.PublishedAt,
			},
			"statistics":     stats,
			"contentDetails": map[string]any{"duration": v.Duration},
		})
	}
	writeJSON(w, map[string]any{"items": items})
}

func setCount(stats map[string]any, key, value string) {
	if value != "" {
		stats[key] = value
	}
}

func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, reason, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": message,
			"errors":  []map[string]any{{"reason": reason, "domain": "youtube"}},
		},
	})
}

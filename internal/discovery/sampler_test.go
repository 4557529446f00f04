package discovery_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytharvest/internal/backoff"
	"ytharvest/internal/discovery"
	"ytharvest/internal/services"
	"ytharvest/internal/youtube"
)

type fakeAPI struct {
	searches  [][]string
	searchErr map[int]error
	channels  map[string]youtube.Channel
	batchErr  error

	queries     []string
	searchCalls int
	batches     [][]string
}

func (f *fakeAPI) SearchChannelIDs(_ context.Context, query string, maxResults int) ([]string, error) {
	f.queries = append(f.queries, query)
	call := f.searchCalls
	f.searchCalls++
	if err := f.searchErr[call]; err != nil {
		return nil, err
	}
	if call >= len(f.searches) {
		return nil, nil
	}
	return f.searches[call], nil
}

func (f *fakeAPI) ChannelsByID(_ context.Context, parts []string, ids []string) ([]youtube.Channel, error) {
	f.batches = append(f.batches, append([]string(nil), ids...))
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([]youtube.Channel, 0, len(ids))
	for _, id := range ids {
		if ch, ok := f.channels[id]; ok {
			out = append(out, ch)
		}
	}
	return out, nil
}

func channel(id string, subs string, hidden bool) youtube.Channel {
	ch := youtube.Channel{ID: id}
	ch.Snippet.Title = "title " + id
	ch.Statistics.HiddenSubscriberCount = hidden
	if subs != "" {
		ch.Statistics.SubscriberCount = youtube.Count{Raw: subs, Present: true}
	}
	ch.Statistics.VideoCount = youtube.Count{Raw: "7", Present: true}
	return ch
}

func options(target, attempts int) discovery.Options {
	return discovery.Options{
		Target:      target,
		MaxAttempts: attempts,
		QueryLength: 3,
		BatchSize:   50,
		Band:        discovery.Band{Low: 1000, High: 9999},
		Policy: backoff.Policy{
			MaxAttempts: 1,
			Sleep:       func(context.Context, time.Duration) error { return nil },
		},
	}
}

func seeded() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func TestClassify(t *testing.T) {
	band := discovery.Band{Low: 1000, High: 9999}
	tests := []struct {
		name   string
		stats  youtube.ChannelStatistics
		want   int64
		reason string
	}{
		{"in band", youtube.ChannelStatistics{SubscriberCount: youtube.Count{Raw: "1000", Present: true}}, 1000, ""},
		{"upper bound", youtube.ChannelStatistics{SubscriberCount: youtube.Count{Raw: "9999", Present: true}}, 9999, ""},
		{"below", youtube.ChannelStatistics{SubscriberCount: youtube.Count{Raw: "999", Present: true}}, 999, discovery.RejectOutOfBand},
		{"above", youtube.ChannelStatistics{SubscriberCount: youtube.Count{Raw: "10000", Present: true}}, 10000, discovery.RejectOutOfBand},
		{"hidden in band", youtube.ChannelStatistics{HiddenSubscriberCount: true, SubscriberCount: youtube.Count{Raw: "5000", Present: true}}, 0, discovery.RejectHidden},
		{"missing", youtube.ChannelStatistics{}, 0, discovery.RejectMissing},
		{"blank", youtube.ChannelStatistics{SubscriberCount: youtube.Count{Raw: " ", Present: true}}, 0, discovery.RejectMissing},
		{"unparsable", youtube.ChannelStatistics{SubscriberCount: youtube.Count{Raw: "5k", Present: true}}, 0, discovery.RejectUnparsable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, reason := discovery.Classify(tc.stats, band)
			assert.Equal(t, tc.want, n)
			assert.Equal(t, tc.reason, reason)
			_, ok := discovery.Admit(tc.stats, band)
			assert.Equal(t, tc.reason == "", ok)
		})
	}
}

func TestAdmissionProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	band := discovery.Band{Low: 1000, High: 9999}
	for range 1000 {
		c := rng.Int64N(20000) - 1000
		hidden := rng.IntN(4) == 0
		stats := youtube.ChannelStatistics{
			HiddenSubscriberCount: hidden,
			SubscriberCount:       youtube.Count{Raw: strconv.FormatInt(c, 10), Present: true},
		}
		_, ok := discovery.Admit(stats, band)
		assert.Equal(t, !hidden && c >= 1000 && c <= 9999, ok, "count=%d hidden=%v", c, hidden)
	}
}

func TestQueryUsesAlphabet(t *testing.T) {
	rng := seeded()
	for range 200 {
		q := discovery.Query(rng, 3)
		require.Len(t, q, 3)
		for _, r := range q {
			assert.True(t, strings.ContainsRune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_", r), "unexpected rune %q", r)
		}
	}
	assert.Equal(t, discovery.Query(seeded(), 8), discovery.Query(seeded(), 8), "seeded queries must be reproducible")
}

func TestRunStopsAtTarget(t *testing.T) {
	api := &fakeAPI{
		searches: [][]string{{"A", "B", "C", "D"}},
		channels: map[string]youtube.Channel{
			"A": channel("A", "1500", false),
			"B": channel("B", "2500", false),
			"C": channel("C", "3500", false),
			"D": channel("D", "4500", false),
		},
	}
	result, err := discovery.NewSampler(api, options(2, 5), seeded(), nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Channels, 2)
	assert.Equal(t, "A", result.Channels[0].ID)
	assert.Equal(t, "B", result.Channels[1].ID)
	assert.Equal(t, int64(1500), result.Channels[0].SubscriberCount)
	assert.Equal(t, int64(7), result.Channels[0].VideoCount)
	assert.Equal(t, 1, result.Attempts)
}

func TestRunDeduplicatesAcrossSearches(t *testing.T) {
	api := &fakeAPI{
		searches: [][]string{{"A", "A", "B"}, {"B", "C"}, {"A", "C"}},
		channels: map[string]youtube.Channel{
			"A": channel("A", "1500", false),
			"B": channel("B", "20", false),
			"C": channel("C", "2000", false),
		},
	}
	result, err := discovery.NewSampler(api, options(10, 3), seeded(), nil).Run(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(result.Channels))
	for _, ch := range result.Channels {
		ids = append(ids, ch.ID)
	}
	assert.Equal(t, []string{"A", "C"}, ids)
	assert.Equal(t, [][]string{{"A", "B"}, {"B", "C"}}, api.batches)
	assert.Equal(t, 2, result.Rejected[discovery.RejectOutOfBand])
}

func TestRunReturnsPartialResultWhenBudgetExhausted(t *testing.T) {
	api := &fakeAPI{
		searches: [][]string{{"A", "H"}, {"X"}},
		channels: map[string]youtube.Channel{
			"A": channel("A", "1200", false),
			"H": channel("H", "1200", true),
			"X": channel("X", "", false),
		},
	}
	result, err := discovery.NewSampler(api, options(5, 2), seeded(), nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Channels, 1)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, 1, result.Rejected[discovery.RejectHidden])
	assert.Equal(t, 1, result.Rejected[discovery.RejectMissing])
}

func TestRunSkipsFailedSearches(t *testing.T) {
	api := &fakeAPI{
		searches:  [][]string{nil, {"A"}},
		searchErr: map[int]error{0: fmt.Errorf("search: %w", services.ErrTransient)},
		channels:  map[string]youtube.Channel{"A": channel("A", "5000", false)},
	}
	result, err := discovery.NewSampler(api, options(1, 3), seeded(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.FailedSearches)
	assert.Equal(t, 2, result.Attempts)
	require.Len(t, result.Channels, 1)
}

func TestRunSkipsFailedBatches(t *testing.T) {
	api := &fakeAPI{
		searches: [][]string{{"A"}},
		batchErr: services.ErrValidation,
	}
	result, err := discovery.NewSampler(api, options(1, 1), seeded(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Channels)
	assert.Equal(t, 1, result.FailedBatches)
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	api := &fakeAPI{searches: [][]string{{"A"}}}
	_, err := discovery.NewSampler(api, options(1, 3), seeded(), nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunBatchesByBatchSize(t *testing.T) {
	ids := make([]string, 0, 120)
	channels := map[string]youtube.Channel{}
	for i := range 120 {
		id := fmt.Sprintf("UC%03d", i)
		ids = append(ids, id)
		channels[id] = channel(id, "1", false)
	}
	api := &fakeAPI{searches: [][]string{ids}, channels: channels}
	_, err := discovery.NewSampler(api, options(5, 1), seeded(), nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, api.batches, 3)
	assert.Len(t, api.batches[0], 50)
	assert.Len(t, api.batches[1], 50)
	assert.Len(t, api.batches[2], 20)
}

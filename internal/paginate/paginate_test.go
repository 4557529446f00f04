package paginate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytharvest/internal/backoff"
	"ytharvest/internal/paginate"
	"ytharvest/internal/services"
)

func noWait(context.Context, time.Duration) error { return nil }

func pagesFetcher(pages map[string]paginate.Page[int], calls *[]string) paginate.FetchFunc[int] {
	return func(_ context.Context, cursor string) (paginate.Page[int], error) {
		*calls = append(*calls, cursor)
		return pages[cursor], nil
	}
}

func TestDrainFollowsCursors(t *testing.T) {
	var calls []string
	fetch := pagesFetcher(map[string]paginate.Page[int]{
		"":   {Items: []int{1, 2}, Next: "p2"},
		"p2": {Items: []int{3}, Next: "p3"},
		"p3": {Items: []int{4, 5}},
	}, &calls)

	items, err := paginate.Drain(context.Background(), fetch, paginate.Options{Policy: backoff.Policy{MaxAttempts: 1}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, items)
	assert.Equal(t, []string{"", "p2", "p3"}, calls)
}

func TestDrainEmptyFirstPage(t *testing.T) {
	var calls []string
	fetch := pagesFetcher(map[string]paginate.Page[int]{"": {}}, &calls)

	items, err := paginate.Drain(context.Background(), fetch, paginate.Options{})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Len(t, calls, 1)
}

func TestDrainRepeatedCursorIsProtocolViolation(t *testing.T) {
	var calls []string
	fetch := pagesFetcher(map[string]paginate.Page[int]{
		"":  {Items: []int{1}, Next: "a"},
		"a": {Items: []int{2}, Next: "b"},
		"b": {Items: []int{3}, Next: "a"},
	}, &calls)

	items, err := paginate.Drain(context.Background(), fetch, paginate.Options{})
	require.ErrorIs(t, err, services.ErrProtocolViolation)
	assert.Equal(t, []int{1, 2, 3}, items)
	assert.Len(t, calls, 3)
}

func TestDrainSameCursorLoop(t *testing.T) {
	var calls []string
	fetch := pagesFetcher(map[string]paginate.Page[int]{
		"":     {Items: []int{1}, Next: "loop"},
		"loop": {Items: []int{2}, Next: "loop"},
	}, &calls)

	_, err := paginate.Drain(context.Background(), fetch, paginate.Options{})
	require.ErrorIs(t, err, services.ErrProtocolViolation)
	assert.Len(t, calls, 2)
}

func TestDrainHonoursMaxPages(t *testing.T) {
	var calls []string
	fetch := pagesFetcher(map[string]paginate.Page[int]{
		"":   {Items: []int{1, 2}, Next: "p2"},
		"p2": {Items: []int{3}},
	}, &calls)

	items, err := paginate.First(context.Background(), fetch, backoff.Policy{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, items)
	assert.Equal(t, []string{""}, calls)
}

func TestDrainRetriesTransientPages(t *testing.T) {
	failures := 1
	fetch := func(_ context.Context, cursor string) (paginate.Page[string], error) {
		if cursor == "next" && failures > 0 {
			failures--
			return paginate.Page[string]{}, services.ErrTransient
		}
		if cursor == "" {
			return paginate.Page[string]{Items: []string{"a"}, Next: "next"}, nil
		}
		return paginate.Page[string]{Items: []string{"b"}}, nil
	}

	items, err := paginate.Drain(context.Background(), fetch, paginate.Options{
		Policy: backoff.Policy{MaxAttempts: 2, BaseDelay: time.Second, Sleep: noWait},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, items)
}

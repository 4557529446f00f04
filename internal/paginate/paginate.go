// Package paginate drains cursor-based listing endpoints.
package paginate

import (
	"context"
	"fmt"

	"ytharvest/internal/backoff"
	"ytharvest/internal/services"
)

// Page is one response from a cursor-based listing. An empty Next ends the listing.
type Page[T any] struct {
	Items []T
	Next  string
}

// FetchFunc retrieves the page for cursor. The first call receives "".
type FetchFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// Options bounds a drain.
type Options struct {
	// MaxPages stops after this many pages. Zero drains everything.
	MaxPages int
	Policy   backoff.Policy
}

// Drain fetches pages until the remote stops returning a cursor, accumulating
// all items in order. A cursor that was already followed aborts with
// services.ErrProtocolViolation.
func Drain[T any](ctx context.Context, fetch FetchFunc[T], opts Options) ([]T, error) {
	items := make([]T, 0)
	seen := make(map[string]struct{})
	cursor := ""
	for pages := 0; opts.MaxPages <= 0 || pages < opts.MaxPages; pages++ {
		page, err := backoff.Do(ctx, opts.Policy, func(ctx context.Context) (Page[T], error) {
			return fetch(ctx, cursor)
		})
		if err != nil {
			return items, err
		}
		items = append(items, page.Items...)
		if page.Next == "" {
			break
		}
		if _, dup := seen[page.Next]; dup || page.Next == cursor {
			return items, services.Wrap(services.ErrProtocolViolation, "paginate", "drain",
				fmt.Sprintf("cursor %q repeated after %d pages", page.Next, pages+1), nil)
		}
		seen[page.Next] = struct{}{}
		cursor = page.Next
	}
	return items, nil
}

// First fetches exactly one page.
func First[T any](ctx context.Context, fetch FetchFunc[T], policy backoff.Policy) ([]T, error) {
	return Drain(ctx, fetch, Options{MaxPages: 1, Policy: policy})
}

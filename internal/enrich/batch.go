package enrich

import (
	"context"
	"log/slog"
	"time"

	"ytharvest/internal/backoff"
	"ytharvest/internal/logging"
	"ytharvest/internal/services"
	"ytharvest/internal/youtube"
)

// BatchOptions configures Batch.
type BatchOptions struct {
	// Size is the number of ids per remote call, capped at youtube.MaxResults.
	Size int
	// Pause is waited between consecutive batches.
	Pause     time.Duration
	Policy    backoff.Policy
	Operation string
	Logger    *slog.Logger
}

// Report describes how complete a batch lookup was.
type Report struct {
	Requested     int
	Returned      int
	FailedBatches int
	// Missing lists requested ids absent from the result, in request order.
	Missing []string
	// Failed lists the ids whose batch failed. It is a subset of Missing.
	Failed []string
}

// Batch looks ids up in fixed-size batches and merges the responses by key.
// Ids are deduplicated first, preserving order. Only ids the remote actually
// returned appear in the map; a failed batch is logged and skipped. The
// returned error is non-nil only when ctx is done.
func Batch[T any](
	ctx context.Context,
	ids []string,
	opts BatchOptions,
	fetch func(ctx context.Context, ids []string) ([]T, error),
	key func(T) string,
) (map[string]T, Report, error) {
	unique := Dedup(ids)
	size := opts.Size
	if size <= 0 || size > youtube.MaxResults {
		size = youtube.MaxResults
	}
	sleep := opts.Policy.Sleep
	if sleep == nil {
		sleep = backoff.ContextSleep
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(ctx, logger)

	out := make(map[string]T, len(unique))
	report := Report{Requested: len(unique)}
	requested := make(map[string]struct{}, len(unique))
	for _, id := range unique {
		requested[id] = struct{}{}
	}
	failed := make(map[string]struct{})

	for start := 0; start < len(unique); start += size {
		if start > 0 && opts.Pause > 0 {
			if err := sleep(ctx, opts.Pause); err != nil {
				return out, finish(report, unique, out, failed), err
			}
		}
		batch := unique[start:min(start+size, len(unique))]
		items, err := backoff.Do(ctx, opts.Policy, func(ctx context.Context) ([]T, error) {
			return fetch(ctx, batch)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, finish(report, unique, out, failed), ctxErr
			}
			report.FailedBatches++
			for _, id := range batch {
				failed[id] = struct{}{}
			}
			logging.WarnWithContext(logger, "batch lookup failed; skipping batch", "batch_failed",
				logging.String("operation", opts.Operation),
				logging.Int("batch_size", len(batch)),
				logging.String(logging.FieldErrorKind, services.Kind(err)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check API quota and network connectivity"),
				logging.String(logging.FieldImpact, "ids in this batch are left unresolved"),
			)
			continue
		}
		for _, item := range items {
			id := key(item)
			if _, ok := requested[id]; !ok {
				continue
			}
			out[id] = item
		}
	}
	return out, finish(report, unique, out, failed), nil
}

func finish[T any](report Report, unique []string, out map[string]T, failed map[string]struct{}) Report {
	report.Returned = len(out)
	report.Missing = report.Missing[:0]
	report.Failed = report.Failed[:0]
	for _, id := range unique {
		if _, ok := out[id]; ok {
			continue
		}
		report.Missing = append(report.Missing, id)
		if _, ok := failed[id]; ok {
			report.Failed = append(report.Failed, id)
		}
	}
	return report
}

// Dedup drops blank and repeated ids, keeping first occurrences in order.
func Dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

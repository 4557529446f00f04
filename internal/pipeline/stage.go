package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"ytharvest/internal/logging"
	"ytharvest/internal/notifications"
	"ytharvest/internal/services"
	"ytharvest/internal/store"
)

// stageFunc does the work of one stage and reports its counts.
type stageFunc func(ctx context.Context) (store.Outcome, error)

// runStage wraps fn with a run id, file locks, the ledger, metrics, and
// failure notifications. It returns the run id.
func (p *Pipeline) runStage(ctx context.Context, stage string, locks []lockSpec, fn stageFunc) (string, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithStage(ctx, stage)
	logger := logging.WithContext(ctx, p.logger)
	start := time.Now()

	release, err := acquire(locks...)
	if err != nil {
		p.finishStage(ctx, runID, stage, start, store.Outcome{}, err, false)
		return runID, err
	}
	defer release()

	ledgerOK := true
	if p.ledger != nil {
		if err := p.ledger.BeginRun(ctx, runID, stage); err != nil {
			ledgerOK = false
			logging.WarnWithContext(logger, "run ledger unavailable; continuing without it", "ledger_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check storage.database permissions"),
				logging.String(logging.FieldImpact, "this run will not appear in 'ytharvest runs'"),
			)
		}
	}
	logger.Info("stage started")

	outcome, err := fn(ctx)
	p.finishStage(ctx, runID, stage, start, outcome, err, ledgerOK)
	return runID, err
}

func (p *Pipeline) finishStage(ctx context.Context, runID, stage string, start time.Time, outcome store.Outcome, stageErr error, recordLedger bool) {
	// Bookkeeping runs even after cancellation.
	ctx = context.WithoutCancel(ctx)
	logger := logging.WithContext(ctx, p.logger)
	elapsed := time.Since(start)

	switch {
	case stageErr == nil:
		outcome.Status = store.RunSucceeded
	case errors.Is(stageErr, context.Canceled):
		outcome.Status = store.RunCancelled
		outcome.Error = stageErr.Error()
	default:
		outcome.Status = store.RunFailed
		outcome.Error = stageErr.Error()
	}

	if p.ledger != nil && recordLedger {
		if err := p.ledger.FinishRun(ctx, runID, outcome); err != nil {
			logger.Warn("run ledger update failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "ledger_write_failed"),
				logging.String(logging.FieldErrorHint, "check storage.database permissions"),
				logging.String(logging.FieldImpact, "run status in 'ytharvest runs' may be stale"),
			)
		}
	}

	p.metrics.StageFinished(stage, elapsed, stageErr)
	if err := p.metrics.WriteTextfile(p.cfg.Metrics.Textfile); err != nil {
		logging.WarnWithContext(logger, "metrics textfile export failed", "metrics_export_failed",
			logging.Error(err),
			logging.String("path", p.cfg.Metrics.Textfile),
			logging.String(logging.FieldErrorHint, "check metrics.textfile directory permissions"),
		)
	}

	if stageErr == nil {
		logger.Info("stage finished",
			logging.Duration("elapsed", elapsed),
			logging.Int("requested", outcome.Requested),
			logging.Int("produced", outcome.Produced),
			logging.Int("unresolved", outcome.Unresolved),
		)
		return
	}

	hint := "rerun the command; transient API failures are retried automatically"
	if services.IsFatal(stageErr) {
		hint = "fix the configuration or missing input, then rerun"
	}
	logging.ErrorWithContext(logger, "stage failed", "stage_failed",
		logging.String(logging.FieldErrorKind, services.Kind(stageErr)),
		logging.Error(stageErr),
		logging.Duration("elapsed", elapsed),
		logging.String(logging.FieldErrorHint, hint),
	)
	if outcome.Status == store.RunFailed {
		p.notify(ctx, notifications.EventRunFailed, notifications.Payload{
			"stage": stage,
			"error": stageErr,
			"runId": runID,
		})
	}
}

func (p *Pipeline) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := p.notifier.Publish(ctx, event, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			p.logger.Debug("shutting down, could not send notification")
			return
		}
		p.logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}

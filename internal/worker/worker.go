// Package worker runs the single-worker pull loop: one document is processed
// end-to-end before the next is fetched. Persistence failures are retried in
// place; a message is committed once its outcome is persisted or the retry
// budget is spent.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"docverify/internal/queue"
)

// retryDelay spaces out attempts after an infrastructure failure so a broker
// or database outage does not spin the loop. Variable so tests can shorten it.
var retryDelay = 5 * time.Second

// processAttempts bounds in-place re-runs of a document whose outcome could
// not be persisted. Group offsets are per-partition high-water marks, so an
// uncommitted record is effectively acknowledged as soon as any later record
// commits; redelivery cannot be relied on and the retry happens here.
const processAttempts = 5

// Processor handles one upload notification end-to-end. Implemented by
// pipeline.Pipeline.
type Processor interface {
	Run(ctx context.Context, note queue.Notification) error
}

// Runner couples the consumer to the pipeline.
type Runner struct {
	consumer queue.Consumer
	pipe     Processor
	log      *slog.Logger
}

func New(consumer queue.Consumer, pipe Processor, log *slog.Logger) *Runner {
	return &Runner{
		consumer: consumer,
		pipe:     pipe,
		log:      log.With("component", "worker"),
	}
}

// Run pulls notifications until ctx is canceled. One bad document never stops
// the loop: the pipeline is retried in place until its outcome is persisted
// or the attempts are spent, then the loop moves on.
func (r *Runner) Run(ctx context.Context) error {
	for {
		msg, err := r.consumer.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			r.log.Error("fetch failed", "error", err)
			if !r.pause(ctx) {
				return ctx.Err()
			}
			continue
		}

		if !r.process(ctx, msg) {
			return ctx.Err()
		}

		if err := r.consumer.Commit(ctx, msg); err != nil {
			r.log.Error("commit failed", "storage_key", msg.Note.StorageKey, "error", err)
		}
	}
}

// process runs one document through the pipeline, retrying in place when the
// outcome could not be persisted. It reports false when ctx was canceled
// while waiting between attempts. A document that exhausts its attempts is
// still committed: the next commit would advance the offset past it anyway,
// so the loss is logged loudly instead of being silent.
func (r *Runner) process(ctx context.Context, msg queue.Message) bool {
	for attempt := 1; ; attempt++ {
		err := r.pipe.Run(ctx, msg.Note)
		if err == nil {
			return true
		}
		if attempt >= processAttempts {
			r.log.Error("document abandoned, outcome never persisted",
				"tenant_id", msg.Note.TenantID, "case_id", msg.Note.CaseID,
				"storage_key", msg.Note.StorageKey, "attempts", attempt, "error", err)
			return true
		}
		r.log.Error("document processing failed, retrying",
			"tenant_id", msg.Note.TenantID, "case_id", msg.Note.CaseID,
			"storage_key", msg.Note.StorageKey, "attempt", attempt, "error", err)
		if !r.pause(ctx) {
			return false
		}
	}
}

func (r *Runner) pause(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(retryDelay):
		return true
	}
}

package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/job-mailer/internal/ledger"
	"github.com/jonathan/job-mailer/internal/types"
)

// Recorder persists a row's outcome. store.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, outcome types.Outcome) error
}

// ProgressCallback is called after every row, including skipped ones.
type ProgressCallback func(outcome types.Outcome)

// BatchOptions configures a Batch.
type BatchOptions struct {
	// Recorder receives every DONE or FAILED outcome. Nil disables write-back.
	Recorder Recorder
	// Ledger, when set, gets one entry per attempted row.
	Ledger ledger.Ledger
	// Pacer pauses between attempts. Nil disables pacing.
	Pacer *Pacer
	// DryRun processes rows without writing to the store or the ledger.
	DryRun     bool
	OnProgress ProgressCallback
	RunID      uuid.UUID
}

// Summary reports what a batch did.
type Summary struct {
	RunID       uuid.UUID     `json:"run_id"`
	Total       int           `json:"total"`
	Skipped     int           `json:"skipped"`
	Sent        int           `json:"sent"`
	Failed      int           `json:"failed"`
	WriteErrors int           `json:"write_errors"`
	Interrupted bool          `json:"interrupted"`
	Duration    time.Duration `json:"duration"`
}

// Remaining is the number of rows the batch never reached.
func (s Summary) Remaining() int {
	return s.Total - s.Skipped - s.Sent - s.Failed
}

// Batch runs the Processor over every row in order.
type Batch struct {
	processor  Processor
	recorder   Recorder
	ledger     ledger.Ledger
	pacer      *Pacer
	dryRun     bool
	onProgress ProgressCallback
	runID      uuid.UUID
	logger     *zap.Logger
}

// NewBatch creates a Batch. A zero RunID gets a fresh random one.
func NewBatch(processor Processor, opts BatchOptions, logger *zap.Logger) *Batch {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RunID == uuid.Nil {
		opts.RunID = uuid.New()
	}
	return &Batch{
		processor:  processor,
		recorder:   opts.Recorder,
		ledger:     opts.Ledger,
		pacer:      opts.Pacer,
		dryRun:     opts.DryRun,
		onProgress: opts.OnProgress,
		runID:      opts.RunID,
		logger:     logger.With(zap.String("run_id", opts.RunID.String())),
	}
}

// RunID identifies this batch in logs and the ledger.
func (b *Batch) RunID() uuid.UUID {
	return b.runID
}

// Run processes rows sequentially. A failing row never stops the rows after it.
// Cancelling ctx stops the loop between rows; the row in flight is finished and
// recorded, and the rows not reached stay pending for the next run.
func (b *Batch) Run(ctx context.Context, rows []types.Row) Summary {
	start := time.Now()
	summary := Summary{RunID: b.runID, Total: len(rows)}
	attempted := false

	for _, row := range rows {
		if row.Done() {
			summary.Skipped++
			b.logger.Debug("row already sent, skipping", zap.Int("row", row.Index))
			b.progress(types.Outcome{Row: row, Status: types.StatusSkipped})
			continue
		}

		if err := b.waitTurn(ctx, attempted); err != nil {
			summary.Interrupted = true
			b.logger.Warn("batch interrupted", zap.Int("row", row.Index), zap.Error(err))
			break
		}

		// The attempt and its bookkeeping run to completion once started.
		rowCtx := context.WithoutCancel(ctx)
		outcome := b.processor.Process(rowCtx, row)
		attempted = true

		switch outcome.Status {
		case types.StatusDone:
			summary.Sent++
			b.logger.Info("row sent",
				zap.Int("row", row.Index),
				zap.String("to", outcome.Row.ContactEmail),
				zap.String("company", outcome.Company))
		case types.StatusFailed:
			summary.Failed++
			b.logger.Error("row failed",
				zap.Int("row", row.Index),
				zap.String("to", outcome.Row.ContactEmail),
				zap.Error(outcome.Err))
		default:
			summary.Skipped++
		}

		if !b.persist(rowCtx, outcome) {
			summary.WriteErrors++
		}
		b.progress(outcome)
	}

	summary.Duration = time.Since(start)
	return summary
}

// waitTurn takes the full pause after an earlier attempt, counted from the
// moment that attempt finished. The first attempt only checks ctx.
func (b *Batch) waitTurn(ctx context.Context, attempted bool) error {
	if !attempted {
		return ctx.Err()
	}
	return b.pacer.Pause(ctx)
}

// persist writes the outcome to the store and the ledger. It reports false if either write failed.
func (b *Batch) persist(ctx context.Context, outcome types.Outcome) bool {
	if b.dryRun || outcome.Status == types.StatusSkipped {
		return true
	}

	ok := true
	if b.recorder != nil {
		if err := b.recorder.Record(ctx, outcome); err != nil {
			ok = false
			b.logger.Error("failed to write row result",
				zap.Int("row", outcome.Row.Index),
				zap.String("status", string(outcome.Status)),
				zap.Error(err))
		}
	}
	if b.ledger != nil {
		if err := b.ledger.Record(ctx, ledger.EntryFromOutcome(b.runID, outcome)); err != nil {
			ok = false
			b.logger.Error("failed to append ledger entry",
				zap.Int("row", outcome.Row.Index),
				zap.Error(err))
		}
	}
	return ok
}

func (b *Batch) progress(outcome types.Outcome) {
	if b.onProgress != nil {
		b.onProgress(outcome)
	}
}

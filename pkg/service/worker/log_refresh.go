package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/utils/errutil"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
)

// LogSource is the canonical log reader polled by the worker. Snapshot
// returns the entries together with the file modification time they were
// loaded from.
type LogSource interface {
	Snapshot(ctx context.Context, force bool) ([]*model.LogEntry, time.Time, error)
}

// EntryProcessor runs the analysis pipeline over reloaded entries
type EntryProcessor interface {
	ProcessLogEntries(ctx context.Context, entries []*model.LogEntry) error
}

// LogRefreshWorker polls the canonical log file and runs the pipeline over
// every version of it not yet processed. The processed version is tracked by
// the worker itself since the source may be shared with other readers.
// Re-processing is harmless because fixspec persistence is idempotent.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
type LogRefreshWorker struct {
	source    LogSource
	processor EntryProcessor
	interval  time.Duration
	processed time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewLogRefreshWorker creates a worker polling source every interval
func NewLogRefreshWorker(source LogSource, processor EntryProcessor, interval time.Duration) *LogRefreshWorker {
	return &LogRefreshWorker{
		source:    source,
		processor: processor,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the polling loop in the background and returns immediately
func (w *LogRefreshWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("refresh interval must be positive", goerr.V("interval", w.interval.String()))
	}

	logging.From(ctx).Info("log refresh worker starting", "interval", w.interval.String())
	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *LogRefreshWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("log refresh worker stopped")
}

func (w *LogRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.poll(ctx); err != nil {
		_ = errutil.Handle(ctx, err, "initial log refresh failed (will retry next interval)")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.poll(ctx); err != nil {
				_ = errutil.Handle(ctx, err, "log refresh failed (will retry next interval)")
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.From(ctx).Info("log refresh worker context cancelled")
			return
		}
	}
}

// poll performs one cycle. Versions already processed are skipped.
func (w *LogRefreshWorker) poll(ctx context.Context) error {
	entries, modTime, err := w.source.Snapshot(ctx, false)
	if err != nil {
		return goerr.Wrap(err, "failed to read canonical log")
	}
	if !w.processed.IsZero() && w.processed.Equal(modTime) {
		return nil
	}

	started := time.Now()
	if err := w.processor.ProcessLogEntries(ctx, entries); err != nil {
		// processed is left untouched so the next tick retries this version
		return goerr.Wrap(err, "failed to process canonical log", goerr.V("entries", len(entries)))
	}
	w.processed = modTime

	logging.From(ctx).Info("processed canonical log",
		"entries", len(entries),
		"mtime", modTime,
		"duration", time.Since(started).String(),
	)
	return nil
}

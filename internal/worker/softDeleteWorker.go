// Package worker batches background soft deletions so a bulk delete request
// does not translate into one storage round trip per link.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Repo is the slice of storage the worker needs.
type Repo interface {
	SoftDeleteBatch(context.Context, []string) error
}

const (
	flushBatchSize = 25
	flushInterval  = 10 * time.Second
	flushTimeout   = 3 * time.Second
)

// SoftDeleteWorker accumulates link ids and flushes them as one batch, by
// size or on a ticker, whichever comes first.
type SoftDeleteWorker struct {
	in     chan string
	logger *zap.Logger
	repo   Repo
}

// NewSoftDeleteWorker creates a worker over the given repository.
func NewSoftDeleteWorker(logger *zap.Logger, repo Repo) *SoftDeleteWorker {
	return &SoftDeleteWorker{
		in:     make(chan string),
		logger: logger,
		repo:   repo,
	}
}

// GetInChannel returns the channel producers push link ids into.
func (w *SoftDeleteWorker) GetInChannel() chan<- string {
	return w.in
}

// FlushRecords runs the accumulate-and-flush loop until ctx is cancelled.
// Remaining ids are flushed on shutdown.
func (w *SoftDeleteWorker) FlushRecords(ctx context.Context) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	var ids []string

	flush := func() {
		if len(ids) == 0 {
			return
		}
		w.logger.Info("flushing soft deletions", zap.Int("count", len(ids)))

		flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()

		if err := w.repo.SoftDeleteBatch(flushCtx, ids); err != nil {
			w.logger.Error("cannot soft-delete records", zap.Error(err))
		}
		ids = ids[:0]
	}

	for {
		select {
		case id := <-w.in:
			ids = append(ids, id)
			if len(ids) >= flushBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			flush()
			return
		}
	}
}

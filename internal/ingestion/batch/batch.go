// Package batch buffers validated records and writes them in transactional
// batches, skipping records that already exist.
package batch

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/ipksa-ingest/internal/config"
	"github.com/yungbote/ipksa-ingest/internal/data/store"
	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
	"github.com/yungbote/ipksa-ingest/internal/ingestion/stats"
	"github.com/yungbote/ipksa-ingest/internal/observability"
	"github.com/yungbote/ipksa-ingest/internal/platform/ctxutil"
	"github.com/yungbote/ipksa-ingest/internal/platform/dbctx"
	"github.com/yungbote/ipksa-ingest/internal/platform/logger"
)

// Sink persists one record inside the transaction carried by dbc.
type Sink[T any] func(dbc dbctx.Context, rec T) error

type Options[T any] struct {
	BatchSize int
	DryRun    bool
	// Key names a record in logs.
	Key func(T) string
}

type Inserter[T any] struct {
	db    *gorm.DB
	sink  Sink[T]
	log   *logger.Logger
	stats *stats.LoadStatistics
	opts  Options[T]

	buf     []T
	flushes int
	failed  error
}

func NewInserter[T any](db *gorm.DB, sink Sink[T], st *stats.LoadStatistics, log *logger.Logger, opts Options[T]) *Inserter[T] {
	if opts.BatchSize < 1 {
		opts.BatchSize = config.DefaultBatchSize
	}
	if opts.Key == nil {
		opts.Key = func(rec T) string { return fmt.Sprintf("%v", rec) }
	}
	return &Inserter[T]{
		db:    db,
		sink:  sink,
		log:   log.With("component", "BatchInserter"),
		stats: st,
		opts:  opts,
		buf:   make([]T, 0, opts.BatchSize),
	}
}

// Add buffers rec and flushes once the buffer reaches the batch size. After a
// fatal flush error every call returns that error.
func (in *Inserter[T]) Add(ctx context.Context, rec T) error {
	if in.failed != nil {
		return in.failed
	}
	in.buf = append(in.buf, rec)
	if len(in.buf) >= in.opts.BatchSize {
		return in.Flush(ctx)
	}
	return nil
}

// Close flushes whatever is left, however small.
func (in *Inserter[T]) Close(ctx context.Context) error {
	if in.failed != nil {
		return in.failed
	}
	return in.Flush(ctx)
}

func (in *Inserter[T]) Pending() int { return len(in.buf) }

// Flush writes the buffered records in one transaction. Each record gets its
// own savepoint so a duplicate only rolls back itself. Any other failure rolls
// back the whole batch and none of its counts are kept.
func (in *Inserter[T]) Flush(ctx context.Context) (err error) {
	if in.failed != nil {
		return in.failed
	}
	if len(in.buf) == 0 {
		return nil
	}
	records := in.buf
	in.buf = make([]T, 0, in.opts.BatchSize)
	in.flushes++

	log := in.log.With(ctxutil.GetRunData(ctx).KV()...)
	if in.opts.DryRun {
		log.Debug("dry run: batch not written", "batch", in.flushes, "size", len(records))
		return nil
	}

	ctx, span := observability.StartSpan(ctx, "batch.flush",
		attribute.Int("batch.number", in.flushes),
		attribute.Int("batch.size", len(records)),
	)
	defer func() { observability.EndSpan(span, err) }()

	loaded, dups := 0, 0
	txErr := in.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			recErr := tx.Transaction(func(sp *gorm.DB) error {
				return in.sink(dbctx.Context{Ctx: ctx, Tx: sp}, rec)
			})
			if recErr == nil {
				loaded++
				continue
			}
			if store.IsDuplicate(recErr) {
				dups++
				log.Debug("duplicate skipped", "record", in.opts.Key(rec))
				continue
			}
			return store.Classify("batch.insert", fmt.Errorf("record %s: %w", in.opts.Key(rec), recErr))
		}
		return nil
	})
	if txErr != nil {
		in.failed = txErr
		if !ingesterr.Fatal(txErr) {
			in.failed = ingesterr.Wrap(ingesterr.CodeStorage, "batch.flush", txErr)
		}
		log.Error("batch rolled back", "batch", in.flushes, "size", len(records), "error", txErr)
		return in.failed
	}

	in.stats.Loaded += loaded
	in.stats.Duplicates += dups
	span.SetAttributes(attribute.Int("batch.loaded", loaded), attribute.Int("batch.duplicates", dups))
	log.Debug("batch committed", "batch", in.flushes, "loaded", loaded, "duplicates", dups)
	return nil
}

package hadith

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/RoaringBitmap/roaring/roaring64"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/ipksa-ingest/internal/data/repos"
	domain "github.com/yungbote/ipksa-ingest/internal/domain/hadith"
	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
	"github.com/yungbote/ipksa-ingest/internal/domain/processing"
	"github.com/yungbote/ipksa-ingest/internal/ingestion/batch"
	"github.com/yungbote/ipksa-ingest/internal/ingestion/source"
	"github.com/yungbote/ipksa-ingest/internal/ingestion/stats"
	"github.com/yungbote/ipksa-ingest/internal/observability"
	"github.com/yungbote/ipksa-ingest/internal/platform/ctxutil"
	"github.com/yungbote/ipksa-ingest/internal/platform/logger"
)

type Options struct {
	BatchSize int
	DryRun    bool
}

type Loader struct {
	db   *gorm.DB
	repo repos.HadithRepo
	log  *logger.Logger
	opts Options
}

func NewLoader(db *gorm.DB, repo repos.HadithRepo, baseLog *logger.Logger, opts Options) *Loader {
	return &Loader{
		db:   db,
		repo: repo,
		log:  baseLog.With("component", "HadithLoader"),
		opts: opts,
	}
}

// LoadFromDirectory loads every JSON file under root. Per-record and per-file
// problems are counted and skipped; the returned error is non-nil only for an
// unusable root (not_found) or a fatal storage failure. Statistics are always
// returned.
func (l *Loader) LoadFromDirectory(ctx context.Context, root string) (st *stats.LoadStatistics, err error) {
	st = stats.New(stats.KindHadith, l.opts.DryRun)
	ctx, span := observability.StartSpan(ctx, "hadith.load",
		attribute.String("load.root", root),
		attribute.Bool("load.dry_run", l.opts.DryRun),
		attribute.String("load.run_id", st.RunID.String()),
	)
	ctx = ctxutil.WithRunData(ctx, &ctxutil.RunData{
		RunID:   st.RunID.String(),
		Kind:    string(st.Kind),
		TraceID: observability.TraceID(span),
	})
	defer func() {
		st.Finish()
		span.SetAttributes(
			attribute.Int("load.files", st.FilesSeen),
			attribute.Int("load.records", st.RecordsSeen),
			attribute.Int("load.loaded", st.Loaded),
			attribute.Int("load.duplicates", st.Duplicates),
		)
		observability.EndSpan(span, err)
	}()

	l.log.Info("Starting hadith load", "root", root, "batch_size", l.opts.BatchSize, "dry_run", l.opts.DryRun, "run_id", st.RunID.String())

	inserter := batch.NewInserter(l.db, l.repo.Create, st, l.log, batch.Options[*domain.RawHadith]{
		BatchSize: l.opts.BatchSize,
		DryRun:    l.opts.DryRun,
		Key:       func(h *domain.RawHadith) string { return strconv.FormatInt(h.ID, 10) },
	})
	predictor := newDuplicatePredictor()

	files := source.JSONFiles(root)
	for path := range files.All() {
		st.FilesSeen++
		label := source.Label(root, path)
		if err := l.loadFile(ctx, path, label, st, inserter, predictor); err != nil {
			return st, err
		}
	}
	if err := inserter.Close(ctx); err != nil {
		l.log.Error("Fatal error during hadith load", "error", err)
		return st, err
	}

	var rootErr error
	for _, walkErr := range files.Errors() {
		if ingesterr.IsCode(walkErr, ingesterr.CodeNotFound) {
			rootErr = walkErr
			continue
		}
		st.FileErrors++
		l.log.Error("Unreadable path under source root", "error", walkErr)
	}
	if rootErr != nil {
		l.log.Error("No JSON files found", "root", root, "error", rootErr)
	}
	l.log.Info("Hadith load complete", st.KV()...)
	return st, rootErr
}

// loadFile returns an error only when loading must halt.
func (l *Loader) loadFile(ctx context.Context, path, label string, st *stats.LoadStatistics, inserter *batch.Inserter[*domain.RawHadith], predictor *duplicatePredictor) error {
	data, err := os.ReadFile(path)
	if err != nil {
		st.FileErrors++
		l.log.Error("Failed to read file", "file", label, "error", err)
		return nil
	}
	records, err := Decode(data)
	if err != nil {
		st.FileErrors++
		l.log.Error("Failed to decode file", "file", label, "error", err)
		return nil
	}
	st.RecordsSeen += len(records)

	progress := processing.NewBatchProgress(label, processing.StageIngestion, len(records))
	for _, raw := range records {
		h, err := Validate(raw, label)
		if err != nil {
			st.ValidationFailures++
			progress.Record(true, false)
			l.log.Warn("Invalid hadith skipped", "file", label, "id", RecordID(raw), "error", err)
			continue
		}
		st.Validated++
		if l.opts.DryRun && predictor.seen(h) {
			st.Duplicates++
			progress.Record(false, true)
			l.log.Debug("dry run: duplicate predicted", "file", label, "id", h.ID)
			continue
		}
		if err := inserter.Add(ctx, h); err != nil {
			progress.Fail(err.Error())
			progress.Finish()
			l.log.Error("Fatal error during hadith load", "file", label, "error", err)
			return fmt.Errorf("load %s: %w", label, err)
		}
		progress.Record(false, false)
	}
	progress.Finish()
	l.log.Debug("File processed",
		"file", label,
		"records", progress.TotalItems,
		"progress_pct", progress.ProgressPercentage(),
		"success_rate", progress.SuccessRate(),
	)
	return nil
}

// duplicatePredictor mirrors the store's two uniqueness rules (id, and
// book/position) so a dry run can report duplicates without a database.
type duplicatePredictor struct {
	ids       *roaring64.Bitmap
	positions map[int64]*roaring64.Bitmap
}

func newDuplicatePredictor() *duplicatePredictor {
	return &duplicatePredictor{
		ids:       roaring64.New(),
		positions: map[int64]*roaring64.Bitmap{},
	}
}

// seen records h and reports whether it clashes with an earlier record.
func (p *duplicatePredictor) seen(h *domain.RawHadith) bool {
	book, ok := p.positions[h.BookID]
	if !ok {
		book = roaring64.New()
		p.positions[h.BookID] = book
	}
	if p.ids.Contains(uint64(h.ID)) || book.Contains(uint64(h.IDInBook)) {
		return true
	}
	p.ids.Add(uint64(h.ID))
	book.Add(uint64(h.IDInBook))
	return false
}

package marker

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/ipksa-ingest/internal/data/repos"
	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
	"github.com/yungbote/ipksa-ingest/internal/domain/temporal"
	"github.com/yungbote/ipksa-ingest/internal/ingestion/batch"
	"github.com/yungbote/ipksa-ingest/internal/ingestion/source"
	"github.com/yungbote/ipksa-ingest/internal/ingestion/stats"
	"github.com/yungbote/ipksa-ingest/internal/observability"
	"github.com/yungbote/ipksa-ingest/internal/platform/ctxutil"
	"github.com/yungbote/ipksa-ingest/internal/platform/logger"
)

type Options struct {
	// BatchSize <= 0 writes the whole marker set in one transaction.
	BatchSize int
	DryRun    bool
}

type Loader struct {
	db   *gorm.DB
	repo repos.MarkerRepo
	log  *logger.Logger
	opts Options
}

func NewLoader(db *gorm.DB, repo repos.MarkerRepo, baseLog *logger.Logger, opts Options) *Loader {
	return &Loader{
		db:   db,
		repo: repo,
		log:  baseLog.With("component", "MarkerLoader"),
		opts: opts,
	}
}

// LoadFromCSV validates every row, refuses hierarchies whose depths do not
// strictly increase from parent to child, then inserts parents before children.
func (l *Loader) LoadFromCSV(ctx context.Context, path string) (st *stats.LoadStatistics, err error) {
	st = stats.New(stats.KindMarker, l.opts.DryRun)
	ctx, span := observability.StartSpan(ctx, "marker.load",
		attribute.String("load.source", path),
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
			attribute.Int("load.records", st.RecordsSeen),
			attribute.Int("load.loaded", st.Loaded),
			attribute.Int("load.integrity_violations", st.IntegrityViolations),
		)
		observability.EndSpan(span, err)
	}()

	l.log.Info("Starting temporal marker load", "source", path, "dry_run", l.opts.DryRun, "run_id", st.RunID.String())

	var rows []Row
	file := source.SingleFile(path, ".csv")
	for p := range file.All() {
		st.FilesSeen++
		rows, err = ReadCSV(p)
		if err != nil {
			st.FileErrors++
			l.log.Error("Failed to read marker CSV", "file", p, "error", err)
			return st, nil
		}
	}
	if err := file.Err(); err != nil {
		l.log.Error("Marker CSV not found", "source", path, "error", err)
		return st, err
	}
	st.RecordsSeen = len(rows)

	markers := make([]*temporal.TemporalMarker, 0, len(rows))
	for i, row := range rows {
		m, err := Validate(row)
		if err != nil {
			st.ValidationFailures++
			l.log.Warn("Invalid marker skipped", "row", i+2, "id", row[colID], "error", err)
			continue
		}
		markers = append(markers, m)
	}
	st.Validated = len(markers)
	l.log.Info("Validated markers", "count", len(markers))

	if violations := CheckHierarchy(markers); len(violations) > 0 {
		st.IntegrityViolations = len(violations)
		for _, v := range violations {
			l.log.Error("Marker hierarchy violation", "event_id", v.EventID, "parent", v.ParentID, "detail", v.String())
		}
		return st, ingesterr.NewError(ingesterr.CodeInvariantViolation, "marker.load",
			fmt.Sprintf("%d marker(s) break parent-before-child depth ordering", len(violations)), nil)
	}
	SortByDepth(markers)

	size := l.opts.BatchSize
	if size <= 0 {
		size = max(len(markers), 1)
	}
	inserter := batch.NewInserter(l.db, l.repo.Create, st, l.log, batch.Options[*temporal.TemporalMarker]{
		BatchSize: size,
		DryRun:    l.opts.DryRun,
		Key:       func(m *temporal.TemporalMarker) string { return m.EventID },
	})
	seen := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		if l.opts.DryRun {
			if _, dup := seen[m.EventID]; dup {
				st.Duplicates++
				continue
			}
			seen[m.EventID] = struct{}{}
		}
		if err := inserter.Add(ctx, m); err != nil {
			l.log.Error("Fatal error during marker load", "event_id", m.EventID, "error", err)
			return st, err
		}
	}
	if err := inserter.Close(ctx); err != nil {
		l.log.Error("Fatal error during marker load", "error", err)
		return st, err
	}
	l.log.Info("Temporal marker load complete", st.KV()...)
	return st, nil
}

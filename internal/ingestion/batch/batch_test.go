package batch

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/ipksa-ingest/internal/data/repos"
	"github.com/yungbote/ipksa-ingest/internal/data/testutil"
	"github.com/yungbote/ipksa-ingest/internal/domain/hadith"
	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
	"github.com/yungbote/ipksa-ingest/internal/ingestion/stats"
	"github.com/yungbote/ipksa-ingest/internal/platform/dbctx"
)

func rec(id int64) *hadith.RawHadith {
	return &hadith.RawHadith{ID: id, IDInBook: id, BookID: 1, Arabic: "نص " + strconv.FormatInt(id, 10)}
}

func count(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&hadith.RawHadith{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func newHadithInserter(t *testing.T, db *gorm.DB, st *stats.LoadStatistics, size int, dry bool) *Inserter[*hadith.RawHadith] {
	repo := repos.NewHadithRepo(db, testutil.Logger(t))
	return NewInserter(db, repo.Create, st, testutil.Logger(t), Options[*hadith.RawHadith]{
		BatchSize: size,
		DryRun:    dry,
		Key:       func(h *hadith.RawHadith) string { return strconv.FormatInt(h.ID, 10) },
	})
}

func TestInserterSkipsDuplicates(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := stats.New(stats.KindHadith, false)
	in := newHadithInserter(t, db, st, 2, false)

	for _, id := range []int64{1, 2, 2, 3, 1} {
		if err := in.Add(ctx, rec(id)); err != nil {
			t.Fatalf("Add(%d): %v", id, err)
		}
	}
	if in.Pending() != 1 {
		t.Fatalf("expected one pending record before Close, got %d", in.Pending())
	}
	if err := in.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if st.Loaded != 3 || st.Duplicates != 2 {
		t.Fatalf("loaded=%d duplicates=%d, want 3 and 2", st.Loaded, st.Duplicates)
	}
	if n := count(t, db); n != 3 {
		t.Fatalf("rows = %d, want 3", n)
	}
}

func TestInserterRollsBackWholeBatchOnFatalError(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := stats.New(stats.KindHadith, false)
	repo := repos.NewHadithRepo(db, testutil.Logger(t))
	sink := func(dbc dbctx.Context, h *hadith.RawHadith) error {
		if h.ID == 3 {
			return errors.New("disk on fire")
		}
		return repo.Create(dbc, h)
	}
	in := NewInserter(db, sink, st, testutil.Logger(t), Options[*hadith.RawHadith]{BatchSize: 10})

	for _, id := range []int64{1, 2, 3} {
		if err := in.Add(ctx, rec(id)); err != nil {
			t.Fatalf("Add(%d): %v", id, err)
		}
	}
	err := in.Close(ctx)
	if !ingesterr.IsCode(err, ingesterr.CodeStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if n := count(t, db); n != 0 {
		t.Fatalf("batch must be rolled back entirely, found %d rows", n)
	}
	if st.Loaded != 0 || st.Duplicates != 0 {
		t.Fatalf("counters of a rolled back batch must be discarded: %+v", st)
	}
	if err := in.Add(ctx, rec(4)); err == nil {
		t.Fatalf("inserter must stay failed after a fatal error")
	}
}

func TestInserterForeignKeyFailureIsInvariantViolation(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := stats.New(stats.KindHadith, false)
	sink := func(dbc dbctx.Context, p *hadith.PreprocessedHadith) error {
		return repoCreatePreprocessed(dbc, db, p)
	}
	in := NewInserter(db, sink, st, testutil.Logger(t), Options[*hadith.PreprocessedHadith]{BatchSize: 1})
	err := in.Add(ctx, &hadith.PreprocessedHadith{HadithID: 404})
	if !ingesterr.IsCode(err, ingesterr.CodeInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
}

func repoCreatePreprocessed(dbc dbctx.Context, db *gorm.DB, p *hadith.PreprocessedHadith) error {
	return dbc.DB(db).Create(p).Error
}

func TestInserterDryRunWritesNothing(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := stats.New(stats.KindHadith, true)
	in := newHadithInserter(t, db, st, 1, true)
	for _, id := range []int64{1, 2} {
		if err := in.Add(ctx, rec(id)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := in.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := count(t, db); n != 0 || st.Loaded != 0 {
		t.Fatalf("dry run wrote rows=%d loaded=%d", n, st.Loaded)
	}
}

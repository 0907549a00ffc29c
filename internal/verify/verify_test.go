package verify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/ipksa-ingest/internal/data/repos"
	"github.com/yungbote/ipksa-ingest/internal/data/testutil"
	"github.com/yungbote/ipksa-ingest/internal/domain/hadith"
	"github.com/yungbote/ipksa-ingest/internal/domain/temporal"
	"github.com/yungbote/ipksa-ingest/internal/pkg/pointers"
	"github.com/yungbote/ipksa-ingest/internal/platform/dbctx"
)

func seed(t *testing.T, conn *gorm.DB) *Reporter {
	t.Helper()
	log := testutil.Logger(t)
	hadiths := repos.NewHadithRepo(conn, log)
	markers := repos.NewMarkerRepo(conn, log)
	dbc := dbctx.Context{Ctx: context.Background()}

	for _, h := range []*hadith.RawHadith{
		{ID: 1, BookID: 1, IDInBook: 1, ChapterID: pointers.Int64(1), Arabic: "إنما الأعمال بالنيات", EnglishText: pointers.String("Actions are by intentions"), EnglishNarrator: pointers.String("Umar")},
		{ID: 2, BookID: 1, IDInBook: 2, Arabic: "نص", EnglishNarrator: pointers.String("Aisha")},
		{ID: 1000, BookID: 2, IDInBook: 1, ChapterID: pointers.Int64(4), Arabic: "نص آخر", EnglishText: pointers.String("Another text")},
	} {
		if err := hadiths.Create(dbc, h); err != nil {
			t.Fatalf("seed hadith %d: %v", h.ID, err)
		}
	}
	for _, m := range []*temporal.TemporalMarker{
		{EventID: "E0", Depth: 0, EventNameEnglish: "Pre-prophetic era"},
		{EventID: "E0.1", ParentEventID: pointers.String("E0"), Depth: 1, EventNameEnglish: "Birth of the Prophet", AHValue: pointers.String("53 BH")},
		{EventID: "E0.1.1", ParentEventID: pointers.String("E0.1"), Depth: 2, EventNameEnglish: "Nursing with Halima"},
	} {
		if err := markers.Create(dbc, m); err != nil {
			t.Fatalf("seed marker %s: %v", m.EventID, err)
		}
	}
	return NewReporter(conn, hadiths, markers, log)
}

func byName(outcomes []Outcome) map[string]Outcome {
	out := make(map[string]Outcome, len(outcomes))
	for _, o := range outcomes {
		out[o.Name] = o
	}
	return out
}

func TestRunReportsCountsAndStatuses(t *testing.T) {
	r := seed(t, testutil.DB(t))
	outcomes := r.Run(context.Background())
	if len(outcomes) != len(r.Names()) {
		t.Fatalf("outcomes = %d, checks = %d", len(outcomes), len(r.Names()))
	}
	got := byName(outcomes)

	counts := map[string]struct {
		count  int64
		status Status
	}{
		"hadith_total":             {3, StatusInfo},
		"empty_arabic":             {0, StatusPass},
		"missing_english_text":     {1, StatusWarn},
		"missing_narrator":         {1, StatusWarn},
		"null_chapter":             {1, StatusWarn},
		"duplicate_ids":            {0, StatusPass},
		"duplicate_book_positions": {0, StatusPass},
		"marker_total":             {3, StatusInfo},
		"orphaned_markers":         {0, StatusPass},
		"depth_order_violations":   {0, StatusPass},
		"sample_hadiths":           {2, StatusInfo},
		"sample_markers":           {2, StatusInfo},
		"enrichment_rows":          {0, StatusInfo},
	}
	for name, want := range counts {
		o, ok := got[name]
		if !ok {
			t.Fatalf("missing outcome %s", name)
		}
		if o.Count != want.count || o.Status != want.status {
			t.Fatalf("%s = (%d, %s), want (%d, %s) err=%v", name, o.Count, o.Status, want.count, want.status, o.Err)
		}
	}

	books := got["hadiths_by_book"]
	if len(books.Rows) != 2 || books.Rows[0][1] != "2" || books.Rows[0][2] != "1" || books.Rows[0][3] != "1" {
		t.Fatalf("unexpected by-book rows: %v", books.Rows)
	}
	if depth := got["markers_by_depth"]; len(depth.Rows) != 3 || depth.Rows[0][0] != "Level 0" {
		t.Fatalf("unexpected depth rows: %v", depth.Rows)
	}
	if era := got["markers_by_era"]; len(era.Rows) != 1 || era.Rows[0][0] != "E0" || era.Rows[0][2] != "3" {
		t.Fatalf("unexpected era rows: %v", era.Rows)
	}
	if enrich := got["enrichment_rows"]; len(enrich.Rows) != 4 {
		t.Fatalf("every enrichment table should be listed: %v", enrich.Rows)
	}
	if size := got["database_size"]; size.Status != StatusSkipped {
		t.Fatalf("database_size on sqlite = %s", size.Status)
	}
	if failed := Failed(outcomes); len(failed) != 0 {
		t.Fatalf("unexpected failures: %v", failed)
	}
}

func TestOrphanedMarkersWarn(t *testing.T) {
	conn := testutil.DBNoForeignKeys(t)
	r := seed(t, conn)
	orphan := &temporal.TemporalMarker{EventID: "E9.1", ParentEventID: pointers.String("E9"), Depth: 1, EventNameEnglish: "Lost"}
	if err := r.markers.Create(dbctx.Context{Ctx: context.Background()}, orphan); err != nil {
		t.Fatalf("insert orphan: %v", err)
	}
	got := byName(r.Run(context.Background()))
	if o := got["orphaned_markers"]; o.Count != 1 || o.Status != StatusWarn {
		t.Fatalf("orphaned_markers = (%d, %s)", o.Count, o.Status)
	}
}

func TestMarkersByEraGroupsOnRootEvent(t *testing.T) {
	r := seed(t, testutil.DB(t))
	dbc := dbctx.Context{Ctx: context.Background()}
	for _, m := range []*temporal.TemporalMarker{
		{EventID: "E1", Depth: 0, EventNameEnglish: "Meccan period"},
		{EventID: "E10", Depth: 0, EventNameEnglish: "Tenth era"},
		{EventID: "E10.1", ParentEventID: pointers.String("E10"), Depth: 1, EventNameEnglish: "Tenth era event"},
	} {
		if err := r.markers.Create(dbc, m); err != nil {
			t.Fatalf("seed marker %s: %v", m.EventID, err)
		}
	}
	got := byName(r.Run(context.Background()))["markers_by_era"]
	want := [][]string{{"E0", "-", "3"}, {"E1", "-", "1"}, {"E10", "-", "2"}}
	if len(got.Rows) != len(want) || got.Count != 6 {
		t.Fatalf("unexpected era rows: %v", got.Rows)
	}
	for i, row := range want {
		if strings.Join(got.Rows[i], "|") != strings.Join(row, "|") {
			t.Fatalf("row %d = %v, want %v", i, got.Rows[i], row)
		}
	}
}

func TestChecksAreIsolated(t *testing.T) {
	r := seed(t, testutil.DB(t))
	r.checks = append([]check{
		{"boom", "Panicking check", func(context.Context, *Outcome) error { panic("kaboom") }},
		{"broken", "Erroring check", func(context.Context, *Outcome) error { return errors.New("query failed") }},
	}, r.checks...)

	outcomes := r.Run(context.Background())
	got := byName(outcomes)
	if got["boom"].Status != StatusFail || !strings.Contains(got["boom"].Detail, "kaboom") {
		t.Fatalf("panic not contained: %+v", got["boom"])
	}
	if got["broken"].Status != StatusFail {
		t.Fatalf("error not reported: %+v", got["broken"])
	}
	if got["hadith_total"].Count != 3 {
		t.Fatalf("later checks must still run: %+v", got["hadith_total"])
	}
	if failed := Failed(outcomes); len(failed) != 2 {
		t.Fatalf("failed = %v", failed)
	}
}

func TestRender(t *testing.T) {
	r := seed(t, testutil.DB(t))
	var buf bytes.Buffer
	if err := Render(&buf, r.Run(context.Background())); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Total hadiths", "PASS", "WARN", "Hadiths by book", "Birth of the Prophet", "SKIPPED"} {
		if !strings.Contains(out, want) {
			t.Fatalf("render output missing %q:\n%s", want, out)
		}
	}
}

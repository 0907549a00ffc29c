package verify

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/yungbote/ipksa-ingest/internal/data/db"
	"github.com/yungbote/ipksa-ingest/internal/data/store"
	"github.com/yungbote/ipksa-ingest/internal/domain/hadith"
	"github.com/yungbote/ipksa-ingest/internal/pkg/pointers"
)

const (
	previewRunes    = 50
	markerNameRunes = 30
	sampleMaxDepth  = 1
)

func (r *Reporter) defaultChecks() []check {
	return []check{
		{"hadith_total", "Total hadiths", r.hadithTotal},
		{"hadiths_by_book", "Hadiths by book", r.hadithsByBook},
		{"empty_arabic", "Empty Arabic text", r.zeroExpected(
			`SELECT COUNT(*) FROM raw_hadiths WHERE arabic IS NULL OR LENGTH(arabic) = 0`)},
		{"missing_english_text", "Missing English translation", r.zeroExpected(
			`SELECT COUNT(*) FROM raw_hadiths WHERE english_text IS NULL`)},
		{"missing_narrator", "Missing narrator chain", r.zeroExpected(
			`SELECT COUNT(*) FROM raw_hadiths WHERE english_narrator IS NULL`)},
		{"null_chapter", "NULL chapter_id", r.zeroExpected(
			`SELECT COUNT(*) FROM raw_hadiths WHERE chapter_id IS NULL`)},
		{"duplicate_ids", "Duplicate IDs", r.zeroExpected(
			`SELECT COUNT(*) - COUNT(DISTINCT id) FROM raw_hadiths`)},
		{"duplicate_book_positions", "Duplicate (book, position) pairs", r.zeroExpected(
			`SELECT COUNT(*) FROM (
				SELECT book_id, id_in_book FROM raw_hadiths
				GROUP BY book_id, id_in_book HAVING COUNT(*) > 1
			) d`)},
		{"marker_total", "Total temporal markers", r.markerTotal},
		{"markers_by_depth", "Markers by depth", r.markersByDepth},
		{"markers_by_era", "Markers by era", r.markersByEra},
		{"orphaned_markers", "Orphaned markers", r.zeroExpected(
			`SELECT COUNT(*) FROM temporal_markers
			WHERE parent_event_id IS NOT NULL
			AND parent_event_id NOT IN (SELECT event_id FROM temporal_markers)`)},
		{"depth_order_violations", "Children not deeper than parent", r.zeroExpected(
			`SELECT COUNT(*) FROM temporal_markers c
			JOIN temporal_markers p ON c.parent_event_id = p.event_id
			WHERE c.depth <= p.depth`)},
		{"sample_hadiths", "Sample hadiths", r.sampleHadiths},
		{"sample_markers", "Sample temporal markers", r.sampleMarkers},
		{"enrichment_rows", "Enrichment rows by version", r.enrichmentRows},
		{"database_size", "Database size", r.databaseSize},
	}
}

func (r *Reporter) hadithTotal(ctx context.Context, out *Outcome) error {
	n, err := r.hadiths.Count(r.dbc(ctx))
	if err != nil {
		return err
	}
	out.Count = n
	out.Status = StatusInfo
	return nil
}

func (r *Reporter) markerTotal(ctx context.Context, out *Outcome) error {
	n, err := r.markers.Count(r.dbc(ctx))
	if err != nil {
		return err
	}
	out.Count = n
	out.Status = StatusInfo
	return nil
}

func (r *Reporter) hadithsByBook(ctx context.Context, out *Outcome) error {
	var rows []struct {
		BookID     int64
		Count      int64
		NoChapter  int64
		HasEnglish int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			book_id,
			COUNT(*) AS count,
			COUNT(CASE WHEN chapter_id IS NULL THEN 1 END) AS no_chapter,
			COUNT(english_text) AS has_english
		FROM raw_hadiths
		GROUP BY book_id
		ORDER BY book_id`).Scan(&rows).Error
	if err != nil {
		return store.Classify("verify.hadiths_by_book", err)
	}
	out.Status = StatusInfo
	out.Headers = []string{"Book ID", "Count", "No Chapter", "Has English"}
	for _, row := range rows {
		out.Count += row.Count
		out.Rows = append(out.Rows, []string{
			strconv.FormatInt(row.BookID, 10),
			humanize.Comma(row.Count),
			humanize.Comma(row.NoChapter),
			humanize.Comma(row.HasEnglish),
		})
	}
	return nil
}

func (r *Reporter) markersByDepth(ctx context.Context, out *Outcome) error {
	var rows []struct {
		Depth int
		Count int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT depth, COUNT(*) AS count
		FROM temporal_markers
		GROUP BY depth
		ORDER BY depth`).Scan(&rows).Error
	if err != nil {
		return store.Classify("verify.markers_by_depth", err)
	}
	out.Status = StatusInfo
	out.Headers = []string{"Depth", "Count"}
	for _, row := range rows {
		out.Count += row.Count
		out.Rows = append(out.Rows, []string{fmt.Sprintf("Level %d", row.Depth), humanize.Comma(row.Count)})
	}
	return nil
}

// markersByEra groups by the root event of each id ("E2.1.3" belongs to E2)
// alongside the stored era category, which loads leave unset.
func (r *Reporter) markersByEra(ctx context.Context, out *Outcome) error {
	var rows []struct {
		EventID     string
		EraCategory string
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT event_id, COALESCE(era_category, '') AS era_category
		FROM temporal_markers`).Scan(&rows).Error
	if err != nil {
		return store.Classify("verify.markers_by_era", err)
	}
	type eraKey struct{ era, category string }
	counts := make(map[eraKey]int64)
	for _, row := range rows {
		era, _, _ := strings.Cut(row.EventID, ".")
		counts[eraKey{era, row.EraCategory}]++
	}
	keys := make([]eraKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].era != keys[j].era {
			return keys[i].era < keys[j].era
		}
		return keys[i].category < keys[j].category
	})

	out.Status = StatusInfo
	out.Headers = []string{"Era", "Era Category", "Count"}
	for _, k := range keys {
		category := k.category
		if category == "" {
			category = "-"
		}
		out.Count += counts[k]
		out.Rows = append(out.Rows, []string{k.era, category, humanize.Comma(counts[k])})
	}
	return nil
}

func (r *Reporter) sampleHadiths(ctx context.Context, out *Outcome) error {
	found, err := r.hadiths.GetByIDs(r.dbc(ctx), r.sampleIDs)
	if err != nil {
		return err
	}
	out.Status = StatusInfo
	out.Count = int64(len(found))
	out.Headers = []string{"ID", "Book", "ID in Book", "Arabic Preview", "English Preview"}
	for _, h := range found {
		s := h.Summarize()
		english := "N/A"
		if s.EnglishText != nil {
			english = hadith.Preview(*s.EnglishText, previewRunes)
		}
		book := strconv.FormatInt(s.BookID, 10)
		if s.BookNameEnglish != nil {
			book = *s.BookNameEnglish
		}
		out.Rows = append(out.Rows, []string{
			strconv.FormatInt(s.ID, 10),
			book,
			strconv.FormatInt(s.IDInBook, 10),
			hadith.Preview(s.Arabic, previewRunes),
			english,
		})
	}
	return nil
}

func (r *Reporter) sampleMarkers(ctx context.Context, out *Outcome) error {
	found, err := r.markers.ListByMaxDepth(r.dbc(ctx), sampleMaxDepth)
	if err != nil {
		return err
	}
	out.Status = StatusInfo
	out.Count = int64(len(found))
	out.Headers = []string{"Event ID", "Parent", "Depth", "Event Name", "CE Start", "AH"}
	for _, m := range found {
		parent := "-"
		if !m.IsRoot() {
			parent = *m.ParentEventID
		}
		start := "-"
		if m.CEStart != nil {
			start = m.CEStart.Format("2006-01-02")
		}
		ah := pointers.Deref(m.AHValue)
		if ah == "" {
			ah = "-"
		}
		out.Rows = append(out.Rows, []string{
			m.EventID,
			parent,
			strconv.Itoa(m.Depth),
			hadith.Preview(m.EventNameEnglish, markerNameRunes),
			start,
			ah,
		})
	}
	return nil
}

func (r *Reporter) enrichmentRows(ctx context.Context, out *Outcome) error {
	out.Status = StatusInfo
	out.Headers = []string{"Table", "Version", "Rows"}
	for _, table := range db.EnrichmentTables {
		var rows []struct {
			Version string
			Count   int64
		}
		err := r.db.WithContext(ctx).Raw(fmt.Sprintf(
			`SELECT version, COUNT(*) AS count FROM %s GROUP BY version ORDER BY version`, table,
		)).Scan(&rows).Error
		if err != nil {
			return store.Classify("verify.enrichment_rows", err)
		}
		if len(rows) == 0 {
			out.Rows = append(out.Rows, []string{table, "-", "0"})
			continue
		}
		for _, row := range rows {
			out.Count += row.Count
			out.Rows = append(out.Rows, []string{table, row.Version, humanize.Comma(row.Count)})
		}
	}
	return nil
}

func (r *Reporter) databaseSize(ctx context.Context, out *Outcome) error {
	if r.db.Dialector.Name() != "postgres" {
		out.Status = StatusSkipped
		out.Detail = "size statistics are only collected on postgres"
		return nil
	}
	size, err := r.scalar(ctx, "verify.database_size", `SELECT pg_database_size(current_database())`)
	if err != nil {
		return err
	}
	indexes, err := r.scalar(ctx, "verify.database_size", `SELECT COUNT(*) FROM pg_indexes WHERE schemaname = 'public'`)
	if err != nil {
		return err
	}
	var rows []struct {
		TableName string
		Bytes     int64
	}
	err = r.db.WithContext(ctx).Raw(`
		SELECT
			tablename AS table_name,
			pg_total_relation_size(quote_ident(schemaname) || '.' || quote_ident(tablename)) AS bytes
		FROM pg_tables
		WHERE schemaname = 'public'
		ORDER BY bytes DESC
		LIMIT 5`).Scan(&rows).Error
	if err != nil {
		return store.Classify("verify.database_size", err)
	}
	out.Status = StatusInfo
	out.Count = size
	out.Detail = fmt.Sprintf("%s total, %s indexes", humanize.IBytes(uint64(size)), humanize.Comma(indexes))
	out.Headers = []string{"Largest Tables", "Size"}
	for _, row := range rows {
		out.Rows = append(out.Rows, []string{row.TableName, humanize.IBytes(uint64(row.Bytes))})
	}
	return nil
}

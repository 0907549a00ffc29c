// Package marker loads the temporal marker hierarchy from CSV, parents first.
package marker

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
	"github.com/yungbote/ipksa-ingest/internal/domain/temporal"
	"github.com/yungbote/ipksa-ingest/internal/pkg/pointers"
)

// CSV column names.
const (
	colID              = "id"
	colParent          = "parent"
	colDepth           = "depth"
	colCEStart         = "ce_start"
	colCEEnd           = "ce_end"
	colAH              = "ah"
	colMarker          = "marker"
	colMarkerArabic    = "marker_arabic"
	colPlace           = "place"
	colSignificance    = "significance"
	colCertDate        = "cert_date"
	colCertEvent       = "cert_event"
	colSourceTradition = "source_tradition"
	colNotes           = "notes"
)

// Column widths of temporal_markers.
const (
	maxEventIDLen   = 20
	maxNameLen      = 255
	maxAHLen        = 50
	maxCertaintyLen = 10
)

// Validate converts one CSV row. Bad or blank dates become nil; the era
// category is never filled in.
func Validate(row Row) (*temporal.TemporalMarker, error) {
	id := strings.TrimSpace(row[colID])
	if id == "" {
		return nil, invalid(colID, "missing")
	}
	if len(id) > maxEventIDLen {
		return nil, invalid(colID, fmt.Sprintf("longer than %d characters", maxEventIDLen))
	}
	name := strings.TrimSpace(row[colMarker])
	if name == "" {
		return nil, invalid(colMarker, "missing for "+id)
	}
	if len([]rune(name)) > maxNameLen {
		return nil, invalid(colMarker, fmt.Sprintf("longer than %d characters", maxNameLen))
	}
	rawDepth := strings.TrimSpace(row[colDepth])
	depth, err := strconv.Atoi(rawDepth)
	if err != nil {
		return nil, invalid(colDepth, fmt.Sprintf("not an integer for %s: %q", id, rawDepth))
	}
	if depth < temporal.MinDepth || depth > temporal.MaxDepth {
		return nil, invalid(colDepth, fmt.Sprintf("%d outside %d..%d for %s", depth, temporal.MinDepth, temporal.MaxDepth, id))
	}

	m := &temporal.TemporalMarker{
		EventID:          id,
		Depth:            depth,
		CEStart:          temporal.ParseDate(row[colCEStart]),
		CEEnd:            temporal.ParseDate(row[colCEEnd]),
		EventNameEnglish: name,
		Significance:     pointers.NonBlank(row[colSignificance]),
		Notes:            pointers.NonBlank(row[colNotes]),
	}
	for _, c := range []struct {
		col    string
		maxLen int
		dst    **string
	}{
		{colParent, maxEventIDLen, &m.ParentEventID},
		{colAH, maxAHLen, &m.AHValue},
		{colMarkerArabic, maxNameLen, &m.EventNameArabic},
		{colPlace, maxNameLen, &m.Location},
		{colCertDate, maxCertaintyLen, &m.CertaintyDate},
		{colCertEvent, maxCertaintyLen, &m.CertaintyEvent},
		{colSourceTradition, maxNameLen, &m.SourceTradition},
	} {
		v := pointers.NonBlank(row[c.col])
		if v != nil && len([]rune(*v)) > c.maxLen {
			return nil, invalid(c.col, fmt.Sprintf("longer than %d characters for %s", c.maxLen, id))
		}
		*c.dst = v
	}
	return m, nil
}

func invalid(column, msg string) error {
	return ingesterr.NewError(ingesterr.CodeValidation, "marker.validate", column+": "+msg, nil)
}

// SortByDepth orders markers by ascending depth, keeping file order within a
// depth.
func SortByDepth(markers []*temporal.TemporalMarker) {
	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Depth < markers[j].Depth
	})
}

// Violation is a parent/child pair that breaks strict depth monotonicity.
type Violation struct {
	EventID     string
	ParentID    string
	Depth       int
	ParentDepth int
	Reason      string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s (depth %d) -> parent %s (depth %d): %s", v.EventID, v.Depth, v.ParentID, v.ParentDepth, v.Reason)
}

// CheckHierarchy finds children that would not sort after their parent. Parents
// outside the set are left to the store's foreign key.
func CheckHierarchy(markers []*temporal.TemporalMarker) []Violation {
	depthOf := make(map[string]int, len(markers))
	for _, m := range markers {
		if _, ok := depthOf[m.EventID]; !ok {
			depthOf[m.EventID] = m.Depth
		}
	}
	var out []Violation
	for _, m := range markers {
		if m.IsRoot() {
			continue
		}
		parent := *m.ParentEventID
		if parent == m.EventID {
			out = append(out, Violation{EventID: m.EventID, ParentID: parent, Depth: m.Depth, ParentDepth: m.Depth, Reason: "marker is its own parent"})
			continue
		}
		pd, ok := depthOf[parent]
		if ok && m.Depth <= pd {
			out = append(out, Violation{EventID: m.EventID, ParentID: parent, Depth: m.Depth, ParentDepth: pd, Reason: "child depth must exceed parent depth"})
		}
	}
	return out
}

package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

type Kind string

const (
	KindHadith Kind = "hadith"
	KindMarker Kind = "marker"
)

// LoadStatistics counts what one load run did. Loaded and Duplicates only move
// once the batch holding the record has committed.
type LoadStatistics struct {
	RunID    uuid.UUID
	Kind     Kind
	DryRun   bool
	Started  time.Time
	Finished time.Time

	FilesSeen           int
	RecordsSeen         int
	Validated           int
	Loaded              int
	Duplicates          int
	ValidationFailures  int
	FileErrors          int
	IntegrityViolations int
}

func New(kind Kind, dryRun bool) *LoadStatistics {
	return &LoadStatistics{
		RunID:   uuid.New(),
		Kind:    kind,
		DryRun:  dryRun,
		Started: time.Now().UTC(),
	}
}

// Finish stamps the end time. Calling it twice keeps the first stamp.
func (s *LoadStatistics) Finish() {
	if s.Finished.IsZero() {
		s.Finished = time.Now().UTC()
	}
}

func (s *LoadStatistics) Duration() time.Duration {
	end := s.Finished
	if end.IsZero() {
		end = time.Now().UTC()
	}
	return end.Sub(s.Started)
}

// Counters returns every counter in display order.
func (s *LoadStatistics) Counters() []Counter {
	return []Counter{
		{"Files seen", s.FilesSeen},
		{"Records seen", s.RecordsSeen},
		{"Validated", s.Validated},
		{"Loaded", s.Loaded},
		{"Duplicates skipped", s.Duplicates},
		{"Validation failures", s.ValidationFailures},
		{"File errors", s.FileErrors},
		{"Integrity violations", s.IntegrityViolations},
	}
}

type Counter struct {
	Label string
	Value int
}

// KV flattens the counters for structured logging.
func (s *LoadStatistics) KV() []interface{} {
	return []interface{}{
		"run_id", s.RunID.String(),
		"kind", string(s.Kind),
		"dry_run", s.DryRun,
		"files_seen", s.FilesSeen,
		"records_seen", s.RecordsSeen,
		"validated", s.Validated,
		"loaded", s.Loaded,
		"duplicates", s.Duplicates,
		"validation_failures", s.ValidationFailures,
		"file_errors", s.FileErrors,
		"integrity_violations", s.IntegrityViolations,
		"duration_ms", s.Duration().Milliseconds(),
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Width(22)
	valueStyle = lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
)

// Summary renders every counter, zero or not, so a failed run still shows how
// far it got.
func (s *LoadStatistics) Summary() string {
	var b strings.Builder
	title := fmt.Sprintf("%s load summary", s.Kind)
	if s.DryRun {
		title += " (dry run)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	for _, c := range s.Counters() {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(c.Label),
			valueStyle.Render(humanize.Comma(int64(c.Value))),
		))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("Run %s finished in %s", s.RunID, s.Duration().Round(time.Millisecond)))
	b.WriteString("\n")
	return b.String()
}

package verify

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	statusStyles = map[Status]lipgloss.Style{
		StatusPass:    lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		StatusWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		StatusFail:    lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
		StatusInfo:    lipgloss.NewStyle(),
		StatusSkipped: lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	}
)

// Render writes scalar checks as one summary table followed by one table per
// tabular check.
func Render(w io.Writer, outcomes []Outcome) error {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Data verification"))
	b.WriteString("\n")

	var summary [][]string
	for _, o := range outcomes {
		if o.Headers != nil {
			continue
		}
		summary = append(summary, []string{o.Title, humanize.Comma(o.Count), statusLabel(o)})
	}
	if len(summary) > 0 {
		b.WriteString(newTable([]string{"Check", "Count", "Status"}, summary))
		b.WriteString("\n")
	}

	for _, o := range outcomes {
		if o.Headers == nil {
			continue
		}
		b.WriteString("\n")
		b.WriteString(headingStyle.Render(o.Title))
		if o.Detail != "" {
			b.WriteString(" " + o.Detail)
		}
		b.WriteString("\n")
		if o.Status == StatusFail {
			b.WriteString(statusLabel(o))
			b.WriteString("\n")
			continue
		}
		if len(o.Rows) == 0 {
			b.WriteString("(no rows)\n")
			continue
		}
		b.WriteString(newTable(o.Headers, o.Rows))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func newTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

func statusLabel(o Outcome) string {
	style, ok := statusStyles[o.Status]
	if !ok {
		style = lipgloss.NewStyle()
	}
	var label string
	switch o.Status {
	case StatusPass:
		label = "PASS"
	case StatusWarn:
		label = fmt.Sprintf("WARN %s", humanize.Comma(o.Count))
	case StatusFail:
		label = "FAIL: " + o.Detail
	case StatusSkipped:
		label = "SKIPPED"
		if o.Detail != "" {
			label += " (" + o.Detail + ")"
		}
	default:
		label = "-"
	}
	return style.Render(label)
}

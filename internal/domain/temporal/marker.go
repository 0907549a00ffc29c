package temporal

import (
	"strings"
	"time"
)

const (
	MinDepth = 0
	MaxDepth = 4

	// DateLayout is the only civil-calendar layout accepted from the marker CSV.
	DateLayout = "2006-01-02"
)

// TemporalMarker is one event of the Prophetic-era hierarchy ("E2.1" is a child of "E2").
type TemporalMarker struct {
	EventID       string          `gorm:"column:event_id;primaryKey;size:20" json:"event_id"`
	ParentEventID *string         `gorm:"column:parent_event_id;size:20;index:idx_temporal_parent" json:"parent_event_id,omitempty"`
	Parent        *TemporalMarker `gorm:"foreignKey:ParentEventID;references:EventID" json:"-"`
	Depth         int             `gorm:"column:depth;not null;check:chk_marker_depth,depth >= 0 AND depth <= 4" json:"depth"`

	// Left unset: no documented rule derives it from the event id.
	EraCategory *string `gorm:"column:era_category;size:10;index:idx_temporal_era" json:"era_category,omitempty"`

	CEStart *time.Time `gorm:"column:ce_start;type:date;index:idx_temporal_dates,priority:1" json:"ce_start,omitempty"`
	CEEnd   *time.Time `gorm:"column:ce_end;type:date;index:idx_temporal_dates,priority:2" json:"ce_end,omitempty"`
	AHValue *string    `gorm:"column:ah_value;size:50" json:"ah_value,omitempty"`

	EventNameEnglish string  `gorm:"column:event_name_english;size:255;not null" json:"event_name_english"`
	EventNameArabic  *string `gorm:"column:event_name_arabic;size:255" json:"event_name_arabic,omitempty"`

	Location        *string `gorm:"column:location;size:255" json:"location,omitempty"`
	Significance    *string `gorm:"column:significance;type:text" json:"significance,omitempty"`
	CertaintyDate   *string `gorm:"column:certainty_date;size:10" json:"certainty_date,omitempty"`
	CertaintyEvent  *string `gorm:"column:certainty_event;size:10" json:"certainty_event,omitempty"`
	SourceTradition *string `gorm:"column:source_tradition;size:255" json:"source_tradition,omitempty"`
	Notes           *string `gorm:"column:notes;type:text" json:"notes,omitempty"`

	LoadedAt *time.Time `gorm:"column:loaded_at;default:CURRENT_TIMESTAMP" json:"loaded_at,omitempty"`
}

func (TemporalMarker) TableName() string { return "temporal_markers" }

// IsRoot reports whether the marker has no parent.
func (m *TemporalMarker) IsRoot() bool {
	return m.ParentEventID == nil || *m.ParentEventID == ""
}

// ParseDate parses a CSV date cell. Blank and malformed values are unknown (nil),
// never an error.
func ParseDate(raw string) *time.Time {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &t
}

package links

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/ipksa-ingest/internal/domain/hadith"
	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
)

type LinkType string

const (
	LinkAbrogation    LinkType = "abrogation"
	LinkTension       LinkType = "tension"
	LinkTheme         LinkType = "theme"
	LinkPedagogical   LinkType = "pedagogical"
	LinkCorroboration LinkType = "corroboration"
)

var linkTypes = []LinkType{LinkAbrogation, LinkTension, LinkTheme, LinkPedagogical, LinkCorroboration}

func ParseLinkType(raw string) (LinkType, error) {
	v := LinkType(strings.TrimSpace(raw))
	for _, lt := range linkTypes {
		if lt == v {
			return lt, nil
		}
	}
	return "", ingesterr.NewError(ingesterr.CodeValidation, "links.parse", fmt.Sprintf("unknown link type %q", raw), nil)
}

// HadithLink relates two distinct hadiths. Bidirectional links are unique per
// unordered pair, type and version (enforced by a partial index on postgres).
type HadithLink struct {
	ID              uint              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	HadithID        int64             `gorm:"column:hadith_id;not null;index:idx_links_hadith,priority:1;check:check_different_hadiths,hadith_id <> related_hadith_id" json:"hadith_id"`
	Hadith          *hadith.RawHadith `gorm:"constraint:OnDelete:CASCADE;foreignKey:HadithID;references:ID" json:"-"`
	RelatedHadithID int64             `gorm:"column:related_hadith_id;not null;index:idx_links_related,priority:1" json:"related_hadith_id"`
	RelatedHadith   *hadith.RawHadith `gorm:"constraint:OnDelete:CASCADE;foreignKey:RelatedHadithID;references:ID" json:"-"`
	Version         string            `gorm:"column:version;size:20;not null;default:'v1.0';index:idx_links_hadith,priority:2;index:idx_links_related,priority:2;index:idx_links_type,priority:2" json:"version"`

	LinkType    LinkType `gorm:"column:link_type;size:50;not null;index:idx_links_type,priority:1;check:check_link_type,link_type IN ('abrogation','tension','theme','pedagogical','corroboration')" json:"link_type"`
	LinkSubtype *string  `gorm:"column:link_subtype;size:100" json:"link_subtype,omitempty"`
	Confidence  *float64 `gorm:"column:confidence;type:numeric(4,3)" json:"confidence,omitempty"`
	Reasoning   *string  `gorm:"column:reasoning;type:text" json:"reasoning,omitempty"`

	ThemeLabel          *string `gorm:"column:theme_label;size:255" json:"theme_label,omitempty"`
	PedagogicalSequence *int    `gorm:"column:pedagogical_sequence" json:"pedagogical_sequence,omitempty"`
	IsBidirectional     bool    `gorm:"column:is_bidirectional;default:false" json:"is_bidirectional"`
	DetectedBy          *string `gorm:"column:detected_by;size:50" json:"detected_by,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (HadithLink) TableName() string { return "hadith_links" }

func (l *HadithLink) Validate() error {
	fail := func(format string, args ...any) error {
		return ingesterr.NewError(ingesterr.CodeValidation, "links.validate", fmt.Sprintf(format, args...), nil)
	}
	if l.HadithID <= 0 || l.RelatedHadithID <= 0 {
		return fail("both hadith ids must be positive")
	}
	if l.HadithID == l.RelatedHadithID {
		return fail("a hadith cannot link to itself (%d)", l.HadithID)
	}
	if _, err := ParseLinkType(string(l.LinkType)); err != nil {
		return err
	}
	if l.Confidence != nil && (*l.Confidence < 0 || *l.Confidence > 1) {
		return fail("confidence %.3f outside [0,1]", *l.Confidence)
	}
	return nil
}

// PairKey returns the unordered pair (low, high) used to deduplicate
// bidirectional links.
func (l *HadithLink) PairKey() (int64, int64) {
	if l.HadithID <= l.RelatedHadithID {
		return l.HadithID, l.RelatedHadithID
	}
	return l.RelatedHadithID, l.HadithID
}

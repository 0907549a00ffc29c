package temporal

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/ipksa-ingest/internal/domain/hadith"
	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
)

// EvidenceType classifies what a temporal assignment rests on.
type EvidenceType string

const (
	EvidenceExplicitText    EvidenceType = "explicit_text"
	EvidenceExplicitEvent   EvidenceType = "explicit_event"
	EvidenceIsnadGeneration EvidenceType = "isnad_generation"
	EvidenceSirahAlignment  EvidenceType = "sirah_alignment"
	EvidenceContextualOrder EvidenceType = "contextual_order"
	EvidenceSpeculative     EvidenceType = "speculative"
)

var evidenceTypes = []EvidenceType{
	EvidenceExplicitText,
	EvidenceExplicitEvent,
	EvidenceIsnadGeneration,
	EvidenceSirahAlignment,
	EvidenceContextualOrder,
	EvidenceSpeculative,
}

func EvidenceTypes() []EvidenceType { return append([]EvidenceType(nil), evidenceTypes...) }

func ParseEvidenceType(raw string) (EvidenceType, error) {
	v := EvidenceType(strings.TrimSpace(raw))
	for _, et := range evidenceTypes {
		if et == v {
			return et, nil
		}
	}
	return "", ingesterr.NewError(ingesterr.CodeValidation, "temporal.evidence_type", fmt.Sprintf("unknown evidence type %q", raw), nil)
}

const (
	DefaultVersion = "v1.0"

	// AH bounds cover the Prophetic era: 53 years before the Hijra to 11 AH.
	MinAH = -53.0
	MaxAH = 11.0

	minReasoningLen = 50
)

var (
	eraIDPattern    = regexp.MustCompile(`^E[0-3](\.\d+)*$`)
	subEraIDPattern = regexp.MustCompile(`^E[0-3]\.\d+$`)
)

// PCAPAssignment is one temporal assignment for a hadith, produced by the
// external annotation pipeline. Several versions may coexist per hadith.
type PCAPAssignment struct {
	ID       uint              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	HadithID int64             `gorm:"column:hadith_id;not null;uniqueIndex:unique_pcap_per_version,priority:1;index:idx_pcap_hadith_version,priority:1" json:"hadith_id"`
	Hadith   *hadith.RawHadith `gorm:"constraint:OnDelete:CASCADE;foreignKey:HadithID;references:ID" json:"-"`
	Version  string            `gorm:"column:version;size:20;not null;default:'v1.0';uniqueIndex:unique_pcap_per_version,priority:2;index:idx_pcap_hadith_version,priority:2" json:"version"`

	EraID         string  `gorm:"column:era_id;size:20;not null;index:idx_pcap_era" json:"era_id"`
	SubEraID      *string `gorm:"column:sub_era_id;size:20" json:"sub_era_id,omitempty"`
	EventWindowID *string `gorm:"column:event_window_id;size:20" json:"event_window_id,omitempty"`

	EarliestAH float64    `gorm:"column:earliest_ah;type:numeric(6,2);not null;check:check_ah_order,earliest_ah <= latest_ah" json:"earliest_ah"`
	LatestAH   float64    `gorm:"column:latest_ah;type:numeric(6,2);not null" json:"latest_ah"`
	EarliestCE *time.Time `gorm:"column:earliest_ce;type:date" json:"earliest_ce,omitempty"`
	LatestCE   *time.Time `gorm:"column:latest_ce;type:date" json:"latest_ce,omitempty"`

	AnchorBefore datatypes.JSONSlice[string] `gorm:"column:anchor_before" json:"anchor_before"`
	AnchorAfter  datatypes.JSONSlice[string] `gorm:"column:anchor_after" json:"anchor_after"`

	EvidenceType        EvidenceType `gorm:"column:evidence_type;size:50;not null;check:check_evidence_type,evidence_type IN ('explicit_text','explicit_event','isnad_generation','sirah_alignment','contextual_order','speculative')" json:"evidence_type"`
	PosteriorConfidence float64      `gorm:"column:posterior_confidence;type:numeric(4,3);not null;index:idx_pcap_confidence;check:check_confidence_range,posterior_confidence >= 0 AND posterior_confidence <= 1" json:"posterior_confidence"`
	Reasoning           string       `gorm:"column:reasoning;type:text;not null" json:"reasoning"`

	LLMModel             *string  `gorm:"column:llm_model;size:100" json:"llm_model,omitempty"`
	LLMCostUSD           *float64 `gorm:"column:llm_cost_usd;type:numeric(8,6)" json:"llm_cost_usd,omitempty"`
	ProcessingDurationMS *int     `gorm:"column:processing_duration_ms" json:"processing_duration_ms,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PCAPAssignment) TableName() string { return "pcap_assignments" }

// Validate checks the contract the external producer must satisfy before a row
// is accepted.
func (a *PCAPAssignment) Validate() error {
	const op = "temporal.pcap.validate"
	fail := func(format string, args ...any) error {
		return ingesterr.NewError(ingesterr.CodeValidation, op, fmt.Sprintf(format, args...), nil)
	}
	if a.HadithID <= 0 {
		return fail("hadith_id must be positive")
	}
	if strings.TrimSpace(a.Version) == "" {
		return fail("version is required")
	}
	if !eraIDPattern.MatchString(a.EraID) {
		return fail("era_id %q does not match E0..E3 hierarchy", a.EraID)
	}
	if a.SubEraID != nil && !subEraIDPattern.MatchString(*a.SubEraID) {
		return fail("sub_era_id %q is not a first-level sub-era", *a.SubEraID)
	}
	for _, ah := range []float64{a.EarliestAH, a.LatestAH} {
		if ah < MinAH || ah > MaxAH {
			return fail("AH value %.2f outside [%.0f, %.0f]", ah, MinAH, MaxAH)
		}
	}
	if a.EarliestAH > a.LatestAH {
		return fail("earliest_ah (%.2f) must be <= latest_ah (%.2f)", a.EarliestAH, a.LatestAH)
	}
	if a.EarliestCE != nil && a.LatestCE != nil && a.EarliestCE.After(*a.LatestCE) {
		return fail("earliest_ce after latest_ce")
	}
	if _, err := ParseEvidenceType(string(a.EvidenceType)); err != nil {
		return err
	}
	if a.PosteriorConfidence < 0 || a.PosteriorConfidence > 1 {
		return fail("posterior_confidence %.3f outside [0,1]", a.PosteriorConfidence)
	}
	if len([]rune(strings.TrimSpace(a.Reasoning))) < minReasoningLen {
		return fail("reasoning must be at least %d characters", minReasoningLen)
	}
	if a.LLMCostUSD != nil && *a.LLMCostUSD < 0 {
		return fail("llm_cost_usd must be >= 0")
	}
	if a.ProcessingDurationMS != nil && *a.ProcessingDurationMS < 0 {
		return fail("processing_duration_ms must be >= 0")
	}
	return nil
}

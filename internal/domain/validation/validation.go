package validation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/ipksa-ingest/internal/domain/hadith"
	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
)

type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusFail    Status = "fail"
)

type Category string

const (
	CategoryTemporal    Category = "temporal"
	CategorySemantic    Category = "semantic"
	CategoryConsistency Category = "consistency"
	CategoryOverall     Category = "overall"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.TrimSpace(raw)); s {
	case StatusPass, StatusWarning, StatusFail:
		return s, nil
	}
	return "", invalid("unknown status %q", raw)
}

func ParseCategory(raw string) (Category, error) {
	switch c := Category(strings.TrimSpace(raw)); c {
	case CategoryTemporal, CategorySemantic, CategoryConsistency, CategoryOverall:
		return c, nil
	}
	return "", invalid("unknown category %q", raw)
}

func ParseSeverity(raw string) (Severity, error) {
	switch s := Severity(strings.TrimSpace(raw)); s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return s, nil
	}
	return "", invalid("unknown severity %q", raw)
}

// Issue is one finding inside a validation result.
type Issue struct {
	IssueType   string   `json:"issue_type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Field       *string  `json:"field,omitempty"`
	Expected    *string  `json:"expected,omitempty"`
	Actual      *string  `json:"actual,omitempty"`
	Suggestion  *string  `json:"suggestion,omitempty"`
}

// IssueSet is the JSON document stored in validation_results.issues.
type IssueSet struct {
	Issues []Issue `json:"issues"`
}

type Result struct {
	ID       uint              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	HadithID int64             `gorm:"column:hadith_id;not null;index:idx_validation_hadith_version,priority:1" json:"hadith_id"`
	Hadith   *hadith.RawHadith `gorm:"constraint:OnDelete:CASCADE;foreignKey:HadithID;references:ID" json:"-"`
	Version  string            `gorm:"column:version;size:20;not null;default:'v1.0';index:idx_validation_hadith_version,priority:2;index:idx_validation_status,priority:2" json:"version"`

	ValidationType     string   `gorm:"column:validation_type;size:100;not null" json:"validation_type"`
	ValidationCategory Category `gorm:"column:validation_category;size:50;not null;check:check_category,validation_category IN ('temporal','semantic','consistency','overall')" json:"validation_category"`
	Status             Status   `gorm:"column:status;size:20;not null;index:idx_validation_status,priority:1;check:check_status,status IN ('pass','warning','fail')" json:"status"`

	Issues datatypes.JSONType[IssueSet] `gorm:"column:issues" json:"issues"`

	QualityScore         *float64 `gorm:"column:quality_score;type:numeric(4,3)" json:"quality_score,omitempty"`
	TemporalConfidence   *float64 `gorm:"column:temporal_confidence;type:numeric(4,3)" json:"temporal_confidence,omitempty"`
	SemanticCompleteness *float64 `gorm:"column:semantic_completeness;type:numeric(4,3)" json:"semantic_completeness,omitempty"`
	ValidationPassRate   *float64 `gorm:"column:validation_pass_rate;type:numeric(4,3)" json:"validation_pass_rate,omitempty"`

	ValidatedAt      *time.Time `gorm:"column:validated_at;default:CURRENT_TIMESTAMP" json:"validated_at,omitempty"`
	ValidatorVersion *string    `gorm:"column:validator_version;size:20" json:"validator_version,omitempty"`
}

func (Result) TableName() string { return "validation_results" }

func (r *Result) Validate() error {
	if r.HadithID <= 0 {
		return invalid("hadith_id must be positive")
	}
	if strings.TrimSpace(r.ValidationType) == "" {
		return invalid("validation_type is required")
	}
	if _, err := ParseCategory(string(r.ValidationCategory)); err != nil {
		return err
	}
	if _, err := ParseStatus(string(r.Status)); err != nil {
		return err
	}
	for name, v := range map[string]*float64{
		"quality_score":         r.QualityScore,
		"temporal_confidence":   r.TemporalConfidence,
		"semantic_completeness": r.SemanticCompleteness,
		"validation_pass_rate":  r.ValidationPassRate,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return invalid("%s %.3f outside [0,1]", name, *v)
		}
	}
	for _, is := range r.Issues.Data().Issues {
		if _, err := ParseSeverity(string(is.Severity)); err != nil {
			return err
		}
	}
	return nil
}

// QualityMetrics aggregates every validation result of one hadith version.
type QualityMetrics struct {
	HadithID int64
	Version  string

	TemporalConfidence   float64
	EvidenceStrength     float64
	ValidationPassRate   float64
	SemanticCompleteness float64
	Overall              float64

	CriticalIssues int
	HighIssues     int
	MediumIssues   int
	LowIssues      int

	Total   int
	Passed  int
	Warning int
	Failed  int
}

// FromResults tallies statuses and issue severities. Issues with an unknown
// severity count as low.
func FromResults(hadithID int64, version string, results []Result, temporalConfidence, evidenceStrength, semanticCompleteness float64) QualityMetrics {
	m := QualityMetrics{
		HadithID:             hadithID,
		Version:              version,
		TemporalConfidence:   temporalConfidence,
		EvidenceStrength:     evidenceStrength,
		SemanticCompleteness: semanticCompleteness,
		Total:                len(results),
	}
	for i := range results {
		switch results[i].Status {
		case StatusPass:
			m.Passed++
		case StatusWarning:
			m.Warning++
		case StatusFail:
			m.Failed++
		}
		for _, is := range results[i].Issues.Data().Issues {
			switch is.Severity {
			case SeverityCritical:
				m.CriticalIssues++
			case SeverityHigh:
				m.HighIssues++
			case SeverityMedium:
				m.MediumIssues++
			default:
				m.LowIssues++
			}
		}
	}
	if m.Total > 0 {
		m.ValidationPassRate = float64(m.Passed) / float64(m.Total)
	}
	m.Overall = m.OverallScore()
	return m
}

// OverallScore is 0.35 temporal + 0.25 evidence + 0.25 pass rate + 0.15 semantic,
// rounded to three places.
func (m QualityMetrics) OverallScore() float64 {
	score := 0.35*m.TemporalConfidence +
		0.25*m.EvidenceStrength +
		0.25*m.ValidationPassRate +
		0.15*m.SemanticCompleteness
	return math.Round(score*1000) / 1000
}

func invalid(format string, args ...any) error {
	return ingesterr.NewError(ingesterr.CodeValidation, "validation.validate", fmt.Sprintf(format, args...), nil)
}

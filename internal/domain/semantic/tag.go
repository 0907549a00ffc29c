package semantic

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/ipksa-ingest/internal/domain/hadith"
	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
)

const (
	DefaultVersion = "v1.0"

	minCategories     = 1
	maxCategories     = 5
	minPropositionLen = 10
)

// HMSTSTag is the stored form of an Output: layers 0-2 flattened into columns,
// layers 3-4 kept as JSON documents.
type HMSTSTag struct {
	ID       uint              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	HadithID int64             `gorm:"column:hadith_id;not null;uniqueIndex:unique_hmsts_per_version,priority:1;index:idx_hmsts_hadith_version,priority:1" json:"hadith_id"`
	Hadith   *hadith.RawHadith `gorm:"constraint:OnDelete:CASCADE;foreignKey:HadithID;references:ID" json:"-"`
	Version  string            `gorm:"column:version;size:20;not null;default:'v1.0';uniqueIndex:unique_hmsts_per_version,priority:2;index:idx_hmsts_hadith_version,priority:2;index:idx_hmsts_modality,priority:2;index:idx_hmsts_role,priority:2" json:"version"`

	Layer0Speaker   *string   `gorm:"column:layer0_speaker;size:255" json:"layer0_speaker,omitempty"`
	Layer0Addressee *string   `gorm:"column:layer0_addressee;size:255" json:"layer0_addressee,omitempty"`
	Layer0VerbType  *string   `gorm:"column:layer0_verb_type;size:100" json:"layer0_verb_type,omitempty"`
	Layer0Modality  *Modality `gorm:"column:layer0_modality;size:50;index:idx_hmsts_modality,priority:1;check:check_modality,layer0_modality IN ('obligatory','recommended','permitted','discouraged','forbidden','informative')" json:"layer0_modality,omitempty"`

	Layer1Categories datatypes.JSONSlice[string] `gorm:"column:layer1_categories;not null" json:"layer1_categories"`
	Layer2Role       FunctionalRole              `gorm:"column:layer2_role;size:50;not null;index:idx_hmsts_role,priority:1;check:check_role,layer2_role IN ('Normative','Descriptive','Explanatory','Corrective','Exemplary','Prophetic State','Divine Address','Divine Attribute')" json:"layer2_role"`

	Layer3AxisA   datatypes.JSON `gorm:"column:layer3_axis_a" json:"layer3_axis_a,omitempty"`
	Layer3AxisB   datatypes.JSON `gorm:"column:layer3_axis_b" json:"layer3_axis_b,omitempty"`
	Layer4Vectors datatypes.JSON `gorm:"column:layer4_vectors" json:"layer4_vectors,omitempty"`

	LLMModel                  *string  `gorm:"column:llm_model;size:100" json:"llm_model,omitempty"`
	LLMCostUSD                *float64 `gorm:"column:llm_cost_usd;type:numeric(8,6)" json:"llm_cost_usd,omitempty"`
	ProcessingDurationMS      *int     `gorm:"column:processing_duration_ms" json:"processing_duration_ms,omitempty"`
	SemanticCompletenessScore *float64 `gorm:"column:semantic_completeness_score;type:numeric(4,3)" json:"semantic_completeness_score,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (HMSTSTag) TableName() string { return "hmsts_tags" }

// FromOutput flattens an analysis into a storable row. Absent layer-3 axes stay
// NULL; layer 4 is always serialized.
func FromOutput(hadithID int64, version string, out Output) (*HMSTSTag, error) {
	if version == "" {
		version = DefaultVersion
	}
	tag := &HMSTSTag{
		HadithID:         hadithID,
		Version:          version,
		Layer0Speaker:    out.Layer0.Speaker,
		Layer0Addressee:  out.Layer0.Addressee,
		Layer0VerbType:   out.Layer0.VerbType,
		Layer0Modality:   out.Layer0.Modality,
		Layer1Categories: datatypes.JSONSlice[string](out.Layer1.Categories),
		Layer2Role:       out.Layer2.Role,
	}
	var err error
	if out.Layer3AxisA != nil {
		if tag.Layer3AxisA, err = marshalJSON(out.Layer3AxisA); err != nil {
			return nil, err
		}
	}
	if out.Layer3AxisB != nil {
		if tag.Layer3AxisB, err = marshalJSON(out.Layer3AxisB); err != nil {
			return nil, err
		}
	}
	if tag.Layer4Vectors, err = marshalJSON(out.Layer4); err != nil {
		return nil, err
	}
	return tag, nil
}

func marshalJSON(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, ingesterr.Wrap(ingesterr.CodeParse, "semantic.marshal", err)
	}
	return datatypes.JSON(b), nil
}

// Validate checks the row-level contract and, when present, the layer-3 readings.
func (t *HMSTSTag) Validate() error {
	if t.HadithID <= 0 {
		return validationErr("hadith_id must be positive")
	}
	if t.Layer0Modality != nil {
		if _, err := ParseModality(string(*t.Layer0Modality)); err != nil {
			return err
		}
	}
	if n := len(t.Layer1Categories); n < minCategories || n > maxCategories {
		return validationErr("layer1_categories must hold %d..%d entries, got %d", minCategories, maxCategories, n)
	}
	if _, err := ParseFunctionalRole(string(t.Layer2Role)); err != nil {
		return err
	}
	if t.SemanticCompletenessScore != nil && (*t.SemanticCompletenessScore < 0 || *t.SemanticCompletenessScore > 1) {
		return validationErr("semantic_completeness_score outside [0,1]")
	}
	if t.LLMCostUSD != nil && *t.LLMCostUSD < 0 {
		return validationErr("llm_cost_usd must be >= 0")
	}
	if len(t.Layer3AxisA) > 0 {
		var a Layer3AxisA
		if err := json.Unmarshal(t.Layer3AxisA, &a); err != nil {
			return ingesterr.Wrap(ingesterr.CodeParse, "semantic.validate", err)
		}
		for _, l := range []*InterpretiveLayer{a.Zahir, a.Ishara, a.Akhlaq, a.Haqiqa} {
			if err := l.validate(); err != nil {
				return err
			}
		}
	}
	if len(t.Layer3AxisB) > 0 {
		var b Layer3AxisB
		if err := json.Unmarshal(t.Layer3AxisB, &b); err != nil {
			return ingesterr.Wrap(ingesterr.CodeParse, "semantic.validate", err)
		}
		for _, l := range []*InterpretiveLayer{b.Amal, b.Niyya, b.Hadd, b.Marifa} {
			if err := l.validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

func validationErr(format string, args ...any) error {
	return ingesterr.NewError(ingesterr.CodeValidation, "semantic.validate", fmt.Sprintf(format, args...), nil)
}

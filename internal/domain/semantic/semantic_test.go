package semantic

import (
	"encoding/json"
	"testing"

	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
	"github.com/yungbote/ipksa-ingest/internal/pkg/pointers"
)

func TestParseClosedSets(t *testing.T) {
	if m, err := ParseModality(" forbidden "); err != nil || m != ModalityForbidden {
		t.Fatalf("ParseModality = %q, %v", m, err)
	}
	if r, err := ParseFunctionalRole("Prophetic State"); err != nil || r != RolePropheticState {
		t.Fatalf("ParseFunctionalRole = %q, %v", r, err)
	}
	if c, err := ParseCertainty("ẓannī"); err != nil || c != CertaintyDhanni {
		t.Fatalf("ParseCertainty = %q, %v", c, err)
	}
	if _, err := ParseFunctionalRole("normative"); !ingesterr.IsCode(err, ingesterr.CodeValidation) {
		t.Fatalf("roles are case-sensitive, got %v", err)
	}
	if _, err := ParseScope("global"); err == nil {
		t.Fatalf("expected error for unknown scope")
	}
}

func sampleOutput() Output {
	mod := ModalityObligatory
	return Output{
		Layer0: Layer0{Speaker: pointers.String("Prophet Muhammad"), Modality: &mod},
		Layer1: Layer1{Categories: []string{"Worship", "Ethics"}},
		Layer2: Layer2{Role: RoleNormative},
		Layer3AxisA: &Layer3AxisA{Zahir: &InterpretiveLayer{
			Proposition:    "Perform ritual prayer five times",
			Scope:          ScopeUniversal,
			Certainty:      CertaintyQati,
			Conditionality: ConditionalityAbsolute,
		}},
		Layer4: Layer4Vectors{Values: []string{"discipline"}},
	}
}

func TestFromOutput(t *testing.T) {
	tag, err := FromOutput(7, "", sampleOutput())
	if err != nil {
		t.Fatalf("FromOutput: %v", err)
	}
	if tag.Version != DefaultVersion || tag.HadithID != 7 {
		t.Fatalf("unexpected identity: %+v", tag)
	}
	if tag.Layer2Role != RoleNormative || *tag.Layer0Modality != ModalityObligatory {
		t.Fatalf("layers not flattened: %+v", tag)
	}
	if tag.Layer3AxisB != nil {
		t.Fatalf("absent axis B should stay nil")
	}
	var vec Layer4Vectors
	if err := json.Unmarshal(tag.Layer4Vectors, &vec); err != nil || len(vec.Values) != 1 {
		t.Fatalf("layer4 not serialized: %v %+v", err, vec)
	}
	if err := tag.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	out := sampleOutput()
	out.Layer1.Categories = nil
	tag, _ := FromOutput(1, "v1.0", out)
	if err := tag.Validate(); !ingesterr.IsCode(err, ingesterr.CodeValidation) {
		t.Fatalf("empty categories should fail, got %v", err)
	}

	out = sampleOutput()
	out.Layer3AxisA.Zahir.Proposition = "short"
	tag, _ = FromOutput(1, "v1.0", out)
	if err := tag.Validate(); !ingesterr.IsCode(err, ingesterr.CodeValidation) {
		t.Fatalf("short proposition should fail, got %v", err)
	}

	tag, _ = FromOutput(1, "v1.0", sampleOutput())
	tag.SemanticCompletenessScore = pointers.Float64(1.5)
	if err := tag.Validate(); err == nil {
		t.Fatalf("score > 1 should fail")
	}
}

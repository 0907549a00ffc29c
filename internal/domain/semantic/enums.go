package semantic

import (
	"fmt"
	"strings"

	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
)

// Modality is the deontic force of the text (layer 0).
type Modality string

const (
	ModalityObligatory  Modality = "obligatory"
	ModalityRecommended Modality = "recommended"
	ModalityPermitted   Modality = "permitted"
	ModalityDiscouraged Modality = "discouraged"
	ModalityForbidden   Modality = "forbidden"
	ModalityInformative Modality = "informative"
)

// FunctionalRole is the primary communicative function (layer 2).
type FunctionalRole string

const (
	RoleNormative       FunctionalRole = "Normative"
	RoleDescriptive     FunctionalRole = "Descriptive"
	RoleExplanatory     FunctionalRole = "Explanatory"
	RoleCorrective      FunctionalRole = "Corrective"
	RoleExemplary       FunctionalRole = "Exemplary"
	RolePropheticState  FunctionalRole = "Prophetic State"
	RoleDivineAddress   FunctionalRole = "Divine Address"
	RoleDivineAttribute FunctionalRole = "Divine Attribute"
)

type Scope string

const (
	ScopeIndividual Scope = "individual"
	ScopeCommunal   Scope = "communal"
	ScopeUniversal  Scope = "universal"
)

// Certainty is the epistemic grade of a proposition.
type Certainty string

const (
	CertaintyQati   Certainty = "qatʿī"
	CertaintyDhanni Certainty = "ẓannī"
	CertaintyIshari Certainty = "ishārī"
)

type Conditionality string

const (
	ConditionalityAbsolute   Conditionality = "absolute"
	ConditionalityContextual Conditionality = "contextual"
)

var (
	modalities      = []Modality{ModalityObligatory, ModalityRecommended, ModalityPermitted, ModalityDiscouraged, ModalityForbidden, ModalityInformative}
	roles           = []FunctionalRole{RoleNormative, RoleDescriptive, RoleExplanatory, RoleCorrective, RoleExemplary, RolePropheticState, RoleDivineAddress, RoleDivineAttribute}
	scopes          = []Scope{ScopeIndividual, ScopeCommunal, ScopeUniversal}
	certainties     = []Certainty{CertaintyQati, CertaintyDhanni, CertaintyIshari}
	conditionalities = []Conditionality{ConditionalityAbsolute, ConditionalityContextual}
)

func parseClosed[T ~string](field, raw string, set []T) (T, error) {
	v := T(strings.TrimSpace(raw))
	for _, s := range set {
		if s == v {
			return s, nil
		}
	}
	var zero T
	return zero, ingesterr.NewError(ingesterr.CodeValidation, "semantic.parse", fmt.Sprintf("unknown %s %q", field, raw), nil)
}

func ParseModality(raw string) (Modality, error) { return parseClosed("modality", raw, modalities) }

func ParseFunctionalRole(raw string) (FunctionalRole, error) {
	return parseClosed("functional role", raw, roles)
}

func ParseScope(raw string) (Scope, error) { return parseClosed("scope", raw, scopes) }

func ParseCertainty(raw string) (Certainty, error) {
	return parseClosed("certainty", raw, certainties)
}

func ParseConditionality(raw string) (Conditionality, error) {
	return parseClosed("conditionality", raw, conditionalities)
}

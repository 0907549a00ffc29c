package semantic

// Layer0 holds the textual facts: who speaks, to whom, and with what force.
type Layer0 struct {
	Speaker   *string   `json:"speaker,omitempty"`
	Addressee *string   `json:"addressee,omitempty"`
	VerbType  *string   `json:"verb_type,omitempty"`
	Modality  *Modality `json:"modality,omitempty"`
}

// Layer1 lists one to five ontological categories.
type Layer1 struct {
	Categories []string `json:"categories"`
}

type Layer2 struct {
	Role FunctionalRole `json:"role"`
}

// InterpretiveLayer is one reading on a layer-3 axis.
type InterpretiveLayer struct {
	Proposition    string         `json:"proposition"`
	Scope          Scope          `json:"scope"`
	Certainty      Certainty      `json:"certainty"`
	Conditionality Conditionality `json:"conditionality"`
}

// Layer3AxisA covers the hermeneutic readings.
type Layer3AxisA struct {
	Zahir  *InterpretiveLayer `json:"zahir,omitempty"`
	Ishara *InterpretiveLayer `json:"ishara,omitempty"`
	Akhlaq *InterpretiveLayer `json:"akhlaq,omitempty"`
	Haqiqa *InterpretiveLayer `json:"haqiqa,omitempty"`
}

// Layer3AxisB covers the spiritual-ascent readings.
type Layer3AxisB struct {
	Amal   *InterpretiveLayer `json:"amal,omitempty"`
	Niyya  *InterpretiveLayer `json:"niyya,omitempty"`
	Hadd   *InterpretiveLayer `json:"hadd,omitempty"`
	Marifa *InterpretiveLayer `json:"marifa,omitempty"`
}

type Layer4Vectors struct {
	DivineAttributes   []string `json:"divine_attributes"`
	FacultiesAddressed []string `json:"faculties_addressed"`
	MaqamHal           *string  `json:"maqam_hal,omitempty"`
	LegalCause         *string  `json:"legal_cause,omitempty"`
	Objective          *string  `json:"objective,omitempty"`
	Values             []string `json:"values"`
	Vices              []string `json:"vices"`
}

// Output is the complete five-layer analysis as produced upstream.
type Output struct {
	Layer0      Layer0        `json:"layer0"`
	Layer1      Layer1        `json:"layer1"`
	Layer2      Layer2        `json:"layer2"`
	Layer3AxisA *Layer3AxisA  `json:"layer3_axis_a,omitempty"`
	Layer3AxisB *Layer3AxisB  `json:"layer3_axis_b,omitempty"`
	Layer4      Layer4Vectors `json:"layer4"`
}

func (l *InterpretiveLayer) validate() error {
	if l == nil {
		return nil
	}
	if len([]rune(l.Proposition)) < minPropositionLen {
		return validationErr("proposition must be at least %d characters", minPropositionLen)
	}
	if _, err := ParseScope(string(l.Scope)); err != nil {
		return err
	}
	if _, err := ParseCertainty(string(l.Certainty)); err != nil {
		return err
	}
	if _, err := ParseConditionality(string(l.Conditionality)); err != nil {
		return err
	}
	return nil
}

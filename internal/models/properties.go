package models

// Field identifies one thermodynamic property of a species.
type Field string

const (
	FieldEnthalpy     Field = "dHf" // standard enthalpy of formation, kJ/mol
	FieldEntropy      Field = "S"   // standard molar entropy, J/mol·K
	FieldHeatCapacity Field = "Cp"  // molar heat capacity, J/mol·K
)

// Fields lists every property in resolution order.
var Fields = []Field{FieldEnthalpy, FieldEntropy, FieldHeatCapacity}

// Label returns a human-readable name for the field.
func (f Field) Label() string {
	switch f {
	case FieldEnthalpy:
		return "standard enthalpy of formation"
	case FieldEntropy:
		return "standard molar entropy"
	case FieldHeatCapacity:
		return "heat capacity"
	}
	return string(f)
}

// Tier records which data source served a field.
type Tier string

const (
	TierRemote     Tier = "remote"
	TierFallback   Tier = "fallback"
	TierUnresolved Tier = "unresolved"
)

// Quantity is a value in the unit its source reported it in.
// An empty Unit means the canonical unit of the field.
type Quantity struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  string  `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// Record is a partial property set as returned by a data source.
type Record map[Field]Quantity

// Properties holds canonical-unit values. A nil field is missing data.
type Properties struct {
	EnthalpyOfFormation *float64 `json:"dHf,omitempty"`
	StandardEntropy     *float64 `json:"S,omitempty"`
	HeatCapacity        *float64 `json:"Cp,omitempty"`
}

func (p *Properties) ptr(f Field) **float64 {
	switch f {
	case FieldEnthalpy:
		return &p.EnthalpyOfFormation
	case FieldEntropy:
		return &p.StandardEntropy
	case FieldHeatCapacity:
		return &p.HeatCapacity
	}
	return nil
}

// Get returns the value of f and whether it is present.
func (p Properties) Get(f Field) (float64, bool) {
	v := p.ptr(f)
	if v == nil || *v == nil {
		return 0, false
	}
	return **v, true
}

// Set stores v for field f.
func (p *Properties) Set(f Field, v float64) {
	if dst := p.ptr(f); dst != nil {
		*dst = &v
	}
}

// Has reports whether f is present.
func (p Properties) Has(f Field) bool {
	_, ok := p.Get(f)
	return ok
}

// Resolution is the outcome of resolving one species across all data tiers.
type Resolution struct {
	Species    string         `json:"species"`
	Name       string         `json:"name,omitempty"`
	Properties Properties     `json:"properties"`
	Tiers      map[Field]Tier `json:"tiers"`
}

// Tier returns the provenance of field f, unresolved when unknown.
func (r Resolution) Tier(f Field) Tier {
	if t, ok := r.Tiers[f]; ok {
		return t
	}
	return TierUnresolved
}

// Resolved reports whether any field was found in some tier.
func (r Resolution) Resolved() bool {
	for _, f := range Fields {
		if r.Properties.Has(f) {
			return true
		}
	}
	return false
}

// PropertyTable maps species IDs to their resolutions for one evaluation.
type PropertyTable map[string]Resolution

package models

// Spontaneity classifies the sign of ΔG at the evaluation temperature.
type Spontaneity string

const (
	Spontaneous    Spontaneity = "spontaneous"
	NonSpontaneous Spontaneity = "non-spontaneous"
	Equilibrium    Spontaneity = "equilibrium"
)

// Warning kinds attached to a ReactionResult.
const (
	WarningFallbackTier        = "fallback_tier"
	WarningMissingHeatCapacity = "missing_heat_capacity"
	WarningUnresolvedField     = "unresolved_field"
	WarningPhaseIgnored        = "phase_ignored"
)

// Warning is a non-fatal note about the data behind a result.
type Warning struct {
	Kind    string `json:"kind"`
	Species string `json:"species,omitempty"`
	Field   Field  `json:"field,omitempty"`
	Message string `json:"message"`
}

// Contribution is one term's stoichiometrically weighted share of the totals.
// Values are signed: products add, reactants subtract.
type Contribution struct {
	Species      string   `json:"species"`
	Side         Side     `json:"side"`
	Coefficient  int      `json:"coefficient"`
	Enthalpy     float64  `json:"enthalpy"`                // kJ/mol
	Entropy      float64  `json:"entropy"`                 // J/mol·K
	HeatCapacity *float64 `json:"heat_capacity,omitempty"` // J/mol·K
}

// ReactionResult is the outcome of one (equation, temperature) evaluation.
type ReactionResult struct {
	Equation       string         `json:"equation"`
	Temperature    float64        `json:"temperature"`
	DeltaH         float64        `json:"delta_h"` // kJ/mol at Temperature
	DeltaS         float64        `json:"delta_s"` // J/mol·K at Temperature
	DeltaG         float64        `json:"delta_g"` // kJ/mol at Temperature
	StandardDeltaH float64        `json:"standard_delta_h"`
	StandardDeltaS float64        `json:"standard_delta_s"`
	Method         string         `json:"method"`
	Spontaneity    Spontaneity    `json:"spontaneity"`
	Contributions  []Contribution `json:"contributions"`
	Warnings       []Warning      `json:"warnings"`
}

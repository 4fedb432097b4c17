// Package engine combines per-species reference data into reaction ΔH, ΔS and ΔG.
package engine

import (
	"fmt"
	"math"

	"github.com/starford/thermo/internal/apperr"
	"github.com/starford/thermo/internal/models"
)

// ReferenceTemperature is the temperature (K) of the tabulated standard data.
const ReferenceTemperature = 298.15

// EquilibriumEpsilon is the |ΔG| (kJ/mol) below which a reaction is at equilibrium.
const EquilibriumEpsilon = 1e-6

// Engine evaluates reactions. The zero value applies no heat-capacity correction.
type Engine struct {
	heatCapacityCorrection bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithHeatCapacityCorrection enables the Kirchhoff correction whenever every
// species carries Cp data.
func WithHeatCapacityCorrection(enabled bool) Option {
	return func(e *Engine) { e.heatCapacityCorrection = enabled }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ValidateTemperature rejects temperatures that are not finite positive Kelvin values.
func ValidateTemperature(kelvin float64) error {
	if math.IsNaN(kelvin) || math.IsInf(kelvin, 0) || kelvin <= 0 {
		return &apperr.InvalidTemperatureError{Kelvin: kelvin}
	}
	return nil
}

// Evaluate computes the reaction quantities for eq at temperature kelvin.
// Missing ΔHf° or S° for any species is fatal; missing Cp only downgrades
// the temperature treatment.
func (e *Engine) Evaluate(eq *models.Equation, table models.PropertyTable, kelvin float64) (*models.ReactionResult, error) {
	if err := ValidateTemperature(kelvin); err != nil {
		return nil, err
	}
	if err := checkRequired(eq, table); err != nil {
		return nil, err
	}

	res := &models.ReactionResult{
		Equation:    eq.String(),
		Temperature: kelvin,
		Warnings:    []models.Warning{},
	}

	var dH, dS, dCp float64
	haveCp := true
	for _, t := range eq.Terms() {
		props := table[t.Species.ID].Properties
		sign := 1.0
		if t.Side == models.SideReactant {
			sign = -1.0
		}
		nu := sign * float64(t.Coefficient)
		hf, _ := props.Get(models.FieldEnthalpy)
		s, _ := props.Get(models.FieldEntropy)

		c := models.Contribution{
			Species:     t.Species.ID,
			Side:        t.Side,
			Coefficient: t.Coefficient,
			Enthalpy:    nu * hf,
			Entropy:     nu * s,
		}
		if cp, ok := props.Get(models.FieldHeatCapacity); ok {
			w := nu * cp
			c.HeatCapacity = &w
			dCp += w
		} else {
			haveCp = false
		}
		dH += c.Enthalpy
		dS += c.Entropy
		res.Contributions = append(res.Contributions, c)
	}

	res.StandardDeltaH = dH
	res.StandardDeltaS = dS
	res.Warnings = append(res.Warnings, tierWarnings(eq, table, e.heatCapacityCorrection)...)
	res.Warnings = append(res.Warnings, phaseWarnings(eq)...)

	strat := e.strategy(haveCp, dCp)
	if e.heatCapacityCorrection && !haveCp {
		res.Warnings = append(res.Warnings, models.Warning{
			Kind:    models.WarningMissingHeatCapacity,
			Field:   models.FieldHeatCapacity,
			Message: "heat capacity missing for at least one species; ΔH and ΔS treated as temperature independent",
		})
	}

	res.Method = strat.Name()
	res.DeltaH, res.DeltaS = strat.Adjust(dH, dS, kelvin)
	res.DeltaG = GibbsEnergy(res.DeltaH, res.DeltaS, kelvin)
	res.Spontaneity = Classify(res.DeltaG)
	return res, nil
}

// GibbsEnergy returns ΔG = ΔH − T·ΔS in kJ/mol given ΔH in kJ/mol and ΔS in J/mol·K.
func GibbsEnergy(deltaH, deltaS, kelvin float64) float64 {
	return deltaH - kelvin*(deltaS/1000)
}

// Classify maps ΔG (kJ/mol) to a spontaneity verdict.
func Classify(deltaG float64) models.Spontaneity {
	switch {
	case deltaG < -EquilibriumEpsilon:
		return models.Spontaneous
	case deltaG > EquilibriumEpsilon:
		return models.NonSpontaneous
	default:
		return models.Equilibrium
	}
}

// checkRequired collects every missing required field in equation order.
func checkRequired(eq *models.Equation, table models.PropertyTable) error {
	var missing []apperr.MissingField
	for _, id := range eq.Species() {
		props := table[id].Properties
		for _, f := range []models.Field{models.FieldEnthalpy, models.FieldEntropy} {
			if !props.Has(f) {
				missing = append(missing, apperr.MissingField{Species: id, Field: f.Label()})
			}
		}
	}
	if len(missing) > 0 {
		return &apperr.MissingDataError{Missing: missing}
	}
	return nil
}

// phaseWarnings flags terms labelled with a condensed or aqueous phase. Lookup
// ignores the label, so such terms get the values stored for the bare formula.
func phaseWarnings(eq *models.Equation) []models.Warning {
	var out []models.Warning
	seen := map[string]bool{}
	for _, t := range eq.Terms() {
		sp := t.Species
		if sp.Phase == "" || sp.Phase == "g" || seen[sp.String()] {
			continue
		}
		seen[sp.String()] = true
		out = append(out, models.Warning{
			Kind:    models.WarningPhaseIgnored,
			Species: sp.ID,
			Message: fmt.Sprintf("phase (%s) of %s ignored; values are for the species as tabulated, usually gas", sp.Phase, sp.ID),
		})
	}
	return out
}

func tierWarnings(eq *models.Equation, table models.PropertyTable, wantCp bool) []models.Warning {
	var out []models.Warning
	for _, id := range eq.Species() {
		res := table[id]
		for _, f := range models.Fields {
			switch res.Tier(f) {
			case models.TierFallback:
				out = append(out, models.Warning{
					Kind:    models.WarningFallbackTier,
					Species: id,
					Field:   f,
					Message: fmt.Sprintf("%s for %s served from fallback table", f.Label(), id),
				})
			case models.TierUnresolved:
				if f == models.FieldHeatCapacity && wantCp {
					out = append(out, models.Warning{
						Kind:    models.WarningUnresolvedField,
						Species: id,
						Field:   f,
						Message: fmt.Sprintf("%s for %s unavailable", f.Label(), id),
					})
				}
			}
		}
	}
	return out
}

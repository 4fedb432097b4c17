// Package units converts source-reported quantities into the canonical units
// used by the engine: kJ/mol for enthalpy, J/mol·K for entropy and heat capacity.
package units

import (
	"fmt"
	"math"
	"strings"

	"github.com/starford/thermo/internal/models"
)

const calorie = 4.184 // J

// Canonical returns the canonical unit for a field.
func Canonical(f models.Field) string {
	if f == models.FieldEnthalpy {
		return "kJ/mol"
	}
	return "J/mol·K"
}

var energyFactors = map[string]float64{
	"kj/mol":   1,
	"j/mol":    1e-3,
	"kcal/mol": calorie,
	"cal/mol":  calorie * 1e-3,
}

var molarKelvinFactors = map[string]float64{
	"j/mol·k":   1,
	"kj/mol·k":  1e3,
	"cal/mol·k": calorie,
}

// Normalize converts q into the canonical unit of f.
func Normalize(f models.Field, q models.Quantity) (float64, error) {
	if math.IsNaN(q.Value) || math.IsInf(q.Value, 0) {
		return 0, fmt.Errorf("units: %s value is not finite", f)
	}
	if q.Unit == "" {
		return q.Value, nil
	}
	key := normalizeSpelling(q.Unit)

	var factors map[string]float64
	switch f {
	case models.FieldEnthalpy:
		factors = energyFactors
	case models.FieldEntropy, models.FieldHeatCapacity:
		factors = molarKelvinFactors
	default:
		return 0, fmt.Errorf("units: unknown field %q", f)
	}
	factor, ok := factors[key]
	if !ok {
		return 0, fmt.Errorf("units: unsupported unit %q for %s", q.Unit, f)
	}
	return q.Value * factor, nil
}

// normalizeSpelling folds the common ways of writing J/(mol·K) into one key.
func normalizeSpelling(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.NewReplacer("(", "", ")", "", "*", "·", ".", "·", " ", "·", "⋅", "·").Replace(u)
	u = strings.Replace(u, "mol/k", "mol·k", 1)
	return u
}

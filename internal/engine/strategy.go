package engine

import "math"

// Strategy moves standard-state ΔH° (kJ/mol) and ΔS° (J/mol·K) to temperature T.
type Strategy interface {
	Name() string
	Adjust(deltaH, deltaS, kelvin float64) (float64, float64)
}

// Constant treats ΔH and ΔS as independent of temperature.
type Constant struct{}

func (Constant) Name() string { return "constant" }

func (Constant) Adjust(deltaH, deltaS, _ float64) (float64, float64) {
	return deltaH, deltaS
}

// Kirchhoff applies a constant-ΔCp correction from ReferenceTemperature:
// ΔH(T) = ΔH° + ΔCp·(T − T°) and ΔS(T) = ΔS° + ΔCp·ln(T/T°).
type Kirchhoff struct {
	DeltaCp float64 // J/mol·K
}

func (Kirchhoff) Name() string { return "kirchhoff" }

func (k Kirchhoff) Adjust(deltaH, deltaS, kelvin float64) (float64, float64) {
	h := deltaH + k.DeltaCp*(kelvin-ReferenceTemperature)/1000
	s := deltaS + k.DeltaCp*math.Log(kelvin/ReferenceTemperature)
	return h, s
}

func (e *Engine) strategy(haveCp bool, deltaCp float64) Strategy {
	if e.heatCapacityCorrection && haveCp {
		return Kirchhoff{DeltaCp: deltaCp}
	}
	return Constant{}
}

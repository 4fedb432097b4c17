// Package diagram converts reaction results into the energy levels handed to
// an external renderer.
package diagram

import (
	"context"

	"github.com/starford/thermo/internal/models"
)

// State is one labelled energy level in kJ/mol, relative to the reactants.
type State struct {
	Label  string  `json:"label"`
	Energy float64 `json:"energy"`
}

// Renderer draws an ordered sequence of states. Plotting lives outside this module.
type Renderer interface {
	Render(ctx context.Context, states []State) error
}

// BuildStates returns the reactant baseline at zero followed by the products at ΔH.
func BuildStates(res *models.ReactionResult) []State {
	return []State{
		{Label: "Reactants", Energy: 0},
		{Label: "Products", Energy: res.DeltaH},
	}
}

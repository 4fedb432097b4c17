package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/thermo/internal/apperr"
	"github.com/starford/thermo/internal/models"
	"github.com/starford/thermo/internal/thermoservice"
)

const maxEquationLength = 2000

// EvaluateRequest is the body of POST /api/evaluate. Temperature defaults
// to the configured value when omitted.
type EvaluateRequest struct {
	Equation     string   `json:"equation" example:"CH4 + 2 O2 -> CO2 + 2 H2O"`
	Temperature  *float64 `json:"temperature,omitempty" example:"298.15"`
	CheckBalance *bool    `json:"check_balance,omitempty"`
}

// Validate checks request shape. Temperature semantics are enforced by the engine.
func (r EvaluateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Equation, validation.Required, validation.Length(1, maxEquationLength)),
	)
}

// EquationRequest is the body of POST /api/parse and POST /api/balance.
type EquationRequest struct {
	Equation string `json:"equation" example:"2 H2 + O2 -> 2 H2O"`
}

// Validate checks request shape.
func (r EquationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Equation, validation.Required, validation.Length(1, maxEquationLength)),
	)
}

// EvaluateResponse aliases the service report.
type EvaluateResponse = thermoservice.Report

// ParseResponse describes a parsed equation.
type ParseResponse struct {
	Canonical string           `json:"canonical"`
	Equation  *models.Equation `json:"equation"`
	Species   []string         `json:"species"`
	Reactants models.Formula   `json:"reactant_atoms"`
	Products  models.Formula   `json:"product_atoms"`
}

// BalanceResponse reports element conservation. Elements lists only the
// elements that differ.
type BalanceResponse struct {
	Canonical string                    `json:"canonical"`
	Balanced  bool                      `json:"balanced"`
	Elements  []apperr.ElementImbalance `json:"elements,omitempty"`
}

func newParseResponse(eq *models.Equation) ParseResponse {
	reactants, products := eq.AtomCounts()
	return ParseResponse{
		Canonical: eq.String(),
		Equation:  eq,
		Species:   eq.Species(),
		Reactants: reactants,
		Products:  products,
	}
}

// Package apperr defines the error taxonomy shared by the parser, engine and transports.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
)

// ParseError reports malformed equation or formula text.
// Pos is the zero-based byte offset of Token within the original input.
type ParseError struct {
	Pos   int
	Token string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("parse error at position %d near %q: %s", e.Pos, e.Token, e.Msg)
}

// InvalidTemperatureError is returned for a temperature that is not a positive Kelvin value.
type InvalidTemperatureError struct {
	Kelvin float64
}

func (e *InvalidTemperatureError) Error() string {
	return fmt.Sprintf("invalid temperature %g K: must be greater than zero", e.Kelvin)
}

// MissingField names one required property that stayed unresolved for a species.
type MissingField struct {
	Species string `json:"species"`
	Field   string `json:"field"`
}

// MissingDataError lists every required property the engine could not find.
type MissingDataError struct {
	Missing []MissingField
}

func (e *MissingDataError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		parts = append(parts, fmt.Sprintf("%s (%s)", m.Species, m.Field))
	}
	return "missing thermodynamic data: " + strings.Join(parts, ", ")
}

// Species returns the distinct species named by the error, in order.
func (e *MissingDataError) Species() []string {
	seen := make(map[string]struct{}, len(e.Missing))
	var out []string
	for _, m := range e.Missing {
		if _, ok := seen[m.Species]; ok {
			continue
		}
		seen[m.Species] = struct{}{}
		out = append(out, m.Species)
	}
	return out
}

// ElementImbalance is the per-element atom count on each side of an equation.
type ElementImbalance struct {
	Element   string `json:"element"`
	Reactants int    `json:"reactants"`
	Products  int    `json:"products"`
}

// ImbalanceError reports elements whose atom counts differ between the two sides.
type ImbalanceError struct {
	Elements []ElementImbalance
}

func (e *ImbalanceError) Error() string {
	parts := make([]string, 0, len(e.Elements))
	for _, el := range e.Elements {
		parts = append(parts, fmt.Sprintf("%s %d != %d", el.Element, el.Reactants, el.Products))
	}
	return "equation is not balanced: " + strings.Join(parts, ", ")
}

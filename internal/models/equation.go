package models

import (
	"strconv"
	"strings"

	"github.com/starford/thermo/internal/apperr"
)

// Side tells which half of an equation a term belongs to.
type Side string

const (
	SideReactant Side = "reactant"
	SideProduct  Side = "product"
)

// Term is one species with its stoichiometric coefficient.
type Term struct {
	Species     Species `json:"species"`
	Coefficient int     `json:"coefficient"`
}

// String renders the term, omitting a coefficient of one.
func (t Term) String() string {
	if t.Coefficient == 1 {
		return t.Species.String()
	}
	return strconv.Itoa(t.Coefficient) + " " + t.Species.String()
}

// Equation is a parsed chemical equation. Terms keep their input order and
// duplicates on the same side are separate terms.
type Equation struct {
	Reactants []Term `json:"reactants"`
	Products  []Term `json:"products"`
}

// String re-serializes the equation in the canonical "a A + b B -> c C" form.
func (e *Equation) String() string {
	return joinTerms(e.Reactants) + " -> " + joinTerms(e.Products)
}

func joinTerms(terms []Term) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

// Species returns the distinct species IDs, reactants first, in first-seen order.
func (e *Equation) Species() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, side := range [][]Term{e.Reactants, e.Products} {
		for _, t := range side {
			if _, ok := seen[t.Species.ID]; ok {
				continue
			}
			seen[t.Species.ID] = struct{}{}
			out = append(out, t.Species.ID)
		}
	}
	return out
}

// Terms returns every term tagged with its side, reactants first.
func (e *Equation) Terms() []SidedTerm {
	out := make([]SidedTerm, 0, len(e.Reactants)+len(e.Products))
	for _, t := range e.Reactants {
		out = append(out, SidedTerm{Term: t, Side: SideReactant})
	}
	for _, t := range e.Products {
		out = append(out, SidedTerm{Term: t, Side: SideProduct})
	}
	return out
}

// SidedTerm is a term together with the side it appears on.
type SidedTerm struct {
	Term
	Side Side
}

// AtomCounts returns the total atoms per element on each side.
func (e *Equation) AtomCounts() (reactants, products Formula) {
	reactants, products = Formula{}, Formula{}
	for _, t := range e.Reactants {
		reactants.Add(t.Species.Formula, t.Coefficient)
	}
	for _, t := range e.Products {
		products.Add(t.Species.Formula, t.Coefficient)
	}
	return reactants, products
}

// CheckBalance verifies conservation of every element across the equation.
// It returns *apperr.ImbalanceError naming each unbalanced element.
func (e *Equation) CheckBalance() error {
	left, right := e.AtomCounts()
	all := Formula{}
	all.Add(left, 1)
	all.Add(right, 1)

	var bad []apperr.ElementImbalance
	for _, el := range all.Elements() {
		if left[el] != right[el] {
			bad = append(bad, apperr.ElementImbalance{Element: el, Reactants: left[el], Products: right[el]})
		}
	}
	if len(bad) > 0 {
		return &apperr.ImbalanceError{Elements: bad}
	}
	return nil
}

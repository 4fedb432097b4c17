// Package models defines the domain types shared across the thermo packages.
package models

import (
	"fmt"
	"sort"
)

// Formula maps an element symbol to its atom count.
type Formula map[string]int

// Validate checks that the formula is non-empty and every count is positive.
func (f Formula) Validate() error {
	if len(f) == 0 {
		return fmt.Errorf("formula is empty")
	}
	for el, n := range f {
		if n < 1 {
			return fmt.Errorf("element %s has count %d", el, n)
		}
	}
	return nil
}

// Elements returns the element symbols in lexical order.
func (f Formula) Elements() []string {
	out := make([]string, 0, len(f))
	for el := range f {
		out = append(out, el)
	}
	sort.Strings(out)
	return out
}

// Add accumulates other into f, each count multiplied by times.
func (f Formula) Add(other Formula, times int) {
	for el, n := range other {
		f[el] += n * times
	}
}

// Equal reports whether both formulas carry identical element counts.
func (f Formula) Equal(other Formula) bool {
	if len(f) != len(other) {
		return false
	}
	for el, n := range f {
		if other[el] != n {
			return false
		}
	}
	return true
}

// Species is a chemical substance as it appears in an equation.
// ID is the normalized formula text used as the lookup key for every data tier.
type Species struct {
	ID      string  `json:"id"`
	Formula Formula `json:"formula"`
	Name    string  `json:"name,omitempty"`
	Phase   string  `json:"phase,omitempty"` // "g", "l", "s" or "aq"
}

// String renders the species with its phase annotation, if any.
func (s Species) String() string {
	if s.Phase == "" {
		return s.ID
	}
	return s.ID + "(" + s.Phase + ")"
}

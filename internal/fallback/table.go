// Package fallback provides the curated species table consulted when the
// remote data source cannot supply a field.
package fallback

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/starford/thermo/internal/models"
	"github.com/starford/thermo/internal/parser"
	"github.com/starford/thermo/internal/units"
)

// Entry is one curated species. Nil values are unknown.
type Entry struct {
	Name         string   `yaml:"name,omitempty"`
	Enthalpy     *float64 `yaml:"dHf,omitempty"`
	Entropy      *float64 `yaml:"S,omitempty"`
	HeatCapacity *float64 `yaml:"Cp,omitempty"`
	// Units overrides the canonical unit per field, e.g. {dHf: kcal/mol}.
	Units map[models.Field]string `yaml:"units,omitempty"`
}

// Table is an immutable lookup keyed by exact normalized formula text.
type Table struct {
	entries map[string]Entry
}

type tableFile struct {
	Species map[string]Entry `yaml:"species"`
}

// NewTable copies entries into a new Table.
func NewTable(entries map[string]Entry) *Table {
	cp := make(map[string]Entry, len(entries))
	for id, e := range entries {
		cp[id] = e
	}
	return &Table{entries: cp}
}

// Parse decodes a YAML table. Unknown keys are rejected, every species key
// must be a valid formula and every value must convert to canonical units.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("fallback: decode table: %w", err)
	}
	for id, e := range f.Species {
		if _, err := parser.ParseFormula(id); err != nil {
			return nil, fmt.Errorf("fallback: species %q: %w", id, err)
		}
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("fallback: species %q: %w", id, err)
		}
	}
	return NewTable(f.Species), nil
}

func (e Entry) values() map[models.Field]*float64 {
	return map[models.Field]*float64{
		models.FieldEnthalpy:     e.Enthalpy,
		models.FieldEntropy:      e.Entropy,
		models.FieldHeatCapacity: e.HeatCapacity,
	}
}

func (e Entry) validate() error {
	vals := e.values()
	for f := range e.Units {
		if _, ok := vals[f]; !ok {
			return fmt.Errorf("unit given for unknown field %q", f)
		}
	}
	for f, v := range vals {
		if v == nil {
			continue
		}
		if _, err := units.Normalize(f, models.Quantity{Value: *v, Unit: e.Units[f]}); err != nil {
			return err
		}
	}
	return nil
}

// Overlay returns a new table holding t's entries replaced or extended by
// other's. Entries are replaced whole, never merged field by field.
func (t *Table) Overlay(other *Table) *Table {
	out := NewTable(t.entries)
	for id, e := range other.entries {
		out.entries[id] = e
	}
	return out
}

// Load reads and parses a YAML table file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fallback: read %s: %w", path, err)
	}
	return Parse(data)
}

// Lookup returns the fields known for id in the table's declared units.
func (t *Table) Lookup(id string) (models.Record, bool) {
	e, ok := t.entries[id]
	if !ok {
		return nil, false
	}
	rec := models.Record{}
	for f, v := range e.values() {
		if v != nil {
			rec[f] = models.Quantity{Value: *v, Unit: e.Units[f]}
		}
	}
	return rec, true
}

// Name returns the common name recorded for id, if any.
func (t *Table) Name(id string) string {
	return t.entries[id].Name
}

// Len returns the number of species in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// IDs returns the species keys in lexical order.
func (t *Table) IDs() []string {
	out := make([]string, 0, len(t.entries))
	for id := range t.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

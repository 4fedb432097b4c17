package thermoservice

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// DefaultReactions is the batch used when no input file is given.
var DefaultReactions = []string{
	"2H2 + O2 -> 2H2O",
	"C + O2 -> CO2",
	"N2 + 3H2 -> 2NH3",
	"CH4 + 2O2 -> CO2 + 2H2O",
	"2CO + O2 -> 2CO2",
	"CaCO3 -> CaO + CO2",
}

// DefaultLines returns DefaultReactions numbered from 1.
func DefaultLines() []BatchLine {
	out := make([]BatchLine, len(DefaultReactions))
	for i, eq := range DefaultReactions {
		out[i] = BatchLine{Line: i + 1, Equation: eq}
	}
	return out
}

// BatchItem is the outcome of one equation in a batch run.
type BatchItem struct {
	Line     int
	Equation string
	Report   *Report
	Err      error
}

// ReadEquations reads one equation per line, skipping blanks and '#' comments.
func ReadEquations(r io.Reader) ([]BatchLine, error) {
	var out []BatchLine
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, BatchLine{Line: n, Equation: line})
	}
	return out, sc.Err()
}

// BatchLine is an equation with its source line number.
type BatchLine struct {
	Line     int
	Equation string
}

// Batch evaluates every line at the same temperature. A failing line is
// recorded in its item and does not stop the run.
func (s *Service) Batch(ctx context.Context, lines []BatchLine, kelvin float64) []BatchItem {
	items := make([]BatchItem, 0, len(lines))
	for _, l := range lines {
		if ctx.Err() != nil {
			items = append(items, BatchItem{Line: l.Line, Equation: l.Equation, Err: ctx.Err()})
			continue
		}
		rep, err := s.Evaluate(ctx, Request{Equation: l.Equation, Temperature: kelvin})
		items = append(items, BatchItem{Line: l.Line, Equation: l.Equation, Report: rep, Err: err})
	}
	return items
}

// Package report renders evaluation reports for terminals and exports batch
// runs as CSV datasets.
package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/starford/thermo/internal/models"
	"github.com/starford/thermo/internal/thermoservice"
)

// FormatText writes a human-readable report. Energies use two decimals.
func FormatText(w io.Writer, rep *thermoservice.Report) error {
	res := rep.Result
	ew := &errWriter{w: w}

	ew.printf("Reaction:    %s\n", res.Equation)
	ew.printf("Temperature: %.2f K\n", res.Temperature)
	ew.printf("Method:      %s\n\n", res.Method)

	tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Species\tΔHf° (kJ/mol)\tS° (J/mol·K)\tCp (J/mol·K)")
	for _, sp := range rep.Species {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", speciesLabel(sp),
			cell(sp, models.FieldEnthalpy), cell(sp, models.FieldEntropy), cell(sp, models.FieldHeatCapacity))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if usesFallback(rep.Species) {
		ew.printf("* fallback table\n")
	}

	ew.printf("\nΔH = %.2f kJ/mol\n", res.DeltaH)
	ew.printf("ΔS = %.2f J/mol·K\n", res.DeltaS)
	ew.printf("ΔG = %.2f kJ/mol\n", res.DeltaG)
	ew.printf("Reaction is %s at %.2f K\n", res.Spontaneity, res.Temperature)

	if len(res.Warnings) > 0 {
		ew.printf("\nWarnings:\n")
		for _, warn := range res.Warnings {
			ew.printf("  - %s\n", warn.Message)
		}
	}
	return ew.err
}

func speciesLabel(sp models.Resolution) string {
	if sp.Name == "" {
		return sp.Species
	}
	return sp.Species + " (" + sp.Name + ")"
}

func usesFallback(species []models.Resolution) bool {
	for _, sp := range species {
		for _, f := range models.Fields {
			if sp.Tier(f) == models.TierFallback {
				return true
			}
		}
	}
	return false
}

func cell(sp models.Resolution, f models.Field) string {
	v, ok := sp.Properties.Get(f)
	if !ok {
		return "-"
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if sp.Tier(f) == models.TierFallback {
		s += " *"
	}
	return s
}

// errWriter keeps the first write error so callers check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e, format, args...)
}

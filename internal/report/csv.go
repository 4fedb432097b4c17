package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/starford/thermo/internal/models"
	"github.com/starford/thermo/internal/thermoservice"
)

// Dataset file names written by WriteDatasets.
const (
	FileReactionThermo = "reaction_thermo.csv"
	FileDeltaG         = "delta_g.csv"
	FileSpontaneity    = "spont.csv"
)

// Writer is the subset of storage.Provider the exporter needs.
type Writer interface {
	Write(path string, content []byte) error
}

// Summary counts the rows exported and the items skipped for errors.
type Summary struct {
	Rows    int
	Skipped int
}

// WriteDatasets exports successful batch items as three CSV files:
// the full breakdown, ΔG per reaction, and a 0/1 spontaneity label.
// Failed items are skipped. Nothing is written when no item succeeded.
func WriteDatasets(w Writer, items []thermoservice.BatchItem) (Summary, error) {
	var (
		sum    Summary
		thermo = [][]string{{"reaction", "delta_h", "delta_s", "delta_g", "T_K", "spontaneity", "method"}}
		dg     = [][]string{{"reaction", "delta_g"}}
		spont  = [][]string{{"reaction", "label"}}
	)
	for _, it := range items {
		if it.Err != nil || it.Report == nil {
			sum.Skipped++
			continue
		}
		res := it.Report.Result
		label := "0"
		if res.Spontaneity == models.Spontaneous {
			label = "1"
		}
		thermo = append(thermo, []string{
			res.Equation, num(res.DeltaH), num(res.DeltaS), num(res.DeltaG),
			num(res.Temperature), string(res.Spontaneity), res.Method,
		})
		dg = append(dg, []string{res.Equation, num(res.DeltaG)})
		spont = append(spont, []string{res.Equation, label})
		sum.Rows++
	}
	if sum.Rows == 0 {
		return sum, fmt.Errorf("report: no complete rows to export (%d skipped)", sum.Skipped)
	}

	for _, f := range []struct {
		name string
		rows [][]string
	}{
		{FileReactionThermo, thermo},
		{FileDeltaG, dg},
		{FileSpontaneity, spont},
	} {
		data, err := encode(f.rows)
		if err != nil {
			return sum, fmt.Errorf("report: encode %s: %w", f.name, err)
		}
		if err := w.Write(f.name, data); err != nil {
			return sum, fmt.Errorf("report: write %s: %w", f.name, err)
		}
	}
	return sum, nil
}

func encode(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

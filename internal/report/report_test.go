package report

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/thermo/internal/models"
	"github.com/starford/thermo/internal/storage"
	"github.com/starford/thermo/internal/thermoservice"
)

func methaneReport() *thermoservice.Report {
	hf, s := -74.8, 186.3
	return &thermoservice.Report{
		ID: "r1",
		Result: &models.ReactionResult{
			Equation:    "CH4 + 2 O2 -> CO2 + 2 H2O",
			Temperature: 298,
			DeltaH:      -802.3,
			DeltaS:      -5.3,
			DeltaG:      -800.7206,
			Method:      "constant",
			Spontaneity: models.Spontaneous,
			Warnings: []models.Warning{{
				Kind: models.WarningFallbackTier, Species: "CH4", Field: models.FieldEnthalpy,
				Message: "ΔHf° for CH4 served from fallback table",
			}},
		},
		Species: []models.Resolution{{
			Species:    "CH4",
			Name:       "methane",
			Properties: models.Properties{EnthalpyOfFormation: &hf, StandardEntropy: &s},
			Tiers: map[models.Field]models.Tier{
				models.FieldEnthalpy: models.TierFallback,
				models.FieldEntropy:  models.TierRemote,
			},
		}},
	}
}

func TestFormatText(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatText(&buf, methaneReport()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Reaction:    CH4 + 2 O2 -> CO2 + 2 H2O",
		"ΔH = -802.30 kJ/mol",
		"ΔS = -5.30 J/mol·K",
		"ΔG = -800.72 kJ/mol",
		"Reaction is spontaneous at 298.00 K",
		"CH4 (methane)",
		"-74.80 *",
		"186.30",
		"* fallback table",
		"  - ΔHf° for CH4 served from fallback table",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestFormatText_PropagatesWriteError(t *testing.T) {
	if err := FormatText(failingWriter{}, methaneReport()); err == nil {
		t.Error("expected write error")
	}
}

func TestWriteDatasets(t *testing.T) {
	store, err := storage.NewFS(filepath.Join(t.TempDir(), "processed"))
	if err != nil {
		t.Fatal(err)
	}
	items := []thermoservice.BatchItem{
		{Line: 1, Equation: "CH4 + 2 O2 -> CO2 + 2 H2O", Report: methaneReport()},
		{Line: 2, Equation: "2 NaCl -> 2 Na + Cl2", Err: errors.New("missing data")},
	}
	sum, err := WriteDatasets(store, items)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Rows != 1 || sum.Skipped != 1 {
		t.Errorf("summary = %+v", sum)
	}

	tests := map[string]string{
		FileDeltaG:         "reaction,delta_g\nCH4 + 2 O2 -> CO2 + 2 H2O,-800.7206\n",
		FileSpontaneity:    "reaction,label\nCH4 + 2 O2 -> CO2 + 2 H2O,1\n",
		FileReactionThermo: "reaction,delta_h,delta_s,delta_g,T_K,spontaneity,method\nCH4 + 2 O2 -> CO2 + 2 H2O,-802.3,-5.3,-800.7206,298,spontaneous,constant\n",
	}
	for name, want := range tests {
		got, err := store.Read(name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestWriteDatasets_NothingToExport(t *testing.T) {
	store, _ := storage.NewFS(t.TempDir())
	items := []thermoservice.BatchItem{{Line: 1, Err: errors.New("bad")}}
	if _, err := WriteDatasets(store, items); err == nil {
		t.Error("expected error when every item failed")
	}
	if list, _ := store.List(".csv"); len(list) != 0 {
		t.Errorf("files written: %+v", list)
	}
}

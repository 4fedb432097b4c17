package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/thermo/internal/engine"
	"github.com/starford/thermo/internal/models"
	"github.com/starford/thermo/internal/remote"
	"github.com/starford/thermo/internal/resolver"
	"github.com/starford/thermo/internal/testutil"
	"github.com/starford/thermo/internal/thermoservice"
)

// testEnv wires a service over a stub remote, the combustion fallback table
// and a temporary SQLite cache. An empty token means auth is disabled.
func testEnv(t *testing.T, authToken string) (*testutil.StubRemote, http.Handler) {
	t.Helper()
	return testEnvWithSSE(t, authToken, nil)
}

func testEnvWithSSE(t *testing.T, authToken string, sse http.Handler) (*testutil.StubRemote, http.Handler) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stub := &testutil.StubRemote{Records: map[string]models.Record{
		"O2": {
			models.FieldEnthalpy:     {Value: 0, Unit: "kJ/mol"},
			models.FieldEntropy:      {Value: 205.2, Unit: "J/(mol*K)"},
			models.FieldHeatCapacity: {Value: 29.4, Unit: "J/(mol*K)"},
		},
	}}
	res := resolver.New(stub, testutil.CombustionTable(),
		resolver.WithCache(testutil.TestDB(t, time.Hour)),
		resolver.WithRetries(0),
		resolver.WithLogger(logger))
	svc := thermoservice.NewService(res, engine.New(), thermoservice.WithLogger(logger))
	return stub, NewRouter(svc, authToken != "", authToken, sse, engine.ReferenceTemperature)
}

func do(t *testing.T, router http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestEvaluate(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/evaluate", map[string]any{
		"equation": "CH4 + 2 O2 -> CO2 + 2 H2O", "temperature": 298,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	rep := decodeBody[thermoservice.Report](t, w)
	if rep.ID == "" || rep.Result == nil {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Result.Spontaneity != models.Spontaneous {
		t.Errorf("spontaneity = %s", rep.Result.Spontaneity)
	}
	if len(rep.States) != 2 || rep.States[0].Label != "Reactants" {
		t.Errorf("states = %+v", rep.States)
	}
}

func TestEvaluate_DefaultTemperature(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/evaluate", map[string]any{"equation": "CH4 + 2 O2 -> CO2 + 2 H2O"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if rep := decodeBody[thermoservice.Report](t, w); rep.Result.Temperature != engine.ReferenceTemperature {
		t.Errorf("temperature = %v", rep.Result.Temperature)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
		code   string
		check  func(t *testing.T, e errResponse)
	}{
		{
			name: "parse error", status: http.StatusBadRequest, code: "parse_error",
			body: map[string]any{"equation": "CH4 + 2 O2 CO2"},
			check: func(t *testing.T, e errResponse) {
				if e.Position == nil || e.Token == "" {
					t.Errorf("missing position/token: %+v", e)
				}
			},
		},
		{
			name: "zero temperature", status: http.StatusBadRequest, code: "invalid_temperature",
			body: map[string]any{"equation": "CH4 + 2 O2 -> CO2 + 2 H2O", "temperature": 0},
			check: func(t *testing.T, e errResponse) {
				if e.Temperature == nil || *e.Temperature != 0 {
					t.Errorf("temperature = %v", e.Temperature)
				}
			},
		},
		{
			name: "imbalanced", status: http.StatusUnprocessableEntity, code: "imbalanced",
			body: map[string]any{"equation": "CH4 + O2 -> CO2 + H2O"},
			check: func(t *testing.T, e errResponse) {
				if len(e.Elements) != 2 {
					t.Errorf("elements = %+v", e.Elements)
				}
			},
		},
		{
			name: "missing data", status: http.StatusUnprocessableEntity, code: "missing_data",
			body: map[string]any{"equation": "2 NaCl -> 2 Na + Cl2"},
			check: func(t *testing.T, e errResponse) {
				if len(e.Missing) == 0 || e.Missing[0].Species != "NaCl" {
					t.Errorf("missing = %+v", e.Missing)
				}
			},
		},
		{
			name: "blank equation", status: http.StatusBadRequest, code: "invalid_request",
			body: map[string]any{"equation": ""},
			check: func(t *testing.T, e errResponse) {
				if e.Fields["equation"] == "" {
					t.Errorf("fields = %+v", e.Fields)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, router := testEnv(t, "")
			w := do(t, router, http.MethodPost, "/evaluate", tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tt.status, w.Body.String())
			}
			e := decodeBody[errResponse](t, w)
			if e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
			tt.check(t, e)
		})
	}
}

func TestEvaluate_InvalidJSON(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestParse(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/parse", map[string]string{"equation": "2H2 + O2 => 2H2O"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	p := decodeBody[ParseResponse](t, w)
	if p.Canonical != "2 H2 + O2 -> 2 H2O" {
		t.Errorf("canonical = %q", p.Canonical)
	}
	if p.Reactants["H"] != 4 || p.Products["O"] != 2 {
		t.Errorf("atoms = %v / %v", p.Reactants, p.Products)
	}
}

func TestBalance(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/balance", map[string]string{"equation": "2 H2 + O2 -> 2 H2O"})
	if b := decodeBody[BalanceResponse](t, w); w.Code != http.StatusOK || !b.Balanced {
		t.Errorf("balanced: status %d, %+v", w.Code, b)
	}

	w = do(t, router, http.MethodPost, "/balance", map[string]string{"equation": "H2 + O2 -> H2O"})
	b := decodeBody[BalanceResponse](t, w)
	if w.Code != http.StatusOK || b.Balanced || len(b.Elements) != 1 || b.Elements[0].Element != "O" {
		t.Errorf("imbalanced: status %d, %+v", w.Code, b)
	}
}

func TestSpecies(t *testing.T) {
	stub, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/species/O2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	doc := decodeBody[remote.SpeciesDocument](t, w)
	if q := doc.Properties[models.FieldEntropy]; q.Value != 205.2 || q.Unit != "J/mol·K" {
		t.Errorf("S = %+v", q)
	}
	if doc.Tiers[models.FieldEnthalpy] != models.TierRemote {
		t.Errorf("tiers = %+v", doc.Tiers)
	}

	// Second lookup is served by the SQLite cache.
	do(t, router, http.MethodGet, "/species/O2", nil)
	if n := stub.Calls("O2"); n != 1 {
		t.Errorf("remote calls = %d, want 1", n)
	}
}

func TestSpecies_FallbackAndMissing(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/species/CO2", nil)
	doc := decodeBody[remote.SpeciesDocument](t, w)
	if doc.Tiers[models.FieldEnthalpy] != models.TierFallback || doc.Tiers[models.FieldHeatCapacity] != models.TierUnresolved {
		t.Errorf("tiers = %+v", doc.Tiers)
	}
	if _, ok := doc.Properties[models.FieldHeatCapacity]; ok {
		t.Error("unresolved Cp should be absent")
	}

	if w := do(t, router, http.MethodGet, "/species/XeF4", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown species = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/species/xyz", nil); w.Code != http.StatusBadRequest {
		t.Errorf("invalid formula = %d, want 400", w.Code)
	}
}

// The API document is what the remote client consumes.
func TestSpecies_ServesRemoteClient(t *testing.T) {
	_, router := testEnv(t, "")
	srv := httptest.NewServer(router)
	defer srv.Close()

	c, err := remote.New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := c.Fetch(context.Background(), "CO2")
	if err != nil {
		t.Fatal(err)
	}
	if rec[models.FieldEnthalpy].Value != -393.5 {
		t.Errorf("record = %+v", rec)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, router := testEnv(t, "secret123")
	body := map[string]string{"equation": "2 H2 + O2 -> 2 H2O"}

	if w := do(t, router, http.MethodPost, "/parse", body, "Authorization", "Bearer secret123"); w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/parse", body); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token = %d, want 401", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/parse", body, "Authorization", "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/parse", body, "Authorization", "secret123"); w.Code != http.StatusUnauthorized {
		t.Errorf("no scheme = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodPost, "/parse", map[string]string{"equation": "H2 -> H2"}); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	// Minimal SSE handler stub: writes headers and blocks until context done.
	sse := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		<-r.Context().Done()
	})
	_, router := testEnvWithSSE(t, "tok", sse)

	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d", w.Code)
	}
}

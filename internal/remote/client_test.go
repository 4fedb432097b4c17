package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/thermo/internal/apperr"
	"github.com/starford/thermo/internal/models"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/", WithToken("secret"))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestFetch_DecodesProperties(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/species/CO2" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("auth = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"species":"CO2","name":"carbon dioxide","properties":{
			"dHf":{"value":-393.5,"unit":"kJ/mol"},
			"S":{"value":213.8,"unit":"J/(mol*K)"},
			"bogus":{"value":1}}}`))
	})

	rec, err := c.Fetch(context.Background(), "CO2")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rec) != 2 {
		t.Fatalf("record = %+v, want two known fields", rec)
	}
	if q := rec[models.FieldEnthalpy]; q.Value != -393.5 || q.Unit != "kJ/mol" {
		t.Errorf("dHf = %+v", q)
	}
	if _, ok := rec[models.FieldHeatCapacity]; ok {
		t.Error("Cp should be absent")
	}
}

func TestFetch_NotFound(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})
	_, err := c.Fetch(context.Background(), "XeF4")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFetch_ServerError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.Fetch(context.Background(), "CO2")
	if err == nil || errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want transient error", err)
	}
}

func TestFetch_MalformedBody(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"species":`))
	})
	if _, err := c.Fetch(context.Background(), "CO2"); err == nil {
		t.Error("expected decode error")
	}
}

func TestFetch_HonorsContext(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Fetch(ctx, "CO2"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNew_RejectsScheme(t *testing.T) {
	if _, err := New("ftp://example.org"); err == nil {
		t.Error("expected error for ftp scheme")
	}
}

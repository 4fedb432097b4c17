package internal

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/thermo/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestRemoteConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RemoteConfig
		wantErr bool
	}{
		{"offline", RemoteConfig{Concurrency: 4}, false},
		{"valid url", RemoteConfig{URL: "https://thermo.example.org/api", Concurrency: 4}, false},
		{"bad url", RemoteConfig{URL: "not a url", Concurrency: 4}, true},
		{"negative timeout", RemoteConfig{Timeout: -time.Second, Concurrency: 4}, true},
		{"too many retries", RemoteConfig{Retries: 10, Concurrency: 4}, true},
		{"zero concurrency", RemoteConfig{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCacheConfig(t *testing.T) {
	cfg := CacheConfig{}
	if err := cfg.Validate(); err != nil || cfg.Backend != CacheBackendNone {
		t.Errorf("empty backend: err = %v, backend = %q", err, cfg.Backend)
	}
	if err := (&CacheConfig{Backend: CacheBackendSQLite}).Validate(); err == nil {
		t.Error("sqlite without path should fail")
	}
	if err := (&CacheConfig{Backend: "redis"}).Validate(); err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestEngineConfig_Temperature(t *testing.T) {
	for _, temp := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := (&EngineConfig{Temperature: temp}).Validate(); err == nil {
			t.Errorf("temperature %v should fail", temp)
		}
	}
}

func TestFallbackConfig_WatchNeedsPath(t *testing.T) {
	if err := (&FallbackConfig{Watch: true}).Validate(); err == nil {
		t.Error("watch without path should fail")
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("THERMO_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `app:
  log_level: debug
  http:
    port: 9090
auth:
  mode: token
  token: ${THERMO_TEST_TOKEN}
remote:
  url: http://localhost:9999/api
  timeout: 2s
  concurrency: 8
cache:
  backend: sqlite
  path: ./cache.db
  ttl: 1h
engine:
  temperature: 500
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.Token != "s3cret" || cfg.App.HTTP.Port != 9090 || cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Remote.Timeout != 2*time.Second || cfg.Cache.TTL != time.Hour || cfg.Engine.Temperature != 500 {
		t.Errorf("durations/engine = %+v %+v %+v", cfg.Remote, cfg.Cache, cfg.Engine)
	}
	if !cfg.Engine.HeatCapacityCorrection {
		t.Error("unset keys should keep defaults")
	}
}

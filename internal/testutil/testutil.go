// Package testutil provides shared fixtures: a scriptable remote source and a
// temporary species cache database.
package testutil

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/starford/thermo/internal/cache"
	"github.com/starford/thermo/internal/fallback"
	"github.com/starford/thermo/internal/models"
)

// ErrUnavailable is the transient failure returned by StubRemote.
var ErrUnavailable = errors.New("remote unavailable")

// StubRemote is a deterministic stand-in for the remote data source.
type StubRemote struct {
	Records   map[string]models.Record
	Errs      map[string]error
	FailFirst int           // leading calls per species that fail with ErrUnavailable
	Delay     time.Duration // per call, honoring ctx

	mu    sync.Mutex
	calls map[string]int
}

// Fetch implements resolver.Remote.
func (s *StubRemote) Fetch(ctx context.Context, id string) (models.Record, error) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[id]++
	n := s.calls[id]
	s.mu.Unlock()

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n <= s.FailFirst {
		return nil, ErrUnavailable
	}
	if err, ok := s.Errs[id]; ok {
		return nil, err
	}
	rec, ok := s.Records[id]
	if !ok {
		return nil, ErrUnavailable
	}
	return rec, nil
}

// Calls returns how many times id was fetched.
func (s *StubRemote) Calls(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// CombustionTable is the fallback fixture for CH4 + 2 O2 -> CO2 + 2 H2O.
func CombustionTable() *fallback.Table {
	return fallback.NewTable(map[string]fallback.Entry{
		"CH4": {Enthalpy: Float(-74.8), Entropy: Float(186.3)},
		"O2":  {Enthalpy: Float(0), Entropy: Float(205.2)},
		"CO2": {Enthalpy: Float(-393.5), Entropy: Float(213.8)},
		"H2O": {Enthalpy: Float(-241.8), Entropy: Float(188.8)},
	})
}

// TestDB creates a temporary species cache that is removed after the test.
func TestDB(t *testing.T, ttl time.Duration) *cache.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "thermo-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := cache.Open(dbFile.Name(), ttl)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Package resolver looks up species properties across the remote and fallback
// tiers, merging them field by field and recording where each value came from.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/starford/thermo/internal/apperr"
	"github.com/starford/thermo/internal/models"
	"github.com/starford/thermo/internal/units"
)

// Remote fetches a species record from the primary data source. Any error,
// including apperr.ErrNotFound, sends the resolver to the fallback tier.
type Remote interface {
	Fetch(ctx context.Context, id string) (models.Record, error)
}

// Fallback is the curated table consulted for fields the remote lacks.
type Fallback interface {
	Lookup(id string) (models.Record, bool)
}

// Namer is optionally implemented by a Fallback that knows common names.
type Namer interface {
	Name(id string) string
}

// Cache persists successful remote records across evaluations.
// Implementations must never store failures.
type Cache interface {
	Get(ctx context.Context, id string) (models.Record, bool, error)
	Put(ctx context.Context, id string, rec models.Record) error
}

// Observer receives resolution events, typically for metrics.
type Observer interface {
	FieldResolved(field models.Field, tier models.Tier)
	RemoteFetch(outcome string, elapsed time.Duration)
}

// Remote fetch outcomes reported to the Observer.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeNotFound = "not_found"
	OutcomeCacheHit = "cache_hit"
)

var errEmptyRecord = errors.New("resolver: remote returned an empty record")

type noopObserver struct{}

func (noopObserver) FieldResolved(models.Field, models.Tier) {}
func (noopObserver) RemoteFetch(string, time.Duration)       {}

// Resolver implements the two-tier lookup. It is safe for concurrent use.
type Resolver struct {
	remote   Remote
	fallback Fallback
	cache    Cache
	observer Observer
	logger   *slog.Logger
	timeout  time.Duration
	retries  int
	workers  int
	flight   singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache enables a persistent cache of remote records.
func WithCache(c Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithObserver attaches an observer for resolution events.
func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithTimeout bounds each remote attempt. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// WithRetries sets how many extra remote attempts follow a failure.
func WithRetries(n int) Option {
	return func(r *Resolver) { r.retries = max(n, 0) }
}

// WithConcurrency bounds parallel resolutions in ResolveAll.
func WithConcurrency(n int) Option {
	return func(r *Resolver) { r.workers = max(n, 1) }
}

// New builds a Resolver. remote may be nil for offline operation; fallback must not be nil.
func New(remote Remote, fallback Fallback, opts ...Option) *Resolver {
	r := &Resolver{
		remote:   remote,
		fallback: fallback,
		observer: noopObserver{},
		logger:   slog.Default(),
		timeout:  5 * time.Second,
		retries:  1,
		workers:  4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the properties of one species. It never fails: fields that
// neither tier supplies are tagged unresolved for the engine to judge.
func (r *Resolver) Resolve(ctx context.Context, id string) models.Resolution {
	res := models.Resolution{
		Species: id,
		Tiers:   make(map[models.Field]models.Tier, len(models.Fields)),
	}

	if rec := r.remoteRecord(ctx, id); rec != nil {
		r.merge(&res, rec, models.TierRemote)
	}
	if !complete(res) {
		if rec, ok := r.fallback.Lookup(id); ok {
			r.merge(&res, rec, models.TierFallback)
		}
	}
	for _, f := range models.Fields {
		if !res.Properties.Has(f) {
			res.Tiers[f] = models.TierUnresolved
		}
		r.observer.FieldResolved(f, res.Tiers[f])
	}
	if n, ok := r.fallback.(Namer); ok {
		res.Name = n.Name(id)
	}
	return res
}

// ResolveAll resolves each distinct ID once, in parallel, and returns the
// table keyed by species. Completion order does not affect the result.
func (r *Resolver) ResolveAll(ctx context.Context, ids []string) models.PropertyTable {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	results := make([]models.Resolution, len(unique))
	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, id := range unique {
		g.Go(func() error {
			results[i] = r.Resolve(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	table := make(models.PropertyTable, len(unique))
	for i, id := range unique {
		table[id] = results[i]
	}
	return table
}

// merge fills fields still absent in res from rec, tagging them with tier.
// Values in units the resolver cannot convert are skipped.
func (r *Resolver) merge(res *models.Resolution, rec models.Record, tier models.Tier) {
	for _, f := range models.Fields {
		if res.Properties.Has(f) {
			continue
		}
		q, ok := rec[f]
		if !ok {
			continue
		}
		v, err := units.Normalize(f, q)
		if err != nil {
			r.logger.Warn("resolver: dropping field",
				slog.String("species", res.Species),
				slog.String("field", string(f)),
				slog.String("tier", string(tier)),
				slog.String("error", err.Error()))
			continue
		}
		res.Properties.Set(f, v)
		res.Tiers[f] = tier
	}
}

func complete(res models.Resolution) bool {
	for _, f := range models.Fields {
		if !res.Properties.Has(f) {
			return false
		}
	}
	return true
}

// remoteRecord returns the remote record for id or nil on any failure.
// Concurrent callers for the same id share one in-flight request.
func (r *Resolver) remoteRecord(ctx context.Context, id string) models.Record {
	if r.remote == nil {
		return nil
	}
	if r.cache != nil {
		rec, ok, err := r.cache.Get(ctx, id)
		switch {
		case err != nil:
			r.logger.Warn("resolver: cache read failed", slog.String("species", id), slog.String("error", err.Error()))
		case ok:
			r.observer.RemoteFetch(OutcomeCacheHit, 0)
			return rec
		}
	}

	v, err, _ := r.flight.Do(id, func() (any, error) {
		rec, err := r.fetch(ctx, id)
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			if err := r.cache.Put(ctx, id, rec); err != nil {
				r.logger.Warn("resolver: cache write failed", slog.String("species", id), slog.String("error", err.Error()))
			}
		}
		return rec, nil
	})
	if err != nil {
		r.logger.Debug("resolver: remote lookup failed, using fallback",
			slog.String("species", id), slog.String("error", err.Error()))
		return nil
	}
	return v.(models.Record)
}

func (r *Resolver) fetch(ctx context.Context, id string) (models.Record, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		actx, cancel := ctx, context.CancelFunc(func() {})
		if r.timeout > 0 {
			actx, cancel = context.WithTimeout(ctx, r.timeout)
		}
		start := time.Now()
		rec, err := r.remote.Fetch(actx, id)
		cancel()
		if err == nil && len(rec) == 0 {
			err = errEmptyRecord
		}
		elapsed := time.Since(start)

		if err == nil {
			r.observer.RemoteFetch(OutcomeOK, elapsed)
			return rec, nil
		}
		lastErr = err
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, errEmptyRecord) {
			r.observer.RemoteFetch(OutcomeNotFound, elapsed)
			break
		}
		r.observer.RemoteFetch(OutcomeError, elapsed)
	}
	return nil, lastErr
}

package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/thermo/internal/cache"
	"github.com/starford/thermo/internal/engine"
	"github.com/starford/thermo/internal/fallback"
	"github.com/starford/thermo/internal/metrics"
	"github.com/starford/thermo/internal/remote"
	"github.com/starford/thermo/internal/resolver"
	"github.com/starford/thermo/internal/sse"
	"github.com/starford/thermo/internal/thermoservice"
)

var (
	_ resolver.Cache          = (*cache.DB)(nil)
	_ resolver.Cache          = (*resolver.MemoryCache)(nil)
	_ resolver.Remote         = (*remote.Client)(nil)
	_ resolver.Fallback       = (*fallback.Reloader)(nil)
	_ resolver.Namer          = (*fallback.Reloader)(nil)
	_ resolver.Observer       = (*metrics.Metrics)(nil)
	_ thermoservice.Recorder  = (*metrics.Metrics)(nil)
	_ thermoservice.Publisher = (*sse.Broker)(nil)
)

// components is the evaluation stack shared by every command.
type components struct {
	metrics  *metrics.Metrics
	fallback *fallback.Reloader
	service  *thermoservice.Service
	closers  []func() error
}

func (c *components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	return errors.Join(errs...)
}

// build assembles fallback, remote, cache, resolver and service from config.
// pub may be nil.
func (a *application) build(pub thermoservice.Publisher) (*components, error) {
	cfg := a.config
	logger := a.logger
	c := &components{}

	if cfg.Metrics.Enabled {
		c.metrics = metrics.New()
	}

	c.fallback = fallback.NewReloader(fallback.Default())
	if cfg.Fallback.Path != "" {
		if _, err := c.fallback.Reload(cfg.Fallback.Path); err != nil {
			return nil, fmt.Errorf("load fallback table: %w", err)
		}
	}
	c.metrics.FallbackLoaded(c.fallback.Table().Len(), false)

	ropts := []resolver.Option{
		resolver.WithLogger(logger.With(slog.String("component", "resolver"))),
		resolver.WithTimeout(cfg.Remote.Timeout),
		resolver.WithRetries(cfg.Remote.Retries),
		resolver.WithConcurrency(cfg.Remote.Concurrency),
		resolver.WithObserver(c.metrics),
	}

	var rem resolver.Remote
	if cfg.Remote.Enabled() {
		client, err := remote.New(cfg.Remote.URL, remote.WithToken(cfg.Remote.Token))
		if err != nil {
			return nil, fmt.Errorf("init remote: %w", err)
		}
		rem = client

		switch cfg.Cache.Backend {
		case CacheBackendMemory:
			ropts = append(ropts, resolver.WithCache(resolver.NewMemoryCache()))
		case CacheBackendSQLite:
			if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o755); err != nil {
				return nil, fmt.Errorf("create cache dir: %w", err)
			}
			db, err := cache.Open(cfg.Cache.Path, cfg.Cache.TTL)
			if err != nil {
				return nil, fmt.Errorf("init cache: %w", err)
			}
			c.closers = append(c.closers, db.Close)
			ropts = append(ropts, resolver.WithCache(db))
		}
	}

	res := resolver.New(rem, c.fallback, ropts...)

	eng := engine.New(engine.WithHeatCapacityCorrection(cfg.Engine.HeatCapacityCorrection))
	sopts := []thermoservice.Option{
		thermoservice.WithBalanceCheck(cfg.Engine.CheckBalance),
		thermoservice.WithLogger(logger.With(slog.String("component", "service"))),
		thermoservice.WithRecorder(c.metrics),
	}
	if pub != nil {
		sopts = append(sopts, thermoservice.WithPublisher(pub))
	}
	c.service = thermoservice.NewService(res, eng, sopts...)

	logger.Info("Evaluation stack ready",
		slog.Bool("remote", cfg.Remote.Enabled()),
		slog.String("cache", cfg.Cache.Backend),
		slog.Int("fallback_entries", c.fallback.Table().Len()),
		slog.Bool("heat_capacity_correction", cfg.Engine.HeatCapacityCorrection))
	return c, nil
}

// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/thermo/internal/api"
	"github.com/starford/thermo/internal/engine"
	"github.com/starford/thermo/internal/mcpserver"
	"github.com/starford/thermo/internal/report"
	"github.com/starford/thermo/internal/sse"
	"github.com/starford/thermo/internal/storage"
	"github.com/starford/thermo/internal/thermoservice"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	logger.Info("Configuration loaded",
		slog.String("version", app.version),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("remote_url", cfg.Remote.URL),
		slog.String("fallback_path", cfg.Fallback.Path),
		slog.String("cache_backend", cfg.Cache.Backend),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker()
	defer broker.Close()

	c, err := app.build(broker)
	if err != nil {
		return err
	}
	defer c.Close()

	apiRouter := api.NewRouter(c.service, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, cfg.Engine.Temperature)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if c.fallback.Table().Len() == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"fallback table empty"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, c.metrics.Handler())
	}

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Fallback.Watch {
		g.Go(func() error {
			err := c.fallback.Watch(gCtx, cfg.Fallback.Path, logger, func(entries int, sum string) {
				c.metrics.FallbackLoaded(entries, true)
				broker.FallbackReloaded(entries, sum)
			})
			if err != nil {
				logger.Warn("fallback watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// SSE streams never end on their own; closing the broker releases them.
		broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// Evaluate runs one equation and writes the text report to out. A nil
// kelvin uses the configured default.
func Evaluate(ctx context.Context, out io.Writer, equation string, kelvin *float64, opts ...Option) error {
	rep, err := evaluateOnce(ctx, equation, kelvin, opts)
	if err != nil {
		return err
	}
	return report.FormatText(out, rep)
}

// EvaluateJSON is Evaluate with the report encoded as indented JSON.
func EvaluateJSON(ctx context.Context, out io.Writer, equation string, kelvin *float64, opts ...Option) error {
	rep, err := evaluateOnce(ctx, equation, kelvin, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func evaluateOnce(ctx context.Context, equation string, kelvin *float64, opts []Option) (*thermoservice.Report, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	c, err := app.build(nil)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	return c.service.Evaluate(ctx, thermoservice.Request{
		Equation:    equation,
		Temperature: app.kelvin(kelvin),
	})
}

// BatchSummary reports the outcome of a batch run.
type BatchSummary struct {
	report.Summary
	OutputDir string
}

// Batch evaluates every equation in input (or the built-in reactions when
// input is empty) and writes the CSV datasets to outDir. A nil kelvin uses
// the configured default.
func Batch(ctx context.Context, input, outDir string, kelvin *float64, opts ...Option) (BatchSummary, error) {
	app, err := newApplication(opts)
	if err != nil {
		return BatchSummary{}, err
	}

	lines := thermoservice.DefaultLines()
	if input != "" {
		f, err := os.Open(input)
		if err != nil {
			return BatchSummary{}, fmt.Errorf("open reactions file: %w", err)
		}
		lines, err = thermoservice.ReadEquations(f)
		f.Close()
		if err != nil {
			return BatchSummary{}, fmt.Errorf("read reactions file: %w", err)
		}
	} else {
		app.logger.Info("Using built-in default reactions", slog.Int("count", len(lines)))
	}

	store, err := storage.NewFS(outDir)
	if err != nil {
		return BatchSummary{}, err
	}
	c, err := app.build(nil)
	if err != nil {
		return BatchSummary{}, err
	}
	defer c.Close()

	t := app.kelvin(kelvin)
	if err := engine.ValidateTemperature(t); err != nil {
		return BatchSummary{}, err
	}
	items := c.service.Batch(ctx, lines, t)
	for _, it := range items {
		if it.Err != nil {
			app.logger.Warn("Skipping reaction",
				slog.Int("line", it.Line),
				slog.String("equation", it.Equation),
				slog.String("error", it.Err.Error()))
		}
	}

	sum, err := report.WriteDatasets(store, items)
	if err != nil {
		return BatchSummary{Summary: sum, OutputDir: store.Root()}, err
	}
	app.logger.Info("Datasets written",
		slog.String("dir", store.Root()),
		slog.Int("rows", sum.Rows),
		slog.Int("skipped", sum.Skipped))
	return BatchSummary{Summary: sum, OutputDir: store.Root()}, nil
}

// ServeMCP runs the MCP tool server on stdin/stdout until the client disconnects.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := app.build(nil)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := mcpserver.New(c.service, app.config.Engine.Temperature, app.version)
	app.logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}

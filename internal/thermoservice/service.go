// Package thermoservice runs the full evaluation pipeline: parse, validate,
// resolve species data, compute, and build diagram states.
package thermoservice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/starford/thermo/internal/apperr"
	"github.com/starford/thermo/internal/diagram"
	"github.com/starford/thermo/internal/engine"
	"github.com/starford/thermo/internal/models"
	"github.com/starford/thermo/internal/parser"
)

// EventEvaluationCompleted is the kind published after each successful evaluation.
const EventEvaluationCompleted = "evaluation.completed"

// Evaluation outcomes reported to the Recorder.
const (
	OutcomeOK                 = "ok"
	OutcomeParseError         = "parse_error"
	OutcomeInvalidTemperature = "invalid_temperature"
	OutcomeImbalanced         = "imbalanced"
	OutcomeMissingData        = "missing_data"
	OutcomeError              = "error"
)

// SpeciesResolver resolves species properties across data tiers.
type SpeciesResolver interface {
	Resolve(ctx context.Context, id string) models.Resolution
	ResolveAll(ctx context.Context, ids []string) models.PropertyTable
}

// Publisher receives notifications about completed evaluations.
type Publisher interface {
	Notify(kind string, payload any)
}

// Recorder receives evaluation outcomes, typically for metrics.
type Recorder interface {
	EvaluationDone(outcome string, elapsed time.Duration)
}

// Request is one evaluation request. CheckBalance overrides the service default.
type Request struct {
	Equation     string  `json:"equation"`
	Temperature  float64 `json:"temperature"`
	CheckBalance *bool   `json:"check_balance,omitempty"`
}

// Report is everything produced for one evaluation.
type Report struct {
	ID       string                 `json:"id"`
	Parsed   *models.Equation       `json:"parsed"`
	Result   *models.ReactionResult `json:"result"`
	Species  []models.Resolution    `json:"species"`
	States   []diagram.State        `json:"states"`
	Duration time.Duration          `json:"-"`
}

// EvaluationEvent is the payload published for a completed evaluation.
type EvaluationEvent struct {
	ID          string             `json:"id"`
	Equation    string             `json:"equation"`
	Temperature float64            `json:"temperature"`
	DeltaG      float64            `json:"delta_g"`
	Spontaneity models.Spontaneity `json:"spontaneity"`
}

// Service coordinates the parser, resolver and engine.
type Service struct {
	resolver     SpeciesResolver
	engine       *engine.Engine
	checkBalance bool
	logger       *slog.Logger
	publisher    Publisher
	recorder     Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithBalanceCheck sets whether equations must conserve every element by default.
func WithBalanceCheck(enabled bool) Option {
	return func(s *Service) { s.checkBalance = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithPublisher attaches an event publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithRecorder attaches an outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// NewService creates a new evaluation service.
func NewService(res SpeciesResolver, eng *engine.Engine, opts ...Option) *Service {
	s := &Service{
		resolver:     res,
		engine:       eng,
		checkBalance: true,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate parses and evaluates one request. Syntax, temperature and balance
// are checked before any species lookup.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	rep, err := s.evaluate(ctx, req)
	elapsed := time.Since(start)
	if s.recorder != nil {
		s.recorder.EvaluationDone(outcome(err), elapsed)
	}
	if err != nil {
		s.logger.Info("evaluation rejected",
			slog.String("equation", req.Equation),
			slog.Float64("temperature", req.Temperature),
			slog.String("error", err.Error()))
		return nil, err
	}
	rep.Duration = elapsed

	s.logger.Info("evaluation completed",
		slog.String("id", rep.ID),
		slog.String("equation", rep.Result.Equation),
		slog.Float64("temperature", rep.Result.Temperature),
		slog.Float64("delta_g", rep.Result.DeltaG),
		slog.Int("warnings", len(rep.Result.Warnings)),
		slog.Duration("elapsed", elapsed))
	if s.publisher != nil {
		s.publisher.Notify(EventEvaluationCompleted, EvaluationEvent{
			ID:          rep.ID,
			Equation:    rep.Result.Equation,
			Temperature: rep.Result.Temperature,
			DeltaG:      rep.Result.DeltaG,
			Spontaneity: rep.Result.Spontaneity,
		})
	}
	return rep, nil
}

func (s *Service) evaluate(ctx context.Context, req Request) (*Report, error) {
	eq, err := parser.Parse(req.Equation)
	if err != nil {
		return nil, err
	}
	if err := engine.ValidateTemperature(req.Temperature); err != nil {
		return nil, err
	}
	check := s.checkBalance
	if req.CheckBalance != nil {
		check = *req.CheckBalance
	}
	if check {
		if err := eq.CheckBalance(); err != nil {
			return nil, err
		}
	}

	ids := eq.Species()
	table := s.resolver.ResolveAll(ctx, ids)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := s.engine.Evaluate(eq, table, req.Temperature)
	if err != nil {
		return nil, err
	}

	species := make([]models.Resolution, 0, len(ids))
	for _, id := range ids {
		species = append(species, table[id])
	}
	return &Report{
		ID:      uuid.NewString(),
		Parsed:  eq,
		Result:  result,
		Species: species,
		States:  diagram.BuildStates(result),
	}, nil
}

// Parse exposes the parser without evaluating.
func (s *Service) Parse(text string) (*models.Equation, error) {
	return parser.Parse(text)
}

// CheckBalance parses text and verifies element conservation.
func (s *Service) CheckBalance(text string) (*models.Equation, error) {
	eq, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	return eq, eq.CheckBalance()
}

// Resolve looks up a single species. It returns apperr.ErrNotFound when no
// tier knows anything about it.
func (s *Service) Resolve(ctx context.Context, id string) (models.Resolution, error) {
	if _, err := parser.ParseFormula(id); err != nil {
		return models.Resolution{}, err
	}
	res := s.resolver.Resolve(ctx, id)
	if !res.Resolved() {
		return res, apperr.ErrNotFound
	}
	return res, nil
}

func outcome(err error) string {
	var (
		pe *apperr.ParseError
		te *apperr.InvalidTemperatureError
		ie *apperr.ImbalanceError
		me *apperr.MissingDataError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &pe):
		return OutcomeParseError
	case errors.As(err, &te):
		return OutcomeInvalidTemperature
	case errors.As(err, &ie):
		return OutcomeImbalanced
	case errors.As(err, &me):
		return OutcomeMissingData
	default:
		return OutcomeError
	}
}

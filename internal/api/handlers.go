package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/thermo/internal/apperr"
	"github.com/starford/thermo/internal/models"
	"github.com/starford/thermo/internal/remote"
	"github.com/starford/thermo/internal/thermoservice"
	"github.com/starford/thermo/internal/units"
)

const maxBodyBytes = 64 << 10

// Evaluator is the service surface the API needs.
type Evaluator interface {
	Evaluate(ctx context.Context, req thermoservice.Request) (*thermoservice.Report, error)
	Parse(text string) (*models.Equation, error)
	CheckBalance(text string) (*models.Equation, error)
	Resolve(ctx context.Context, id string) (models.Resolution, error)
}

// Handler holds API route handlers.
type Handler struct {
	svc           Evaluator
	defaultKelvin float64
}

// NewHandler creates a new Handler.
func NewHandler(svc Evaluator, defaultKelvin float64) *Handler {
	return &Handler{svc: svc, defaultKelvin: defaultKelvin}
}

// decode reads a JSON body into v and runs its validation rules. It writes
// the error response itself and reports whether the handler may continue.
func decode(w http.ResponseWriter, r *http.Request, v validation.Validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid_request", "invalid JSON body"))
		return false
	}
	if err := v.Validate(); err != nil {
		body := errorBody("invalid_request", err.Error())
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			body.Fields = make(map[string]string, len(verrs))
			for k, e := range verrs {
				body.Fields[k] = e.Error()
			}
		}
		writeJSON(w, http.StatusBadRequest, body)
		return false
	}
	return true
}

// Evaluate handles POST /api/evaluate.
//
//	@Summary		Evaluate ΔH, ΔS and ΔG of a reaction
//	@Tags			thermo
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EvaluateRequest	true	"Equation and temperature"
//	@Success		200		{object}	EvaluateResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/evaluate [post]
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if !decode(w, r, &req) {
		return
	}
	kelvin := h.defaultKelvin
	if req.Temperature != nil {
		kelvin = *req.Temperature
	}
	rep, err := h.svc.Evaluate(r.Context(), thermoservice.Request{
		Equation:     req.Equation,
		Temperature:  kelvin,
		CheckBalance: req.CheckBalance,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Parse handles POST /api/parse.
//
//	@Summary		Parse an equation without evaluating it
//	@Tags			thermo
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EquationRequest	true	"Equation"
//	@Success		200		{object}	ParseResponse
//	@Failure		400		{object}	errResponse
//	@Router			/parse [post]
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	var req EquationRequest
	if !decode(w, r, &req) {
		return
	}
	eq, err := h.svc.Parse(req.Equation)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newParseResponse(eq))
}

// Balance handles POST /api/balance. An imbalanced equation is a 200 with
// balanced=false; only syntax errors fail the request.
//
//	@Summary		Check element conservation
//	@Tags			thermo
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EquationRequest	true	"Equation"
//	@Success		200		{object}	BalanceResponse
//	@Failure		400		{object}	errResponse
//	@Router			/balance [post]
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	var req EquationRequest
	if !decode(w, r, &req) {
		return
	}
	eq, err := h.svc.CheckBalance(req.Equation)
	var ie *apperr.ImbalanceError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, BalanceResponse{Canonical: eq.String(), Balanced: true})
	case errors.As(err, &ie):
		writeJSON(w, http.StatusOK, BalanceResponse{Canonical: eq.String(), Elements: ie.Elements})
	default:
		writeError(w, err)
	}
}

// Species handles GET /api/species/{id}.
//
//	@Summary		Resolve one species across data tiers
//	@Tags			thermo
//	@Produce		json
//	@Param			id	path		string	true	"Species formula"
//	@Success		200	{object}	remote.SpeciesDocument
//	@Failure		404	{object}	errResponse
//	@Router			/species/{id} [get]
func (h *Handler) Species(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if decoded, err := url.PathUnescape(id); err == nil {
		id = decoded
	}
	res, err := h.svc.Resolve(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, speciesDocument(res))
}

func speciesDocument(res models.Resolution) remote.SpeciesDocument {
	doc := remote.SpeciesDocument{
		Species:    res.Species,
		Name:       res.Name,
		Properties: make(map[models.Field]models.Quantity, len(models.Fields)),
		Tiers:      make(map[models.Field]models.Tier, len(models.Fields)),
	}
	for _, f := range models.Fields {
		doc.Tiers[f] = res.Tier(f)
		if v, ok := res.Properties.Get(f); ok {
			doc.Properties[f] = models.Quantity{Value: v, Unit: units.Canonical(f)}
		}
	}
	return doc
}

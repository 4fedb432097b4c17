package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/thermo/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// errResponse is the body of every non-2xx response. Code is stable for
// clients; the detail fields depend on it.
type errResponse struct {
	Code        string                    `json:"error"`
	Message     string                    `json:"message"`
	Position    *int                      `json:"position,omitempty"`
	Token       string                    `json:"token,omitempty"`
	Temperature *float64                  `json:"temperature,omitempty"`
	Elements    []apperr.ElementImbalance `json:"elements,omitempty"`
	Missing     []apperr.MissingField     `json:"missing,omitempty"`
	Fields      map[string]string         `json:"fields,omitempty"`
}

func errorBody(code, msg string) errResponse {
	return errResponse{Code: code, Message: msg}
}

// writeError maps domain errors to status codes and structured bodies.
func writeError(w http.ResponseWriter, err error) {
	var (
		pe *apperr.ParseError
		te *apperr.InvalidTemperatureError
		ie *apperr.ImbalanceError
		me *apperr.MissingDataError
	)
	switch {
	case errors.As(err, &pe):
		body := errorBody("parse_error", pe.Msg)
		body.Position = &pe.Pos
		body.Token = pe.Token
		writeJSON(w, http.StatusBadRequest, body)
	case errors.As(err, &te):
		body := errorBody("invalid_temperature", te.Error())
		body.Temperature = &te.Kelvin
		writeJSON(w, http.StatusBadRequest, body)
	case errors.As(err, &ie):
		body := errorBody("imbalanced", ie.Error())
		body.Elements = ie.Elements
		writeJSON(w, http.StatusUnprocessableEntity, body)
	case errors.As(err, &me):
		body := errorBody("missing_data", me.Error())
		body.Missing = me.Missing
		writeJSON(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not_found", "not found"))
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, errorBody("timeout", "evaluation timed out"))
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal", "internal error"))
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arenastack/ranking-engine/ranking"
	"github.com/arenastack/ranking-engine/services"
)

type jsonResponse map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

func urlParamInt(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, errors.New("invalid " + name + " parameter")
	}
	return value, nil
}

// mapServiceErrorToHTTP translates ranking and finalization errors into
// HTTP responses.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrSessionNotFound):
		notFoundResponse(w, r)

	case errors.Is(err, services.ErrTournamentAlreadyFinalized),
		errors.Is(err, services.ErrTournamentNotFinalizable):
		conflictResponse(w, r, err.Error())

	case errors.Is(err, services.ErrIncompleteResults),
		errors.Is(err, services.ErrSessionTournamentMismatch),
		errors.Is(err, services.ErrSessionNotCompleted),
		errors.Is(err, services.ErrSessionHasNoResults),
		errors.Is(err, ranking.ErrNoCompletedResults),
		errors.Is(err, ranking.ErrNotEnoughParticipants),
		errors.Is(err, ranking.ErrMissingResults):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrForbiddenOperation):
		forbiddenResponse(w, r, err.Error())

	// An unknown strategy or a fired uniqueness constraint is a data or
	// programming fault, not a client one.
	case errors.Is(err, ranking.ErrUnknownStrategy),
		errors.Is(err, services.ErrRankingConstraintViolation):
		serverErrorResponse(w, r, err)

	default:
		serverErrorResponse(w, r, err)
	}
}

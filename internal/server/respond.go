package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/taskwell/taskwell/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorStatus(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps the service layer's typed failures onto HTTP statuses.
// Anything unrecognized is a 500 with a generic body; the real error goes to
// the log only.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		authzErr      *service.AuthzError
		validationErr *service.ValidationError
		transitionErr *service.TransitionError
		notFoundErr   *service.NotFoundError
		conflictErr   *service.ConflictError
	)

	switch {
	case errors.As(err, &authzErr):
		writeErrorStatus(w, http.StatusForbidden, authzErr.Error())
	case errors.As(err, &validationErr):
		writeErrorStatus(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &transitionErr):
		writeErrorStatus(w, http.StatusUnprocessableEntity, transitionErr.Error())
	case errors.As(err, &notFoundErr):
		writeErrorStatus(w, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		writeErrorStatus(w, http.StatusConflict, conflictErr.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeErrorStatus(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

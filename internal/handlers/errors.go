package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/minetrack/apiserver/internal/auth"
	"github.com/minetrack/apiserver/internal/logging"
	"github.com/minetrack/apiserver/internal/services"
	"github.com/minetrack/apiserver/internal/store"
)

// respondError maps err onto a status code and writes it. resource names
// the entity in not-found messages. Unexpected errors are logged with the
// request id and answered with 500.
func respondError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error, resource string) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		if errors.Is(err, services.ErrInvalidCredential) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, resource+" not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredential):
		writeError(w, http.StatusBadRequest, "current password is incorrect")
	case errors.Is(err, services.ErrInvalidOperation), errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAvatarStorageDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error(r.Context(), "request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

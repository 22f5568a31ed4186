// Package respond writes the error envelope for service errors.
package respond

import (
	"attendance-service/internal/storage"
	"attendance-service/pkg/response"
	"attendance-service/pkg/sl"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

func write(w http.ResponseWriter, r *http.Request, status int, body response.Response) {
	w.WriteHeader(status)
	render.JSON(w, r, body)
}

// DecodeFailed answers a request body that is not valid JSON.
func DecodeFailed(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	log.Error("Failed to decode request body", sl.Err(err))
	write(w, r, http.StatusBadRequest, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
}

// Error maps err to a status code and error code. msg describes the failed
// operation for unexpected errors.
func Error(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, msg string) {
	var validateErr validator.ValidationErrors

	switch {
	case errors.As(err, &validateErr):
		log.Error("invalid request", sl.Err(err))
		write(w, r, http.StatusBadRequest, response.ValidationError(validateErr))
	case errors.Is(err, response.ErrValidation):
		log.Error("invalid request", sl.Err(err))
		write(w, r, http.StatusBadRequest, response.Error(string(response.VALIDATION_FAILED), "invalid request parameters"))
	case errors.Is(err, response.ErrNotFound):
		log.Error("resource not found")
		write(w, r, http.StatusNotFound, response.Error(string(response.NOT_FOUND), "resource not found"))
	case errors.Is(err, response.ErrUnauthorized):
		log.Warn("unauthorized")
		write(w, r, http.StatusUnauthorized, response.Error(string(response.UNAUTHORIZED), "invalid credentials"))
	case errors.Is(err, response.ErrInactive):
		log.Warn("account inactive")
		write(w, r, http.StatusForbidden, response.Error(string(response.INACTIVE), "account is inactive"))
	case errors.Is(err, response.ErrProtected):
		log.Warn("protected account")
		write(w, r, http.StatusForbidden, response.Error(string(response.PROTECTED), "the main administrator cannot be changed this way"))
	case errors.Is(err, response.ErrForbidden):
		log.Warn("forbidden", sl.Err(err))
		write(w, r, http.StatusForbidden, response.Error(string(response.FORBIDDEN), "operation not permitted"))
	case errors.Is(err, response.ErrLocked):
		log.Warn("resource locked", sl.Err(err))
		write(w, r, http.StatusConflict, response.Error(string(response.LOCKED), "register is being saved, try again"))
	case errors.Is(err, response.ErrConflict):
		log.Warn("conflict", sl.Err(err))
		write(w, r, http.StatusConflict, response.Error(string(response.CONFLICT), "resource already exists"))
	case errors.Is(err, storage.ErrCorruptState):
		log.Error("corrupt persisted state", sl.Err(err))
		write(w, r, http.StatusInternalServerError, response.Error(string(response.CORRUPT_STATE), "stored data is corrupt"))
	default:
		log.Error(msg, sl.Err(err))
		write(w, r, http.StatusInternalServerError, response.Error(string(response.FAILED_REQUEST), msg))
	}
}

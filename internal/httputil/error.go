package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/AdamBeresnev/aux-analytics/internal/service"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	clientError(w, http.StatusBadRequest, "bad request", msg, err)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	clientError(w, http.StatusNotFound, "not found", msg, err)
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	clientError(w, http.StatusConflict, "conflict", msg, err)
}

func Unprocessable(w http.ResponseWriter, msg string, err error) {
	clientError(w, http.StatusUnprocessableEntity, "unprocessable", msg, err)
}

func clientError(w http.ResponseWriter, status int, kind, msg string, err error) {
	if err != nil {
		slog.Warn(kind, "message", msg, "error", err)
	} else {
		slog.Warn(kind, "message", msg)
	}
	http.Error(w, msg, status)
}

// ServiceError writes the status that matches a service or bracket error. The error text is
// shown to the user for everything but internal failures.
func ServiceError(w http.ResponseWriter, msg string, err error) {
	var phaseErr *bracket.PhaseError
	var incomplete *bracket.IncompleteRoundError

	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(w, msg+": not found", err)
	case errors.As(err, &phaseErr),
		errors.Is(err, bracket.ErrAlreadyClosed),
		errors.Is(err, bracket.ErrBracketExists):
		Conflict(w, err.Error(), err)
	case errors.As(err, &incomplete),
		errors.Is(err, bracket.ErrEmptyPool):
		Unprocessable(w, err.Error(), err)
	case errors.Is(err, bracket.ErrInvalidChoice),
		errors.Is(err, bracket.ErrInvalidSchedule),
		errors.Is(err, service.ErrInvalidSong),
		errors.Is(err, service.ErrSubmissionLimit),
		errors.Is(err, service.ErrDuplicateSong),
		service.IsLookupFailure(err):
		BadRequest(w, err.Error(), err)
	default:
		InternalServerError(w, msg, err)
	}
}

package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"synergy/internal/blocks"
	"synergy/internal/oracle"
	"synergy/internal/store"
)

// ErrBadRequest marks malformed requests: bad JSON, bad path or query
// parameters.
var ErrBadRequest = errors.New("bad request")

// Status returns the HTTP status for err.
func Status(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, blocks.ErrBlockNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest), errors.Is(err, store.ErrValidation),
		errors.Is(err, blocks.ErrNotTable), errors.Is(err, blocks.ErrEmptyTable),
		errors.Is(err, blocks.ErrCellOutOfRange), errors.Is(err, blocks.ErrInvalidContent),
		errors.Is(err, oracle.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, oracle.ErrOracle):
		return http.StatusBadGateway
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// WriteError logs err and writes the matching status. Unclassified
// failures are answered with a generic message.
func WriteError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	status := Status(err)
	if status >= 500 {
		log.Error("failed to "+op, "error", err)
	} else {
		log.Debug("rejected request", "op", op, "error", err)
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	Error(w, msg, status)
}

package server

import (
	"errors"
	"net/http"

	"github.com/vigor8or/lockserver/pkg/httpx"
	"github.com/vigor8or/lockserver/pkg/types"
)

// writeDomainError converts registry errors to HTTP responses. Conflict and
// not-found are expected outcomes of the protocol, everything else is a bug.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, "conflict", err.Error())

	case errors.Is(err, types.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, types.ErrEmptyName), errors.Is(err, types.ErrInvalidKind):
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())

	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

package server

import (
	"net/http"
	"strconv"

	"github.com/unpackhq/unpack/internal/core/engine"
	apperrors "github.com/unpackhq/unpack/internal/errors"
)

// HandleError is the single error writer for routes and handlers.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}

// rejectRateLimited reuses the Retry-After value the middleware computed.
func rejectRateLimited(w http.ResponseWriter, r *http.Request, _ engine.Decision) {
	seconds, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil || seconds < 1 {
		seconds = 1
	}
	HandleError(w, r, apperrors.NewRateLimitedError(seconds))
}

func rejectPayloadTooLarge(w http.ResponseWriter, r *http.Request) {
	HandleError(w, r, apperrors.NewPayloadTooLargeError())
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/unpackhq/unpack/internal/ailink"
	"github.com/unpackhq/unpack/internal/core"
	apperrors "github.com/unpackhq/unpack/internal/errors"
)

// CacheHeader reports "hit" or "miss" on successful simplify responses.
const CacheHeader = "X-Unpack-Cache"

// Simplifier runs one simplify request end to end.
type Simplifier interface {
	Simplify(ctx context.Context, req core.SimplifyRequest) (*core.Simplification, error)
}

// SimplifyHandler serves POST /simplify.
type SimplifyHandler struct {
	Simplifier Simplifier
}

func NewSimplifyHandler(s Simplifier) *SimplifyHandler {
	return &SimplifyHandler{Simplifier: s}
}

// simplifyPayload keeps raw fields so a non-string text is told apart from
// a malformed body.
type simplifyPayload struct {
	Text     json.RawMessage `json:"text"`
	Provider json.RawMessage `json:"provider"`
}

func (h *SimplifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSimplifyRequest(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apperrors.RespondWithError(w, r, apperrors.NewPayloadTooLargeError())
			return
		}
		apperrors.RespondWithError(w, r, apperrors.NewInvalidInputError(core.MsgMissingField))
		return
	}

	if h.Simplifier == nil {
		apperrors.RespondWithError(w, r, apperrors.NewServiceUnavailableError("Simplifier not configured"))
		return
	}

	result, err := h.Simplifier.Simplify(r.Context(), req)
	if err != nil {
		apperrors.RespondWithError(w, r, simplifyError(r.Context(), err))
		return
	}

	if result.FromCache {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
	writeJSON(w, http.StatusOK, result.Response())
}

func decodeSimplifyRequest(body io.Reader) (core.SimplifyRequest, error) {
	var req core.SimplifyRequest
	if body == nil {
		return req, core.NewMissingFieldError()
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return req, err
	}

	var payload simplifyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return req, err
	}

	text := bytes.TrimSpace(payload.Text)
	if len(text) == 0 || bytes.Equal(text, []byte("null")) {
		return req, core.NewMissingFieldError()
	}
	if err := json.Unmarshal(text, &req.Text); err != nil {
		return req, core.NewMissingFieldError()
	}

	// A provider that is not a string falls back to the default.
	if len(payload.Provider) > 0 {
		_ = json.Unmarshal(payload.Provider, &req.Provider)
	}
	return req, nil
}

// simplifyError maps validation and provider failures onto error envelopes.
func simplifyError(ctx context.Context, err error) error {
	var inputErr *core.InputError
	if errors.As(err, &inputErr) {
		return apperrors.NewInvalidInputError(inputErr.Message)
	}

	switch ailink.ClassifyError(err) {
	case ailink.Busy:
		return apperrors.WrapUpstreamBusy(ctx, err)
	case ailink.Timeout:
		return apperrors.WrapTimeout(ctx, err)
	default:
		return apperrors.WrapUpstreamFailure(ctx, err)
	}
}

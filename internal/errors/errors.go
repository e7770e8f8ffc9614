// Package errors maps application failures onto gofulmen error envelopes and
// writes them as the flat JSON error body used by every endpoint.
package errors

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unpackhq/unpack/internal/metrics"
	"github.com/unpackhq/unpack/internal/observability"
	"github.com/unpackhq/unpack/internal/server/middleware"
)

// Error codes.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeRateLimited        = "RATE_LIMITED"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeUpstreamBusy       = "UPSTREAM_BUSY"
	CodeTimeout            = "TIMEOUT"
	CodeUpstreamFailure    = "UPSTREAM_FAILURE"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeConfigInvalid      = "CONFIG_INVALID"
)

// Client-facing messages for the simplify endpoint.
const (
	MsgRateLimited     = "Too many requests. Please wait a minute."
	MsgPayloadTooLarge = "Request body too large"
	MsgUpstreamBusy    = "Service busy. Please try again in a moment."
	MsgTimeout         = "Simplification timed out. Please try again."
	MsgUpstreamFailure = "Failed to simplify text. Please try again."
)

func NewInvalidInputError(message string) *errors.ErrorEnvelope {
	return withSeverity(errors.NewErrorEnvelope(CodeInvalidInput, message), errors.SeverityLow)
}

// NewRateLimitedError carries the wait in whole seconds as a response detail.
func NewRateLimitedError(retryAfterSeconds int) *errors.ErrorEnvelope {
	env := errors.NewErrorEnvelope(CodeRateLimited, MsgRateLimited)
	env = env.WithDetails(map[string]interface{}{"retry_after_seconds": retryAfterSeconds})
	return withSeverity(env, errors.SeverityLow)
}

func NewPayloadTooLargeError() *errors.ErrorEnvelope {
	return withSeverity(errors.NewErrorEnvelope(CodePayloadTooLarge, MsgPayloadTooLarge), errors.SeverityLow)
}

func NewNotFoundError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeNotFound, message)
}

func NewMethodNotAllowedError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeMethodNotAllowed, message)
}

func NewInternalError(message string) *errors.ErrorEnvelope {
	return withSeverity(errors.NewErrorEnvelope(CodeInternal, message), errors.SeverityHigh)
}

func NewServiceUnavailableError(message string) *errors.ErrorEnvelope {
	return withSeverity(errors.NewErrorEnvelope(CodeServiceUnavailable, message), errors.SeverityMedium)
}

func NewConfigInvalidError(message string) *errors.ErrorEnvelope {
	return withSeverity(errors.NewErrorEnvelope(CodeConfigInvalid, message), errors.SeverityCritical)
}

// Upstream wrappers keep the provider error in the envelope context, which is
// logged but never written to the response.

func WrapUpstreamBusy(ctx context.Context, err error) *errors.ErrorEnvelope {
	return wrap(ctx, CodeUpstreamBusy, MsgUpstreamBusy, err, errors.SeverityMedium)
}

func WrapTimeout(ctx context.Context, err error) *errors.ErrorEnvelope {
	return wrap(ctx, CodeTimeout, MsgTimeout, err, errors.SeverityMedium)
}

func WrapUpstreamFailure(ctx context.Context, err error) *errors.ErrorEnvelope {
	return wrap(ctx, CodeUpstreamFailure, MsgUpstreamFailure, err, errors.SeverityHigh)
}

func WrapInternal(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeInternal, message, err, errors.SeverityHigh)
}

func WrapConfigInvalid(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeConfigInvalid, message, err, errors.SeverityCritical)
}

func wrap(ctx context.Context, code, message string, err error, severity errors.Severity) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope(code, message)
	envelope = envelope.WithCorrelationID(extractCorrelationID(ctx))
	envelope = envelope.WithTraceID(extractCorrelationID(ctx))
	envelope = withWrappedError(envelope, err)
	return withSeverity(envelope, severity)
}

func withSeverity(envelope *errors.ErrorEnvelope, severity errors.Severity) *errors.ErrorEnvelope {
	updated, err := envelope.WithSeverity(severity)
	if err != nil {
		return envelope
	}
	return updated
}

func withWrappedError(envelope *errors.ErrorEnvelope, err error) *errors.ErrorEnvelope {
	if envelope == nil || err == nil {
		return envelope
	}
	updated, updateErr := envelope.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	if updateErr != nil {
		return envelope
	}
	return updated
}

// extractCorrelationID gets the request ID from context, falling back to a
// new UUID.
func extractCorrelationID(ctx context.Context) string {
	if ctx != nil {
		if requestID := middleware.GetRequestID(ctx); requestID != "" {
			return requestID
		}
	}
	return uuid.New().String()
}

// EnsureEnvelope normalizes any error into a gofulmen ErrorEnvelope.
func EnsureEnvelope(err error) *errors.ErrorEnvelope {
	if err == nil {
		return withSeverity(errors.NewErrorEnvelope(CodeInternal, "unexpected nil error"), errors.SeverityCritical)
	}
	if envelope, ok := err.(*errors.ErrorEnvelope); ok && envelope != nil {
		return envelope
	}
	env := withWrappedError(errors.NewErrorEnvelope(CodeInternal, "unexpected error"), err)
	return withSeverity(env, errors.SeverityHigh)
}

// EnsureCorrelationID attaches the request ID when the envelope has none.
func EnsureCorrelationID(envelope *errors.ErrorEnvelope, ctx context.Context) *errors.ErrorEnvelope {
	if envelope == nil || envelope.CorrelationID != "" {
		return envelope
	}
	var correlationID string
	if ctx != nil {
		correlationID = middleware.GetRequestID(ctx)
	}
	if correlationID == "" {
		correlationID = "fallback-" + errors.GenerateCorrelationID()
	}
	return envelope.WithCorrelationID(correlationID)
}

// HTTPStatusFromCode resolves the HTTP status code corresponding to an error code.
func HTTPStatusFromCode(code string) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUpstreamBusy, CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorResponse is the error body. Error always holds the human message.
type HTTPErrorResponse struct {
	Error     string                 `json:"error"`
	Code      string                 `json:"code"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// RespondWithError normalizes the supplied error and writes a JSON response.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	RespondWithEnvelope(w, r, EnsureEnvelope(err))
}

// RespondWithEnvelope logs the envelope, emits error metrics and writes the
// response.
func RespondWithEnvelope(w http.ResponseWriter, r *http.Request, envelope *errors.ErrorEnvelope) {
	if w == nil {
		return
	}
	var ctx context.Context
	if r != nil {
		ctx = r.Context()
	}
	envelope = EnsureCorrelationID(envelope, ctx)
	statusCode := HTTPStatusFromCode(envelope.Code)

	response := HTTPErrorResponse{
		Error:     envelope.Message,
		Code:      envelope.Code,
		RequestID: envelope.CorrelationID,
	}
	if len(envelope.Details) > 0 {
		response.Details = envelope.Details
	}

	logHTTPError(envelope, statusCode)
	emitErrorMetrics(r, envelope, statusCode)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

func logHTTPError(envelope *errors.ErrorEnvelope, statusCode int) {
	if observability.ServerLogger == nil || envelope == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", envelope.Code),
		zap.Int("http_status", statusCode),
	}
	if envelope.Severity != "" {
		fields = append(fields, zap.String("severity", string(envelope.Severity)))
	}
	for key, value := range envelope.Context {
		fields = append(fields, zap.Any(key, value))
	}
	if envelope.CorrelationID != "" {
		fields = append(fields, zap.String("request_id", envelope.CorrelationID))
	}

	switch envelope.Severity {
	case errors.SeverityCritical, errors.SeverityHigh:
		observability.ServerLogger.Error(envelope.Message, fields...)
	case errors.SeverityMedium:
		observability.ServerLogger.Warn(envelope.Message, fields...)
	default:
		observability.ServerLogger.Info(envelope.Message, fields...)
	}
}

func emitErrorMetrics(r *http.Request, envelope *errors.ErrorEnvelope, statusCode int) {
	metrics.RecordError(envelope.Code, statusCode)
	if r == nil {
		return
	}
	endpoint := "/unknown"
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		endpoint = rctx.RoutePattern()
	}
	metrics.RecordErrorByEndpoint(endpoint, envelope.Code)
}

package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coursehub/coursehub-api/internal/platform/logger"
	"github.com/coursehub/coursehub-api/internal/redact"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error   string    `json:"error"`
	Code    ErrorCode `json:"code"`
	TraceID string    `json:"trace_id,omitempty"`
}

// Response is the body of every successful response that carries data.
type Response struct {
	Result interface{} `json:"result"`
}

// ResponseOption defines a function to customize response behavior.
type ResponseOption func(*responseOptions)

type responseOptions struct {
	elevateLogLevel bool
}

// WithElevatedLogLevel logs a 4xx response at WARN instead of DEBUG. Use it for
// operational signals such as failed logins.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

// RespondWithJSON writes data as JSON with the given status code.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		requestLogger(r).Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithResult writes result inside the {"result": ...} envelope.
func RespondWithResult(w http.ResponseWriter, r *http.Request, status int, result interface{}) {
	RespondWithJSON(w, r, status, Response{Result: result})
}

// RespondWithError writes an error response carrying the request's trace ID.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, message string) {
	traceID := GetTraceID(r.Context())

	requestLogger(r).Debug("sending error response",
		"status_code", status,
		"code", int(code),
		"message", message,
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, ErrorResponse{Error: message, Code: code, TraceID: traceID})
}

// RespondWithErrorAndLog writes an error response with only the safe userMessage
// and logs the redacted err.
//
// 5xx responses are logged at ERROR. 4xx responses are logged at DEBUG, or at WARN
// with WithElevatedLogLevel.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	code ErrorCode,
	userMessage string,
	err error,
	opts ...ResponseOption,
) {
	traceID := GetTraceID(r.Context())

	attrs := []slog.Attr{
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.Int("code", int(code)),
		slog.String("user_message", userMessage),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	options := responseOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	level := slog.LevelDebug
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status == http.StatusTooManyRequests:
		level = slog.LevelWarn
	case options.elevateLogLevel && status >= http.StatusBadRequest:
		level = slog.LevelWarn
	}

	requestLogger(r).LogAttrs(r.Context(), level, "API error response", attrs...)

	RespondWithJSON(w, r, status, ErrorResponse{Error: userMessage, Code: code, TraceID: traceID})
}

func requestLogger(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), slog.Default())
}

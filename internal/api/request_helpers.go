package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/coursehub/coursehub-api/internal/api/shared"
	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/platform/logger"
	"github.com/go-chi/chi/v5"
)

// getPathID parses a positive int64 identifier from the named path parameter.
func getPathID(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrInvalidID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// handlePathID extracts the path ID or writes a 400 response. The second return
// value is false when a response has been written.
func handlePathID(w http.ResponseWriter, r *http.Request, paramName string) (int64, bool) {
	id, err := getPathID(r, paramName)
	if err != nil {
		requestLogger(r, nil).Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "Invalid ID")
		return 0, false
	}
	return id, true
}

// decodeAndValidate reads the JSON body into req and validates it, writing a
// 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		HandleAPIError(w, r, err, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "Validation error")
		return false
	}
	return true
}

func requestLogger(r *http.Request, fallback *slog.Logger) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), fallback)
}

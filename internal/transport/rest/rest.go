// Package rest provides the HTTP handlers of the back-office API.
package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/lojinha/backoffice/internal/service"
	"github.com/lojinha/backoffice/pkg/web"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// parsePageQuery reads page, limit and search from the query string. Bounds
// are checked by the service layer, not here.
func parsePageQuery(r *http.Request, w http.ResponseWriter, logger *slog.Logger) (service.PageQuery, bool) {
	page, ok := web.ParseQueryInt32(r, w, logger, "page", defaultPage)
	if !ok {
		return service.PageQuery{}, false
	}
	limit, ok := web.ParseQueryInt32(r, w, logger, "limit", defaultLimit)
	if !ok {
		return service.PageQuery{}, false
	}
	return service.PageQuery{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
	}, true
}

// respondInvalidBody maps a struct validation failure to a 400 response,
// listing the failed rules per field when possible.
func respondInvalidBody(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorResponse := make(map[string]string)
		for _, fieldErr := range validationErrors {
			errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
		}
		logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
		web.RespondJSON(w, logger, http.StatusBadRequest, web.Envelope{
			StatusCode: http.StatusBadRequest,
			Data:       map[string]any{"validation_errors": errorResponse},
			Message:    "Validation failed",
		})
		return
	}
	logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
	web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
}

// loggerWithReqID creates a logger with the request ID from the context.
func loggerWithReqID(logger *slog.Logger, r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return logger.With("request_id", reqID)
}

// HealthHandler exposes the liveness probe.
type HealthHandler struct{}

// HealthCheck is a simple health check endpoint.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

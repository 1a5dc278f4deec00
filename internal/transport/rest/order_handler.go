package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	apperrors "github.com/lojinha/backoffice/internal/errors"
	"github.com/lojinha/backoffice/internal/service"
	"github.com/lojinha/backoffice/pkg/web"
)

// OrderHandler serves the order endpoints.
type OrderHandler struct {
	service  service.OrderService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewOrderHandler creates a new instance of OrderHandler with the provided service.
func NewOrderHandler(service service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest.order"),
	}
}

// RegisterRoutes registers the HTTP routes for orders. The metrics route is
// registered before the id subtree so "metrics" is never parsed as an id.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/", h.FindAndCount)
		r.Post("/", h.Create)
		r.Get("/metrics", h.Metrics)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})
}

// FindAndCount retrieves one page of orders plus the total count. Orders
// have no searchable name, so the search parameter is ignored.
func (h *OrderHandler) FindAndCount(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	query, ok := parsePageQuery(r, w, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to list orders", "page", query.Page, "limit", query.Limit)
	page, err := h.service.FindAndCount(r.Context(), query)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidPagination) {
			mLogger.WarnContext(r.Context(), "Invalid pagination", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving order list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	web.Respond(w, mLogger, http.StatusOK, page, "Orders retrieved successfully")
}

// FindByID retrieves an order by its ID.
func (h *OrderHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrOrderNotFound) {
			mLogger.WarnContext(r.Context(), "Order not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Order with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving order", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve order with ID %s", id))
		return
	}
	web.Respond(w, mLogger, http.StatusOK, found, "Order retrieved successfully")
}

// Create handles the creation of a new order.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	var dto service.OrderCreateDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		respondInvalidBody(w, r, mLogger, err)
		return
	}

	created, err := h.service.Create(r.Context(), dto)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating order", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create order")
		return
	}
	mLogger.InfoContext(r.Context(), "Order created successfully", "ID", created.ID, "Total", created.Total)
	web.Respond(w, mLogger, http.StatusCreated, created, "Order created successfully")
}

// Update modifies an order.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.OrderUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		respondInvalidBody(w, r, mLogger, err)
		return
	}

	updated, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		if errors.Is(err, apperrors.ErrOrderNotFound) {
			mLogger.WarnContext(r.Context(), "Order not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Order with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating order", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update order with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Order updated successfully", "ID", updated.ID)
	web.Respond(w, mLogger, http.StatusOK, updated, "Order updated successfully")
}

// DeleteByID deletes an order by its ID.
func (h *OrderHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrOrderNotFound) {
			mLogger.WarnContext(r.Context(), "Order not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Order with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting order", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete order with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Order deleted successfully", "ID", id)
	web.Respond(w, mLogger, http.StatusOK, nil, "Order deleted successfully")
}

// Metrics returns the aggregated order dashboard numbers.
func (h *OrderHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	metrics, err := h.service.Metrics(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error aggregating order metrics", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to aggregate order metrics")
		return
	}
	web.Respond(w, mLogger, http.StatusOK, metrics, "Order metrics retrieved successfully")
}

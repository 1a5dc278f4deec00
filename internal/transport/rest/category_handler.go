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

// CategoryHandler serves the category endpoints.
type CategoryHandler struct {
	service  service.CategoryService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCategoryHandler creates a new instance of CategoryHandler with the provided service.
func NewCategoryHandler(service service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest.category"),
	}
}

// RegisterRoutes registers the HTTP routes for categories.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", h.FindAndCount)
		r.Get("/all", h.FindAll)
		r.Post("/", h.Create)
		r.Post("/reconcile", h.Reconcile)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})
}

// FindAndCount retrieves one page of categories plus the total count.
func (h *CategoryHandler) FindAndCount(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	query, ok := parsePageQuery(r, w, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to list categories", "page", query.Page, "limit", query.Limit, "search", query.Search)
	page, err := h.service.FindAndCount(r.Context(), query)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidPagination) {
			mLogger.WarnContext(r.Context(), "Invalid pagination", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving category list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	web.Respond(w, mLogger, http.StatusOK, page, "Categories retrieved successfully")
}

// FindAll retrieves every category, unpaginated.
func (h *CategoryHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving categories", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	web.Respond(w, mLogger, http.StatusOK, list, "Categories retrieved successfully")
}

// FindByID retrieves a category by its ID.
func (h *CategoryHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			mLogger.WarnContext(r.Context(), "Category not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Category with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving category", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve category with ID %s", id))
		return
	}
	web.Respond(w, mLogger, http.StatusOK, found, "Category retrieved successfully")
}

// Create handles the creation of a new category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	var dto service.CategoryCreateDto
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
		mLogger.ErrorContext(r.Context(), "Error creating category", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create category")
		return
	}
	mLogger.InfoContext(r.Context(), "Category created successfully", "ID", created.ID, "Name", created.Name)
	web.Respond(w, mLogger, http.StatusCreated, created, "Category created successfully")
}

// Update renames a category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.CategoryUpdateDto
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
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			mLogger.WarnContext(r.Context(), "Category not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Category with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating category", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update category with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Category updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.Respond(w, mLogger, http.StatusOK, updated, "Category updated successfully")
}

// DeleteByID deletes a category and detaches it from every product.
func (h *CategoryHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			mLogger.WarnContext(r.Context(), "Category not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Category with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting category", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete category with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Category deleted successfully", "ID", id)
	web.Respond(w, mLogger, http.StatusOK, nil, "Category deleted successfully")
}

// Reconcile strips dangling category references from products.
func (h *CategoryHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	repaired, err := h.service.Reconcile(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error reconciling category references", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to reconcile category references")
		return
	}
	mLogger.InfoContext(r.Context(), "Category references reconciled", "repaired", repaired)
	web.Respond(w, mLogger, http.StatusOK, map[string]int64{"repaired": repaired}, "Category references reconciled")
}

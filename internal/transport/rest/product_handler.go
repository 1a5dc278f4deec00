package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	apperrors "github.com/lojinha/backoffice/internal/errors"
	"github.com/lojinha/backoffice/internal/service"
	"github.com/lojinha/backoffice/pkg/web"
)

// maxUploadSize bounds the multipart form held in memory.
const maxUploadSize = 10 << 20

// ProductHandler serves the product endpoints. Create and Update accept
// either a JSON body or a multipart form carrying the DTO plus an image.
type ProductHandler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewProductHandler creates a new instance of ProductHandler with the provided service.
func NewProductHandler(service service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest.product"),
	}
}

// RegisterRoutes registers the HTTP routes for products.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAndCount)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})
}

// FindAndCount retrieves one page of products plus the total count. Each
// product carries its resolved category references.
func (h *ProductHandler) FindAndCount(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	query, ok := parsePageQuery(r, w, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to list products", "page", query.Page, "limit", query.Limit, "search", query.Search)
	page, err := h.service.FindAndCount(r.Context(), query)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidPagination) {
			mLogger.WarnContext(r.Context(), "Invalid pagination", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.Respond(w, mLogger, http.StatusOK, page, "Products retrieved successfully")
}

// FindByID retrieves a product by its ID.
func (h *ProductHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	web.Respond(w, mLogger, http.StatusOK, found, "Product retrieved successfully")
}

// Create handles the creation of a new product, with an optional image.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	var dto service.ProductCreateDto
	file, ok := h.decodeProductBody(w, r, mLogger, "createProductDto", &dto)
	if !ok {
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		respondInvalidBody(w, r, mLogger, err)
		return
	}

	created, err := h.service.Create(r.Context(), dto, file)
	if err != nil {
		if errors.Is(err, apperrors.ErrUploadFailed) {
			mLogger.ErrorContext(r.Context(), "Image upload failed", "error", err)
			web.RespondError(w, mLogger, http.StatusBadGateway, "Failed to upload product image")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.Respond(w, mLogger, http.StatusCreated, created, "Product created successfully")
}

// Update modifies a product, optionally replacing its image.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.ProductUpdateDto
	file, ok := h.decodeProductBody(w, r, mLogger, "updateProductDto", &dto)
	if !ok {
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		respondInvalidBody(w, r, mLogger, err)
		return
	}

	updated, err := h.service.Update(r.Context(), id, dto, file)
	if err != nil {
		if errors.Is(err, apperrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		if errors.Is(err, apperrors.ErrUploadFailed) {
			mLogger.ErrorContext(r.Context(), "Image upload failed", "ID", id, "error", err)
			web.RespondError(w, mLogger, http.StatusBadGateway, "Failed to upload product image")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.Respond(w, mLogger, http.StatusOK, updated, "Product updated successfully")
}

// DeleteByID deletes a product by its ID.
func (h *ProductHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.Respond(w, mLogger, http.StatusOK, nil, "Product deleted successfully")
}

// decodeProductBody fills dto from either a plain JSON body or a multipart
// form where the DTO travels as a JSON string under dtoField and the image
// under "file". Returns the file, nil when none was sent.
func (h *ProductHandler) decodeProductBody(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dtoField string, dto any) (*service.FileUpload, bool) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
			mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
			return nil, false
		}
		return nil, true
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		mLogger.ErrorContext(r.Context(), "Error parsing multipart form", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid multipart form")
		return nil, false
	}

	raw := r.FormValue(dtoField)
	if raw == "" {
		web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Missing %s form field", dtoField))
		return nil, false
	}
	if err := json.Unmarshal([]byte(raw), dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding form field", "field", dtoField, "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid %s form field", dtoField))
		return nil, false
	}

	part, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error reading uploaded file", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid file upload")
		return nil, false
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error reading uploaded file", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid file upload")
		return nil, false
	}
	return &service.FileUpload{
		Data:        data,
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, true
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lojinha/backoffice/internal/store"
	"github.com/lojinha/backoffice/internal/store/db"
	"github.com/lojinha/backoffice/internal/upload"
)

// defaultImageURL is used when a product is created without an image.
const defaultImageURL = "https://placehold.co/300x300"

// uploadFolder is the object storage prefix for product images.
const uploadFolder = "products"

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindAndCount returns one page of products, each with its surviving
	// category references resolved to {id, name}, plus the total count
	// matching the same filter.
	FindAndCount(ctx context.Context, query PageQuery) (*ProductPageDto, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// Create adds a new product, uploading the image first when one is given.
	// Returns ErrUploadFailed without touching the store when the upload fails.
	Create(ctx context.Context, product ProductCreateDto, file *FileUpload) (*ProductDto, error)

	// Update modifies an existing product; without a file the stored image is kept.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, product ProductUpdateDto, file *FileUpload) (*ProductDto, error)

	// DeleteByID removes a product by its ID. Orders referencing it keep
	// their id lists; the dangling references are logged, not repaired.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	products   store.ProductStore
	categories store.CategoryStore
	uploader   upload.Uploader
	logger     *slog.Logger
}

// NewProductService creates a new instance of ProductService with the provided stores and uploader.
func NewProductService(products store.ProductStore, categories store.CategoryStore, uploader upload.Uploader, logger *slog.Logger) ProductService {
	return &productService{
		products:   products,
		categories: categories,
		uploader:   uploader,
		logger:     logger.With("component", "product_service"),
	}
}

// FileUpload carries one multipart file through to the uploader.
type FileUpload struct {
	Data        []byte
	Name        string
	ContentType string
}

// ProductCreateDto represents the data transfer object for creating a new product.
// Category ids are weak references; they are not checked for existence.
type ProductCreateDto struct {
	Name        string   `json:"name"        validate:"required,max=100"`
	Description string   `json:"description" validate:"required"`
	Price       int64    `json:"price"       validate:"min=0"`
	CategoryIDs []string `json:"categoryIds" validate:"omitempty,dive,uuid"`
}

// ProductUpdateDto represents the data transfer object for updating a product.
type ProductUpdateDto struct {
	Name        string   `json:"name"        validate:"required,max=100"`
	Description string   `json:"description" validate:"required"`
	Price       int64    `json:"price"       validate:"min=0"`
	CategoryIDs []string `json:"categoryIds" validate:"omitempty,dive,uuid"`
}

// CategoryRefDto is a resolved weak category reference.
type CategoryRefDto struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductDto represents the data transfer object for a product. Categories
// holds only the references that still resolve; dangling ids are dropped.
type ProductDto struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       int64            `json:"price"`
	Categories  []CategoryRefDto `json:"categories"`
	ImageURL    string           `json:"imageUrl"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
}

// ProductPageDto is one page of products plus the filter-wide count.
type ProductPageDto struct {
	Products []ProductDto `json:"products"`
	Count    int64        `json:"count"`
}

// FindAndCount retrieves one page of products and resolves their category
// references in a single extra lookup across the whole page.
func (s *productService) FindAndCount(ctx context.Context, query PageQuery) (*ProductPageDto, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	products, count, err := s.products.FindPage(ctx, store.PageSpec{
		Offset: query.Offset(),
		Limit:  query.Limit,
		Search: query.Search,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	refs, err := s.resolveCategoryRefs(ctx, products)
	if err != nil {
		return nil, err
	}

	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toProductDto(&products[i], refs)
	}
	return &ProductPageDto{Products: dtos, Count: count}, nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *productService) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	refs, err := s.resolveCategoryRefs(ctx, []db.Product{*product})
	if err != nil {
		return nil, err
	}
	return toProductDto(product, refs), nil
}

// Create uploads the image (if any) and then inserts the product, so a
// failed upload never leaves an orphaned record.
func (s *productService) Create(ctx context.Context, product ProductCreateDto, file *FileUpload) (*ProductDto, error) {
	categoryIDs, err := parseUUIDs(product.CategoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to parse category ids: %w", err)
	}

	imageURL := defaultImageURL
	if file != nil {
		imageURL, err = s.uploader.Upload(ctx, file.Data, file.Name, file.ContentType, uploadFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to upload product image: %w", err)
		}
	}

	created, err := s.products.Create(ctx, product.Name, product.Description, product.Price, categoryIDs, imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	refs, err := s.resolveCategoryRefs(ctx, []db.Product{*created})
	if err != nil {
		return nil, err
	}
	return toProductDto(created, refs), nil
}

// Update modifies a product. Without a file the stored image URL is kept.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *productService) Update(ctx context.Context, id uuid.UUID, product ProductUpdateDto, file *FileUpload) (*ProductDto, error) {
	categoryIDs, err := parseUUIDs(product.CategoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to parse category ids: %w", err)
	}

	imageURL := ""
	if file != nil {
		imageURL, err = s.uploader.Upload(ctx, file.Data, file.Name, file.ContentType, uploadFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to upload product image: %w", err)
		}
	}

	updated, err := s.products.Update(ctx, id, product.Name, product.Description, product.Price, categoryIDs, imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	refs, err := s.resolveCategoryRefs(ctx, []db.Product{*updated})
	if err != nil {
		return nil, err
	}
	return toProductDto(updated, refs), nil
}

// DeleteByID deletes a product by its ID. Orders are left untouched; any
// references that now dangle are surfaced in the log.
func (s *productService) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := s.products.DeleteByID(ctx, id); err != nil {
		return err
	}
	dangling, err := s.products.CountDanglingOrderRefs(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Could not check order references after product delete", "ID", id, "error", err)
		return nil
	}
	if dangling > 0 {
		s.logger.WarnContext(ctx, "Orders reference products that no longer exist", "orders", dangling)
	}
	return nil
}

// resolveCategoryRefs looks up the {id, name} pairs for every category id
// appearing on the given products, in one query.
func (s *productService) resolveCategoryRefs(ctx context.Context, products []db.Product) (map[uuid.UUID]db.CategoryRef, error) {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for i := range products {
		for _, id := range products[i].CategoryIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	refs, err := s.categories.FindRefsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product categories: %w", err)
	}
	byID := make(map[uuid.UUID]db.CategoryRef, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}
	return byID, nil
}

// toProductDto converts a db.Product to a ProductDto, dropping category ids
// that no longer resolve.
func toProductDto(product *db.Product, refs map[uuid.UUID]db.CategoryRef) *ProductDto {
	categories := make([]CategoryRefDto, 0, len(product.CategoryIDs))
	for _, id := range product.CategoryIDs {
		if ref, ok := refs[id]; ok {
			categories = append(categories, CategoryRefDto{ID: ref.ID.String(), Name: ref.Name})
		}
	}
	return &ProductDto{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Categories:  categories,
		ImageURL:    product.ImageURL,
		CreatedAt:   formatTime(product.CreatedAt),
		UpdatedAt:   formatTime(product.UpdatedAt),
	}
}

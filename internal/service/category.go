package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lojinha/backoffice/internal/store"
	"github.com/lojinha/backoffice/internal/store/db"
)

// CategoryService defines the methods for managing categories.
// It abstracts the underlying business logic and data access.
type CategoryService interface {
	// FindAndCount returns one page of categories plus the total count
	// matching the same filter.
	FindAndCount(ctx context.Context, query PageQuery) (*CategoryPageDto, error)

	// FindAll returns every category, most recently updated first.
	FindAll(ctx context.Context) ([]CategoryDto, error)

	// FindByID retrieves a single category by its unique identifier.
	// Returns ErrCategoryNotFound if no category exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*CategoryDto, error)

	// Create adds a new category.
	Create(ctx context.Context, category CategoryCreateDto) (*CategoryDto, error)

	// Update renames an existing category.
	// Returns ErrCategoryNotFound if no category exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, category CategoryUpdateDto) (*CategoryDto, error)

	// DeleteByID removes a category and strips its id from every product
	// referencing it.
	// Returns ErrCategoryNotFound if no category exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// Reconcile strips category references with no matching category from
	// every product. Returns the number of products repaired.
	Reconcile(ctx context.Context) (int64, error)
}

type categoryService struct {
	repository store.CategoryStore
}

// NewCategoryService creates a new instance of CategoryService with the provided repository.
func NewCategoryService(repo store.CategoryStore) CategoryService {
	return &categoryService{repository: repo}
}

// CategoryCreateDto represents the data transfer object for creating a new category.
type CategoryCreateDto struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CategoryUpdateDto represents the data transfer object for renaming a category.
type CategoryUpdateDto struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CategoryDto represents the data transfer object for a category.
type CategoryDto struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CategoryPageDto is one page of categories plus the filter-wide count.
type CategoryPageDto struct {
	Categories []CategoryDto `json:"categories"`
	Count      int64         `json:"count"`
}

// FindAndCount retrieves one page of categories and the total count matching
// the same filter. The count does not depend on the page window.
func (s *categoryService) FindAndCount(ctx context.Context, query PageQuery) (*CategoryPageDto, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	categories, count, err := s.repository.FindPage(ctx, store.PageSpec{
		Offset: query.Offset(),
		Limit:  query.Limit,
		Search: query.Search,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	dtos := make([]CategoryDto, len(categories))
	for i := range categories {
		dtos[i] = *toCategoryDto(&categories[i])
	}
	return &CategoryPageDto{Categories: dtos, Count: count}, nil
}

// FindAll retrieves every category and returns them as CategoryDTOs.
func (s *categoryService) FindAll(ctx context.Context) ([]CategoryDto, error) {
	categories, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	dtos := make([]CategoryDto, len(categories))
	for i := range categories {
		dtos[i] = *toCategoryDto(&categories[i])
	}
	return dtos, nil
}

// FindByID retrieves a category by its ID and returns it as a CategoryDto.
// Returns ErrCategoryNotFound if no category exists with the given ID.
func (s *categoryService) FindByID(ctx context.Context, id uuid.UUID) (*CategoryDto, error) {
	category, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category by ID %s: %w", id, err)
	}
	return toCategoryDto(category), nil
}

// Create creates a new category and returns it as a CategoryDto.
func (s *categoryService) Create(ctx context.Context, category CategoryCreateDto) (*CategoryDto, error) {
	created, err := s.repository.Create(ctx, category.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return toCategoryDto(created), nil
}

// Update renames a category and returns the updated record as a CategoryDto.
// Returns ErrCategoryNotFound if no category exists with the given ID.
func (s *categoryService) Update(ctx context.Context, id uuid.UUID, category CategoryUpdateDto) (*CategoryDto, error) {
	updated, err := s.repository.Update(ctx, id, category.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to update category with ID %s: %w", id, err)
	}
	return toCategoryDto(updated), nil
}

// DeleteByID deletes a category by its ID. The store removes the category
// and its product references in one transaction.
// Returns ErrCategoryNotFound if no category exists with the given ID.
func (s *categoryService) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return s.repository.DeleteByID(ctx, id)
}

// Reconcile repairs products still referencing categories that no longer exist.
func (s *categoryService) Reconcile(ctx context.Context) (int64, error) {
	repaired, err := s.repository.PruneDanglingRefs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile category references: %w", err)
	}
	return repaired, nil
}

// toCategoryDto converts a db.Category to a CategoryDto.
func toCategoryDto(category *db.Category) *CategoryDto {
	return &CategoryDto{
		ID:        category.ID.String(),
		Name:      category.Name,
		CreatedAt: formatTime(category.CreatedAt),
		UpdatedAt: formatTime(category.UpdatedAt),
	}
}

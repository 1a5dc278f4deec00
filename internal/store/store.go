// Package store provides the interfaces for catalog storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lojinha/backoffice/internal/store/db"
)

// PageSpec is a validated page window plus an optional name filter.
// Offset and Limit are final values; the page math happens in the service.
type PageSpec struct {
	Offset int64
	Limit  int32
	Search string
}

// CategoryStore is an interface for category storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type CategoryStore interface {
	// FindPage returns the page slice and the total count matching the same
	// filter, independent of the page window.
	FindPage(ctx context.Context, spec PageSpec) ([]db.Category, int64, error)

	// FindAll returns every category, most recently updated first.
	FindAll(ctx context.Context) ([]db.Category, error)

	// FindByID retrieves a single category by its unique identifier.
	// Returns ErrCategoryNotFound if no category exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*db.Category, error)

	// FindRefsByIDs resolves the given ids to {id, name} pairs.
	// Ids without a matching row are simply absent from the result.
	FindRefsByIDs(ctx context.Context, ids []uuid.UUID) ([]db.CategoryRef, error)

	// Create adds a new category.
	Create(ctx context.Context, name string) (*db.Category, error)

	// Update renames an existing category.
	// Returns ErrCategoryNotFound if no category exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, name string) (*db.Category, error)

	// DeleteByID removes a category and strips its id from every product's
	// category list in the same transaction.
	// Returns ErrCategoryNotFound if no category exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// PruneDanglingRefs strips category ids with no matching category row
	// from every product. Returns the number of products repaired.
	PruneDanglingRefs(ctx context.Context) (int64, error)
}

// ProductStore is an interface for product storage operations.
type ProductStore interface {
	// FindPage returns the page slice and the total count matching the same
	// filter, independent of the page window.
	FindPage(ctx context.Context, spec PageSpec) ([]db.Product, int64, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*db.Product, error)

	// Create adds a new product.
	Create(ctx context.Context, name, description string, price int64, categoryIDs []uuid.UUID, imageURL string) (*db.Product, error)

	// Update modifies an existing product. An empty imageURL keeps the
	// stored one.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, name, description string, price int64, categoryIDs []uuid.UUID, imageURL string) (*db.Product, error)

	// DeleteByID removes a product by its ID. Orders keep their product id
	// lists untouched; references to the deleted product dangle.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// CountDanglingOrderRefs counts orders holding at least one product id
	// with no matching product row.
	CountDanglingOrderRefs(ctx context.Context) (int64, error)
}

// OrderStore is an interface for order storage operations.
type OrderStore interface {
	// FindPage returns the page slice and the total order count. Orders have
	// no name, so the Search filter is not applied.
	FindPage(ctx context.Context, spec PageSpec) ([]db.Order, int64, error)

	// FindByID retrieves a single order by its unique identifier.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*db.Order, error)

	// Create adds a new order.
	Create(ctx context.Context, date time.Time, productIDs []uuid.UUID, total int64) (*db.Order, error)

	// Update modifies an existing order's details. A nil date keeps the
	// stored one.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, date *time.Time, productIDs []uuid.UUID, total int64) (*db.Order, error)

	// DeleteByID removes an order by its ID.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// Totals streams the (date, total) projection of every order for the
	// metrics aggregation.
	Totals(ctx context.Context) ([]db.OrderTotal, error)
}

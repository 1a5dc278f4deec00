// Package db holds the row types returned by the store layer.
package db

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CategoryRef is the projection used when resolving loose category
// references on products.
type CategoryRef struct {
	ID   uuid.UUID
	Name string
}

// Product references its categories by id only. The ids are weak references:
// they may point at categories that no longer exist.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       int64
	CategoryIDs []uuid.UUID
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Order references products by id only, possibly with repeats. Total is the
// caller-computed sum of the referenced products' prices at creation time.
type Order struct {
	ID         uuid.UUID
	Date       *time.Time
	ProductIDs []uuid.UUID
	Total      int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderTotal is the projection the metrics aggregation runs over.
// Date is nil for malformed rows without one.
type OrderTotal struct {
	Date  *time.Time
	Total int64
}

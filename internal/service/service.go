// Package service provides the implementation of the back-office business logic.
package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/lojinha/backoffice/internal/errors"
)

// MaxPageSize bounds the page window to keep scans bounded.
const MaxPageSize = 100

// PageQuery is the raw pagination request: a 1-based page, a page size and
// an optional name filter.
type PageQuery struct {
	Page   int32
	Limit  int32
	Search string
}

// Validate rejects out-of-bounds windows before any store access.
func (q PageQuery) Validate() error {
	if q.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", apperrors.ErrInvalidPagination, q.Page)
	}
	if q.Limit < 1 {
		return fmt.Errorf("%w: limit must be >= 1, got %d", apperrors.ErrInvalidPagination, q.Limit)
	}
	if q.Limit > MaxPageSize {
		return fmt.Errorf("%w: limit must be <= %d, got %d", apperrors.ErrInvalidPagination, MaxPageSize, q.Limit)
	}
	return nil
}

// Offset computes the number of rows to skip: limit * (page - 1).
// The product is taken in int64 so deep pages never wrap negative.
func (q PageQuery) Offset() int64 {
	return int64(q.Limit) * int64(q.Page-1)
}

// parseUUIDs converts the string ids of a DTO into uuids.
func parseUUIDs(ids []string) ([]uuid.UUID, error) {
	parsed := make([]uuid.UUID, len(ids))
	for i, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", raw, err)
		}
		parsed[i] = id
	}
	return parsed, nil
}

// formatTime renders timestamps the way every DTO does.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

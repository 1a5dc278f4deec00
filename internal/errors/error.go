// Package errors provides the sentinel error values shared by all layers.
package errors

import "errors"

var ErrCategoryNotFound = errors.New("category not found")
var ErrProductNotFound = errors.New("product not found")
var ErrOrderNotFound = errors.New("order not found")

// ErrInvalidPagination is returned before any store access when page or limit
// are out of bounds.
var ErrInvalidPagination = errors.New("invalid pagination parameters")

// ErrUploadFailed marks failures of the object storage collaborator,
// distinct from store failures.
var ErrUploadFailed = errors.New("upload failed")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")

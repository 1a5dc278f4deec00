// Package upload abstracts object storage for user-supplied files.
package upload

import "context"

// Uploader stores a file under a folder prefix and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, name, contentType, folder string) (string, error)
}

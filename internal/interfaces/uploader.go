package interfaces

import "context"

// BlobStore is the outward attachment storage boundary. Implementations
// return a publicly reachable URL for the stored object.
type BlobStore interface {
	Put(ctx context.Context, filename string, mimeType string, b []byte) (string, error)
}

// Package storage uploads rendered invoice documents to object storage.
package storage

import "context"

// Provider stores a document under a stable key and returns its public URL.
type Provider interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

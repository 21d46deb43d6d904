// Package blobstore stores per-file ciphertext keyed by (user, path). The
// server never inspects the content; paths arrive from authenticated clients
// and the blob is whatever the client encrypted.
package blobstore

import "context"

// Store is the content-blob backend. Implementations must make Delete
// idempotent: deleting an absent key is not an error.
type Store interface {
	// Get returns the blob at (userID, path), or common.ErrorNotFound.
	Get(ctx context.Context, userID, path string) (string, error)

	// Put writes (or overwrites) the blob at (userID, path).
	Put(ctx context.Context, userID, path, content string) error

	// Delete removes the blob at (userID, path). Absent keys succeed.
	Delete(ctx context.Context, userID, path string) error

	// Move relocates a blob from oldPath to newPath, overwriting any
	// existing blob at newPath. Returns common.ErrorNotFound when the
	// source is absent.
	Move(ctx context.Context, userID, oldPath, newPath string) error
}

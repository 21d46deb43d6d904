// Package vault is the server side of the content/tree gateway: a per-user
// opaque tree blob plus content blobs in the configured blob store. The tree
// is always replaced whole; the server cannot patch what it cannot read.
package vault

import (
	"context"
	"time"
)

type TreeRecord struct {
	UserID    string
	Tree      string
	UpdatedAt time.Time
}

type TreeRepository interface {
	// Get returns the user's serialized tree blob, or common.ErrorNotFound.
	Get(ctx context.Context, userID string) (*TreeRecord, error)
	// Put replaces the user's tree blob, creating the row if needed.
	Put(ctx context.Context, userID, tree string) error
}

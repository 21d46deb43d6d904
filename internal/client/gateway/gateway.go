// Package gateway is the client-side boundary to the keepsake server.
// Everything that crosses it is already encrypted; the gateway moves
// opaque strings and never sees a key.
package gateway

import (
	"context"
	"time"
)

// ShareRequest describes a new temporary share. Content and IV are the
// outputs of the share cipher, the password travels in clear over TLS
// and is hashed server-side.
type ShareRequest struct {
	Strategy       string
	MaxDate        time.Time
	Password       string
	IV             string
	EncodedContent string
}

// ShareInfo is the owner's view of a live share.
type ShareInfo struct {
	Identifier string    `json:"identifier"`
	Strategy   string    `json:"strategy"`
	MaxDate    time.Time `json:"max_date"`
	Protected  bool      `json:"protected"`
	CreatedAt  time.Time `json:"created_at"`
}

// Gateway is the remote contract consumed by the synchronizer and the CLI.
//
// DeleteContent is idempotent: deleting an absent path succeeds, which
// lets multi-step operations be retried after a partial failure.
type Gateway interface {
	Register(ctx context.Context, userName, email, password string) error
	Login(ctx context.Context, userName, password string) error
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error

	GetTree(ctx context.Context) (string, error)
	PutTree(ctx context.Context, tree string) error
	GetContent(ctx context.Context, path string) (string, error)
	PutContent(ctx context.Context, path, content string) error
	DeleteContent(ctx context.Context, path string) error
	Rename(ctx context.Context, oldPath, newPath string) (string, error)

	CreateShare(ctx context.Context, req ShareRequest) (string, error)
	ListShares(ctx context.Context) ([]ShareInfo, error)
	DeleteShare(ctx context.Context, id string) error
	FetchShare(ctx context.Context, id, password string) (content, iv string, err error)

	Ping(ctx context.Context) error
}

package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkovs/keepsake/internal/common"
	"github.com/avolkovs/keepsake/internal/pathtree"
	"github.com/avolkovs/keepsake/internal/server/blobstore"
)

type Service struct {
	trees TreeRepository
	blobs blobstore.Store
}

func NewService(trees TreeRepository, blobs blobstore.Store) *Service {
	return &Service{trees: trees, blobs: blobs}
}

// InitTree seeds a fresh vault with the single path "default", stored as a
// plaintext JSON array. The client re-persists the tree encrypted on its
// first structural edit.
func (s *Service) InitTree(ctx context.Context, userID string) error {
	set := pathtree.NewPathSet([]string{common.DefaultTreePath})
	tree, err := set.Serialize()
	if err != nil {
		return fmt.Errorf("serializing initial tree: %w", err)
	}
	if err := s.trees.Put(ctx, userID, tree); err != nil {
		return fmt.Errorf("storing initial tree: %w", err)
	}
	return nil
}

// GetTree returns the user's serialized tree blob.
func (s *Service) GetTree(ctx context.Context, userID string) (string, error) {
	rec, err := s.trees.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return rec.Tree, nil
}

// PutTree replaces the user's tree blob. The blob is opaque; the only check
// is that it is not empty.
func (s *Service) PutTree(ctx context.Context, userID, tree string) error {
	if tree == "" {
		return fmt.Errorf("%w: empty tree", common.ErrorInvalidInput)
	}
	return s.trees.Put(ctx, userID, tree)
}

// GetContent returns the blob stored at (userID, path).
func (s *Service) GetContent(ctx context.Context, userID, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", common.ErrorInvalidInput)
	}
	return s.blobs.Get(ctx, userID, path)
}

// PutContent writes the blob at (userID, path).
func (s *Service) PutContent(ctx context.Context, userID, path, content string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", common.ErrorInvalidInput)
	}
	return s.blobs.Put(ctx, userID, path, content)
}

// DeleteContent removes the blob at (userID, path). Absent paths succeed.
func (s *Service) DeleteContent(ctx context.Context, userID, path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", common.ErrorInvalidInput)
	}
	return s.blobs.Delete(ctx, userID, path)
}

// RenameContent moves one content blob and returns the stored tree blob so
// the client can reconcile. The tree itself is not touched: the server
// cannot rewrite paths inside a blob it cannot read.
func (s *Service) RenameContent(ctx context.Context, userID, oldPath, newPath string) (string, error) {
	if oldPath == "" || newPath == "" {
		return "", fmt.Errorf("%w: empty path", common.ErrorInvalidInput)
	}

	if err := s.blobs.Move(ctx, userID, oldPath, newPath); err != nil {
		return "", err
	}

	rec, err := s.trees.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil
		}
		return "", err
	}
	return rec.Tree, nil
}

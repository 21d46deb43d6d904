// Package vault holds the client-side core: the plaintext path set, the
// synchronizer that keeps the remote encrypted tree and content blobs
// consistent under structural edits, and the key rotation procedure.
package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkovs/keepsake/internal/client/gateway"
	"github.com/avolkovs/keepsake/internal/common"
	"github.com/avolkovs/keepsake/internal/cryptox"
	"github.com/avolkovs/keepsake/internal/pathtree"
)

// Synchronizer applies structural edits to the vault. The plaintext path
// set only ever exists here; the server stores the serialized set as an
// opaque encrypted blob and each file's content under its own key.
//
// Operations are not safe for concurrent use. The caller serializes
// structural edits, which the CLI does naturally.
type Synchronizer struct {
	gw    gateway.Gateway
	paths *pathtree.PathSet
}

func NewSynchronizer(gw gateway.Gateway) *Synchronizer {
	return &Synchronizer{gw: gw}
}

// Load fetches and decrypts the remote tree into the local path set.
//
// A fresh account's tree is stored plaintext because the server cannot
// encrypt on the user's behalf. When decryption fails, the blob is tried
// as a plain serialized set and, if that parses, immediately re-persisted
// encrypted so the plaintext form never survives the first login.
func (s *Synchronizer) Load(ctx context.Context, key []byte) error {

	tree, err := s.gw.GetTree(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.paths = pathtree.NewPathSet([]string{common.DefaultTreePath})
			return s.persistTree(ctx, key)
		}
		return fmt.Errorf("fetching tree: %w", err)
	}

	plaintext, err := cryptox.Decrypt(tree, key)
	if err == nil {
		set, perr := pathtree.ParseSet(string(plaintext))
		if perr != nil {
			return fmt.Errorf("parsing tree: %w", perr)
		}
		s.paths = set
		return nil
	}

	set, perr := pathtree.ParseSet(tree)
	if perr != nil {
		// Neither our key nor plaintext. Wrong secret key.
		return common.ErrInvalidKeyOrData
	}
	s.paths = set
	return s.persistTree(ctx, key)
}

// Loaded reports whether a tree has been loaded.
func (s *Synchronizer) Loaded() bool {
	return s.paths != nil
}

// List returns the sorted plaintext paths.
func (s *Synchronizer) List() []string {
	if s.paths == nil {
		return nil
	}
	return s.paths.List()
}

// Tree returns the hierarchical view of the path set for display.
func (s *Synchronizer) Tree() []pathtree.Node {
	if s.paths == nil {
		return nil
	}
	return pathtree.BuildTree(s.paths.List())
}

func (s *Synchronizer) ensureLoaded() error {
	if s.paths == nil {
		return fmt.Errorf("%w: tree not loaded", common.ErrorInvalidInput)
	}
	return nil
}

// checkPlacement rejects a file path that would collide with the folder
// structure: the path itself naming an existing folder, or an existing file
// sitting on one of its ancestor segments. Either would leave an entry the
// tree view cannot show.
func (s *Synchronizer) checkPlacement(path string) error {
	if s.paths.IsFolder(path) {
		return fmt.Errorf("%w: %s is a folder", common.ErrorConflict, path)
	}
	for i, r := range path {
		if r == '/' && s.paths.Contains(path[:i]) {
			return fmt.Errorf("%w: %s is a file", common.ErrorConflict, path[:i])
		}
	}
	return nil
}

// CreateFile encrypts the initial content, pushes it, then appends the
// path and persists the whole tree. The content write happens first so a
// crash between steps leaves an orphan blob, never a tree entry pointing
// at nothing.
func (s *Synchronizer) CreateFile(ctx context.Context, key []byte, path, content string) (string, error) {
	if err := s.ensureLoaded(); err != nil {
		return "", err
	}

	clean, err := pathtree.SanitizePath(path)
	if err != nil {
		return "", err
	}
	if s.paths.Contains(clean) {
		return "", fmt.Errorf("%w: %s already exists", common.ErrorConflict, clean)
	}
	if err := s.checkPlacement(clean); err != nil {
		return "", err
	}

	envelope, err := cryptox.Encrypt([]byte(content), key)
	if err != nil {
		return "", fmt.Errorf("encrypting content: %w", err)
	}
	if err := s.gw.PutContent(ctx, clean, envelope); err != nil {
		return "", fmt.Errorf("pushing content: %w", err)
	}

	if err := s.paths.Add(clean); err != nil {
		return "", err
	}
	if err := s.persistTree(ctx, key); err != nil {
		return "", err
	}
	return clean, nil
}

// CreateFolder creates the folder's placeholder file. Folders have no
// independent existence, so an empty default entry under the prefix is
// what makes the folder appear.
func (s *Synchronizer) CreateFolder(ctx context.Context, key []byte, path string) (string, error) {
	if err := s.ensureLoaded(); err != nil {
		return "", err
	}

	clean, err := pathtree.SanitizePath(path)
	if err != nil {
		return "", err
	}
	if s.paths.IsFolder(clean) {
		return "", fmt.Errorf("%w: folder %s already exists", common.ErrorConflict, clean)
	}

	placeholder, err := s.CreateFile(ctx, key, clean+"/"+common.DefaultTreePath, "")
	if err != nil {
		return "", err
	}
	return placeholder, nil
}

// Remove deletes a file or a whole folder. Content blobs go first, the
// tree entry after, so a failure leaves at worst a referenced blob that
// still exists. Folder removal walks every nested entry and stops at the
// first failure without rolling back earlier deletes.
func (s *Synchronizer) Remove(ctx context.Context, key []byte, path string) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}

	switch {
	case s.paths.Contains(path):
		if err := s.gw.DeleteContent(ctx, path); err != nil {
			return fmt.Errorf("removing content %s: %w", path, err)
		}
	case s.paths.IsFolder(path):
		for _, entry := range s.paths.FolderEntries(path) {
			if err := s.gw.DeleteContent(ctx, entry); err != nil {
				return fmt.Errorf("removing content %s: %w", entry, err)
			}
		}
	default:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, path)
	}

	if err := s.paths.Remove(path); err != nil {
		return err
	}
	return s.persistTree(ctx, key)
}

// Rename moves a file or folder. A single file is renamed by the server
// in place; a folder is moved pair by pair, each blob copied to its new
// path and the old one deleted. Either way the tree is persisted once at
// the end so no intermediate tree is ever observable remotely.
func (s *Synchronizer) Rename(ctx context.Context, key []byte, oldPath, newPath string) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}

	clean, err := pathtree.SanitizePath(newPath)
	if err != nil {
		return err
	}

	pairs := s.paths.RenamePairs(oldPath, clean)
	if len(pairs) == 0 {
		return fmt.Errorf("%w: %s", common.ErrorNotFound, oldPath)
	}
	for _, pair := range pairs {
		if s.paths.Contains(pair.New) {
			return fmt.Errorf("%w: %s already exists", common.ErrorConflict, pair.New)
		}
		if err := s.checkPlacement(pair.New); err != nil {
			return err
		}
	}

	if s.paths.Contains(oldPath) {
		// A single file moves server-side in one round trip; the blob
		// never travels back to the client.
		if _, err := s.gw.Rename(ctx, oldPath, clean); err != nil {
			return fmt.Errorf("renaming %s: %w", oldPath, err)
		}
	} else {
		for _, pair := range pairs {
			content, err := s.gw.GetContent(ctx, pair.Old)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", pair.Old, err)
			}
			if err := s.gw.PutContent(ctx, pair.New, content); err != nil {
				return fmt.Errorf("writing %s: %w", pair.New, err)
			}
			if err := s.gw.DeleteContent(ctx, pair.Old); err != nil {
				return fmt.Errorf("removing %s: %w", pair.Old, err)
			}
		}
	}

	if err := s.paths.Rename(oldPath, clean); err != nil {
		return err
	}
	return s.persistTree(ctx, key)
}

// LoadContent fetches and decrypts one file.
func (s *Synchronizer) LoadContent(ctx context.Context, key []byte, path string) (string, error) {
	if err := s.ensureLoaded(); err != nil {
		return "", err
	}
	if !s.paths.Contains(path) {
		return "", fmt.Errorf("%w: %s", common.ErrorNotFound, path)
	}

	envelope, err := s.gw.GetContent(ctx, path)
	if err != nil {
		return "", fmt.Errorf("fetching content: %w", err)
	}
	plaintext, err := cryptox.Decrypt(envelope, key)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// SaveContent encrypts and overwrites one existing file.
func (s *Synchronizer) SaveContent(ctx context.Context, key []byte, path, content string) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if !s.paths.Contains(path) {
		return fmt.Errorf("%w: %s", common.ErrorNotFound, path)
	}

	envelope, err := cryptox.Encrypt([]byte(content), key)
	if err != nil {
		return fmt.Errorf("encrypting content: %w", err)
	}
	if err := s.gw.PutContent(ctx, path, envelope); err != nil {
		return fmt.Errorf("pushing content: %w", err)
	}
	return nil
}

// persistTree serializes, encrypts and replaces the remote tree blob
// wholesale. Partial tree patches are never attempted.
func (s *Synchronizer) persistTree(ctx context.Context, key []byte) error {
	serialized, err := s.paths.Serialize()
	if err != nil {
		return fmt.Errorf("serializing tree: %w", err)
	}
	envelope, err := cryptox.Encrypt([]byte(serialized), key)
	if err != nil {
		return fmt.Errorf("encrypting tree: %w", err)
	}
	if err := s.gw.PutTree(ctx, envelope); err != nil {
		return fmt.Errorf("persisting tree: %w", err)
	}
	return nil
}

package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkovs/keepsake/internal/common"
	"github.com/avolkovs/keepsake/internal/cryptox"
)

// RotateKey re-encrypts every content blob and the tree from oldKey to
// newKey.
//
// The procedure runs in two phases. First every blob is fetched and
// decrypted; one undecryptable blob fails the whole rotation before a
// single remote write happens. Then the staged ciphertexts are written
// back one by one. A failure in the write phase leaves a mixed-key state
// on the server and is reported as an error requiring a manual retry.
func (s *Synchronizer) RotateKey(ctx context.Context, oldKey, newKey []byte) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}

	paths := s.paths.List()

	// Phase 1: decrypt everything before touching the server.
	staged := make(map[string]string, len(paths))
	for _, path := range paths {
		envelope, err := s.gw.GetContent(ctx, path)
		if errors.Is(err, common.ErrorNotFound) {
			// a placeholder entry with no blob has nothing to rotate
			continue
		}
		if err != nil {
			return fmt.Errorf("fetching %s: %w", path, err)
		}
		plaintext, err := cryptox.Decrypt(envelope, oldKey)
		if err != nil {
			return fmt.Errorf("decrypting %s: %w", path, err)
		}
		reEncrypted, err := cryptox.Encrypt(plaintext, newKey)
		if err != nil {
			return fmt.Errorf("re-encrypting %s: %w", path, err)
		}
		staged[path] = reEncrypted
	}

	// Phase 2: write back. Each write is keyed independently, so a
	// failure here means some blobs already use the new key.
	for _, path := range paths {
		envelope, ok := staged[path]
		if !ok {
			continue
		}
		if err := s.gw.PutContent(ctx, path, envelope); err != nil {
			return fmt.Errorf("writing %s left vault in mixed-key state, retry required: %w", path, err)
		}
	}

	if err := s.persistTree(ctx, newKey); err != nil {
		return fmt.Errorf("tree still under old key, retry required: %w", err)
	}
	return nil
}

package vault

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkovs/keepsake/internal/common"
	"github.com/avolkovs/keepsake/internal/cryptox"
)

func TestRotateKey(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	files := map[string]string{"a": "alpha", "work/b": "bravo"}
	for p, c := range files {
		_, err := s.CreateFile(ctx, testKey, p, c)
		require.NoError(t, err)
	}
	// the bootstrap placeholder has no blob yet, give it one
	require.NoError(t, s.SaveContent(ctx, testKey, "default", ""))
	gw.ops = nil

	require.NoError(t, s.RotateKey(ctx, testKey, anotherKey))

	// every blob decrypts under the new key only
	for p, want := range files {
		plaintext, err := cryptox.Decrypt(gw.content[p], anotherKey)
		require.NoError(t, err)
		assert.Equal(t, want, string(plaintext))

		_, err = cryptox.Decrypt(gw.content[p], testKey)
		assert.ErrorIs(t, err, common.ErrInvalidKeyOrData)
	}

	// so does the tree
	assert.ElementsMatch(t, []string{"a", "default", "work/b"}, decryptTree(t, gw, anotherKey))

	// follow-up edits work under the new key
	got, err := s.LoadContent(ctx, anotherKey, "a")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got)
}

func TestRotateKey_UndecryptableBlobFailsBeforeAnyWrite(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	_, err := s.CreateFile(ctx, testKey, "a", "alpha")
	require.NoError(t, err)
	_, err = s.CreateFile(ctx, testKey, "b", "bravo")
	require.NoError(t, err)

	// corrupt one blob so the old key cannot open it
	foreign, err := cryptox.Encrypt([]byte("bravo"), anotherKey)
	require.NoError(t, err)
	gw.content["b"] = foreign
	gw.ops = nil

	err = s.RotateKey(ctx, testKey, []byte("third key entirely"))
	assert.ErrorIs(t, err, common.ErrInvalidKeyOrData)

	// phase one failed, so no write was ever issued
	for _, op := range gw.ops {
		assert.False(t, strings.HasPrefix(op, "put"), "unexpected write %q", op)
	}

	// untouched blobs still open with the old key
	plaintext, err := cryptox.Decrypt(gw.content["a"], testKey)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(plaintext))
}

func TestRotateKey_WriteFailureReportsMixedState(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	_, err := s.CreateFile(ctx, testKey, "a", "alpha")
	require.NoError(t, err)
	require.NoError(t, s.SaveContent(ctx, testKey, "default", ""))
	gw.ops = nil

	gw.failPut["default"] = common.ErrorInternal

	err = s.RotateKey(ctx, testKey, anotherKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mixed-key state")

	// "a" sorts first and was already rewritten under the new key
	_, err = cryptox.Decrypt(gw.content["a"], anotherKey)
	assert.NoError(t, err)
}

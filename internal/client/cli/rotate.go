package cli

import (
	"bytes"
	"context"
	"os"

	"github.com/avolkovs/keepsake/internal/common"
)

// Rotate re-encrypts the whole vault under a new secret key. The old key
// is wiped and replaced only after the rotation fully succeeds.
func (a *App) Rotate(ctx context.Context) error {

	newKey, err := GetPassword("Enter new secret key", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}
	confirm, err := GetPassword("Repeat new secret key", os.Stdout)
	if err != nil {
		common.WipeByteArray(newKey)
		printError(err.Error())
		return err
	}

	if !bytes.Equal(newKey, confirm) {
		common.WipeByteArray(newKey)
		common.WipeByteArray(confirm)
		printError("Keys do not match")
		return common.ErrorInvalidInput
	}
	common.WipeByteArray(confirm)

	if err := a.sync.RotateKey(ctx, a.masterKey, newKey); err != nil {
		common.WipeByteArray(newKey)
		printError("Rotation failed:", err.Error())
		return err
	}

	common.WipeByteArray(a.masterKey)
	a.masterKey = newKey
	printSuccess("Vault re-encrypted under the new key")
	return nil
}

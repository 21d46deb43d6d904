package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/avolkovs/keepsake/internal/client/gateway"
	"github.com/avolkovs/keepsake/internal/common"
	"github.com/avolkovs/keepsake/internal/cryptox"
)

// Share publishes one decrypted file as an expiring link. The document
// is re-encrypted under the share scheme so the link works without the
// vault's secret key; the optional share password gates access and
// derives the share cipher key.
func (a *App) Share(ctx context.Context) error {

	path, err := GetSimpleText(a.reader, "Enter file path", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}

	content, err := a.sync.LoadContent(ctx, a.masterKey, path)
	if err != nil {
		printError("Loading file failed:", err.Error())
		return err
	}

	strategy, err := GetSimpleText(a.reader, "Enter strategy (oneread or multipleread)", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}

	hoursText, err := GetSimpleText(a.reader, "Valid for how many hours", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}
	hours, err := strconv.Atoi(hoursText)
	if err != nil || hours <= 0 {
		printError("Invalid number of hours")
		return common.ErrorInvalidInput
	}

	password, err := GetPassword("Enter share password (empty for none)", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}
	defer common.WipeByteArray(password)

	iv := cryptox.NewShareIV()
	key := cryptox.ShareKey(string(password))
	encoded, err := cryptox.EncryptShare([]byte(content), key, iv)
	if err != nil {
		printError("Encrypting share failed:", err.Error())
		return err
	}

	id, err := a.gw.CreateShare(ctx, gateway.ShareRequest{
		Strategy:       strategy,
		MaxDate:        time.Now().Add(time.Duration(hours) * time.Hour),
		Password:       string(password),
		IV:             hex.EncodeToString(iv),
		EncodedContent: encoded,
	})
	if err != nil {
		printError("Creating share failed:", err.Error())
		return err
	}

	printSuccess("Share created:", id)
	return nil
}

func (a *App) Shares(ctx context.Context) error {

	list, err := a.gw.ListShares(ctx)
	if err != nil {
		printError("Listing shares failed:", err.Error())
		return err
	}

	if len(list) == 0 {
		printlnFn("No shares")
		return nil
	}

	for _, s := range list {
		protected := ""
		if s.Protected {
			protected = " (password protected)"
		}
		printlnFn(fmt.Sprintf("%s  %s  until %s%s",
			s.Identifier, s.Strategy, s.MaxDate.Format(time.RFC3339), protected))
	}
	return nil
}

func (a *App) Unshare(ctx context.Context) error {

	id, err := GetSimpleText(a.reader, "Enter share id", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}

	if err := a.gw.DeleteShare(ctx, id); err != nil {
		printError("Revoking share failed:", err.Error())
		return err
	}

	printSuccess("Share revoked")
	return nil
}

// Open fetches a share by id. It needs no account, so it also works
// before login.
func (a *App) Open(ctx context.Context) error {

	id, err := GetSimpleText(a.reader, "Enter share id", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}
	password, err := GetPassword("Enter share password (empty for none)", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}
	defer common.WipeByteArray(password)

	content, ivHex, err := a.gw.FetchShare(ctx, id, string(password))
	if err != nil {
		printError("Fetching share failed:", err.Error())
		return err
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		printError("Malformed share IV")
		return common.ErrInvalidKeyOrData
	}

	plaintext, err := cryptox.DecryptShare(content, cryptox.ShareKey(string(password)), iv)
	if err != nil {
		printError("Decrypting share failed:", err.Error())
		return err
	}

	printlnFn(string(plaintext))
	return nil
}

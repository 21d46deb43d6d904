package cli

import (
	"context"
	"errors"
	"os"

	"github.com/avolkovs/keepsake/internal/common"
)

// Register creates an account, then unlocks the fresh vault with the
// user's chosen secret key so the initial tree gets encrypted right away.
func (a *App) Register(ctx context.Context) error {

	userName, err := GetSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}
	password, err := GetPassword("Enter account password", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.gw.Register(ctx, userName, email, string(password)); err != nil {
		printError("Registration failed:", err.Error())
		return err
	}

	if err := a.unlockVault(ctx, "Choose a secret key"); err != nil {
		return err
	}

	a.userName = userName
	printSuccess("Registered and logged in as", userName)
	return nil
}

func (a *App) Login(ctx context.Context) error {

	userName, err := GetSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}
	password, err := GetPassword("Enter account password", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.gw.Login(ctx, userName, string(password)); err != nil {
		printError("Login failed:", err.Error())
		return err
	}

	if err := a.unlockVault(ctx, "Enter secret key"); err != nil {
		return err
	}

	a.userName = userName
	printSuccess("Logged in as", userName)
	return nil
}

// unlockVault reads the secret key and loads the tree with it. A key
// that cannot open the stored tree aborts the session.
func (a *App) unlockVault(ctx context.Context, prompt string) error {

	key, err := GetPassword(prompt, os.Stdout)
	if err != nil {
		printError(err.Error())
		a.dropSession()
		return err
	}

	if err := a.sync.Load(ctx, key); err != nil {
		if errors.Is(err, common.ErrInvalidKeyOrData) {
			printError("Wrong secret key")
		} else {
			printError("Loading vault failed:", err.Error())
		}
		common.WipeByteArray(key)
		a.dropSession()
		return err
	}

	a.masterKey = key
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {

	oldPassword, err := GetPassword("Enter current account password", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}
	defer common.WipeByteArray(oldPassword)

	newPassword, err := GetPassword("Enter new account password", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}
	defer common.WipeByteArray(newPassword)

	if err := a.gw.ChangePassword(ctx, string(oldPassword), string(newPassword)); err != nil {
		printError("Password change failed:", err.Error())
		return err
	}

	printSuccess("Account password changed")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.dropSession()
	printSuccess("Logged out")
	return nil
}

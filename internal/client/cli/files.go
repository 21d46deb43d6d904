package cli

import (
	"context"
	"os"
)

func (a *App) MkDir(ctx context.Context) error {

	path, err := GetSimpleText(a.reader, "Enter folder path", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}

	placeholder, err := a.sync.CreateFolder(ctx, a.masterKey, path)
	if err != nil {
		printError("Creating folder failed:", err.Error())
		return err
	}

	printSuccess("Created", placeholder)
	return nil
}

func (a *App) NewFile(ctx context.Context) error {

	path, err := GetSimpleText(a.reader, "Enter file path", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}
	content, err := GetMultiline(a.reader, "Enter content", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}

	clean, err := a.sync.CreateFile(ctx, a.masterKey, path, content)
	if err != nil {
		printError("Creating file failed:", err.Error())
		return err
	}

	printSuccess("Created", clean)
	return nil
}

func (a *App) Show(ctx context.Context) error {

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

	printlnFn(content)
	return nil
}

func (a *App) Edit(ctx context.Context) error {

	path, err := GetSimpleText(a.reader, "Enter file path", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}
	content, err := GetMultiline(a.reader, "Enter new content", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}

	if err := a.sync.SaveContent(ctx, a.masterKey, path, content); err != nil {
		printError("Saving file failed:", err.Error())
		return err
	}

	printSuccess("Saved", path)
	return nil
}

func (a *App) Remove(ctx context.Context) error {

	path, err := GetSimpleText(a.reader, "Enter file or folder path", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}

	if err := a.sync.Remove(ctx, a.masterKey, path); err != nil {
		printError("Removing failed:", err.Error())
		return err
	}

	printSuccess("Removed", path)
	return nil
}

func (a *App) Move(ctx context.Context) error {

	oldPath, err := GetSimpleText(a.reader, "Enter current path", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}
	newPath, err := GetSimpleText(a.reader, "Enter new path", os.Stdout)
	if err != nil {
		printError(err.Error())
		return err
	}

	if err := a.sync.Rename(ctx, a.masterKey, oldPath, newPath); err != nil {
		printError("Renaming failed:", err.Error())
		return err
	}

	printSuccess("Renamed", oldPath, "to", newPath)
	return nil
}

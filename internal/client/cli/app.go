// Package cli implements the interactive terminal client. It drives the
// gateway and the vault synchronizer through a small REPL; the secret
// key lives only in App.masterKey between login and logout.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/fatih/color"

	"github.com/avolkovs/keepsake/internal/client/config"
	"github.com/avolkovs/keepsake/internal/client/gateway"
	"github.com/avolkovs/keepsake/internal/client/vault"
	"github.com/avolkovs/keepsake/internal/common"
)

type App struct {
	config   *config.Config
	gw       *gateway.HTTPClient
	sync     *vault.Synchronizer
	userName string
	// masterKey is the vault secret key, held only while logged in and
	// wiped on logout.
	masterKey []byte
	reader    *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	gw := gateway.NewHTTPClient(c.ServerURL, c.RequestTimeout)

	return &App{
		config: c,
		gw:     gw,
		sync:   vault.NewSynchronizer(gw),
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.masterKey != nil
}

// dropSession wipes the key and resets the authenticated state.
func (a *App) dropSession() {
	common.WipeByteArray(a.masterKey)
	a.masterKey = nil
	a.userName = ""
	a.gw.Logout()
	a.sync = vault.NewSynchronizer(a.gw)
}

var (
	successFn = color.New(color.FgGreen).PrintlnFunc()
	errorFn   = color.New(color.FgRed).PrintlnFunc()
)

func printSuccess(args ...any) { successFn(args...) }
func printError(args ...any)   { errorFn(args...) }

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	if a.userName == "" {
		return "(not logged in)"
	}
	return fmt.Sprintf("(%s)", a.userName)
}

func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to Keepsake CLI (type 'help' for commands)")

	if err := a.gw.Ping(ctx); err != nil {
		printError("Server unreachable:", err.Error())
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

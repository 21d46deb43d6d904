package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	List(ctx context.Context) error
	MkDir(ctx context.Context) error
	NewFile(ctx context.Context) error
	Show(ctx context.Context) error
	Edit(ctx context.Context) error
	Remove(ctx context.Context) error
	Move(ctx context.Context) error
	Rotate(ctx context.Context) error
	Share(ctx context.Context) error
	Shares(ctx context.Context) error
	Unshare(ctx context.Context) error
	Open(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the Keepsake CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate and unlock the vault
//	  - open           — fetch a shared document by link id
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - ls | list      — print the file tree
//	  - mkdir          — create a folder
//	  - new            — create a file
//	  - show           — decrypt and print a file
//	  - edit           — replace a file's content
//	  - rm             — remove a file or folder
//	  - mv             — rename/move a file or folder
//	  - rotate         — re-encrypt the vault under a new secret key
//	  - share          — share a file via an expiring link
//	  - shares         — list own shares
//	  - unshare        — revoke a share
//	  - open           — fetch a shared document by link id
//	  - passwd         — change the account password
//	  - logout         — log out and wipe the key
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// report their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("keep> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: ls, mkdir, new, show, edit, rm, mv, rotate, share, shares, unshare, open, passwd, logout, exit")
			} else {
				printlnFn("Available commands: register, login, open, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "l", "ls", "list":
			_ = a.List(ctx)

		case "mkdir":
			_ = a.MkDir(ctx)

		case "new":
			_ = a.NewFile(ctx)

		case "show":
			_ = a.Show(ctx)

		case "edit":
			_ = a.Edit(ctx)

		case "rm":
			_ = a.Remove(ctx)

		case "mv":
			_ = a.Move(ctx)

		case "rotate":
			_ = a.Rotate(ctx)

		case "share":
			_ = a.Share(ctx)

		case "shares":
			_ = a.Shares(ctx)

		case "unshare":
			_ = a.Unshare(ctx)

		case "open":
			_ = a.Open(ctx)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn and printFn are test seams for user-facing output.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Pay(ctx context.Context, args []string) error
	Report(ctx context.Context) error
	Link(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
}

const (
	helpLoggedOut  = "Available commands: login, exit"
	helpTechnician = "Available commands: (l)ist, show <id>, add, edit <id>, delete <id>, link <id>, download <id>, whoami, logout, exit"
	helpAdmin      = "Available commands: (l)ist, show <id>, add, edit <id>, delete <id>, pay <id>, report, link <id>, download <id>, whoami, logout, exit"
)

func helpFor(a execIface) string {
	switch {
	case !a.isLoggedIn():
		return helpLoggedOut
	case a.isAdmin():
		return helpAdmin
	default:
		return helpTechnician
	}
}

// runREPL starts a read–eval–print loop for the Bitácora CLI.
//
// It reads a line from reader, parses the first token as the command and the
// rest as arguments, and dispatches to methods on 'a'. The commands offered
// depend on the session: logged out users can only log in; administrators
// additionally get pay and report. The loop exits on EOF or when the user
// types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors inline.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("bitacora%s> ", prefixSpace(statusFn())))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			printlnFn()
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				printlnFn(helpFor(a))
			case "login":
				_ = a.Login(ctx)
			case "exit", "quit":
				printlnFn("Bye!")
				return
			default:
				printlnFn("Please log in first. Type 'help' for commands.")
			}
			continue
		}

		switch cmd {
		case "help":
			printlnFn(helpFor(a))

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			_ = a.Show(ctx, args)

		case "add":
			_ = a.Add(ctx)

		case "edit":
			_ = a.Edit(ctx, args)

		case "delete":
			_ = a.Delete(ctx, args)

		case "link":
			_ = a.Link(ctx, args)

		case "download":
			_ = a.Download(ctx, args)

		case "pay":
			if !a.isAdmin() {
				printlnFn("Unknown command:", cmd)
				continue
			}
			_ = a.Pay(ctx, args)

		case "report":
			if !a.isAdmin() {
				printlnFn("Unknown command:", cmd)
				continue
			}
			_ = a.Report(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func prefixSpace(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}

// Shell runs the interactive session. Logged out users are asked to log in
// first; otherwise the list is shown.
func (a *App) Shell(ctx context.Context) {
	printlnFn("Bitácora Digital (type 'help' for commands)")
	if a.isLoggedIn() {
		_ = a.List(ctx)
	} else {
		_ = a.Login(ctx)
	}
	runREPL(ctx, a, a.status, a.reader)
}

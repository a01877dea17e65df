package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = func(args ...any) { fmt.Println(args...) }

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Clients(ctx context.Context) error
	Areas(ctx context.Context) error
	Points(ctx context.Context) error
	Types(ctx context.Context) error
	Select(ctx context.Context, args []string) error
	Submit(ctx context.Context) error
	Pending(ctx context.Context) error
	Sync(ctx context.Context) error
	Dismiss(ctx context.Context) error
	Version(ctx context.Context) error
	Reset(ctx context.Context) error
}

// Root runs the REPL against stdin until exit or EOF.
func (a *App) Root(ctx context.Context) {
	printlnFn("fieldsync client (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

// getStatus builds the prompt suffix: user, connectivity mode, pending
// submission count and an update hint when one is offered.
func (a *App) getStatus() string {
	parts := []string{}
	if a.userName != "" {
		parts = append(parts, a.userName)
	}
	if a.monitor.Online() {
		parts = append(parts, "online")
	} else {
		parts = append(parts, "offline")
	}
	if pending, err := a.repos.Outbox.List(context.Background()); err == nil && len(pending) > 0 {
		parts = append(parts, fmt.Sprintf("pending:%d", len(pending)))
	}
	if u := a.version.Available(); u != nil {
		parts = append(parts, "update:"+u.Version)
	}
	if lastErr := a.engine.LastSyncError(); lastErr != "" {
		parts = append(parts, "sync-error")
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// runREPL reads a line, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on scanner EOF or when the user types "exit" or
// "quit". Errors from command handlers are printed, never fatal.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("fsync %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: clients, areas, points, types, select, submit, pending, sync, dismiss, version, reset, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			err = a.Login(ctx)

		case "clients":
			err = a.Clients(ctx)

		case "areas":
			err = a.Areas(ctx)

		case "points":
			err = a.Points(ctx)

		case "types":
			err = a.Types(ctx)

		case "select":
			err = a.Select(ctx, args)

		case "submit":
			err = a.Submit(ctx)

		case "pending":
			err = a.Pending(ctx)

		case "sync":
			err = a.Sync(ctx)

		case "dismiss":
			err = a.Dismiss(ctx)

		case "version":
			err = a.Version(ctx)

		case "reset":
			err = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}

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
	Login(ctx context.Context) error
	Accounts(ctx context.Context) error
	Use(ctx context.Context, userID string) error
	Logout(ctx context.Context, userID string) error
	Sync(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Groups(ctx context.Context, args []string) error
	Orgs(ctx context.Context) error
	Sends(ctx context.Context) error
	Search(ctx context.Context, args []string) error
	Show(ctx context.Context, id string) error
	Kdf(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF, on "exit"/"quit", or when ctx is done.
//
//	Not logged in:
//	  help, login, accounts, use <id>, exit
//
//	Logged in:
//	  help, login, accounts, use <id>, logout [id], sync,
//	  list [all|my|org <id>], groups [all|my|org <id>], orgs, sends,
//	  search [vault|orgs|sends] <query>, show <id>, kdf, exit
//
// Errors returned by handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("vk %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: login, accounts, use <id>, logout [id], sync, (l)ist [all|my|org <id>], " +
					"groups, orgs, sends, search [vault|orgs|sends] <query>, show <id>, kdf, exit")
			} else {
				printlnFn("Available commands: login, accounts, use <id>, exit")
			}

		case "login":
			cmdErr = a.Login(ctx)

		case "accounts":
			cmdErr = a.Accounts(ctx)

		case "use":
			if len(args) != 1 {
				printlnFn("Usage: use <id>")
				continue
			}
			cmdErr = a.Use(ctx, args[0])

		case "logout":
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			cmdErr = a.Logout(ctx, id)

		case "sync":
			cmdErr = a.Sync(ctx)

		case "l", "list":
			cmdErr = a.List(ctx, args)

		case "groups":
			cmdErr = a.Groups(ctx, args)

		case "orgs":
			cmdErr = a.Orgs(ctx)

		case "sends":
			cmdErr = a.Sends(ctx)

		case "search":
			if len(args) == 0 {
				printlnFn("Usage: search [vault|orgs|sends] <query>")
				continue
			}
			cmdErr = a.Search(ctx, args)

		case "show":
			if len(args) != 1 {
				printlnFn("Usage: show <id>")
				continue
			}
			cmdErr = a.Show(ctx, args[0])

		case "kdf":
			cmdErr = a.Kdf(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}

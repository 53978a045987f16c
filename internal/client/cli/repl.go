package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Open(ctx context.Context, path string) error
	Back(ctx context.Context) error
	Pages(ctx context.Context) error
	Get(ctx context.Context, path string) error
}

// runREPL starts a simple read–eval–print loop for the ridegate client.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user
// types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help             show available commands
//	  - register         create a driver or passenger account
//	  - login            authenticate
//	  - open <path>      go to a page (protected pages redirect to /login)
//	  - exit | quit      leave the program
//
//	Logged in, additionally:
//	  - whoami           show the signed-in identity
//	  - pages            list the pages this role may open
//	  - back             return to the previous page
//	  - get <path>       fetch an API resource, e.g. get /routes/
//	  - logout           log out
//
// Errors returned by command handlers are not printed here; handlers report
// to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "ridegate %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: whoami, pages, open <path>, back, get <path>, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, open <path>, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "pages":
			_ = a.Pages(ctx)

		case "back":
			_ = a.Back(ctx)

		case "open":
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage: open <path>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "get":
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage: get <path>")
				continue
			}
			_ = a.Get(ctx, args[0])

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}

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
	Execute(ctx context.Context, cmd string, args []string) error
}

// runREPL reads commands line by line from reader and dispatches them to
// a.Execute. The reader is shared with the interactive prompts of the
// commands, so a single buffer owns stdin.
//
// The loop exits on EOF, on "exit" or "quit", or when ctx is done. Command
// errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(w, "sk %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
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
				fmt.Fprintln(w, "Available commands: whoami, get [id], create, update <id>, delete <id>, refresh, logout, ping, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, whoami, refresh, ping, exit")
			}

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			if err := a.Execute(ctx, cmd, args); err != nil {
				fmt.Fprintln(w, "Error:", err)
			}
		}
	}
}

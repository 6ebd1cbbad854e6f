package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	CapturePhoto(ctx context.Context, path string) error
	AddRecord(ctx context.Context) error
	Pending(ctx context.Context) error
	Sync(ctx context.Context) error
	Auditors(ctx context.Context) error
	Status(ctx context.Context) error
	Migrate(ctx context.Context) error
}

const helpText = "Available commands: photo <file>, add, pending, sync, auditors, status, migrate, exit"

// runREPL reads a line, dispatches on its first token and repeats until EOF,
// "exit"/"quit" or ctx cancellation. The prompt is only printed when stdin
// is a terminal. Command errors are reported and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	interactive := isTerminal(int(os.Stdin.Fd()))

	for {
		if ctx.Err() != nil {
			return
		}
		if interactive {
			printlnFn(fmt.Sprintf("rack %s > ", statusFn()))
		}

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
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
			printlnFn(helpText)

		case "photo":
			if len(args) == 0 {
				printlnFn("Usage: photo <file>")
				continue
			}
			cmdErr = a.CapturePhoto(ctx, strings.Join(args, " "))

		case "add":
			cmdErr = a.AddRecord(ctx)

		case "pending", "list", "l":
			cmdErr = a.Pending(ctx)

		case "sync":
			cmdErr = a.Sync(ctx)

		case "auditors":
			cmdErr = a.Auditors(ctx)

		case "status":
			cmdErr = a.Status(ctx)

		case "migrate":
			cmdErr = a.Migrate(ctx)

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

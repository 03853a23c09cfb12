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
	Logout(ctx context.Context) error
	Users(ctx context.Context) error
	Projects(ctx context.Context) error
	CreateProject(ctx context.Context) error
	AddMember(ctx context.Context) error
	Members(ctx context.Context) error
	Cards(ctx context.Context) error
	Card(ctx context.Context) error
	AddCard(ctx context.Context) error
	MoveCard(ctx context.Context) error
	CancelProject(ctx context.Context) error
	Chat(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the WorthBoard CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("wb> %s > ", statusFn()))
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
				printlnFn("Available commands: users, (p)rojects, create, addmember, members, cards, card, addcard, move, cancel, chat, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "users":
			_ = a.Users(ctx)

		case "p", "projects":
			_ = a.Projects(ctx)

		case "create":
			_ = a.CreateProject(ctx)

		case "addmember":
			_ = a.AddMember(ctx)

		case "members":
			_ = a.Members(ctx)

		case "cards":
			_ = a.Cards(ctx)

		case "card":
			_ = a.Card(ctx)

		case "addcard":
			_ = a.AddCard(ctx)

		case "move":
			_ = a.MoveCard(ctx)

		case "cancel":
			_ = a.CancelProject(ctx)

		case "chat":
			_ = a.Chat(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

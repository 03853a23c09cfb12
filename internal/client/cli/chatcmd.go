package cli

import (
	"context"

	"github.com/dmitrijs2005/worthboard/internal/client/chat"
)

// Chat joins the multicast chat of one project and relays lines typed by the
// user until an empty line. Incoming messages, including the server's system
// notifications, print as they arrive.
func (a *App) Chat(ctx context.Context) error {

	project, err := GetSimpleText(a.reader, "Enter project name", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	addr, ok := a.chatAddress(project)
	if !ok {
		// the pushed view may lag right after login; refresh it once
		if err := a.Projects(ctx); err != nil {
			return err
		}
		if addr, ok = a.chatAddress(project); !ok {
			printlnFn("No chat address known for this project")
			return nil
		}
	}

	group, err := chat.Join(addr, a.config.ChatPort, a.api.Nickname())
	if err != nil {
		a.printError(err)
		return err
	}
	defer group.Close()

	go group.Listen(func(msg string) {
		cyan.Fprintf(a.out, "%s\n", msg)
	})

	printlnFn("Joined chat of " + project + " (empty line to leave)")
	for {
		line, err := GetSimpleText(a.reader, "", a.out)
		if err != nil || line == "" {
			return nil
		}
		if err := group.Send(line); err != nil {
			a.printError(err)
			return err
		}
	}
}

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/worthboard/internal/protocol"
)

func init() {
	// Force color output even when not connected to TTY
	// Users can disable with NO_COLOR environment variable
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

// outcomeText maps business outcomes to operator-friendly wording.
var outcomeText = map[protocol.Response]string{
	protocol.ResponseOK:                  "Done",
	protocol.ResponseUserExists:          "This nickname is already taken",
	protocol.ResponseNotRegistered:       "No such registered user",
	protocol.ResponseWrongPassword:       "Wrong password",
	protocol.ResponseAlreadyLogged:       "This user is already logged in elsewhere",
	protocol.ResponseProjectExists:       "A project with this name already exists",
	protocol.ResponseMemberExists:        "This user is already a member",
	protocol.ResponseNonexistentProject:  "No such project among yours",
	protocol.ResponseNonexistentCard:     "No such card in the source list",
	protocol.ResponseNonexistentList:     "No such list",
	protocol.ResponseCardExists:          "The card is already there",
	protocol.ResponseMoveCardForbidden:   "The workflow does not allow this move",
	protocol.ResponseDeleteForbidden:     "Only a fully done board can be cancelled",
	protocol.ResponseUnableCreateProject: "No chat address left for a new project",
	protocol.ResponseUnknownError:        "Something went wrong, try logging in again",
}

// printOutcome renders one business outcome: green for success, yellow for
// everything else.
func (a *App) printOutcome(outcome protocol.Response) {
	text, ok := outcomeText[outcome]
	if !ok {
		text = string(outcome)
	}
	if outcome == protocol.ResponseOK {
		green.Fprintf(a.out, "✓ %s\n", text)
	} else {
		yellow.Fprintf(a.out, "! %s\n", text)
	}
}

func (a *App) printError(err error) {
	yellow.Fprintf(a.out, "! %v\n", err)
}

func (a *App) printUsers(users []protocol.User) {
	for _, u := range users {
		state := "offline"
		if u.Online {
			state = "online"
		}
		fmt.Fprintf(a.out, "  %-20s %s\n", u.Nickname, state)
	}
}

func (a *App) printProjects(projects []protocol.Project) {
	if len(projects) == 0 {
		faint.Fprintln(a.out, "  (no projects)")
		return
	}
	for _, p := range projects {
		fmt.Fprintf(a.out, "  %-20s members: %s", p.Name, strings.Join(p.Members, ", "))
		if p.ChatAddress != "" {
			faint.Fprintf(a.out, "  chat %s", p.ChatAddress)
		}
		fmt.Fprintln(a.out)
	}
}

// printBoard renders the cards of one project grouped by workflow list.
func (a *App) printBoard(cards []protocol.Card) {
	lists := []string{protocol.ListTodo, protocol.ListInProgress, protocol.ListToBeRevised, protocol.ListDone}
	for _, list := range lists {
		cyan.Fprintf(a.out, "%s\n", list)
		empty := true
		for _, c := range cards {
			if c.Position != list {
				continue
			}
			empty = false
			fmt.Fprintf(a.out, "  %s", c.Name)
			if c.Description != "" {
				faint.Fprintf(a.out, " - %s", c.Description)
			}
			fmt.Fprintln(a.out)
		}
		if empty {
			faint.Fprintln(a.out, "  (empty)")
		}
	}
}

func (a *App) printCard(c *protocol.Card) {
	cyan.Fprintf(a.out, "%s\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(a.out, "  %s\n", c.Description)
	}
	fmt.Fprintf(a.out, "  position: %s\n", c.Position)
	fmt.Fprintf(a.out, "  history:  %s\n", strings.Join(c.History, " -> "))
}

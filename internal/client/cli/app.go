// Package cli is the interactive terminal front of the WorthBoard client: a
// read-eval-print loop over the API client, a live view of users and projects
// fed by server pushes, and project chat over multicast.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/worthboard/internal/client/client"
	"github.com/dmitrijs2005/worthboard/internal/client/config"
	"github.com/dmitrijs2005/worthboard/internal/protocol"
)

// api is the client surface the commands need. The real client.Client
// satisfies it; tests provide a stub.
type api interface {
	Connect(ctx context.Context) error
	Close() error
	Nickname() string

	Register(ctx context.Context, nickname string, password []byte) (protocol.Response, error)
	Login(ctx context.Context, nickname string, password []byte) (protocol.Response, error)
	Logout(ctx context.Context) (protocol.Response, error)
	ListProjects(ctx context.Context) ([]protocol.Project, protocol.Response, error)
	CreateProject(ctx context.Context, projectName string) (protocol.Response, error)
	AddMember(ctx context.Context, projectName, newMember string) (protocol.Response, error)
	ShowMembers(ctx context.Context, projectName string) ([]string, protocol.Response, error)
	ShowCards(ctx context.Context, projectName string) ([]protocol.Card, protocol.Response, error)
	ShowCard(ctx context.Context, projectName, cardName string) (*protocol.Card, protocol.Response, error)
	AddCard(ctx context.Context, projectName, cardName, description string) (protocol.Response, error)
	MoveCard(ctx context.Context, projectName, cardName, sourceList, destList string) (protocol.Response, error)
	CancelProject(ctx context.Context, projectName string) (protocol.Response, error)
	Subscribe(ctx context.Context, h client.EventHandler) (*client.Subscription, error)
}

type App struct {
	config *config.Config
	api    api
	reader *bufio.Reader
	out    io.Writer

	// live view fed by server pushes on the subscription connection
	mu       sync.Mutex
	users    []protocol.User
	projects []protocol.Project

	sub *client.Subscription
}

func NewApp(c *config.Config) (*App, error) {
	return &App{
		config: c,
		api:    client.New(c.ServerEndpointAddr, c.DialTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	if err := a.api.Connect(ctx); err != nil {
		return err
	}
	defer a.api.Close()
	defer a.stopSubscription()

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.api.Nickname() != ""
}

func (a *App) status() string {
	if nickname := a.api.Nickname(); nickname != "" {
		return nickname
	}
	return "not logged in"
}

// OnUsers implements client.EventHandler.
func (a *App) OnUsers(users []protocol.User) {
	a.mu.Lock()
	a.users = users
	a.mu.Unlock()
}

// OnProjects implements client.EventHandler.
func (a *App) OnProjects(projects []protocol.Project) {
	a.mu.Lock()
	a.projects = projects
	a.mu.Unlock()
}

func (a *App) startSubscription(ctx context.Context) {
	sub, err := a.api.Subscribe(ctx, a)
	if err != nil {
		a.printError(err)
		return
	}
	a.sub = sub
}

func (a *App) stopSubscription() {
	if a.sub != nil {
		a.sub.Close()
		a.sub = nil
	}
}

// chatAddress resolves a project name to its chat group address using the
// pushed project view.
func (a *App) chatAddress(projectName string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.projects {
		if p.Name == projectName {
			return p.ChatAddress, p.ChatAddress != ""
		}
	}
	return "", false
}

package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/worthboard/internal/client/client"
	"github.com/dmitrijs2005/worthboard/internal/client/config"
	"github.com/dmitrijs2005/worthboard/internal/protocol"
)

// stubAPI is a canned client for command tests. Every call is recorded; the
// preset outcome and payloads are returned.
type stubAPI struct {
	calls      []string
	nickname   string
	outcome    protocol.Response
	projects   []protocol.Project
	members    []string
	cards      []protocol.Card
	card       *protocol.Card
	subscribed bool
}

func (s *stubAPI) record(name string) { s.calls = append(s.calls, name) }

func (s *stubAPI) Connect(context.Context) error { s.record("connect"); return nil }
func (s *stubAPI) Close() error                  { s.record("close"); return nil }
func (s *stubAPI) Nickname() string              { return s.nickname }

func (s *stubAPI) Register(_ context.Context, nickname string, _ []byte) (protocol.Response, error) {
	s.record("register " + nickname)
	return s.outcome, nil
}

func (s *stubAPI) Login(_ context.Context, nickname string, _ []byte) (protocol.Response, error) {
	s.record("login " + nickname)
	if s.outcome == protocol.ResponseOK {
		s.nickname = nickname
	}
	return s.outcome, nil
}

func (s *stubAPI) Logout(context.Context) (protocol.Response, error) {
	s.record("logout")
	s.nickname = ""
	return s.outcome, nil
}

func (s *stubAPI) ListProjects(context.Context) ([]protocol.Project, protocol.Response, error) {
	s.record("listprojects")
	return s.projects, s.outcome, nil
}

func (s *stubAPI) CreateProject(_ context.Context, name string) (protocol.Response, error) {
	s.record("createproject " + name)
	return s.outcome, nil
}

func (s *stubAPI) AddMember(_ context.Context, project, member string) (protocol.Response, error) {
	s.record("addmember " + project + " " + member)
	return s.outcome, nil
}

func (s *stubAPI) ShowMembers(_ context.Context, project string) ([]string, protocol.Response, error) {
	s.record("showmembers " + project)
	return s.members, s.outcome, nil
}

func (s *stubAPI) ShowCards(_ context.Context, project string) ([]protocol.Card, protocol.Response, error) {
	s.record("showcards " + project)
	return s.cards, s.outcome, nil
}

func (s *stubAPI) ShowCard(_ context.Context, project, card string) (*protocol.Card, protocol.Response, error) {
	s.record("showcard " + project + " " + card)
	return s.card, s.outcome, nil
}

func (s *stubAPI) AddCard(_ context.Context, project, card, description string) (protocol.Response, error) {
	s.record("addcard " + project + " " + card)
	return s.outcome, nil
}

func (s *stubAPI) MoveCard(_ context.Context, project, card, source, dest string) (protocol.Response, error) {
	s.record("movecard " + project + " " + card + " " + source + " " + dest)
	return s.outcome, nil
}

func (s *stubAPI) CancelProject(_ context.Context, project string) (protocol.Response, error) {
	s.record("cancelproject " + project)
	return s.outcome, nil
}

func (s *stubAPI) Subscribe(context.Context, client.EventHandler) (*client.Subscription, error) {
	s.record("subscribe")
	s.subscribed = true
	return nil, nil
}

func newTestApp(stub *stubAPI, input string) (*App, *bytes.Buffer) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	out := &bytes.Buffer{}
	return &App{
		config: cfg,
		api:    stub,
		reader: bufio.NewReader(strings.NewReader(input)),
		out:    out,
	}, out
}

func withStubbedPassword(t *testing.T, password string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte(password), nil }
}

func TestRegisterCommand(t *testing.T) {
	withStubbedPassword(t, "pw")
	stub := &stubAPI{outcome: protocol.ResponseUserExists}
	app, out := newTestApp(stub, "alice\n")

	require.NoError(t, app.Register(context.Background()))
	assert.Equal(t, []string{"register alice"}, stub.calls)
	assert.Contains(t, out.String(), "already taken")
}

func TestLoginCommandSubscribesOnSuccess(t *testing.T) {
	withStubbedPassword(t, "pw")
	stub := &stubAPI{outcome: protocol.ResponseOK}
	app, _ := newTestApp(stub, "alice\n")

	require.NoError(t, app.Login(context.Background()))
	assert.True(t, stub.subscribed)
	assert.True(t, app.isLoggedIn())
}

func TestLoginCommandNoSubscriptionOnFailure(t *testing.T) {
	withStubbedPassword(t, "pw")
	stub := &stubAPI{outcome: protocol.ResponseWrongPassword}
	app, out := newTestApp(stub, "alice\n")

	require.NoError(t, app.Login(context.Background()))
	assert.False(t, stub.subscribed)
	assert.Contains(t, out.String(), "Wrong password")
}

func TestLogoutCommandReconnects(t *testing.T) {
	stub := &stubAPI{outcome: protocol.ResponseOK, nickname: "alice"}
	app, _ := newTestApp(stub, "")

	require.NoError(t, app.Logout(context.Background()))
	assert.Equal(t, []string{"logout", "connect"}, stub.calls)
	assert.False(t, app.isLoggedIn())
}

func TestProjectsCommandUpdatesChatView(t *testing.T) {
	stub := &stubAPI{
		outcome: protocol.ResponseOK,
		projects: []protocol.Project{
			{Name: "apollo", Members: []string{"alice"}, ChatAddress: "239.255.224.0"},
		},
	}
	app, out := newTestApp(stub, "")

	require.NoError(t, app.Projects(context.Background()))
	assert.Contains(t, out.String(), "apollo")

	addr, ok := app.chatAddress("apollo")
	require.True(t, ok)
	assert.Equal(t, "239.255.224.0", addr)
}

func TestMoveCardCommand(t *testing.T) {
	stub := &stubAPI{outcome: protocol.ResponseMoveCardForbidden}
	app, out := newTestApp(stub, "apollo\ndesign\ntodo\ndone\n")

	require.NoError(t, app.MoveCard(context.Background()))
	assert.Equal(t, []string{"movecard apollo design todo done"}, stub.calls)
	assert.Contains(t, out.String(), "workflow does not allow")
}

func TestCardsCommandRendersBoard(t *testing.T) {
	stub := &stubAPI{
		outcome: protocol.ResponseOK,
		cards: []protocol.Card{
			{Name: "design", Position: protocol.ListInProgress, History: []string{"TODO", "INPROGRESS"}},
		},
	}
	app, out := newTestApp(stub, "apollo\n")

	require.NoError(t, app.Cards(context.Background()))
	rendered := out.String()
	assert.Contains(t, rendered, "INPROGRESS")
	assert.Contains(t, rendered, "design")
}

func TestPushHandlersUpdateView(t *testing.T) {
	app, out := newTestApp(&stubAPI{}, "")

	app.OnUsers([]protocol.User{{Nickname: "alice", Online: true}})
	app.OnProjects([]protocol.Project{{Name: "apollo", ChatAddress: "239.255.224.3"}})

	require.NoError(t, app.Users(context.Background()))
	assert.Contains(t, out.String(), "alice")

	addr, ok := app.chatAddress("apollo")
	require.True(t, ok)
	assert.Equal(t, "239.255.224.3", addr)
}

package tcp

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/worthboard/internal/logging"
	"github.com/dmitrijs2005/worthboard/internal/protocol"
	"github.com/dmitrijs2005/worthboard/internal/server/addrpool"
	"github.com/dmitrijs2005/worthboard/internal/server/broadcast"
	"github.com/dmitrijs2005/worthboard/internal/server/config"
	"github.com/dmitrijs2005/worthboard/internal/server/core"
	"github.com/dmitrijs2005/worthboard/internal/server/storage"
)

type nullStore struct{}

func (nullStore) LoadUsers() ([]storage.UserRecord, error)       { return nil, nil }
func (nullStore) SaveUsers([]storage.UserRecord) error           { return nil }
func (nullStore) LoadProjects() ([]storage.ProjectRecord, error) { return nil, nil }
func (nullStore) SaveProject(storage.ProjectRecord) error        { return nil }
func (nullStore) DeleteProject(string) error                     { return nil }

type nullNotifier struct{}

func (nullNotifier) Notify(addr, text string) error { return nil }

type harness struct {
	core *core.Service
	cfg  *config.Config
	wg   sync.WaitGroup
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ChatPoolSize = 8

	pool, err := addrpool.New(cfg.ChatBaseAddress, cfg.ChatPoolSize)
	require.NoError(t, err)

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := core.NewService(cfg, nullStore{}, pool, broadcast.New(logger), nullNotifier{}, logger)
	require.NoError(t, svc.Load(context.Background()))

	return &harness{core: svc, cfg: cfg}
}

// dial wires a fresh session goroutine to one end of a pipe and returns a
// codec over the client end.
func (h *harness) dial(t *testing.T) *protocol.Codec {
	t.Helper()

	client, server := net.Pipe()
	t.Cleanup(func() { client.Close() })

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	sess := newSession(server, h.core, logger, []byte(h.cfg.SecretKey))
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		sess.run(context.Background())
	}()

	return protocol.NewCodec(client)
}

func roundtrip(t *testing.T, c *protocol.Codec, req *protocol.Message) *protocol.Message {
	t.Helper()
	require.NoError(t, c.Write(req))
	reply, err := c.Read()
	require.NoError(t, err)
	return reply
}

// login registers and logs in a user, returning the session token.
func login(t *testing.T, c *protocol.Codec, nickname string) string {
	t.Helper()
	reply := roundtrip(t, c, &protocol.Message{Request: protocol.RequestRegister, Nickname: nickname, Password: "pw"})
	require.Equal(t, protocol.ResponseOK, reply.Response)
	reply = roundtrip(t, c, &protocol.Message{Request: protocol.RequestLogin, Nickname: nickname, Password: "pw"})
	require.Equal(t, protocol.ResponseOK, reply.Response)
	require.NotEmpty(t, reply.Token)
	return reply.Token
}

func TestSessionLoginAndOperate(t *testing.T) {
	h := newHarness(t)
	c := h.dial(t)

	token := login(t, c, "alice")

	reply := roundtrip(t, c, &protocol.Message{
		Request: protocol.RequestCreateProject, Nickname: "alice", Token: token, ProjectName: "apollo",
	})
	assert.Equal(t, protocol.ResponseOK, reply.Response)

	reply = roundtrip(t, c, &protocol.Message{
		Request: protocol.RequestListAllProjects, Nickname: "alice", Token: token,
	})
	require.Equal(t, protocol.ResponseOK, reply.Response)
	require.Len(t, reply.Projects, 1)
	assert.Equal(t, "apollo", reply.Projects[0].Name)
}

func TestSessionRejectsBadToken(t *testing.T) {
	h := newHarness(t)
	c := h.dial(t)

	token := login(t, c, "alice")

	// no token at all
	reply := roundtrip(t, c, &protocol.Message{
		Request: protocol.RequestCreateProject, Nickname: "alice", ProjectName: "apollo",
	})
	assert.Equal(t, protocol.ResponseUnknownError, reply.Response)

	// valid token, foreign nickname
	reply = roundtrip(t, c, &protocol.Message{
		Request: protocol.RequestCreateProject, Nickname: "bob", Token: token, ProjectName: "apollo",
	})
	assert.Equal(t, protocol.ResponseUnknownError, reply.Response)
}

func TestSessionUnknownRequest(t *testing.T) {
	h := newHarness(t)
	c := h.dial(t)

	reply := roundtrip(t, c, &protocol.Message{Request: protocol.Request("DANCE")})
	assert.Equal(t, protocol.ResponseUnknownError, reply.Response)
}

func TestSessionLogoutClosesConnection(t *testing.T) {
	h := newHarness(t)
	c := h.dial(t)

	token := login(t, c, "alice")

	reply := roundtrip(t, c, &protocol.Message{Request: protocol.RequestLogout, Nickname: "alice", Token: token})
	require.Equal(t, protocol.ResponseOK, reply.Response)

	_, err := c.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSessionForcedLogoutOnDisconnect(t *testing.T) {
	h := newHarness(t)

	client, server := net.Pipe()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	sess := newSession(server, h.core, logger, []byte(h.cfg.SecretKey))

	done := make(chan struct{})
	go func() {
		defer close(done)
		sess.run(context.Background())
	}()

	c := protocol.NewCodec(client)
	login(t, c, "alice")

	client.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session did not terminate after disconnect")
	}

	// forced logout means a fresh login succeeds instead of ALREADY_LOGGED
	c2 := h.dial(t)
	reply := roundtrip(t, c2, &protocol.Message{Request: protocol.RequestLogin, Nickname: "alice", Password: "pw"})
	assert.Equal(t, protocol.ResponseOK, reply.Response)
}

func TestSubscription(t *testing.T) {
	h := newHarness(t)
	c := h.dial(t)
	token := login(t, c, "alice")

	sub := h.dial(t)
	reply := roundtrip(t, sub, &protocol.Message{Request: protocol.RequestSubscribe, Nickname: "alice", Token: token})
	require.Equal(t, protocol.ResponseOK, reply.Response)

	// catch-up: the current user list and project list arrive immediately
	users, err := sub.Read()
	require.NoError(t, err)
	require.Equal(t, protocol.EventUsers, users.Event)
	require.Len(t, users.Users, 1)
	assert.Equal(t, "alice", users.Users[0].Nickname)

	projects, err := sub.Read()
	require.NoError(t, err)
	require.Equal(t, protocol.EventChats, projects.Event)
	assert.Empty(t, projects.Projects)

	// a mutation on the session connection is pushed to the subscriber; the
	// pipe is unbuffered, so the push must be consumed concurrently
	pushed := make(chan *protocol.Message, 1)
	go func() {
		msg, _ := sub.Read()
		pushed <- msg
	}()

	reply = roundtrip(t, c, &protocol.Message{
		Request: protocol.RequestCreateProject, Nickname: "alice", Token: token, ProjectName: "apollo",
	})
	require.Equal(t, protocol.ResponseOK, reply.Response)

	select {
	case projects = <-pushed:
		require.NotNil(t, projects)
	case <-time.After(time.Second):
		t.Fatal("no project push received")
	}
	require.Equal(t, protocol.EventChats, projects.Event)
	require.Len(t, projects.Projects, 1)
	assert.Equal(t, "apollo", projects.Projects[0].Name)
}

func TestSubscriptionRequiresToken(t *testing.T) {
	h := newHarness(t)
	sub := h.dial(t)

	reply := roundtrip(t, sub, &protocol.Message{Request: protocol.RequestSubscribe, Nickname: "alice"})
	assert.Equal(t, protocol.ResponseUnknownError, reply.Response)

	_, err := sub.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestServerAcceptsOverTCP(t *testing.T) {
	h := newHarness(t)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := NewServer("127.0.0.1:0", h.core, logger, h.cfg.SecretKey)

	// bind on our own so the test knows the port before Run
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()
	srv.address = addr

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	var conn net.Conn
	require.Eventually(t, func() bool {
		conn, err = net.Dial("tcp", addr)
		return err == nil
	}, time.Second, 10*time.Millisecond)
	defer conn.Close()

	c := protocol.NewCodec(conn)
	reply := roundtrip(t, c, &protocol.Message{Request: protocol.RequestRegister, Nickname: "alice", Password: "pw"})
	assert.Equal(t, protocol.ResponseOK, reply.Response)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}

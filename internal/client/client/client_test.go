package client

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/worthboard/internal/protocol"
)

// scriptServer is a minimal scripted peer: it frames with the real codec and
// answers each request kind with a canned outcome, enough to exercise the
// client mechanics without the whole server stack.
type scriptServer struct {
	listener net.Listener
	wg       sync.WaitGroup
}

func startScriptServer(t *testing.T) *scriptServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &scriptServer{listener: listener}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(func() {
		listener.Close()
		s.wg.Wait()
	})
	return s
}

func (s *scriptServer) addr() string { return s.listener.Addr().String() }

func (s *scriptServer) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			s.handle(conn)
		}()
	}
}

func (s *scriptServer) handle(conn net.Conn) {
	codec := protocol.NewCodec(conn)
	for {
		msg, err := codec.Read()
		if err != nil {
			return
		}

		switch msg.Request {
		case protocol.RequestLogin:
			reply := &protocol.Message{Response: protocol.ResponseWrongPassword}
			if msg.Password == "secret" {
				reply = &protocol.Message{
					Response: protocol.ResponseOK,
					Token:    "session-token",
					User:     &protocol.User{Nickname: msg.Nickname, Online: true},
				}
			}
			codec.Write(reply)

		case protocol.RequestListAllProjects:
			if msg.Token != "session-token" {
				codec.Write(&protocol.Message{Response: protocol.ResponseUnknownError})
				continue
			}
			codec.Write(&protocol.Message{
				Response: protocol.ResponseOK,
				Projects: []protocol.Project{{Name: "apollo", Members: []string{msg.Nickname}}},
			})

		case protocol.RequestMoveCard:
			codec.Write(&protocol.Message{Response: protocol.ResponseMoveCardForbidden})

		case protocol.RequestLogout:
			codec.Write(&protocol.Message{Response: protocol.ResponseOK})
			return

		case protocol.RequestSubscribe:
			codec.Write(&protocol.Message{Response: protocol.ResponseOK})
			codec.Write(&protocol.Message{Event: protocol.EventUsers, Users: []protocol.User{{Nickname: "alice", Online: true}}})
			codec.Write(&protocol.Message{Event: protocol.EventChats, Projects: []protocol.Project{{Name: "apollo"}}})
			// hold the channel open until the client closes it
			codec.Read()
			return

		default:
			codec.Write(&protocol.Message{Response: protocol.ResponseUnknownError})
		}
	}
}

func newConnectedClient(t *testing.T) *Client {
	t.Helper()
	srv := startScriptServer(t)
	c := New(srv.addr(), time.Second)
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRequestBeforeConnect(t *testing.T) {
	c := New("127.0.0.1:1", time.Second)
	_, err := c.Register(context.Background(), "alice", []byte("pw"))
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestLoginStoresToken(t *testing.T) {
	c := newConnectedClient(t)
	ctx := context.Background()

	outcome, err := c.Login(ctx, "alice", []byte("wrong"))
	require.NoError(t, err)
	assert.Equal(t, protocol.ResponseWrongPassword, outcome)
	assert.Empty(t, c.Nickname())

	outcome, err = c.Login(ctx, "alice", []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, protocol.ResponseOK, outcome)
	assert.Equal(t, "alice", c.Nickname())

	// the remembered token rides along on subsequent requests
	projects, outcome, err := c.ListProjects(ctx)
	require.NoError(t, err)
	require.Equal(t, protocol.ResponseOK, outcome)
	require.Len(t, projects, 1)
	assert.Equal(t, "apollo", projects[0].Name)
}

func TestBusinessOutcomeIsNotAnError(t *testing.T) {
	c := newConnectedClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "alice", []byte("secret"))
	require.NoError(t, err)

	outcome, err := c.MoveCard(ctx, "apollo", "design", "DONE", "TODO")
	require.NoError(t, err)
	assert.Equal(t, protocol.ResponseMoveCardForbidden, outcome)
}

func TestLogoutForgetsSession(t *testing.T) {
	c := newConnectedClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "alice", []byte("secret"))
	require.NoError(t, err)

	outcome, err := c.Logout(ctx)
	require.NoError(t, err)
	assert.Equal(t, protocol.ResponseOK, outcome)
	assert.Empty(t, c.Nickname())

	_, _, err = c.ListProjects(ctx)
	assert.ErrorIs(t, err, ErrNotConnected)
}

type recordingHandler struct {
	mu       sync.Mutex
	users    [][]protocol.User
	projects [][]protocol.Project
	got      chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{got: make(chan struct{}, 8)}
}

func (h *recordingHandler) OnUsers(users []protocol.User) {
	h.mu.Lock()
	h.users = append(h.users, users)
	h.mu.Unlock()
	h.got <- struct{}{}
}

func (h *recordingHandler) OnProjects(projects []protocol.Project) {
	h.mu.Lock()
	h.projects = append(h.projects, projects)
	h.mu.Unlock()
	h.got <- struct{}{}
}

func TestSubscribeDeliversCatchUp(t *testing.T) {
	c := newConnectedClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "alice", []byte("secret"))
	require.NoError(t, err)

	h := newRecordingHandler()
	sub, err := c.Subscribe(ctx, h)
	require.NoError(t, err)
	defer sub.Close()

	for i := 0; i < 2; i++ {
		select {
		case <-h.got:
		case <-time.After(time.Second):
			t.Fatal("push not delivered")
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.users, 1)
	assert.Equal(t, "alice", h.users[0][0].Nickname)
	require.Len(t, h.projects, 1)
	assert.Equal(t, "apollo", h.projects[0][0].Name)
}

func TestSubscribeRequiresLogin(t *testing.T) {
	c := newConnectedClient(t)

	_, err := c.Subscribe(context.Background(), newRecordingHandler())
	assert.ErrorIs(t, err, ErrNotConnected)
}

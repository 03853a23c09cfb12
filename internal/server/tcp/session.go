package tcp

import (
	"context"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/worthboard/internal/logging"
	"github.com/dmitrijs2005/worthboard/internal/protocol"
	"github.com/dmitrijs2005/worthboard/internal/server/auth"
	"github.com/dmitrijs2005/worthboard/internal/server/core"
)

// session owns one client connection. The loop is strictly request-then-
// response until the connection is either closed (LOGOUT, disconnect) or
// converted into a push channel by SUBSCRIBE. A session that saw a successful
// LOGIN force-logs the user out when the connection drops without LOGOUT.
type session struct {
	id        string
	conn      net.Conn
	codec     *protocol.Codec
	core      *core.Service
	logger    logging.Logger
	jwtSecret []byte

	// nickname of the user logged in over this connection, "" before LOGIN
	nickname string

	writeMu sync.Mutex
}

func newSession(conn net.Conn, c *core.Service, logger logging.Logger, jwtSecret []byte) *session {
	id := uuid.NewString()
	return &session{
		id:        id,
		conn:      conn,
		codec:     protocol.NewCodec(conn),
		core:      c,
		logger:    logger.With("session", id),
		jwtSecret: jwtSecret,
	}
}

func (s *session) run(ctx context.Context) {
	defer s.conn.Close()

	s.logger.Debug(ctx, "session opened", "remote", s.conn.RemoteAddr().String())

	for {
		msg, err := s.codec.Read()
		if err != nil {
			if err != io.EOF {
				s.logger.Warn(ctx, "session read failed", "error", err)
			}
			s.disconnected(ctx)
			return
		}

		if msg.Request == protocol.RequestSubscribe {
			s.serveSubscription(ctx, msg)
			return
		}

		reply, closeAfter := s.dispatch(ctx, msg)
		if err := s.write(reply); err != nil {
			s.logger.Warn(ctx, "session write failed", "error", err)
			s.disconnected(ctx)
			return
		}
		if closeAfter {
			return
		}
	}
}

// dispatch routes one request to the core service. The second return value is
// true when the connection must close after the reply is sent.
func (s *session) dispatch(ctx context.Context, msg *protocol.Message) (*protocol.Message, bool) {
	switch msg.Request {
	case protocol.RequestRegister:
		return s.core.Register(ctx, msg.Nickname, msg.Password), false

	case protocol.RequestLogin:
		reply := s.core.Login(ctx, msg.Nickname, msg.Password)
		if reply.Response == protocol.ResponseOK {
			s.nickname = msg.Nickname
		}
		return reply, false

	case protocol.RequestLogout:
		if reply, ok := s.authenticate(msg); !ok {
			return reply, false
		}
		reply := s.core.Logout(ctx, msg.Nickname)
		s.nickname = ""
		return reply, true

	case protocol.RequestListAllProjects:
		if reply, ok := s.authenticate(msg); !ok {
			return reply, false
		}
		return s.core.ListProjects(ctx, msg.Nickname), false

	case protocol.RequestCreateProject:
		if reply, ok := s.authenticate(msg); !ok {
			return reply, false
		}
		return s.core.CreateProject(ctx, msg.Nickname, msg.ProjectName), false

	case protocol.RequestAddMember:
		if reply, ok := s.authenticate(msg); !ok {
			return reply, false
		}
		return s.core.AddMember(ctx, msg.Nickname, msg.ProjectName, msg.NewMember), false

	case protocol.RequestShowAllMembers:
		if reply, ok := s.authenticate(msg); !ok {
			return reply, false
		}
		return s.core.ShowMembers(ctx, msg.Nickname, msg.ProjectName), false

	case protocol.RequestShowAllCards:
		if reply, ok := s.authenticate(msg); !ok {
			return reply, false
		}
		return s.core.ShowCards(ctx, msg.Nickname, msg.ProjectName), false

	case protocol.RequestShowCard:
		if reply, ok := s.authenticate(msg); !ok {
			return reply, false
		}
		return s.core.ShowCard(ctx, msg.Nickname, msg.ProjectName, msg.CardName), false

	case protocol.RequestAddCard:
		if reply, ok := s.authenticate(msg); !ok {
			return reply, false
		}
		return s.core.AddCard(ctx, msg.Nickname, msg.ProjectName, msg.CardName, msg.Description), false

	case protocol.RequestMoveCard:
		if reply, ok := s.authenticate(msg); !ok {
			return reply, false
		}
		return s.core.MoveCard(ctx, msg.Nickname, msg.ProjectName, msg.CardName, msg.SourceList, msg.DestList), false

	case protocol.RequestCancelProject:
		if reply, ok := s.authenticate(msg); !ok {
			return reply, false
		}
		return s.core.CancelProject(ctx, msg.Nickname, msg.ProjectName), false

	default:
		s.logger.Warn(ctx, "unknown request kind", "request", string(msg.Request))
		return &protocol.Message{Response: protocol.ResponseUnknownError}, false
	}
}

// authenticate verifies the session token and that its subject matches the
// nickname the request claims to act as. A missing, expired or foreign token
// is indistinguishable to the client: UNKNOWN_ERROR either way.
func (s *session) authenticate(msg *protocol.Message) (*protocol.Message, bool) {
	nickname, err := auth.NicknameFromToken(msg.Token, s.jwtSecret)
	if err != nil || nickname != msg.Nickname {
		return &protocol.Message{Response: protocol.ResponseUnknownError}, false
	}
	return nil, true
}

// serveSubscription converts the connection into a push channel. The reply to
// SUBSCRIBE is sent first, then the catch-up events, then the loop only waits
// for the peer to go away.
func (s *session) serveSubscription(ctx context.Context, msg *protocol.Message) {
	if reply, ok := s.authenticate(msg); !ok {
		if err := s.write(reply); err != nil {
			s.logger.Warn(ctx, "session write failed", "error", err)
		}
		return
	}

	if err := s.write(&protocol.Message{Response: protocol.ResponseOK}); err != nil {
		s.logger.Warn(ctx, "session write failed", "error", err)
		return
	}

	s.logger.Debug(ctx, "subscription opened", "nickname", msg.Nickname)
	s.core.Subscribe(s)
	defer s.core.Unsubscribe(s)

	// nothing legitimate arrives on a subscription connection; drain until
	// the peer closes it
	for {
		if _, err := s.codec.Read(); err != nil {
			return
		}
	}
}

// disconnected handles an abrupt connection loss: a user who logged in over
// this connection and never logged out is forced offline.
func (s *session) disconnected(ctx context.Context) {
	if s.nickname == "" {
		return
	}
	s.logger.Info(ctx, "connection lost, forcing logout", "nickname", s.nickname)
	s.core.Logout(ctx, s.nickname)
	s.nickname = ""
}

func (s *session) write(msg *protocol.Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.codec.Write(msg)
}

// NotifyUserEvent implements broadcast.Subscriber over the session connection.
func (s *session) NotifyUserEvent(users []protocol.User) error {
	return s.write(&protocol.Message{Event: protocol.EventUsers, Users: users})
}

// NotifyChatsEvent implements broadcast.Subscriber over the session connection.
func (s *session) NotifyChatsEvent(projects []protocol.Project) error {
	return s.write(&protocol.Message{Event: protocol.EventChats, Projects: projects})
}

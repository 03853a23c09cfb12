package client

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/dmitrijs2005/worthboard/internal/protocol"
)

// EventHandler receives server pushes. Callbacks run on the subscription's
// reader goroutine; keep them short.
type EventHandler interface {
	OnUsers(users []protocol.User)
	OnProjects(projects []protocol.Project)
}

// Subscription is a dedicated connection the server pushes state snapshots
// over. Close it to stop receiving.
type Subscription struct {
	conn net.Conn
	done chan struct{}
}

// Subscribe opens a second connection, upgrades it to a push channel and
// starts delivering events to h. The current user and project lists arrive
// first, as catch-up.
func (c *Client) Subscribe(ctx context.Context, h EventHandler) (*Subscription, error) {
	c.mu.Lock()
	nickname, token := c.nickname, c.token
	c.mu.Unlock()
	if token == "" {
		return nil, ErrNotConnected
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}

	codec := protocol.NewCodec(conn)
	conn.SetDeadline(time.Now().Add(c.dialTimeout))
	err = codec.Write(&protocol.Message{
		Request:  protocol.RequestSubscribe,
		Nickname: nickname,
		Token:    token,
	})
	if err == nil {
		var reply *protocol.Message
		if reply, err = codec.Read(); err == nil && reply.Response != protocol.ResponseOK {
			err = fmt.Errorf("subscription rejected: %s", reply.Response)
		}
	}
	if err != nil {
		conn.Close()
		return nil, err
	}
	conn.SetDeadline(time.Time{})

	s := &Subscription{conn: conn, done: make(chan struct{})}
	go s.listen(codec, h)
	return s, nil
}

func (s *Subscription) listen(codec *protocol.Codec, h EventHandler) {
	defer close(s.done)
	for {
		msg, err := codec.Read()
		if err != nil {
			return
		}
		switch msg.Event {
		case protocol.EventUsers:
			h.OnUsers(msg.Users)
		case protocol.EventChats:
			h.OnProjects(msg.Projects)
		}
	}
}

// Close tears the subscription connection down and waits for the reader
// goroutine to finish.
func (s *Subscription) Close() error {
	err := s.conn.Close()
	<-s.done
	return err
}

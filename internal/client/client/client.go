// Package client implements the TCP API client of the server: one connection
// for request-response exchanges, optionally a second one converted into a
// push channel by Subscribe. Business outcomes travel as protocol responses;
// Go errors are reserved for transport failures.
package client

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/worthboard/internal/protocol"
)

type Client struct {
	endpointAddr string
	dialTimeout  time.Duration

	// mu serializes request-response exchanges on the connection
	mu    sync.Mutex
	conn  net.Conn
	codec *protocol.Codec

	token    string
	nickname string
}

func New(endpointAddr string, dialTimeout time.Duration) *Client {
	return &Client{endpointAddr: endpointAddr, dialTimeout: dialTimeout}
}

// Connect dials the server, retrying with exponential backoff. It must be
// called once before any request method.
func (c *Client) Connect(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.codec = protocol.NewCodec(conn)
	c.mu.Unlock()
	return nil
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	var conn net.Conn

	backoff := retry.WithMaxRetries(4, retry.NewExponential(250*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		d := net.Dialer{Timeout: c.dialTimeout}
		cn, err := d.DialContext(ctx, "tcp", c.endpointAddr)
		if err != nil {
			return retry.RetryableError(err)
		}
		conn = cn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return conn, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.codec = nil
	return err
}

// Nickname returns the nickname of the logged-in user, "" before login.
func (c *Client) Nickname() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nickname
}

// roundtrip performs one request-response exchange. An optional context
// deadline bounds the whole exchange.
func (c *Client) roundtrip(ctx context.Context, req *protocol.Message) (*protocol.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
		defer c.conn.SetDeadline(time.Time{})
	}

	req.Token = c.token
	if err := c.codec.Write(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	reply, err := c.codec.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return reply, nil
}

func (c *Client) Register(ctx context.Context, nickname string, password []byte) (protocol.Response, error) {
	reply, err := c.roundtrip(ctx, &protocol.Message{
		Request:  protocol.RequestRegister,
		Nickname: nickname,
		Password: string(password),
	})
	if err != nil {
		return "", err
	}
	return reply.Response, nil
}

// Login authenticates and, on OK, remembers the session token for subsequent
// requests.
func (c *Client) Login(ctx context.Context, nickname string, password []byte) (protocol.Response, error) {
	reply, err := c.roundtrip(ctx, &protocol.Message{
		Request:  protocol.RequestLogin,
		Nickname: nickname,
		Password: string(password),
	})
	if err != nil {
		return "", err
	}

	if reply.Response == protocol.ResponseOK {
		c.mu.Lock()
		c.token = reply.Token
		c.nickname = nickname
		c.mu.Unlock()
	}
	return reply.Response, nil
}

// Logout ends the session. The server closes the connection after replying,
// so the client forgets it regardless of outcome.
func (c *Client) Logout(ctx context.Context) (protocol.Response, error) {
	reply, err := c.roundtrip(ctx, &protocol.Message{
		Request:  protocol.RequestLogout,
		Nickname: c.Nickname(),
	})
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.token = ""
	c.nickname = ""
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.codec = nil
	}
	c.mu.Unlock()
	return reply.Response, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]protocol.Project, protocol.Response, error) {
	reply, err := c.roundtrip(ctx, &protocol.Message{
		Request:  protocol.RequestListAllProjects,
		Nickname: c.Nickname(),
	})
	if err != nil {
		return nil, "", err
	}
	return reply.Projects, reply.Response, nil
}

func (c *Client) CreateProject(ctx context.Context, projectName string) (protocol.Response, error) {
	reply, err := c.roundtrip(ctx, &protocol.Message{
		Request:     protocol.RequestCreateProject,
		Nickname:    c.Nickname(),
		ProjectName: projectName,
	})
	if err != nil {
		return "", err
	}
	return reply.Response, nil
}

func (c *Client) AddMember(ctx context.Context, projectName, newMember string) (protocol.Response, error) {
	reply, err := c.roundtrip(ctx, &protocol.Message{
		Request:     protocol.RequestAddMember,
		Nickname:    c.Nickname(),
		ProjectName: projectName,
		NewMember:   newMember,
	})
	if err != nil {
		return "", err
	}
	return reply.Response, nil
}

func (c *Client) ShowMembers(ctx context.Context, projectName string) ([]string, protocol.Response, error) {
	reply, err := c.roundtrip(ctx, &protocol.Message{
		Request:     protocol.RequestShowAllMembers,
		Nickname:    c.Nickname(),
		ProjectName: projectName,
	})
	if err != nil {
		return nil, "", err
	}
	return reply.Members, reply.Response, nil
}

func (c *Client) ShowCards(ctx context.Context, projectName string) ([]protocol.Card, protocol.Response, error) {
	reply, err := c.roundtrip(ctx, &protocol.Message{
		Request:     protocol.RequestShowAllCards,
		Nickname:    c.Nickname(),
		ProjectName: projectName,
	})
	if err != nil {
		return nil, "", err
	}
	return reply.Cards, reply.Response, nil
}

func (c *Client) ShowCard(ctx context.Context, projectName, cardName string) (*protocol.Card, protocol.Response, error) {
	reply, err := c.roundtrip(ctx, &protocol.Message{
		Request:     protocol.RequestShowCard,
		Nickname:    c.Nickname(),
		ProjectName: projectName,
		CardName:    cardName,
	})
	if err != nil {
		return nil, "", err
	}
	return reply.Card, reply.Response, nil
}

func (c *Client) AddCard(ctx context.Context, projectName, cardName, description string) (protocol.Response, error) {
	reply, err := c.roundtrip(ctx, &protocol.Message{
		Request:     protocol.RequestAddCard,
		Nickname:    c.Nickname(),
		ProjectName: projectName,
		CardName:    cardName,
		Description: description,
	})
	if err != nil {
		return "", err
	}
	return reply.Response, nil
}

func (c *Client) MoveCard(ctx context.Context, projectName, cardName, sourceList, destList string) (protocol.Response, error) {
	reply, err := c.roundtrip(ctx, &protocol.Message{
		Request:     protocol.RequestMoveCard,
		Nickname:    c.Nickname(),
		ProjectName: projectName,
		CardName:    cardName,
		SourceList:  sourceList,
		DestList:    destList,
	})
	if err != nil {
		return "", err
	}
	return reply.Response, nil
}

func (c *Client) CancelProject(ctx context.Context, projectName string) (protocol.Response, error) {
	reply, err := c.roundtrip(ctx, &protocol.Message{
		Request:     protocol.RequestCancelProject,
		Nickname:    c.Nickname(),
		ProjectName: projectName,
	})
	if err != nil {
		return "", err
	}
	return reply.Response, nil
}

// Package tcp is the transport front of the server: it accepts client
// connections, frames messages with the protocol codec and drives one session
// goroutine per connection. All business decisions live in the core service;
// this package only authenticates tokens, dispatches request kinds and keeps
// connection lifecycle honest.
package tcp

import (
	"context"
	"net"
	"sync"

	"github.com/dmitrijs2005/worthboard/internal/logging"
	"github.com/dmitrijs2005/worthboard/internal/server/core"
)

type Server struct {
	address   string
	core      *core.Service
	logger    logging.Logger
	jwtSecret []byte

	mu    sync.Mutex
	conns map[string]net.Conn
}

func NewServer(address string, c *core.Service, logger logging.Logger, secretKey string) *Server {
	return &Server{
		address:   address,
		core:      c,
		logger:    logger.With("module", "tcp_server"),
		jwtSecret: []byte(secretKey),
		conns:     make(map[string]net.Conn),
	}
}

// Run accepts connections until ctx is cancelled, then closes the listener
// and every live connection and waits for the session goroutines to drain.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping TCP server...")
		listener.Close()
		s.closeAll()
	}()

	s.logger.Info(ctx, "Starting TCP server", "address", s.address)

	var wg sync.WaitGroup
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.logger.Warn(ctx, "accept failed", "error", err)
			continue
		}

		sess := newSession(conn, s.core, s.logger, s.jwtSecret)
		s.track(sess.id, conn)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.untrack(sess.id)
			sess.run(ctx)
		}()
	}

	wg.Wait()
	return nil
}

func (s *Server) track(id string, conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[id] = conn
}

func (s *Server) untrack(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, id)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		conn.Close()
	}
}

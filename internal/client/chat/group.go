// Package chat connects the CLI to a project's chat: every project owns one
// multicast group address, members join it to exchange short text lines, and
// the server drops system notifications into it.
package chat

import (
	"fmt"
	"net"
)

const maxDatagramSize = 4096

// Group is one joined project chat. Messages sent through it carry the
// member's nickname; incoming datagrams are delivered verbatim, including the
// server's system lines.
type Group struct {
	nickname string
	addr     *net.UDPAddr
	recv     *net.UDPConn
	send     *net.UDPConn
}

// Join subscribes to the project's multicast group and opens a sending socket.
func Join(address string, port int, nickname string) (*Group, error) {
	ip := net.ParseIP(address)
	if ip == nil || !ip.IsMulticast() {
		return nil, fmt.Errorf("not a multicast address: %q", address)
	}
	addr := &net.UDPAddr{IP: ip, Port: port}

	recv, err := net.ListenMulticastUDP("udp4", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("joining chat group: %w", err)
	}
	recv.SetReadBuffer(maxDatagramSize)

	send, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		recv.Close()
		return nil, fmt.Errorf("opening chat sender: %w", err)
	}

	return &Group{nickname: nickname, addr: addr, recv: recv, send: send}, nil
}

// Send posts one chat line to the group as "<nickname>: <text>".
func (g *Group) Send(text string) error {
	_, err := g.send.Write([]byte(fmt.Sprintf("%s: %s", g.nickname, text)))
	return err
}

// Listen delivers incoming chat lines to onMessage until the group is closed.
// It blocks; run it on its own goroutine.
func (g *Group) Listen(onMessage func(string)) {
	buf := make([]byte, maxDatagramSize)
	for {
		n, _, err := g.recv.ReadFromUDP(buf)
		if err != nil {
			return
		}
		onMessage(string(buf[:n]))
	}
}

func (g *Group) Close() error {
	g.send.Close()
	return g.recv.Close()
}

package chat

import (
	"fmt"
	"net"
	"strconv"
)

// MulticastNotifier sends system messages as UDP datagrams to the project's
// multicast chat address. Every project chat listens on the same port; the
// address distinguishes the channels.
type MulticastNotifier struct {
	port int
}

func NewMulticastNotifier(port int) *MulticastNotifier {
	return &MulticastNotifier{port: port}
}

// Notify sends the line as WORTH: "<text>" to addr. A lost datagram is lost;
// chat delivery is best effort.
func (n *MulticastNotifier) Notify(addr, text string) error {
	conn, err := net.Dial("udp", net.JoinHostPort(addr, strconv.Itoa(n.port)))
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(conn, "WORTH: %q", text); err != nil {
		return err
	}
	return nil
}

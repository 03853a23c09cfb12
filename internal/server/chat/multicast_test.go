package chat

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulticastNotifier_SendsFormattedDatagram(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	port := pc.LocalAddr().(*net.UDPAddr).Port
	n := NewMulticastNotifier(port)

	require.NoError(t, n.Notify("127.0.0.1", "alice created project P"))

	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 512)
	size, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)

	assert.Equal(t, `WORTH: "alice created project P"`, string(buf[:size]))
}

func TestMulticastNotifier_BadAddress(t *testing.T) {
	n := NewMulticastNotifier(13731)
	assert.Error(t, n.Notify("not an address", "hello"))
}

package protocol

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxMessageSize bounds a single encoded message. A reader allocates exactly
// the prefixed length before decoding, so the bound keeps a misbehaving peer
// from forcing an arbitrary allocation.
const MaxMessageSize = 1 << 20

var ErrMessageTooLarge = errors.New("message exceeds size limit")

// Codec reads and writes length-prefixed JSON messages over a stream: a
// 4-byte big-endian payload length followed by the encoded envelope.
type Codec struct {
	r *bufio.Reader
	w *bufio.Writer
}

func NewCodec(rw io.ReadWriter) *Codec {
	return &Codec{r: bufio.NewReader(rw), w: bufio.NewWriter(rw)}
}

// Read decodes the next message from the stream. A clean end-of-stream
// between messages returns io.EOF; a stream cut mid-message returns
// io.ErrUnexpectedEOF.
func (c *Codec) Read() (*Message, error) {
	var size uint32
	if err := binary.Read(c.r, binary.BigEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, size)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(c.r, payload); err != nil {
		return nil, err
	}

	msg := &Message{}
	if err := json.Unmarshal(payload, msg); err != nil {
		return nil, fmt.Errorf("decoding message: %w", err)
	}
	return msg, nil
}

// Write encodes msg and flushes it to the stream as one framed message.
func (c *Codec) Write(msg *Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	if len(payload) > MaxMessageSize {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(payload))
	}

	if err := binary.Write(c.w, binary.BigEndian, uint32(len(payload))); err != nil {
		return err
	}
	if _, err := c.w.Write(payload); err != nil {
		return err
	}
	return c.w.Flush()
}

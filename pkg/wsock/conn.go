package wsock

import (
	"crypto/rand"

	"github.com/duskfort/skirmish/pkg/stream"
)

// MessageKind distinguishes text from binary application messages.
type MessageKind int

const (
	MessageText   MessageKind = 1
	MessageBinary MessageKind = 2
)

// Conn is a WebSocket engine bound to one stream. It owns a small reusable
// arena (a byte slice grown and reset between messages) into which each
// frame's payload is appended while a message is assembled, the Go analogue
// of the original's per-connection bump allocator. Each frame's payload is
// still read into its own buffer first, and ReadMessage returns a fresh copy
// of the assembled message.
type Conn struct {
	s      *stream.Stream
	client bool
	arena  []byte
}

// NewServerConn wraps s as the server side of a handshake already performed
// by ServerHandshake.
func NewServerConn(s *stream.Stream) *Conn {
	return &Conn{s: s, client: false}
}

// NewClientConn wraps s as the client side of a handshake already performed
// by ClientHandshake.
func NewClientConn(s *stream.Stream) *Conn {
	return &Conn{s: s, client: true}
}

func (c *Conn) resetArena() {
	c.arena = c.arena[:0]
}

func randomMaskKey() [4]byte {
	var key [4]byte
	_, _ = rand.Read(key[:])
	return key
}

// SendMessage fragments and sends payload as kind, masking it if this Conn
// is the client side (servers never mask outbound frames per RFC 6455).
func (c *Conn) SendMessage(kind MessageKind, payload []byte) error {
	return sendMessage(c.s, Opcode(kind), payload, c.client, randomMaskKey)
}

// ReadMessage assembles the next application message, transparently
// answering PING with PONG and ignoring PONG, and returns ErrCloseSent when
// a CLOSE frame is received (the caller should close the connection).
func (c *Conn) ReadMessage() (MessageKind, []byte, error) {
	c.resetArena()
	cont := false
	var kind MessageKind
	verified := 0

	for {
		hdr, err := readFrameHeader(c.s)
		if err != nil {
			return 0, nil, err
		}

		if hdr.opcode.isControl() {
			payload, err := readFramePayload(c.s, hdr)
			if err != nil {
				return 0, nil, err
			}
			switch hdr.opcode {
			case OpClose:
				return 0, nil, ErrCloseSent
			case OpPing:
				if err := writeFrame(c.s, true, OpPong, payload, c.client, randomMaskKey); err != nil {
					return 0, nil, err
				}
			case OpPong:
				// ignored
			default:
				return 0, nil, ErrUnexpectedOpcode
			}
			continue
		}

		if !cont {
			if hdr.opcode != OpText && hdr.opcode != OpBinary {
				return 0, nil, ErrUnexpectedOpcode
			}
			kind = MessageKind(hdr.opcode)
			cont = true
		} else if hdr.opcode != OpContinuation {
			return 0, nil, ErrUnexpectedOpcode
		}

		payload, err := readFramePayload(c.s, hdr)
		if err != nil {
			return 0, nil, err
		}
		c.arena = append(c.arena, payload...)

		if kind == MessageText {
			ok, short := validateUTF8(c.arena[verified:])
			if !ok {
				return 0, nil, ErrUTF8Invalid
			}
			if short {
				if hdr.fin {
					return 0, nil, ErrUTF8Short
				}
				// tolerate: leave verified where it is, re-check from the
				// same offset once more bytes arrive in the next frame.
			} else {
				verified = len(c.arena)
			}
		}

		if hdr.fin {
			out := make([]byte, len(c.arena))
			copy(out, c.arena)
			return kind, out, nil
		}
	}
}

// Close sends a CLOSE frame, shuts down the write half, drains remaining
// input until the peer closes, then closes the underlying stream.
func (c *Conn) Close() error {
	_ = writeFrame(c.s, true, OpClose, nil, c.client, randomMaskKey)
	_ = c.s.Shutdown(stream.ShutdownWrite)
	stream.DrainUntilClosed(c.s)
	return c.s.Close()
}

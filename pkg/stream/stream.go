// Package stream provides a uniform read/peek/write/shutdown/close veneer
// over a net.Conn, translating the "0 bytes, no error" case the underlying
// socket can report into a distinct connection-closed error so callers never
// have to special-case a zero-progress read.
package stream

import (
	"errors"
	"io"
	"net"

	"github.com/duskfort/skirmish/pkg/sched"
)

// ErrConnectionClosed is returned by Read/Peek/Write in place of a 0-byte,
// nil-error result from the underlying connection.
var ErrConnectionClosed = errors.New("stream: connection closed")

// ShutdownHow selects which half of the connection to shut down.
type ShutdownHow int

const (
	ShutdownRead ShutdownHow = iota
	ShutdownWrite
	ShutdownBoth
)

// halfCloser is implemented by *net.TCPConn and similar connection types
// that support shutting down a single direction independently.
type halfCloser interface {
	CloseRead() error
	CloseWrite() error
}

// Stream wraps a net.Conn, adding a small look-ahead buffer so Peek can
// inspect upcoming bytes without consuming them (mirroring a MSG_PEEK recv).
type Stream struct {
	conn net.Conn
	peek []byte // bytes already pulled off the wire but not yet consumed by Read
	task *sched.Task
}

// New wraps conn.
func New(conn net.Conn) *Stream {
	return &Stream{conn: conn}
}

// Conn returns the underlying connection.
func (s *Stream) Conn() net.Conn { return s.conn }

// BindTask associates this stream's blocking reads and writes with t, so
// that every point this stream would otherwise block in the kernel becomes
// one of t's sleep points: t.SleepRead/SleepWrite registers an interrupt
// that forces the read or write deadline into the past, and a concurrent
// Runtime.Wake(t.ID()) unblocks it the same way coroutine_wake_up unblocks
// a poll(2) wait.
func (s *Stream) BindTask(t *sched.Task) { s.task = t }

// rawRead pulls fresh bytes off the wire, routing the blocking call through
// the bound task's sleep point when one is set.
func (s *Stream) rawRead(p []byte) (int, error) {
	if s.task != nil {
		return s.task.SleepRead(s.conn, func() (int, error) { return s.conn.Read(p) })
	}
	return s.conn.Read(p)
}

// rawWrite writes p to the wire, routing the blocking call through the
// bound task's sleep point when one is set.
func (s *Stream) rawWrite(p []byte) (int, error) {
	if s.task != nil {
		return s.task.SleepWrite(s.conn, func() (int, error) { return s.conn.Write(p) })
	}
	return s.conn.Write(p)
}

// Read returns bytes buffered by a prior Peek first; only when none are
// buffered does it read from the connection. One call may return fewer than
// len(p) bytes.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(s.peek) > 0 {
		n := copy(p, s.peek)
		s.peek = s.peek[n:]
		return n, nil
	}
	n, err := s.rawRead(p)
	if n == 0 && err == nil {
		return 0, ErrConnectionClosed
	}
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, ErrConnectionClosed
	}
	return n, err
}

// Peek returns the next n bytes without consuming them, pulling more off the
// wire as needed and buffering them for the subsequent Read(s).
func (s *Stream) Peek(n int) ([]byte, error) {
	for len(s.peek) < n {
		chunk := make([]byte, n-len(s.peek))
		read, err := s.rawRead(chunk)
		if read > 0 {
			s.peek = append(s.peek, chunk[:read]...)
		}
		if read == 0 && err == nil {
			return nil, ErrConnectionClosed
		}
		if err != nil {
			if len(s.peek) >= n {
				break
			}
			if errors.Is(err, io.EOF) {
				return nil, ErrConnectionClosed
			}
			return nil, err
		}
	}
	out := make([]byte, n)
	copy(out, s.peek[:n])
	return out, nil
}

// PeekUntil grows the look-ahead buffer (one underlying Read at a time, the
// Go analogue of a single MSG_PEEK syscall returning whatever the kernel
// already has buffered) until done reports true or max bytes have been
// buffered, whichever comes first. Used by the handshake reader, which does
// not know in advance how long the HTTP request will be.
func (s *Stream) PeekUntil(max int, done func([]byte) bool) ([]byte, error) {
	for !done(s.peek) && len(s.peek) < max {
		chunk := make([]byte, max-len(s.peek))
		n, err := s.rawRead(chunk)
		if n > 0 {
			s.peek = append(s.peek, chunk[:n]...)
		}
		if n == 0 && err == nil {
			return nil, ErrConnectionClosed
		}
		if err != nil {
			if done(s.peek) {
				break
			}
			if errors.Is(err, io.EOF) {
				return nil, ErrConnectionClosed
			}
			return nil, err
		}
	}
	out := make([]byte, len(s.peek))
	copy(out, s.peek)
	return out, nil
}

// Discard drops n already-peeked bytes, consuming them without copying them
// out, used once a handshake has parsed exactly as many bytes as it peeked.
func (s *Stream) Discard(n int) {
	if n > len(s.peek) {
		n = len(s.peek)
	}
	s.peek = s.peek[n:]
}

// Write writes p in its entirety, retrying on partial writes until the full
// buffer is flushed or an error other than zero-progress occurs.
func (s *Stream) Write(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := s.rawWrite(p[total:])
		if n == 0 && err == nil {
			return total, ErrConnectionClosed
		}
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Shutdown half-closes the connection when the underlying type supports it;
// plain net.Conn implementations without CloseRead/CloseWrite fall back to a
// full Close on ShutdownBoth and are a no-op for a single direction.
func (s *Stream) Shutdown(how ShutdownHow) error {
	hc, ok := s.conn.(halfCloser)
	if !ok {
		if how == ShutdownBoth {
			return s.conn.Close()
		}
		return nil
	}
	switch how {
	case ShutdownRead:
		return hc.CloseRead()
	case ShutdownWrite:
		return hc.CloseWrite()
	default:
		if err := hc.CloseWrite(); err != nil {
			return err
		}
		return hc.CloseRead()
	}
}

// Close closes the underlying connection.
func (s *Stream) Close() error {
	return s.conn.Close()
}

// DrainUntilClosed reads and discards until the peer closes or an error
// occurs, used by the close handshake to consume trailing input after our
// own write half has shut down.
func DrainUntilClosed(s *Stream) {
	buf := make([]byte, 1024)
	for {
		_, err := s.Read(buf)
		if err != nil {
			return
		}
	}
}

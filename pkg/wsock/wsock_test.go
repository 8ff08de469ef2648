package wsock

import (
	"math/rand"
	"net"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/duskfort/skirmish/pkg/stream"
	"github.com/stretchr/testify/require"
)

func TestHandshakeAcceptTokenDeterministic(t *testing.T) {
	require.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", ComputeAccept("dGhlIHNhbXBsZSBub25jZQ=="))
}

func TestMaskInvolution(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		payload := make([]byte, r.Intn(2000))
		r.Read(payload)
		var mask [4]byte
		r.Read(mask[:])

		masked := make([]byte, len(payload))
		for i, b := range payload {
			masked[i] = b ^ mask[i%4]
		}
		unmasked := make([]byte, len(masked))
		for i, b := range masked {
			unmasked[i] = b ^ mask[i%4]
		}
		require.Equal(t, payload, unmasked)
	}
}

func TestUTF8ValidatorParity(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want bool
	}{
		{"ascii", []byte("hello"), true},
		{"two-byte", []byte("caf\xc3\xa9"), true},
		{"three-byte", []byte("\xe4\xb8\xad"), true},
		{"four-byte", []byte("\xf0\x9f\x98\x80"), true},
		{"overlong two-byte", []byte{0xC0, 0x80}, false},
		{"overlong three-byte", []byte{0xE0, 0x80, 0x80}, false},
		{"surrogate", []byte{0xED, 0xA0, 0x80}, false},
		{"over max codepoint", []byte{0xF4, 0x90, 0x80, 0x80}, false},
		{"bad continuation", []byte{0xC2, 0x20}, false},
		{"lone continuation byte", []byte{0x80}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, short := validateUTF8(tc.data)
			require.Equal(t, tc.want, ok && !short, "ok=%v short=%v", ok, short)
			require.Equal(t, utf8.Valid(tc.data), ok && !short)
		})
	}
}

func TestUTF8ValidatorToleratesShortTailAcrossFrames(t *testing.T) {
	full := []byte("caf\xc3\xa9")
	ok, short := validateUTF8(full[:len(full)-1])
	require.True(t, ok)
	require.True(t, short)

	ok, short = validateUTF8(full)
	require.True(t, ok)
	require.False(t, short)
}

func TestFrameRoundTripBinaryMessage(t *testing.T) {
	for _, size := range []int{0, 1, 1023, 1024, 1025, 4096} {
		payload := make([]byte, size)
		r := rand.New(rand.NewSource(int64(size) + 1))
		r.Read(payload)

		server, client := net.Pipe()
		defer server.Close()
		defer client.Close()

		serverConn := NewServerConn(stream.New(server))
		clientConn := NewClientConn(stream.New(client))

		done := make(chan error, 1)
		go func() {
			done <- serverConn.SendMessage(MessageBinary, payload)
		}()

		kind, got, err := clientConn.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, MessageBinary, kind)
		require.Equal(t, payload, got)
		require.NoError(t, <-done)
	}
}

func TestPingIsAnsweredWithPong(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	serverConn := NewServerConn(stream.New(server))
	clientConn := NewClientConn(stream.New(client))

	pingPayload := []byte("ping-data")
	go func() {
		_ = writeFrame(clientConn.s, true, OpPing, pingPayload, true, randomMaskKey)
	}()

	done := make(chan struct{})
	var readErr error
	var kind MessageKind
	var payload []byte
	go func() {
		kind, payload, readErr = serverConn.ReadMessage()
		close(done)
	}()

	// the server echoes the ping as a PONG before it goes on reading; read
	// that PONG, then send a real message to unblock ReadMessage's loop.
	hdr, err := readFrameHeader(clientConn.s)
	require.NoError(t, err)
	require.Equal(t, OpPong, hdr.opcode)
	pong, err := readFramePayload(clientConn.s, hdr)
	require.NoError(t, err)
	require.Equal(t, pingPayload, pong)
	require.NoError(t, clientConn.SendMessage(MessageBinary, []byte("hi")))

	select {
	case <-done:
		require.NoError(t, readErr)
		require.Equal(t, MessageBinary, kind)
		require.Equal(t, []byte("hi"), payload)
	case <-time.After(time.Second):
		t.Fatal("ReadMessage never returned")
	}
}

func TestCloseFrameYieldsCloseSent(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	serverConn := NewServerConn(stream.New(server))
	clientConn := NewClientConn(stream.New(client))

	go func() {
		_ = writeFrame(clientConn.s, true, OpClose, nil, true, randomMaskKey)
	}()

	_, _, err := serverConn.ReadMessage()
	require.ErrorIs(t, err, ErrCloseSent)
}

package wsock

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/duskfort/skirmish/pkg/stream"
)

// magicGUID is fixed by RFC 6455.
const magicGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// clientHandshakeKey is the canned nonce the client side sends; it only
// exists to exercise ClientHandshake, which this server never calls in
// production but keeps for protocol-engine completeness and testing.
const clientHandshakeKey = "dGhlIHNhbXBsZSBub25jZQ=="

// ComputeAccept computes the Sec-WebSocket-Accept token for a given
// Sec-WebSocket-Key: base64(SHA-1(key ++ magicGUID)).
func ComputeAccept(key string) string {
	h := sha1.Sum([]byte(key + magicGUID))
	return base64.StdEncoding.EncodeToString(h[:])
}

func headerEndIndex(buf []byte) int {
	return strings.Index(string(buf), "\r\n\r\n")
}

func hasHeaderEnd(buf []byte) bool {
	return headerEndIndex(buf) >= 0
}

// parseHeaderLines splits a raw HTTP request/response into its header lines,
// skipping the request/status line. Duplicate keys are not checked here;
// findHeaderValue reports how many times a key occurs.
func parseHeaderLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")
	if len(lines) > 0 {
		lines = lines[1:] // drop request/status line
	}
	return lines
}

func findHeaderValue(lines []string, key string) (value string, count int) {
	for _, line := range lines {
		if line == "" {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		k := line[:idx]
		if k != key {
			continue
		}
		count++
		value = strings.TrimSpace(line[idx+1:])
	}
	return value, count
}

// ServerHandshake performs the RFC 6455 server-side handshake over s: peek
// the HTTP request, locate and validate Sec-WebSocket-Key, consume exactly
// the peeked request bytes, and write back the fixed 101 response.
func ServerHandshake(s *stream.Stream) error {
	const maxHandshake = 1024
	buf, err := s.PeekUntil(maxHandshake, hasHeaderEnd)
	if err != nil {
		return err
	}
	end := headerEndIndex(buf)
	if end < 0 {
		return ErrHandshakeNoKey
	}
	requestLen := end + 4
	request := string(buf[:requestLen])

	lines := parseHeaderLines(request)
	key, count := findHeaderValue(lines, "Sec-WebSocket-Key")
	if count > 1 {
		return ErrHandshakeDupKey
	}
	if count == 0 || key == "" {
		return ErrHandshakeNoKey
	}

	s.Discard(requestLen)

	accept := ComputeAccept(key)
	response := fmt.Sprintf(
		"HTTP/1.1 101 Switching Protocols\r\nUpgrade: websocket\r\nConnection: Upgrade\r\nSec-WebSocket-Accept: %s\r\n\r\n",
		accept,
	)
	_, err = s.Write([]byte(response))
	return err
}

// ClientHandshake performs the RFC 6455 client-side handshake: send a canned
// upgrade request and verify the server's accept token matches the one
// derived from the hardcoded nonce. Not used by the server's own connection
// path; kept because the engine itself is a two-sided protocol component.
func ClientHandshake(s *stream.Stream, host, endpoint string) error {
	request := fmt.Sprintf(
		"GET %s HTTP/1.1\r\nHost: %s\r\nUpgrade: websocket\r\nConnection: Upgrade\r\nSec-WebSocket-Key: %s\r\nSec-WebSocket-Version: 13\r\n\r\n",
		endpoint, host, clientHandshakeKey,
	)
	if _, err := s.Write([]byte(request)); err != nil {
		return err
	}

	buf, err := s.PeekUntil(1024, hasHeaderEnd)
	if err != nil {
		return err
	}
	end := headerEndIndex(buf)
	if end < 0 {
		return ErrHandshakeNoAccept
	}
	responseLen := end + 4
	s.Discard(responseLen)

	lines := parseHeaderLines(string(buf[:responseLen]))
	accept, count := findHeaderValue(lines, "Sec-WebSocket-Accept")
	if count > 1 {
		return ErrHandshakeDupAccept
	}
	if count == 0 {
		return ErrHandshakeNoAccept
	}
	if accept != ComputeAccept(clientHandshakeKey) {
		return ErrHandshakeBadAccept
	}
	return nil
}

package wsock

import (
	"encoding/binary"
	"errors"

	"github.com/duskfort/skirmish/pkg/stream"
)

// Opcode is the 4-bit frame opcode.
type Opcode byte

const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

func (op Opcode) isControl() bool { return op >= 0x8 && op <= 0xF }

const chunkSize = 1024

type frameHeader struct {
	fin     bool
	opcode  Opcode
	masked  bool
	length  uint64
	maskKey [4]byte
}

func readFrameHeader(s *stream.Stream) (frameHeader, error) {
	var prefix [2]byte
	if err := readFull(s, prefix[:]); err != nil {
		return frameHeader{}, err
	}

	hdr := frameHeader{
		fin:    prefix[0]&0x80 != 0,
		opcode: Opcode(prefix[0] & 0x0F),
		masked: prefix[1]&0x80 != 0,
	}
	rsv := prefix[0] & 0x70
	length7 := prefix[1] & 0x7F

	if rsv != 0 {
		return frameHeader{}, ErrReservedBits
	}

	switch {
	case length7 == 126:
		var ext [2]byte
		if err := readFull(s, ext[:]); err != nil {
			return frameHeader{}, err
		}
		hdr.length = uint64(binary.BigEndian.Uint16(ext[:]))
	case length7 == 127:
		var ext [8]byte
		if err := readFull(s, ext[:]); err != nil {
			return frameHeader{}, err
		}
		hdr.length = binary.BigEndian.Uint64(ext[:])
	default:
		hdr.length = uint64(length7)
	}

	if hdr.opcode.isControl() && (hdr.length > 125 || !hdr.fin) {
		return frameHeader{}, ErrControlTooBig
	}

	if hdr.masked {
		if err := readFull(s, hdr.maskKey[:]); err != nil {
			return frameHeader{}, err
		}
	}

	return hdr, nil
}

// readFull translates the stream's own closed-connection sentinel into this
// engine's ErrConnectionClosed at the boundary, so callers above this package
// only ever see wsock errors.
func readFull(s *stream.Stream, buf []byte) error {
	for total := 0; total < len(buf); {
		n, err := s.Read(buf[total:])
		total += n
		if err != nil {
			if errors.Is(err, stream.ErrConnectionClosed) {
				return ErrConnectionClosed
			}
			return err
		}
	}
	return nil
}

// readFramePayload reads hdr.length bytes in chunkSize slabs, unmasking in
// place with the mask cycled mod 4 over the whole frame (not restarted per
// chunk).
func readFramePayload(s *stream.Stream, hdr frameHeader) ([]byte, error) {
	payload := make([]byte, hdr.length)
	for off := uint64(0); off < hdr.length; {
		end := off + chunkSize
		if end > hdr.length {
			end = hdr.length
		}
		if err := readFull(s, payload[off:end]); err != nil {
			return nil, err
		}
		if hdr.masked {
			for i := off; i < end; i++ {
				payload[i] ^= hdr.maskKey[i%4]
			}
		}
		off = end
	}
	return payload, nil
}

func lengthPrefix(n uint64) []byte {
	switch {
	case n <= 125:
		return []byte{byte(n)}
	case n <= 0xFFFF:
		out := make([]byte, 3)
		out[0] = 126
		binary.BigEndian.PutUint16(out[1:], uint16(n))
		return out
	default:
		out := make([]byte, 9)
		out[0] = 127
		binary.BigEndian.PutUint64(out[1:], n)
		return out
	}
}

// writeFrame sends a single frame. masked selects client-side masking of the
// payload with a fresh random key; the server side of this engine always
// sends unmasked frames (masked=false).
func writeFrame(s *stream.Stream, fin bool, opcode Opcode, payload []byte, masked bool, randMask func() [4]byte) error {
	first := byte(opcode)
	if fin {
		first |= 0x80
	}
	lenBytes := lengthPrefix(uint64(len(payload)))
	if masked {
		lenBytes[0] |= 0x80
	}

	out := make([]byte, 0, 1+len(lenBytes)+4+len(payload))
	out = append(out, first)
	out = append(out, lenBytes...)

	if masked {
		mask := randMask()
		out = append(out, mask[:]...)
		maskedPayload := make([]byte, len(payload))
		for i, b := range payload {
			maskedPayload[i] = b ^ mask[i%4]
		}
		out = append(out, maskedPayload...)
	} else {
		out = append(out, payload...)
	}

	_, err := s.Write(out)
	if errors.Is(err, stream.ErrConnectionClosed) {
		return ErrConnectionClosed
	}
	return err
}

// sendMessage fragments payload into chunkSize-byte frames, the first
// carrying kind as its opcode and subsequent frames carrying Continuation;
// the final frame has fin set.
func sendMessage(s *stream.Stream, kind Opcode, payload []byte, masked bool, randMask func() [4]byte) error {
	if len(payload) == 0 {
		return writeFrame(s, true, kind, nil, masked, randMask)
	}
	for off := 0; off < len(payload); off += chunkSize {
		end := off + chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		opcode := OpContinuation
		if off == 0 {
			opcode = kind
		}
		fin := end == len(payload)
		if err := writeFrame(s, fin, opcode, payload[off:end], masked, randMask); err != nil {
			return err
		}
	}
	return nil
}

package proto

import (
	"encoding/binary"
	"errors"
)

// Errors mirroring common.c's batch_message_verify / batch_message_verify_empty.
var (
	ErrTruncated     = errors.New("proto: envelope shorter than its header or payload not a whole number of records")
	ErrLengthMismatch = errors.New("proto: byte_length does not match the received envelope size")
	ErrKindMismatch  = errors.New("proto: kind byte does not match the expected message kind")
	ErrWrongCount    = errors.New("proto: envelope does not contain exactly one record")
)

// verify checks a received envelope against the expected kind and per-item
// size, returning the payload slice and the number of items it holds.
// itemSize==0 means "no per-item records" (AMMA_THROWING): the payload must
// be empty, matching batch_message_verify_empty.
func verify(kind Kind, envelope []byte, itemSize int) (payload []byte, count int, err error) {
	if len(envelope) < headerSize {
		return nil, 0, ErrTruncated
	}
	length := binary.LittleEndian.Uint32(envelope[0:4])
	if int(length) != len(envelope) {
		return nil, 0, ErrLengthMismatch
	}
	if Kind(envelope[4]) != kind {
		return nil, 0, ErrKindMismatch
	}
	payload = envelope[headerSize:]
	if itemSize == 0 {
		if len(payload) != 0 {
			return nil, 0, ErrTruncated
		}
		return payload, 0, nil
	}
	if len(payload)%itemSize != 0 {
		return nil, 0, ErrTruncated
	}
	return payload, len(payload) / itemSize, nil
}

func verifyEmpty(kind Kind, envelope []byte) error {
	_, _, err := verify(kind, envelope, 0)
	return err
}

// PeekKind reads the kind byte without fully verifying the envelope, used
// by the dispatcher to route to the right Decode function.
func PeekKind(envelope []byte) (Kind, bool) {
	if len(envelope) < headerSize {
		return 0, false
	}
	return Kind(envelope[4]), true
}

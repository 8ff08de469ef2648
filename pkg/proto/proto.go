// Package proto implements the binary wire protocol: fixed-layout,
// little-endian, unpadded messages wrapped in a {u32 byte_length, u8 kind,
// payload} envelope.
package proto

import (
	"bytes"
	"encoding/binary"
)

// Kind is the one-byte message-kind discriminant.
type Kind uint8

const (
	KindHello         Kind = 0
	KindPlayerJoined  Kind = 1
	KindPlayerLeft    Kind = 2
	KindPlayerMoving  Kind = 3
	KindAmmaMoving    Kind = 4
	KindAmmaThrowing  Kind = 5
	KindPing          Kind = 6
	KindPong          Kind = 7
	KindItemSpawned   Kind = 8
	KindItemCollected Kind = 9
	KindBombSpawned   Kind = 10
	KindBombExploded  Kind = 11
)

// headerSize is sizeof(u32 byte_length) + sizeof(u8 kind).
const headerSize = 5

// Per-item payload sizes, packed without padding.
const (
	helloItemSize         = 4 + 4 + 4 + 4 + 1      // id, x, y, dir, hue
	playerSnapshotSize    = 4 + 4 + 4 + 4 + 1 + 1   // id, x, y, dir, hue, moving
	playerLeftItemSize    = 4                       // id
	ammaMovingItemSize    = 1 + 1                   // direction, start
	pingPongItemSize      = 4                       // timestamp
	itemSpawnedItemSize   = 1 + 4 + 4 + 4           // kind, index, x, y
	itemCollectedItemSize = 4                       // index
	bombSpawnedItemSize   = 4 + 4*3 + 4*3 + 4       // index, xyz, dxdydz, lifetime
	bombExplodedItemSize  = 4 + 4*3                 // index, xyz
)

func buildEnvelope(kind Kind, payload []byte) []byte {
	total := headerSize + len(payload)
	out := make([]byte, total)
	binary.LittleEndian.PutUint32(out[0:4], uint32(total))
	out[4] = byte(kind)
	copy(out[headerSize:], payload)
	return out
}

func le(w *bytes.Buffer, v any) {
	_ = binary.Write(w, binary.LittleEndian, v)
}

// HelloMsg is the single-record welcome sent to a freshly joined player.
type HelloMsg struct {
	ID  uint32
	X   float32
	Y   float32
	Dir float32
	Hue uint8
}

func EncodeHello(m HelloMsg) []byte {
	var buf bytes.Buffer
	le(&buf, m.ID)
	le(&buf, m.X)
	le(&buf, m.Y)
	le(&buf, m.Dir)
	le(&buf, m.Hue)
	return buildEnvelope(KindHello, buf.Bytes())
}

// PlayerSnapshot is the per-player record shared by PLAYER_JOINED and
// PLAYER_MOVING batches.
type PlayerSnapshot struct {
	ID     uint32
	X      float32
	Y      float32
	Dir    float32
	Hue    uint8
	Moving uint8
}

func encodeSnapshots(kind Kind, list []PlayerSnapshot) []byte {
	var buf bytes.Buffer
	for _, p := range list {
		le(&buf, p.ID)
		le(&buf, p.X)
		le(&buf, p.Y)
		le(&buf, p.Dir)
		le(&buf, p.Hue)
		le(&buf, p.Moving)
	}
	return buildEnvelope(kind, buf.Bytes())
}

func EncodePlayerJoined(list []PlayerSnapshot) []byte { return encodeSnapshots(KindPlayerJoined, list) }
func EncodePlayerMoving(list []PlayerSnapshot) []byte { return encodeSnapshots(KindPlayerMoving, list) }

func EncodePlayerLeft(ids []uint32) []byte {
	var buf bytes.Buffer
	for _, id := range ids {
		le(&buf, id)
	}
	return buildEnvelope(KindPlayerLeft, buf.Bytes())
}

// AmmaMoving is the inbound move-intent toggle.
type AmmaMoving struct {
	Direction uint8 // 0..3
	Start     uint8 // 0 or 1
}

func DecodeAmmaMoving(envelope []byte) (AmmaMoving, error) {
	payload, count, err := verify(KindAmmaMoving, envelope, ammaMovingItemSize)
	if err != nil {
		return AmmaMoving{}, err
	}
	if count != 1 {
		return AmmaMoving{}, ErrWrongCount
	}
	return AmmaMoving{Direction: payload[0], Start: payload[1]}, nil
}

func EncodeAmmaMoving(m AmmaMoving) []byte {
	return buildEnvelope(KindAmmaMoving, []byte{m.Direction, m.Start})
}

func DecodeAmmaThrowing(envelope []byte) error {
	return verifyEmpty(KindAmmaThrowing, envelope)
}

func EncodeAmmaThrowing() []byte {
	return buildEnvelope(KindAmmaThrowing, nil)
}

// PingPong carries a client-chosen timestamp echoed back verbatim.
type PingPong struct {
	Timestamp uint32
}

func DecodePing(envelope []byte) (PingPong, error) {
	payload, count, err := verify(KindPing, envelope, pingPongItemSize)
	if err != nil {
		return PingPong{}, err
	}
	if count != 1 {
		return PingPong{}, ErrWrongCount
	}
	return PingPong{Timestamp: binary.LittleEndian.Uint32(payload)}, nil
}

func EncodePong(ts uint32) []byte {
	var buf bytes.Buffer
	le(&buf, ts)
	return buildEnvelope(KindPong, buf.Bytes())
}

// ItemSpawn is one record of an ITEM_SPAWNED batch.
type ItemSpawn struct {
	Kind  uint8 // 0=KEY, 1=BOMB
	Index uint32
	X     float32
	Y     float32
}

func EncodeItemSpawned(list []ItemSpawn) []byte {
	var buf bytes.Buffer
	for _, it := range list {
		le(&buf, it.Kind)
		le(&buf, it.Index)
		le(&buf, it.X)
		le(&buf, it.Y)
	}
	return buildEnvelope(KindItemSpawned, buf.Bytes())
}

func EncodeItemCollected(indices []uint32) []byte {
	var buf bytes.Buffer
	for _, idx := range indices {
		le(&buf, idx)
	}
	return buildEnvelope(KindItemCollected, buf.Bytes())
}

// BombSpawn is one record of a BOMB_SPAWNED batch.
type BombSpawn struct {
	Index    uint32
	X, Y, Z  float32
	Dx, Dy, Dz float32
	Lifetime float32
}

func EncodeBombSpawned(list []BombSpawn) []byte {
	var buf bytes.Buffer
	for _, b := range list {
		le(&buf, b.Index)
		le(&buf, b.X)
		le(&buf, b.Y)
		le(&buf, b.Z)
		le(&buf, b.Dx)
		le(&buf, b.Dy)
		le(&buf, b.Dz)
		le(&buf, b.Lifetime)
	}
	return buildEnvelope(KindBombSpawned, buf.Bytes())
}

// BombExplosion is one record of a BOMB_EXPLODED batch.
type BombExplosion struct {
	Index   uint32
	X, Y, Z float32
}

func EncodeBombExploded(list []BombExplosion) []byte {
	var buf bytes.Buffer
	for _, b := range list {
		le(&buf, b.Index)
		le(&buf, b.X)
		le(&buf, b.Y)
		le(&buf, b.Z)
	}
	return buildEnvelope(KindBombExploded, buf.Bytes())
}

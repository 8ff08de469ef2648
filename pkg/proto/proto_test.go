package proto

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyBatchByteLengthIsHeaderExactly(t *testing.T) {
	env := EncodePlayerLeft(nil)
	require.Len(t, env, headerSize)
	require.NoError(t, verifyEmptyHelper(t, KindPlayerLeft, env, playerLeftItemSize))
}

func verifyEmptyHelper(t *testing.T, kind Kind, env []byte, itemSize int) error {
	t.Helper()
	_, count, err := verify(kind, env, itemSize)
	require.Equal(t, 0, count)
	return err
}

func TestAmmaMovingRoundTrip(t *testing.T) {
	env := EncodeAmmaMoving(AmmaMoving{Direction: 2, Start: 1})
	got, err := DecodeAmmaMoving(env)
	require.NoError(t, err)
	require.Equal(t, AmmaMoving{Direction: 2, Start: 1}, got)
}

func TestAmmaThrowingMustBeEmpty(t *testing.T) {
	env := EncodeAmmaThrowing()
	require.Len(t, env, headerSize)
	require.NoError(t, DecodeAmmaThrowing(env))
}

func TestPongEnvelopeHoldsOneTimestamp(t *testing.T) {
	env := EncodePong(12345)
	_, count, err := verify(KindPong, env, pingPongItemSize)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestVerifyRejectsTruncatedEnvelope(t *testing.T) {
	env := EncodeAmmaMoving(AmmaMoving{Direction: 1, Start: 1})
	truncated := env[:len(env)-1]
	_, _, err := verify(KindAmmaMoving, truncated, ammaMovingItemSize)
	require.Error(t, err)
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	env := EncodeAmmaMoving(AmmaMoving{Direction: 1, Start: 1})
	_, _, err := verify(KindAmmaThrowing, env, ammaMovingItemSize)
	require.ErrorIs(t, err, ErrKindMismatch)
}

func TestVerifyRejectsMisalignedPayload(t *testing.T) {
	env := EncodePlayerJoined([]PlayerSnapshot{{ID: 1}})
	misaligned := append(env, 0x00) // one extra byte breaks the modulo check
	// must also fix up byte_length to keep the length-mismatch check from
	// masking the modulo check under test.
	binary.LittleEndian.PutUint32(misaligned[0:4], uint32(len(misaligned)))
	_, _, err := verify(KindPlayerJoined, misaligned, playerSnapshotSize)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestPlayerJoinedBatchRoundTripShape(t *testing.T) {
	list := []PlayerSnapshot{
		{ID: 1, X: 1.5, Y: 2.5, Dir: 0, Hue: 10, Moving: 0b0001},
		{ID: 2, X: 3, Y: 4, Dir: 1.5, Hue: 20, Moving: 0},
	}
	env := EncodePlayerJoined(list)
	payload, count, err := verify(KindPlayerJoined, env, playerSnapshotSize)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Len(t, payload, 2*playerSnapshotSize)
}

func TestItemSpawnedBatchShape(t *testing.T) {
	list := []ItemSpawn{
		{Kind: 1, Index: 0, X: 1.5, Y: 3.5},
		{Kind: 0, Index: 1, X: 2.5, Y: 1.5},
	}
	env := EncodeItemSpawned(list)
	_, count, err := verify(KindItemSpawned, env, itemSpawnedItemSize)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestBombSpawnedAndExplodedShapes(t *testing.T) {
	spawned := EncodeBombSpawned([]BombSpawn{{Index: 0, X: 1, Y: 1, Z: 0.6, Dx: 1, Dy: 0, Dz: 0.5, Lifetime: 2}})
	_, count, err := verify(KindBombSpawned, spawned, bombSpawnedItemSize)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	exploded := EncodeBombExploded([]BombExplosion{{Index: 0, X: 1, Y: 1, Z: 0}})
	_, count, err = verify(KindBombExploded, exploded, bombExplodedItemSize)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestHelloIsSingleRecord(t *testing.T) {
	env := EncodeHello(HelloMsg{ID: 7, X: 0, Y: 0, Dir: 0, Hue: 3})
	require.Equal(t, headerSize+helloItemSize, len(env))
}

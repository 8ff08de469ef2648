package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntegrateMovesForwardAlongFacingDirection(t *testing.T) {
	scene := DefaultScene()
	b := &Body{X: 0, Y: 0, Dir: 0}
	for i := 0; i < 60; i++ {
		Integrate(b, MoveForward, 1.0/60.0, scene)
	}
	require.InDelta(t, 2.0, b.X, 0.05)
	require.InDelta(t, 0.0, b.Y, 0.05)
}

func TestIntegrateTranslatesAlongPreRotationHeadingOnATurningTick(t *testing.T) {
	scene := NewScene([SceneWidth][SceneHeight]bool{}) // open scene, no walls
	b := &Body{X: 3.5, Y: 3.5, Dir: 0}
	dt := float32(1.0 / 60.0)

	Integrate(b, MoveForward|MoveTurnRight, dt, scene)

	wantDir := float32(math.Pi * float64(dt))
	wantX := float32(3.5) + PlayerSpeed*dt // cos(0)=1 at the pre-rotation heading
	wantY := float32(3.5)                  // sin(0)=0 at the pre-rotation heading

	require.InDelta(t, wantDir, b.Dir, 1e-5)
	require.InDelta(t, wantX, b.X, 1e-5)
	require.InDelta(t, wantY, b.Y, 1e-5)
}

func TestIntegrateNeverLeavesPlayerOverlappingASolidTile(t *testing.T) {
	scene := DefaultScene()
	b := &Body{X: 2.5, Y: 2.5, Dir: 0}
	for i := 0; i < 600; i++ {
		Integrate(b, MoveForward|MoveTurnRight, 1.0/60.0, scene)
		half := float32(PlayerSize) / 2
		for _, c := range [][2]float32{
			{b.X - half, b.Y - half}, {b.X + half, b.Y - half},
			{b.X - half, b.Y + half}, {b.X + half, b.Y + half},
		} {
			require.False(t, scene.IsSolid(int(c[0]), int(c[1])))
		}
	}
}

func TestCollectAtMarksItemDeadExactlyOnce(t *testing.T) {
	items := DefaultItems()
	collected := CollectAt(items, 2.5, 1.5)
	require.Equal(t, []int{1}, collected)
	require.False(t, items[1].Alive)

	collected = CollectAt(items, 2.5, 1.5)
	require.Empty(t, collected)
}

func TestBombThrowAndExplodeConservesSlotCount(t *testing.T) {
	scene := NewScene([SceneWidth][SceneHeight]bool{}) // open scene, no walls
	var pool Pool

	idx, ok := pool.Throw(3, 3, 0)
	require.True(t, ok)
	require.Equal(t, 0, idx)

	dt := float32(1.0 / 60.0)
	ticks := int(BombLifetime/dt) + 5
	explodedTotal := 0
	for i := 0; i < ticks; i++ {
		explodedTotal += len(pool.Tick(dt, scene))
	}
	require.Equal(t, 1, explodedTotal)
	require.True(t, pool.Slot(idx).Lifetime <= 0)
}

func TestBombPoolExhaustion(t *testing.T) {
	var pool Pool
	for i := 0; i < BombPoolSize; i++ {
		_, ok := pool.Throw(0, 0, 0)
		require.True(t, ok)
	}
	_, ok := pool.Throw(0, 0, 0)
	require.False(t, ok)
}

// Package sim implements the authoritative world simulation: the static
// scene and item table, the bomb pool, and the per-tick physics integration
// (player movement + collision, item pickup, bomb ballistics). Grounded on
// the teacher's pkg/server/entity.go tick/physics shape (time.NewTicker-
// driven tickEntityPhysics, AABB-vs-tile collision) and on
// _examples/original_source/src/client.c for the bomb gravity/damping/bounce
// constants and shape. The teacher's own pkg/world (procedural voxel terrain
// generation) has no counterpart here: this spec's scene and item layout are
// constant inputs, not generated, so that package's content is replaced
// entirely rather than reused.
package sim

import "math"

const (
	PlayerSize          = 0.5
	PlayerSpeed         = 2.0
	PlayerRadius        = 0.5
	BombLifetime        = 2.0
	BombThrowVelocity   = 5.0
	BombGravity         = 10.0
	BombDamp            = 0.8
	BombScale           = 0.25 // floor height
	SceneWidth          = 7
	SceneHeight         = 7
	BombPoolSize        = 20
)

// Scene is a 7x7 boolean grid of solid tiles. It is never mutated after
// construction.
type Scene struct {
	walls [SceneWidth][SceneHeight]bool
}

// NewScene builds a Scene from a solid-tile grid indexed [x][y], the same
// order IsSolid uses; cells outside 0..6 are open.
func NewScene(solid [SceneWidth][SceneHeight]bool) *Scene {
	return &Scene{walls: solid}
}

// DefaultScene is the built-in constant scene the game server uses: a small
// interior obstruction away from the spawn point and the item corridor
// described in the reference scenarios.
func DefaultScene() *Scene {
	s := &Scene{}
	for _, t := range [][2]int{{3, 3}, {3, 4}, {4, 3}, {2, 5}, {5, 2}, {6, 6}, {0, 6}} {
		s.walls[t[0]][t[1]] = true
	}
	return s
}

// IsSolid reports whether tile (ix, iy) is a wall. Tiles outside the grid
// are treated as open space, not solid, so geometry near the origin is not
// implicitly boxed in by the grid's edges.
func (s *Scene) IsSolid(ix, iy int) bool {
	if ix < 0 || ix >= SceneWidth || iy < 0 || iy >= SceneHeight {
		return false
	}
	return s.walls[ix][iy]
}

// FitsAt reports whether an axis-aligned PlayerSize box centered at (x, y)
// overlaps no solid tile, by floor-testing all four corners.
func (s *Scene) FitsAt(x, y float32) bool {
	half := float32(PlayerSize) / 2
	corners := [4][2]float32{
		{x - half, y - half},
		{x + half, y - half},
		{x - half, y + half},
		{x + half, y + half},
	}
	for _, c := range corners {
		ix := int(math.Floor(float64(c[0])))
		iy := int(math.Floor(float64(c[1])))
		if s.IsSolid(ix, iy) {
			return false
		}
	}
	return true
}

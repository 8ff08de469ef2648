package sim

import "math"

// Bomb is one slot of the fixed-capacity pool. A slot is free iff
// Lifetime <= 0.
type Bomb struct {
	X, Y, Z    float32
	Vx, Vy, Vz float32
	Lifetime   float32
}

func (b *Bomb) free() bool { return b.Lifetime <= 0 }

// Pool is the fixed 20-slot bomb pool.
type Pool struct {
	slots [BombPoolSize]Bomb
}

// Slot returns a read-only view of slot i (0..19).
func (p *Pool) Slot(i int) Bomb { return p.slots[i] }

// Throw seeds the first free slot with a fresh bomb thrown from (x, y) along
// dir, returning its index. ok is false if the pool is full.
func (p *Pool) Throw(x, y, dir float32) (index int, ok bool) {
	for i := range p.slots {
		if p.slots[i].free() {
			p.slots[i] = Bomb{
				X: x, Y: y, Z: 0.6,
				Vx: float32(math.Cos(float64(dir))) * BombThrowVelocity,
				Vy: float32(math.Sin(float64(dir))) * BombThrowVelocity,
				Vz: 0.5 * BombThrowVelocity,
				Lifetime: BombLifetime,
			}
			return i, true
		}
	}
	return 0, false
}

// Tick advances every active slot by dt seconds, bouncing off walls and the
// floor/ceiling with damping, and returns the indices of slots whose
// lifetime crossed zero this tick (each becoming free again).
func (p *Pool) Tick(dt float32, scene *Scene) []int {
	var exploded []int
	for i := range p.slots {
		b := &p.slots[i]
		if b.free() {
			continue
		}

		b.Lifetime -= dt
		b.Vz -= BombGravity * dt

		newX := b.X + b.Vx*dt
		newY := b.Y + b.Vy*dt
		targetSolid := scene.IsSolid(int(math.Floor(float64(newX))), int(math.Floor(float64(newY))))
		if targetSolid {
			if int(math.Floor(float64(b.X))) != int(math.Floor(float64(newX))) {
				b.Vx = -b.Vx
			}
			if int(math.Floor(float64(b.Y))) != int(math.Floor(float64(newY))) {
				b.Vy = -b.Vy
			}
			b.Vx *= BombDamp
			b.Vy *= BombDamp
		} else {
			b.X, b.Y = newX, newY
		}

		newZ := b.Z + b.Vz*dt
		if newZ < BombScale || newZ > 1 {
			b.Vz = -b.Vz * BombDamp
			b.Vx *= BombDamp
			b.Vy *= BombDamp
		} else {
			b.Z = newZ
		}

		if b.Lifetime <= 0 {
			// Lifetime<=0 alone marks the slot free again; position is left
			// intact so the caller can read final (x,y,z) for the
			// BOMB_EXPLODED broadcast before the slot is reused.
			exploded = append(exploded, i)
		}
	}
	return exploded
}

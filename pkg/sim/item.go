package sim

import "math"

// ItemKind discriminates the two static pickup types.
type ItemKind uint8

const (
	ItemKey  ItemKind = 0
	ItemBomb ItemKind = 1
)

// Item is a single static-table entry. Collection flips Alive to false;
// the table itself never shrinks or grows within a session.
type Item struct {
	Kind  ItemKind
	X, Y  float32
	Alive bool
}

// DefaultItems is the starting item layout from the reference scenarios: a
// bomb pickup and five keys laid out along a short corridor.
func DefaultItems() []Item {
	return []Item{
		{Kind: ItemBomb, X: 1.5, Y: 3.5, Alive: true},
		{Kind: ItemKey, X: 2.5, Y: 1.5, Alive: true},
		{Kind: ItemKey, X: 3.0, Y: 1.5, Alive: true},
		{Kind: ItemKey, X: 3.5, Y: 1.5, Alive: true},
		{Kind: ItemKey, X: 4.0, Y: 1.5, Alive: true},
		{Kind: ItemKey, X: 4.5, Y: 1.5, Alive: true},
	}
}

// CollectAt marks every alive item within PlayerRadius of (px, py) as
// collected, returning their indices in the static table.
func CollectAt(items []Item, px, py float32) []int {
	var collected []int
	for i := range items {
		if !items[i].Alive {
			continue
		}
		dx := float64(items[i].X - px)
		dy := float64(items[i].Y - py)
		if math.Hypot(dx, dy) < PlayerRadius {
			items[i].Alive = false
			collected = append(collected, i)
		}
	}
	return collected
}

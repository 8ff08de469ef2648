// Package game ties the WebSocket engine, binary protocol, and world
// simulation together into the player registry, delta batcher, and
// fixed-rate tick loop described by the spec's component design. It is
// generalized from the teacher's pkg/server (Config struct, Server holding
// a players map behind sync.RWMutex, Start/Stop/acceptLoop goroutine-per-
// connection shape) onto this domain's registry and simulation.
package game

import "time"

// Config mirrors the teacher's own Config/DefaultConfig shape.
type Config struct {
	Address             string
	TickRate            int
	MaxPlayers          int
	MaxPlayersPerRemote int
	StatsDumpEveryTicks int64
}

// DefaultConfig matches the external interface defaults: bind 0.0.0.0:6970,
// 2000 global player cap, 10 per remote address.
func DefaultConfig() Config {
	return Config{
		Address:             ":6970",
		TickRate:            60,
		MaxPlayers:          2000,
		MaxPlayersPerRemote: 10,
		StatsDumpEveryTicks: 300,
	}
}

func (c Config) tickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

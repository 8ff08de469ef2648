package game

import (
	"strings"
	"time"

	"github.com/duskfort/skirmish/pkg/console"
	"github.com/duskfort/skirmish/pkg/proto"
	"github.com/duskfort/skirmish/pkg/sim"
	"github.com/duskfort/skirmish/pkg/stats"
)

// tickLoop runs the fixed-rate authoritative simulation loop. Grounded on
// the teacher's entityPhysicsLoop (pkg/server/entity.go): a time.NewTicker
// at the configured rate, selecting between the ticker channel and stopCh.
func (s *Server) tickLoop() {
	ticker := time.NewTicker(s.cfg.tickInterval())
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			start := time.Now()
			s.tick(float32(dt))
			s.stats.PushSample(stats.TickTimes, float32(time.Since(start).Seconds()))
			s.stats.Inc(stats.TicksCount)
			if s.stats.ShouldDumpAt(s.cfg.StatsDumpEveryTicks) {
				s.dumpStats()
			}
		}
	}
}

// dumpStats renders every named stat entry as a colored "label: value"
// field the way pkg/console composes a line of terminal text, mirroring
// the original's periodic stat_print_per_n_ticks console dump.
func (s *Server) dumpStats() {
	snap := s.stats.Snapshot()
	names := stats.Names()
	fields := make([]string, 0, len(names)*2+1)
	fields = append(fields, console.Field("uptime", s.stats.Elapsed(stats.Uptime).Round(time.Second)))
	for i, name := range names {
		if i == int(stats.Uptime) {
			continue
		}
		fields = append(fields, console.Field(name, snap.Counters[i]))
		if snap.Averages[i] != 0 {
			fields = append(fields, console.Field(name+"_avg", snap.Averages[i]))
		}
	}
	s.log.Info().Msg(strings.Join(fields, "  "))
}

// tick performs the seven ordered per-tick steps from the player registry
// and delta batcher design: joined, left, moving, thrown bombs, world
// simulation, pings, then clears every intermediate set.
func (s *Server) tick(dt float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickJoined()
	s.tickLeft()
	s.tickMoving()
	s.tickThrownBombs()
	s.tickSimulation(dt)
	s.tickPings()

	s.stats.Set(stats.PlayersCurrently, int64(len(s.players)))
	s.updateTickDeltas()
	s.registry.clearIntermediateSets()
}

// updateTickDeltas records this tick's share of the running sent/received
// counters into the tick_* gauge entries: the difference between the
// running total now and what it was after the previous tick. Sends only
// ever happen while s.mu is held (inside tick's sub-steps), but receives
// happen concurrently in each connection's read loop, so the running
// totals - not a tick-local counter - are the only safe source to diff.
func (s *Server) updateTickDeltas() {
	sentMsgs := s.stats.Counter(stats.MessagesSent)
	sentBytes := s.stats.Counter(stats.BytesSent)
	recvMsgs := s.stats.Counter(stats.MessagesReceived)
	recvBytes := s.stats.Counter(stats.BytesReceived)

	s.stats.Set(stats.TickMessagesSent, sentMsgs-s.lastMessagesSent)
	s.stats.Set(stats.TickBytesSent, sentBytes-s.lastBytesSent)
	s.stats.Set(stats.TickMessagesReceived, recvMsgs-s.lastMessagesReceived)
	s.stats.Set(stats.TickBytesReceived, recvBytes-s.lastBytesReceived)

	s.lastMessagesSent, s.lastBytesSent = sentMsgs, sentBytes
	s.lastMessagesReceived, s.lastBytesReceived = recvMsgs, recvBytes
}

func (s *Server) tickJoined() {
	if len(s.joinedIDs) == 0 {
		return
	}

	aliveItems := make([]proto.ItemSpawn, 0, len(s.items))
	for i, it := range s.items {
		if it.Alive {
			aliveItems = append(aliveItems, proto.ItemSpawn{Kind: uint8(it.Kind), Index: uint32(i), X: it.X, Y: it.Y})
		}
	}
	itemSpawnMsg := proto.EncodeItemSpawned(aliveItems)

	allSnapshots := make([]proto.PlayerSnapshot, 0, len(s.players))
	for _, p := range s.players {
		allSnapshots = append(allSnapshots, p.snapshot())
	}
	fullJoinedMsg := proto.EncodePlayerJoined(allSnapshots)

	for id := range s.joinedIDs {
		p, ok := s.players[id]
		if !ok {
			continue
		}
		p.send(proto.EncodeHello(proto.HelloMsg{ID: p.ID, X: p.X, Y: p.Y, Dir: p.Dir, Hue: p.Hue}))
		p.send(fullJoinedMsg)
		p.send(itemSpawnMsg)
	}

	newly := make([]proto.PlayerSnapshot, 0, len(s.joinedIDs))
	for id := range s.joinedIDs {
		if p, ok := s.players[id]; ok {
			newly = append(newly, p.snapshot())
		}
	}
	if len(newly) == 0 {
		return
	}
	msg := proto.EncodePlayerJoined(newly)
	s.broadcastExcept(msg, s.joinedIDs)
}

func (s *Server) tickLeft() {
	if len(s.leftIDs) == 0 {
		return
	}
	ids := make([]uint32, 0, len(s.leftIDs))
	for id := range s.leftIDs {
		ids = append(ids, id)
	}
	s.broadcastAll(proto.EncodePlayerLeft(ids))
}

func (s *Server) tickMoving() {
	var batch []proto.PlayerSnapshot
	for _, p := range s.players {
		if p.NewMoving == p.Moving {
			continue
		}
		p.Moving = p.NewMoving
		batch = append(batch, p.snapshot())
	}
	if len(batch) == 0 {
		return
	}
	s.broadcastAll(proto.EncodePlayerMoving(batch))
}

func (s *Server) tickThrownBombs() {
	if len(s.thrownBombs) == 0 {
		return
	}
	var spawned []proto.BombSpawn
	for _, id := range s.thrownBombs {
		p, ok := s.players[id]
		if !ok {
			continue
		}
		idx, ok := s.bombs.Throw(p.X, p.Y, p.Dir)
		if !ok {
			continue
		}
		b := s.bombs.Slot(idx)
		spawned = append(spawned, proto.BombSpawn{
			Index: uint32(idx), X: b.X, Y: b.Y, Z: b.Z,
			Dx: b.Vx, Dy: b.Vy, Dz: b.Vz, Lifetime: b.Lifetime,
		})
	}
	if len(spawned) == 0 {
		return
	}
	s.broadcastAll(proto.EncodeBombSpawned(spawned))
}

func (s *Server) tickSimulation(dt float32) {
	var collectedAll []uint32
	for _, p := range s.players {
		sim.Integrate(&p.Body, p.Moving, dt, s.scene)
		for _, idx := range sim.CollectAt(s.items, p.X, p.Y) {
			collectedAll = append(collectedAll, uint32(idx))
		}
	}
	if len(collectedAll) > 0 {
		s.broadcastAll(proto.EncodeItemCollected(collectedAll))
	}

	exploded := s.bombs.Tick(dt, s.scene)
	if len(exploded) == 0 {
		return
	}
	list := make([]proto.BombExplosion, 0, len(exploded))
	for _, idx := range exploded {
		b := s.bombs.Slot(idx)
		list = append(list, proto.BombExplosion{Index: uint32(idx), X: b.X, Y: b.Y, Z: b.Z})
	}
	s.broadcastAll(proto.EncodeBombExploded(list))
}

func (s *Server) tickPings() {
	for id, ts := range s.pingIDs {
		p, ok := s.players[id]
		if !ok {
			continue
		}
		p.send(proto.EncodePong(ts))
	}
}

func (p *Player) snapshot() proto.PlayerSnapshot {
	return proto.PlayerSnapshot{ID: p.ID, X: p.X, Y: p.Y, Dir: p.Dir, Hue: p.Hue, Moving: p.Moving}
}

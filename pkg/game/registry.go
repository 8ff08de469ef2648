package game

import (
	"sync"

	"github.com/duskfort/skirmish/pkg/sim"
	"github.com/duskfort/skirmish/pkg/stats"
	"github.com/duskfort/skirmish/pkg/wsock"
)

// Player is the server-side record for one connected client: stable id,
// physical body, committed and pending movement bitmasks, hue, and remote
// address. conn/writeMu are the player's exclusive write path, matching the
// teacher's per-player mutex guarding Conn writes in broadcast.go.
type Player struct {
	ID  uint32
	Hue uint8
	sim.Body

	Moving    uint8
	NewMoving uint8

	Remote string

	conn    *wsock.Conn
	writeMu sync.Mutex
	stats   *stats.Sink
}

// send writes one binary application message to this player, swallowing
// the error: a write failure is left for the player's own read loop to
// notice on its next ReadMessage and unregister from, matching the spec's
// "broadcasts are inline; slow/broken clients don't stall cleanup logic"
// shape. A successful write records MessagesSent/BytesSent, the sent-side
// counterpart of the MessagesReceived/BytesReceived bump in handleConnection.
func (p *Player) send(payload []byte) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.conn.SendMessage(wsock.MessageBinary, payload); err == nil && p.stats != nil {
		p.stats.Inc(stats.MessagesSent)
		p.stats.Add(stats.BytesSent, int64(len(payload)))
	}
}

// registry holds every table the tick loop and connection tasks share.
// Mutated only while holding Server.mu, mirroring the teacher's
// sync.RWMutex-guarded Server.players and the spec's single-scheduler-
// thread ownership rule for these tables.
type registry struct {
	players      map[uint32]*Player
	remoteCounts map[string]int
	nextID       uint32
	stats        *stats.Sink

	joinedIDs   map[uint32]struct{}
	leftIDs     map[uint32]struct{}
	pingIDs     map[uint32]uint32 // player id -> timestamp, last write wins
	thrownBombs []uint32          // player ids, one entry per throw this tick
}

func newRegistry(sink *stats.Sink) *registry {
	return &registry{
		players:      make(map[uint32]*Player),
		remoteCounts: make(map[string]int),
		nextID:       1,
		stats:        sink,
		joinedIDs:    make(map[uint32]struct{}),
		leftIDs:      make(map[uint32]struct{}),
		pingIDs:      make(map[uint32]uint32),
	}
}

// register admits a new player if under both the global and per-remote
// caps, returning nil, false otherwise. Caller must hold Server.mu.
func (r *registry) register(remote string, maxPlayers, maxPerRemote int) (*Player, bool) {
	if len(r.players) >= maxPlayers {
		return nil, false
	}
	if remote != "" && r.remoteCounts[remote] >= maxPerRemote {
		return nil, false
	}
	id := r.nextID
	r.nextID++
	p := &Player{ID: id, Remote: remote, stats: r.stats}
	r.players[id] = p
	r.remoteCounts[remote]++
	r.joinedIDs[id] = struct{}{}
	return p, true
}

// unregister removes a player record. If it was still pending in joinedIDs
// this tick, it is dropped silently there instead of also being added to
// leftIDs: a player that joins and leaves within the same tick is never
// observed by anyone else, per spec.
func (r *registry) unregister(id uint32) {
	p, ok := r.players[id]
	if !ok {
		return
	}
	r.remoteCounts[p.Remote]--
	if r.remoteCounts[p.Remote] <= 0 {
		delete(r.remoteCounts, p.Remote)
	}
	if _, wasJoining := r.joinedIDs[id]; wasJoining {
		delete(r.joinedIDs, id)
	} else {
		r.leftIDs[id] = struct{}{}
	}
	delete(r.players, id)
}

func (r *registry) clearIntermediateSets() {
	r.joinedIDs = make(map[uint32]struct{})
	r.leftIDs = make(map[uint32]struct{})
	r.pingIDs = make(map[uint32]uint32)
	r.thrownBombs = nil
}

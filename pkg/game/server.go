package game

import (
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/duskfort/skirmish/pkg/sched"
	"github.com/duskfort/skirmish/pkg/sim"
	"github.com/duskfort/skirmish/pkg/stats"
	"github.com/duskfort/skirmish/pkg/stream"
	"github.com/duskfort/skirmish/pkg/wsock"
)

// Server is the single root value owning every shared table: the player
// registry, the static scene, the item table, the bomb pool, and the
// observability sink. It is generalized from the teacher's Server struct
// (players map + sync.RWMutex + stopCh), holding this domain's tables
// instead of a voxel world.
type Server struct {
	cfg Config
	log zerolog.Logger

	mu sync.Mutex
	registry

	scene *sim.Scene
	items []sim.Item
	bombs sim.Pool

	stats *stats.Sink
	rt    *sched.Runtime

	// last{Messages,Bytes}{Sent,Received} are the running-counter values as
	// of the previous tick, used by updateTickDeltas to fill the tick_*
	// gauge entries. Touched only from within tick, which holds mu.
	lastMessagesSent     int64
	lastBytesSent        int64
	lastMessagesReceived int64
	lastBytesReceived    int64

	listener net.Listener
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New constructs a Server with the default scene and item table.
func New(cfg Config, log zerolog.Logger) *Server {
	sink := stats.New()
	return &Server{
		cfg:      cfg,
		log:      log,
		registry: *newRegistry(sink),
		scene:    sim.DefaultScene(),
		items:    sim.DefaultItems(),
		stats:    sink,
		rt:       sched.NewRuntime(),
		stopCh:   make(chan struct{}),
	}
}

// Start binds the listener and begins the accept loop and tick loop in
// their own goroutines, mirroring the teacher's Start() shape (net.Listen
// + go s.acceptLoop()).
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	s.listener = ln
	s.stats.StartTimerAt(stats.Uptime, time.Now())
	s.log.Info().Str("address", s.cfg.Address).Msg("listening")

	go s.acceptLoop()
	go s.tickLoop()
	return nil
}

// StopChan reports when the server has been asked to stop.
func (s *Server) StopChan() <-chan struct{} { return s.stopCh }

// Stop signals shutdown, closes the listener so acceptLoop unblocks, and
// wakes every connection task currently asleep in a blocking read or write
// so handleConnection goroutines waiting on an idle peer unwind too, rather
// than leaking until that peer eventually speaks or disconnects.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.listener != nil {
			_ = s.listener.Close()
		}
		s.rt.WakeAll()
	})
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				s.log.Error().Err(err).Msg("accept error")
				return
			}
		}
		s.rt.Spawn(func(t *sched.Task) {
			s.handleConnection(t, conn)
		})
	}
}

// handleConnection owns one client's lifetime. Every blocking read or write
// it performs goes through st, which is bound to t: a stuck or idle peer
// leaves t Asleep, and Server.Stop's WakeAll (or a future per-connection
// timeout) can force the pending I/O to return by pushing the deadline into
// the past, exactly the way the original engine's coroutine_wake_up forces
// a blocked poll(2) to return.
func (s *Server) handleConnection(t *sched.Task, netConn net.Conn) {
	defer netConn.Close()

	st := stream.New(netConn)
	st.BindTask(t)
	if err := wsock.ServerHandshake(st); err != nil {
		s.log.Debug().Err(err).Msg("handshake failed")
		return
	}

	remote := netConn.RemoteAddr().String()

	s.mu.Lock()
	p, ok := s.registry.register(remote, s.cfg.MaxPlayers, s.cfg.MaxPlayersPerRemote)
	if ok {
		p.conn = wsock.NewServerConn(st)
	}
	s.mu.Unlock()

	if !ok {
		s.stats.Inc(stats.PlayersRejected)
		wsock.NewServerConn(st).Close()
		return
	}
	s.stats.Inc(stats.PlayersJoined)

	defer func() {
		s.mu.Lock()
		s.registry.unregister(p.ID)
		s.mu.Unlock()
		s.stats.Inc(stats.PlayersLeft)
		p.conn.Close()
	}()

	for {
		kind, payload, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		s.stats.Inc(stats.MessagesReceived)
		s.stats.Add(stats.BytesReceived, int64(len(payload)))
		if kind != wsock.MessageBinary {
			s.stats.Inc(stats.BogusMessages)
			return
		}
		if !s.dispatch(p.ID, payload) {
			return
		}
	}
}

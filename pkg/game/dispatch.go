package game

import (
	"github.com/duskfort/skirmish/pkg/proto"
	"github.com/duskfort/skirmish/pkg/stats"
)

// dispatch verifies and applies one inbound application message from
// player id. It reports false when the message is bogus (unknown kind or
// failed verification), which causes the connection task to terminate.
func (s *Server) dispatch(id uint32, envelope []byte) bool {
	kind, ok := proto.PeekKind(envelope)
	if !ok {
		s.stats.Inc(stats.BogusMessages)
		return false
	}

	switch kind {
	case proto.KindAmmaMoving:
		m, err := proto.DecodeAmmaMoving(envelope)
		if err != nil {
			s.stats.Inc(stats.BogusMessages)
			return false
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		p, ok := s.players[id]
		if !ok {
			return false
		}
		bit := uint8(1) << (m.Direction & 0x3)
		if m.Start != 0 {
			p.NewMoving |= bit
		} else {
			p.NewMoving &^= bit
		}
		return true

	case proto.KindAmmaThrowing:
		if err := proto.DecodeAmmaThrowing(envelope); err != nil {
			s.stats.Inc(stats.BogusMessages)
			return false
		}
		s.mu.Lock()
		s.thrownBombs = append(s.thrownBombs, id)
		s.mu.Unlock()
		return true

	case proto.KindPing:
		m, err := proto.DecodePing(envelope)
		if err != nil {
			s.stats.Inc(stats.BogusMessages)
			return false
		}
		s.mu.Lock()
		s.pingIDs[id] = m.Timestamp
		s.mu.Unlock()
		return true

	default:
		s.stats.Inc(stats.BogusMessages)
		return false
	}
}

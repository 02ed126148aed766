package app

import (
	"errors"
	"sync"

	"github.com/dkeye/pairsignal/internal/core"
	"github.com/dkeye/pairsignal/internal/domain"
	"github.com/dkeye/pairsignal/internal/metrics"
	"github.com/rs/zerolog/log"
)

// RoomMembers resolves a room key to its current members.
type RoomMembers interface {
	Members(key domain.RoomKey) []domain.ConnID
}

// Registry tracks live connections and routes outbound events to them.
// Delivery is best-effort: nothing is retried and callers get no result.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]core.SignalConnection

	rooms   RoomMembers
	policy  Policy
	metrics *metrics.Metrics
}

func NewRegistry(rooms RoomMembers, policy Policy, m *metrics.Metrics) *Registry {
	if policy == nil {
		policy = SimplePolicy{Action: DropMessage}
	}
	return &Registry{
		conns:   make(map[domain.ConnID]core.SignalConnection),
		rooms:   rooms,
		policy:  policy,
		metrics: m,
	}
}

func (r *Registry) Register(id domain.ConnID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = conn
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("registered connection")
}

func (r *Registry) Unregister(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; !ok {
		return
	}
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unregistered connection")
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) lookup(id domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[id]
	return c, ok
}

// EmitToSelf sends one event to one connection. A vanished connection is ignored.
func (r *Registry) EmitToSelf(id domain.ConnID, event string, args ...any) {
	frame, err := core.EncodeEvent(event, args...)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Str("event", event).Msg("encode")
		return
	}
	r.send(id, frame)
}

// EmitToRoom sends one event to every member of key except the excluded id.
// An empty except excludes nobody.
func (r *Registry) EmitToRoom(key domain.RoomKey, except domain.ConnID, event string, args ...any) {
	frame, err := core.EncodeEvent(event, args...)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Str("event", event).Msg("encode")
		return
	}
	sent := 0
	for _, id := range r.rooms.Members(key) {
		if id == except {
			continue
		}
		if r.send(id, frame) {
			sent++
		}
	}
	log.Debug().Str("module", "app.registry").Str("room", string(key)).Str("event", event).Int("sent_to", sent).Msg("room emit")
}

func (r *Registry) send(id domain.ConnID, frame core.Frame) bool {
	conn, ok := r.lookup(id)
	if !ok {
		return false
	}
	if err := conn.TrySend(frame); err != nil {
		// Closing, with Disconnect still queued for the coordinator.
		if errors.Is(err, core.ErrConnClosed) {
			log.Debug().Str("module", "app.registry").Str("conn", string(id)).Msg("emit to closing connection")
			return false
		}
		r.metrics.Inc(metrics.EmitsDropped)
		log.Warn().Err(err).Str("module", "app.registry").Str("conn", string(id)).Msg("emit dropped")
		if r.policy.OnBackPressure(id) == CloseConnection {
			conn.Close()
		}
		return false
	}
	return true
}

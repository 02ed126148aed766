package metrics

import (
	"maps"
	"sync"
)

// Counter names.
const (
	RoomsCreated      = "rooms_created"
	RoomsJoined       = "rooms_joined"
	RoomsFull         = "rooms_full"
	MessagesRelayed   = "messages_relayed"
	VideoToggles      = "video_toggles"
	ParticipantsLeft  = "participants_left"
	EmitsDropped      = "emits_dropped"
	EventsRateLimited = "events_rate_limited"
	ConnectionsOpened = "connections_opened"
	ConnectionsClosed = "connections_closed"
)

// Metrics is a minimal, concurrency-safe counter registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	mu sync.Mutex
	m  map[string]uint64
}

func New() *Metrics {
	return &Metrics{
		m: make(map[string]uint64),
	}
}

func (m *Metrics) Inc(name string) {
	m.Add(name, 1)
}

func (m *Metrics) Add(name string, n uint64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.m[name] += n
	m.mu.Unlock()
}

func (m *Metrics) Get(name string) uint64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.m[name]
}

func (m *Metrics) Snapshot() map[string]uint64 {
	if m == nil {
		return map[string]uint64{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.m)
}

package core

import (
	"cmp"
	"errors"
	"slices"
	"sync"

	"github.com/dkeye/pairsignal/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrCapacityExceeded = errors.New("room capacity exceeded")

// RoomTable is the authoritative membership state.
// A key is present only while its room has at least one member, and a
// connection belongs to at most one room.
type RoomTable struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomKey][]domain.ConnID
	byConn map[domain.ConnID]domain.RoomKey
}

func NewRoomTable() *RoomTable {
	return &RoomTable{
		rooms:  make(map[domain.RoomKey][]domain.ConnID),
		byConn: make(map[domain.ConnID]domain.RoomKey),
	}
}

func (t *RoomTable) MemberCount(key domain.RoomKey) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rooms[key])
}

// AddMember creates the room on first join. The caller is expected to have
// checked capacity already; ErrCapacityExceeded guards the invariant.
func (t *RoomTable) AddMember(key domain.RoomKey, id domain.ConnID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	members := t.rooms[key]
	if slices.Contains(members, id) {
		return nil
	}
	// A failed add leaves every room as it was.
	if len(members) >= domain.RoomCapacity {
		return ErrCapacityExceeded
	}
	if cur, ok := t.byConn[id]; ok && cur != key {
		t.removeLocked(cur, id)
	}
	t.rooms[key] = append(members, id)
	t.byConn[id] = key
	log.Debug().Str("module", "core.rooms").Str("room", string(key)).Str("conn", string(id)).Int("members", len(t.rooms[key])).Msg("member added")
	return nil
}

// RemoveMember deletes the room entry once it is empty.
func (t *RoomTable) RemoveMember(key domain.RoomKey, id domain.ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(key, id)
}

func (t *RoomTable) removeLocked(key domain.RoomKey, id domain.ConnID) {
	members, ok := t.rooms[key]
	if !ok {
		return
	}
	idx := slices.Index(members, id)
	if idx < 0 {
		return
	}
	members = slices.Delete(members, idx, idx+1)
	delete(t.byConn, id)
	if len(members) == 0 {
		delete(t.rooms, key)
		log.Debug().Str("module", "core.rooms").Str("room", string(key)).Msg("room deleted")
		return
	}
	t.rooms[key] = members
	log.Debug().Str("module", "core.rooms").Str("room", string(key)).Str("conn", string(id)).Msg("member removed")
}

// FindRoomOf uses the reverse index instead of scanning every room.
func (t *RoomTable) FindRoomOf(id domain.ConnID) (domain.RoomKey, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	key, ok := t.byConn[id]
	return key, ok
}

// Members returns members in join order.
func (t *RoomTable) Members(key domain.RoomKey) []domain.ConnID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.rooms[key])
}

func (t *RoomTable) List() []RoomInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]RoomInfo, 0, len(t.rooms))
	for key, members := range t.rooms {
		out = append(out, RoomInfo{Key: key, MemberCount: len(members)})
	}
	slices.SortFunc(out, func(a, b RoomInfo) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

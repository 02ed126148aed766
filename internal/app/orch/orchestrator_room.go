package orch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dkeye/pairsignal/internal/domain"
	"github.com/dkeye/pairsignal/internal/metrics"
	"github.com/rs/zerolog/log"
)

// CreateOrJoin drives a room through Empty -> One-Member -> Full.
func (c *Coordinator) CreateOrJoin(id domain.ConnID, raw string) {
	key, err := domain.ParseRoomKey(raw)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("bad room key")
		c.advise(id, "Invalid room: "+err.Error())
		return
	}
	c.advise(id, "Received request to create or join room "+string(key))

	if cur, ok := c.Rooms.FindRoomOf(id); ok {
		if cur == key {
			c.rejoin(id, key)
			return
		}
		// A refused switch keeps the current session intact.
		if c.Rooms.MemberCount(key) >= domain.RoomCapacity {
			c.full(id, key)
			return
		}
		c.Leave(id, true)
		log.Info().Str("module", "orch").Str("conn", string(id)).Str("from_room", string(cur)).Msg("left room to join another")
	}

	n := c.Rooms.MemberCount(key)
	c.advise(id, fmt.Sprintf("Room %s now has %d client(s)", key, n))

	if n >= domain.RoomCapacity {
		c.full(id, key)
		return
	}
	if err := c.Rooms.AddMember(key, id); err != nil {
		log.Error().Err(err).Str("module", "orch").Str("room", string(key)).Msg("add member")
		c.full(id, key)
		return
	}

	if n == 0 {
		log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(key)).Msg("room created")
		c.Metrics.Inc(metrics.RoomsCreated)
		c.advise(id, fmt.Sprintf("Client ID %s created and joined room %s", id, key))
		c.Registry.EmitToSelf(id, domain.EventCreated, key, id)
		return
	}

	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(key)).Msg("room joined")
	c.Metrics.Inc(metrics.RoomsJoined)
	c.advise(id, fmt.Sprintf("Client ID %s joined room %s", id, key))
	// Peers start the offer/answer exchange on ready, so it goes last.
	c.Registry.EmitToRoom(key, "", domain.EventJoin, key)
	c.Registry.EmitToSelf(id, domain.EventJoined, key, id)
	c.Registry.EmitToRoom(key, "", domain.EventReady)
}

func (c *Coordinator) full(id domain.ConnID, key domain.RoomKey) {
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(key)).Msg("room full")
	c.Metrics.Inc(metrics.RoomsFull)
	c.Registry.EmitToSelf(id, domain.EventFull, key)
}

// rejoin answers a repeated create-or-join for the room id is already in.
// Membership is untouched; only the confirmation is sent again.
func (c *Coordinator) rejoin(id domain.ConnID, key domain.RoomKey) {
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(key)).Msg("repeated join ignored")
	if c.Rooms.MemberCount(key) == 1 {
		c.Registry.EmitToSelf(id, domain.EventCreated, key, id)
		return
	}
	c.Registry.EmitToSelf(id, domain.EventJoined, key, id)
}

// Relay echoes a message to the whole room, sender included.
func (c *Coordinator) Relay(id domain.ConnID, args []json.RawMessage) {
	key, ok := c.Rooms.FindRoomOf(id)
	if !ok {
		return
	}
	c.Metrics.Inc(metrics.MessagesRelayed)
	c.advise(id, fmt.Sprintf("Client in room %s said: %s", key, joinArgs(args)))
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
	}
	c.Registry.EmitToRoom(key, "", domain.EventMessage, out...)
}

// Video notifies the peer only.
func (c *Coordinator) Video(id domain.ConnID, event string) {
	key, ok := c.Rooms.FindRoomOf(id)
	if !ok {
		return
	}
	c.Metrics.Inc(metrics.VideoToggles)
	c.Registry.EmitToRoom(key, id, event, id)
}

// Leave removes id from its room and tells the remaining member. It reports
// whether there was anything to clean up, so repeated calls are no-ops.
func (c *Coordinator) Leave(id domain.ConnID, advise bool) bool {
	key, ok := c.Rooms.FindRoomOf(id)
	if !ok {
		return false
	}
	c.Rooms.RemoveMember(key, id)
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(key)).Msg("left room")
	c.Metrics.Inc(metrics.ParticipantsLeft)
	if advise {
		c.advise(id, fmt.Sprintf("Client ID %s left room %s", id, key))
	}
	c.Registry.EmitToRoom(key, id, domain.EventParticipantLeft, id)
	return true
}

// OnDisconnect runs the same cleanup as bye and forgets the connection.
func (c *Coordinator) OnDisconnect(id domain.ConnID) {
	c.Leave(id, false)
	c.Registry.Unregister(id)
}

func joinArgs(args []json.RawMessage) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = string(a)
	}
	return strings.Join(parts, " ")
}

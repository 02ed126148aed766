package orch

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/pairsignal/internal/core"
	"github.com/dkeye/pairsignal/internal/domain"
)

type EventKind int

const (
	CreateOrJoin EventKind = iota
	Message
	TurnOnVideo
	TurnOffVideo
	Bye
	IPAddr
	Disconnect
)

func (k EventKind) String() string {
	switch k {
	case CreateOrJoin:
		return domain.EventCreateOrJoin
	case Message:
		return domain.EventMessage
	case TurnOnVideo:
		return domain.EventTurnOnVideo
	case TurnOffVideo:
		return domain.EventTurnOffVideo
	case Bye:
		return domain.EventBye
	case IPAddr:
		return domain.EventIPAddr
	case Disconnect:
		return "disconnect"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one unit of work for the Coordinator.
type Event struct {
	Kind EventKind
	Conn domain.ConnID
	// Room is the raw key of a CreateOrJoin.
	Room string
	// Args of a Message, relayed untouched.
	Args []json.RawMessage
}

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrBadRoomArg   = errors.New("create-or-join expects a string room key")
)

// ParseEvent turns an inbound envelope into an Event. Disconnect never
// arrives on the wire; the transport raises it.
func ParseEvent(id domain.ConnID, env core.Envelope) (Event, error) {
	ev := Event{Conn: id}
	switch domain.NormalizeEvent(env.Event) {
	case domain.EventCreateOrJoin:
		ev.Kind = CreateOrJoin
		if len(env.Args) == 0 {
			return Event{}, ErrBadRoomArg
		}
		if err := json.Unmarshal(env.Args[0], &ev.Room); err != nil {
			return Event{}, fmt.Errorf("%w: %v", ErrBadRoomArg, err)
		}
	case domain.EventMessage:
		ev.Kind = Message
		ev.Args = env.Args
	case domain.EventTurnOnVideo:
		ev.Kind = TurnOnVideo
	case domain.EventTurnOffVideo:
		ev.Kind = TurnOffVideo
	case domain.EventBye:
		ev.Kind = Bye
	case domain.EventIPAddr:
		ev.Kind = IPAddr
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
	return ev, nil
}

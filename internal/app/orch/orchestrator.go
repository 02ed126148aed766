package orch

import (
	"context"
	"errors"
	"net/netip"

	"github.com/dkeye/pairsignal/internal/core"
	"github.com/dkeye/pairsignal/internal/domain"
	"github.com/dkeye/pairsignal/internal/metrics"
	"github.com/dkeye/pairsignal/internal/netaddr"
	"github.com/rs/zerolog/log"
)

var ErrStopped = errors.New("coordinator stopped")

const queueSize = 256

// Connections is the outbound side the Coordinator talks to.
type Connections interface {
	EmitToSelf(id domain.ConnID, event string, args ...any)
	EmitToRoom(key domain.RoomKey, except domain.ConnID, event string, args ...any)
	Unregister(id domain.ConnID)
}

// Coordinator owns room membership. All mutations happen on the goroutine
// running Run, one event at a time.
type Coordinator struct {
	Rooms    *core.RoomTable
	Registry Connections
	Addrs    netaddr.Source
	Metrics  *metrics.Metrics

	// Exclude lists addresses never reported by ipaddr.
	Exclude []netip.Addr
	// ClientLog enables advisory "log" events to the originating connection.
	ClientLog bool

	events chan Event
	done   chan struct{}
}

func NewCoordinator(rooms *core.RoomTable, reg Connections, addrs netaddr.Source) *Coordinator {
	return &Coordinator{
		Rooms:     rooms,
		Registry:  reg,
		Addrs:     addrs,
		ClientLog: true,
		events:    make(chan Event, queueSize),
		done:      make(chan struct{}),
	}
}

// Run applies submitted events until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.done)
	log.Info().Str("module", "orch").Msg("coordinator loop started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "orch").Msg("coordinator loop stopped")
			return nil
		case ev := <-c.events:
			c.Handle(ev)
		}
	}
}

// Submit queues ev for the loop. It blocks while the queue is full.
func (c *Coordinator) Submit(ctx context.Context, ev Event) error {
	select {
	case <-c.done:
		return ErrStopped
	default:
	}
	select {
	case c.events <- ev:
		return nil
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handle applies one event synchronously. Callers other than Run must not
// call it concurrently with a running loop.
func (c *Coordinator) Handle(ev Event) {
	log.Debug().Str("module", "orch").Str("conn", string(ev.Conn)).Stringer("event", ev.Kind).Msg("handle")
	switch ev.Kind {
	case CreateOrJoin:
		c.CreateOrJoin(ev.Conn, ev.Room)
	case Message:
		c.Relay(ev.Conn, ev.Args)
	case TurnOnVideo:
		c.Video(ev.Conn, domain.EventTurnOnVideo)
	case TurnOffVideo:
		c.Video(ev.Conn, domain.EventTurnOffVideo)
	case Bye:
		c.Leave(ev.Conn, true)
	case Disconnect:
		c.OnDisconnect(ev.Conn)
	case IPAddr:
		c.ReportAddrs(ev.Conn)
	default:
		log.Warn().Str("module", "orch").Stringer("event", ev.Kind).Msg("unhandled event")
	}
}

func (c *Coordinator) advise(id domain.ConnID, text string) {
	if !c.ClientLog {
		return
	}
	c.Registry.EmitToSelf(id, domain.EventLog, []string{"Message from server:", text})
}

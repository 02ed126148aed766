package app

import (
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/pairsignal/internal/core"
	"github.com/dkeye/pairsignal/internal/domain"
	"github.com/dkeye/pairsignal/internal/metrics"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []string
	full   bool
	closed bool
	gone   bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gone {
		return core.ErrConnClosed
	}
	if c.full {
		return errors.New("backpressure")
	}
	c.frames = append(c.frames, string(f))
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func newTestRegistry(policy Policy) (*Registry, *core.RoomTable, *metrics.Metrics) {
	table := core.NewRoomTable()
	m := metrics.New()
	return NewRegistry(table, policy, m), table, m
}

func TestEmitToSelf(t *testing.T) {
	reg, _, _ := newTestRegistry(nil)
	a := &fakeConn{}
	reg.Register("a", a)

	reg.EmitToSelf("a", domain.EventCreated, "alpha", "a")
	if len(a.frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(a.frames))
	}
	if want := `{"event":"created","args":["alpha","a"]}`; a.frames[0] != want {
		t.Errorf("frame=%s, want %s", a.frames[0], want)
	}

	// Vanished connection must not panic.
	reg.EmitToSelf("ghost", domain.EventReady)
}

func TestEmitToRoomExcludes(t *testing.T) {
	reg, table, _ := newTestRegistry(nil)
	a, b := &fakeConn{}, &fakeConn{}
	reg.Register("a", a)
	reg.Register("b", b)
	_ = table.AddMember("alpha", "a")
	_ = table.AddMember("alpha", "b")

	reg.EmitToRoom("alpha", "a", domain.EventTurnOnVideo, "a")
	if len(a.frames) != 0 {
		t.Errorf("Excluded connection received %v", a.frames)
	}
	if len(b.frames) != 1 {
		t.Errorf("Expected peer to receive 1 frame, got %d", len(b.frames))
	}

	reg.EmitToRoom("alpha", "", domain.EventReady)
	if len(a.frames) != 1 || len(b.frames) != 2 {
		t.Errorf("Expected broadcast to both, got a=%d b=%d", len(a.frames), len(b.frames))
	}
}

func TestBackpressureDropPolicy(t *testing.T) {
	reg, _, m := newTestRegistry(SimplePolicy{Action: DropMessage})
	a := &fakeConn{full: true}
	reg.Register("a", a)

	reg.EmitToSelf("a", domain.EventReady)
	if a.closed {
		t.Error("Drop policy must not close the connection")
	}
	if got := m.Get(metrics.EmitsDropped); got != 1 {
		t.Errorf("emits_dropped=%d, want 1", got)
	}
}

func TestBackpressureClosePolicy(t *testing.T) {
	reg, _, _ := newTestRegistry(SimplePolicy{Action: CloseConnection})
	a := &fakeConn{full: true}
	reg.Register("a", a)

	reg.EmitToSelf("a", domain.EventReady)
	if !a.closed {
		t.Error("Close policy must close the connection")
	}
}

func TestUnregister(t *testing.T) {
	reg, _, _ := newTestRegistry(nil)
	reg.Register("a", &fakeConn{})
	reg.Unregister("a")
	reg.Unregister("a")
	if reg.Len() != 0 {
		t.Errorf("Expected empty registry, got %d", reg.Len())
	}
}

func TestParsePolicy(t *testing.T) {
	for name, want := range map[string]BackpressureAction{"": DropMessage, "drop": DropMessage, "close": CloseConnection} {
		p, err := ParsePolicy(name)
		if err != nil {
			t.Fatalf("ParsePolicy(%q): %v", name, err)
		}
		if got := p.OnBackPressure("x"); got != want {
			t.Errorf("ParsePolicy(%q) action=%d, want %d", name, got, want)
		}
	}
	if _, err := ParsePolicy("kick"); err == nil {
		t.Error("Expected error for unknown policy")
	}
}

func TestEmitToClosingConnectionIsNotADrop(t *testing.T) {
	reg, _, m := newTestRegistry(SimplePolicy{Action: CloseConnection})
	a := &fakeConn{gone: true}
	reg.Register("a", a)

	reg.EmitToSelf("a", domain.EventReady)
	if got := m.Get(metrics.EmitsDropped); got != 0 {
		t.Errorf("Expected 0 dropped emits, got %d", got)
	}
	if a.closed {
		t.Error("Policy must not run for an already closed connection")
	}
}

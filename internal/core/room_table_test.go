package core

import (
	"fmt"
	"testing"

	"github.com/dkeye/pairsignal/internal/domain"
)

func TestNewRoomTable(t *testing.T) {
	table := NewRoomTable()
	if table.rooms == nil || table.byConn == nil {
		t.Fatal("Expected maps to be initialized")
	}
	if n := table.MemberCount("absent"); n != 0 {
		t.Errorf("Expected 0 members for absent room, got %d", n)
	}
}

func TestAddMemberCapacity(t *testing.T) {
	table := NewRoomTable()

	if err := table.AddMember("alpha", "x"); err != nil {
		t.Fatalf("Unexpected error adding x: %v", err)
	}
	if err := table.AddMember("alpha", "y"); err != nil {
		t.Fatalf("Unexpected error adding y: %v", err)
	}
	if err := table.AddMember("alpha", "z"); err != ErrCapacityExceeded {
		t.Errorf("Expected ErrCapacityExceeded, got %v", err)
	}

	if n := table.MemberCount("alpha"); n != 2 {
		t.Errorf("Expected 2 members, got %d", n)
	}
	if _, ok := table.FindRoomOf("z"); ok {
		t.Error("Rejected connection must stay roomless")
	}

	members := table.Members("alpha")
	if len(members) != 2 || members[0] != "x" || members[1] != "y" {
		t.Errorf("Expected members [x y] in join order, got %v", members)
	}
}

func TestAddMemberTwiceIsIdempotent(t *testing.T) {
	table := NewRoomTable()
	_ = table.AddMember("alpha", "x")
	if err := table.AddMember("alpha", "x"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n := table.MemberCount("alpha"); n != 1 {
		t.Errorf("Expected 1 member after duplicate add, got %d", n)
	}
}

func TestAddMemberMovesBetweenRooms(t *testing.T) {
	table := NewRoomTable()
	_ = table.AddMember("alpha", "x")
	_ = table.AddMember("beta", "x")

	if n := table.MemberCount("alpha"); n != 0 {
		t.Errorf("Expected alpha to be emptied, got %d members", n)
	}
	if key, ok := table.FindRoomOf("x"); !ok || key != "beta" {
		t.Errorf("Expected x in beta, got %q (found=%v)", key, ok)
	}
	if len(table.List()) != 1 {
		t.Errorf("Expected a single room, got %v", table.List())
	}
}

func TestAddMemberToFullRoomKeepsPriorRoom(t *testing.T) {
	table := NewRoomTable()
	_ = table.AddMember("r1", "a")
	_ = table.AddMember("r2", "x")
	_ = table.AddMember("r2", "y")

	if err := table.AddMember("r2", "a"); err != ErrCapacityExceeded {
		t.Fatalf("Expected ErrCapacityExceeded, got %v", err)
	}
	if key, ok := table.FindRoomOf("a"); !ok || key != "r1" {
		t.Errorf("Expected a to stay in r1, got %q (found=%v)", key, ok)
	}
	if n := table.MemberCount("r1"); n != 1 {
		t.Errorf("Expected r1 to keep 1 member, got %d", n)
	}
	if n := table.MemberCount("r2"); n != 2 {
		t.Errorf("Expected r2 to keep 2 members, got %d", n)
	}
}

func TestRemoveMemberDeletesEmptyRoom(t *testing.T) {
	table := NewRoomTable()
	_ = table.AddMember("alpha", "x")
	_ = table.AddMember("alpha", "y")

	table.RemoveMember("alpha", "x")
	if n := table.MemberCount("alpha"); n != 1 {
		t.Errorf("Expected 1 member, got %d", n)
	}

	table.RemoveMember("alpha", "y")
	if _, exists := table.rooms["alpha"]; exists {
		t.Error("Empty room was not removed, expected it to be gone")
	}
	if _, ok := table.FindRoomOf("y"); ok {
		t.Error("Expected reverse index entry to be removed")
	}
}

func TestRemoveMemberNotPresent(t *testing.T) {
	table := NewRoomTable()
	_ = table.AddMember("alpha", "x")

	// Neither call should cause errors or touch alpha.
	table.RemoveMember("alpha", "ghost")
	table.RemoveMember("missing", "x")

	if n := table.MemberCount("alpha"); n != 1 {
		t.Errorf("Expected 1 member, got %d", n)
	}
}

func TestList(t *testing.T) {
	table := NewRoomTable()
	if rooms := table.List(); len(rooms) != 0 {
		t.Errorf("Expected 0 rooms initially, got %d", len(rooms))
	}
	_ = table.AddMember("beta", "a")
	_ = table.AddMember("alpha", "b")
	_ = table.AddMember("alpha", "c")

	rooms := table.List()
	want := []RoomInfo{{Key: "alpha", MemberCount: 2}, {Key: "beta", MemberCount: 1}}
	if len(rooms) != len(want) {
		t.Fatalf("Expected %d rooms, got %d", len(want), len(rooms))
	}
	for i := range want {
		if rooms[i] != want[i] {
			t.Errorf("rooms[%d]=%+v, want %+v", i, rooms[i], want[i])
		}
	}
}

func TestMemberCountNeverExceedsCapacity(t *testing.T) {
	table := NewRoomTable()
	for i := range 10 {
		_ = table.AddMember("alpha", domain.ConnID(fmt.Sprintf("c%d", i)))
		if n := table.MemberCount("alpha"); n > domain.RoomCapacity {
			t.Fatalf("member count %d exceeds capacity", n)
		}
	}
}

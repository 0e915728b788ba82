package main

import (
	"testing"
	"time"
)

func newTestManager(t *testing.T) *RoomManager {
	t.Helper()
	m := NewRoomManager(DefaultTuning(), 10*time.Millisecond, NopSink{})
	t.Cleanup(m.StopAll)
	return m
}

func waitDone(t *testing.T, r *Room) {
	t.Helper()
	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("room %s did not stop", r.ID)
	}
}

func TestCleanLobby(t *testing.T) {
	if got := CleanLobby(""); got != DefaultLobby {
		t.Errorf("expected default lobby, got %q", got)
	}
	if got := CleanLobby("  red  "); got != "red" {
		t.Errorf("expected red, got %q", got)
	}
	long := "abcdefghijklmnopqrstuvwxyz0123456789"
	if got := CleanLobby(long); len(got) != maxLobbyLen {
		t.Errorf("expected %d chars, got %d", maxLobbyLen, len(got))
	}
}

func TestGetOrCreateReusesRoomAndIgnoresOptions(t *testing.T) {
	m := newTestManager(t)
	a := m.GetOrCreate(RoomOptions{Lobby: "red", Level: 2, Bots: false})
	b := m.GetOrCreate(RoomOptions{Lobby: " red ", Level: 5, Bots: true})
	if a != b {
		t.Fatal("expected the same room for the same lobby")
	}
	if info := b.Info(); info.Level != 2 || !info.PortalActive {
		t.Errorf("expected the first creator's options, got %+v", info)
	}
	c := m.GetOrCreate(RoomOptions{Lobby: "blue"})
	if c == a || c.ID == a.ID {
		t.Error("expected a separate room for another lobby")
	}
	if m.Count() != 2 {
		t.Errorf("expected 2 rooms, got %d", m.Count())
	}

	list := m.List()
	if len(list) != 2 || list[0].Lobby != "blue" || list[1].Lobby != "red" {
		t.Errorf("expected rooms sorted by lobby, got %+v", list)
	}
}

func TestJoinLobbyAndEmptyRoomIsForgotten(t *testing.T) {
	m := newTestManager(t)
	r, id, err := m.JoinLobby(RoomOptions{Lobby: "solo", Bots: true}, &fakeConn{}, "pilot")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if m.Get("solo") != r {
		t.Fatal("expected room registered under its lobby")
	}

	r.Leave(id)
	waitDone(t, r)
	if m.Get("solo") != nil {
		t.Error("expected the empty room to be removed")
	}

	// a fresh join creates a new room
	r2, _, err := m.JoinLobby(RoomOptions{Lobby: "solo"}, &fakeConn{}, "again")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if r2 == r || r2.ID == r.ID {
		t.Error("expected a new room after the old one shut down")
	}
}

func TestJoinLobbyRecoversFromClosedRoom(t *testing.T) {
	m := newTestManager(t)
	stale := m.GetOrCreate(RoomOptions{Lobby: "race"})
	// simulate a room that stopped but is still registered
	stale.OnEmpty = nil
	stale.Stop()
	waitDone(t, stale)

	r, _, err := m.JoinLobby(RoomOptions{Lobby: "race"}, &fakeConn{}, "pilot")
	if err != nil {
		t.Fatalf("expected retry onto a fresh room, got %v", err)
	}
	if r == stale {
		t.Error("joined the stopped room")
	}
}

func TestDispose(t *testing.T) {
	m := newTestManager(t)
	conn := &fakeConn{}
	r, _, err := m.JoinLobby(RoomOptions{Lobby: "gone"}, conn, "pilot")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !m.Dispose("gone") {
		t.Fatal("expected dispose to find the room")
	}
	waitDone(t, r)
	if m.Get("gone") != nil {
		t.Error("expected disposed room removed")
	}
	conn.mu.Lock()
	closed := conn.closed
	conn.mu.Unlock()
	if !closed {
		t.Error("expected dispose to close client connections")
	}
	if m.Dispose("gone") {
		t.Error("second dispose should report nothing to do")
	}
}

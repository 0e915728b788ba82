package main

import (
	"sort"
	"sync"
	"time"
)

const (
	maxRooms     = 100
	DefaultLobby = "main"
	maxLobbyLen  = 32
)

// RoomManager owns one room per lobby name. A room is created by the
// first join to its lobby and forgotten when it shuts down.
type RoomManager struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	tuning Tuning
	tick   time.Duration
	events EventSink
}

// NewRoomManager creates a manager whose rooms share the given tuning,
// tick interval and event sink
func NewRoomManager(tuning Tuning, tick time.Duration, events EventSink) *RoomManager {
	return &RoomManager{
		rooms:  make(map[string]*Room),
		tuning: tuning,
		tick:   tick,
		events: events,
	}
}

// CleanLobby bounds a lobby name, defaulting to "main"
func CleanLobby(lobby string) string {
	lobby = CleanName(lobby, &Tuning{MaxNameLen: maxLobbyLen, DefaultName: DefaultLobby})
	return lobby
}

// GetOrCreate returns the lobby's room, creating and starting it with opts
// if none exists. Options are ignored for an existing room. Returns nil
// when the room limit is reached.
func (m *RoomManager) GetOrCreate(opts RoomOptions) *Room {
	opts.Lobby = CleanLobby(opts.Lobby)
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.rooms[opts.Lobby]; ok {
		return r
	}
	if len(m.rooms) >= maxRooms {
		return nil
	}
	r := NewRoom(GenerateUUID(), opts, m.tuning, m.tick, m.events)
	r.OnEmpty = m.removeRoom
	m.rooms[opts.Lobby] = r
	go r.Run()
	return r
}

// JoinLobby joins a lobby's room, retrying with a fresh room if the
// existing one shut down between lookup and join
func (m *RoomManager) JoinLobby(opts RoomOptions, conn Conn, name string) (*Room, string, error) {
	var lastErr error = ErrRoomClosed
	for attempt := 0; attempt < 3; attempt++ {
		r := m.GetOrCreate(opts)
		if r == nil {
			return nil, "", ErrTooManyRooms
		}
		id, err := r.Join(conn, name)
		if err == nil {
			return r, id, nil
		}
		if err != ErrRoomClosed {
			return nil, "", err
		}
		lastErr = err
		m.removeRoom(r)
	}
	return nil, "", lastErr
}

// Get returns the lobby's room or nil
func (m *RoomManager) Get(lobby string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[CleanLobby(lobby)]
}

// Dispose stops the lobby's room. Returns false if there is none.
func (m *RoomManager) Dispose(lobby string) bool {
	r := m.Get(lobby)
	if r == nil {
		return false
	}
	r.Stop()
	m.removeRoom(r)
	return true
}

// StopAll stops every room and waits for them to finish
func (m *RoomManager) StopAll() {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()

	for _, r := range rooms {
		r.Stop()
		<-r.Done()
	}
}

// removeRoom forgets r, unless its lobby already points at a newer room
func (m *RoomManager) removeRoom(r *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.rooms[r.Lobby]; ok && cur == r {
		delete(m.rooms, r.Lobby)
	}
}

// List returns info about every live room, sorted by lobby
func (m *RoomManager) List() []RoomInfo {
	m.mu.RLock()
	list := make([]RoomInfo, 0, len(m.rooms))
	for _, r := range m.rooms {
		list = append(list, r.Info())
	}
	m.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Lobby < list[j].Lobby })
	return list
}

// Count returns the number of live rooms
func (m *RoomManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

package main

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Room lifecycle event types
const (
	EvtRoomCreated       = "room_created"
	EvtRoomDisposed      = "room_disposed"
	EvtSessionJoined     = "session_joined"
	EvtSessionLeft       = "session_left"
	EvtProjectileSpawned = "projectile_spawned"
	EvtHitRegistered     = "hit_registered"
	EvtCatKilled         = "cat_killed"
	EvtPlayerDowned      = "player_downed"
	EvtPlayerRespawned   = "player_respawned"
	EvtPortalOpened      = "portal_opened"
	EvtLevelAdvanced     = "level_advanced"
	EvtPickupCollected   = "pickup_collected"
	EvtTraffic           = "traffic"
)

// chatty events are logged but not persisted
var unjournaled = map[string]bool{
	EvtProjectileSpawned: true,
	EvtHitRegistered:     true,
}

// Event is one advisory lifecycle record emitted by a room
type Event struct {
	Type      string
	RoomID    string
	Lobby     string
	Tick      uint64
	SessionID string
	Subject   string // cat, projectile or pickup id the event is about
	Data      string // JSON object, may be empty
	Time      time.Time
}

// EventSink receives room events. Emit is called on the room goroutine
// and must not block.
type EventSink interface {
	Emit(Event)
}

// EventSinkFunc adapts a function to EventSink
type EventSinkFunc func(Event)

func (f EventSinkFunc) Emit(e Event) { f(e) }

// NopSink drops every event
type NopSink struct{}

func (NopSink) Emit(Event) {}

// encodeEventData turns alternating key/value pairs into a JSON object
func encodeEventData(kv []any) string {
	if len(kv) == 0 {
		return ""
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}

// Journal persists room events with batched background writes
type Journal struct {
	db       *DB
	events   chan Event
	stop     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	mu      sync.Mutex
	dropped int64
}

// NewJournal creates and starts the journal background writer
func NewJournal(db *DB) *Journal {
	j := &Journal{
		db:     db,
		events: make(chan Event, 1024),
		stop:   make(chan struct{}),
	}
	j.wg.Add(1)
	go j.writer()
	return j
}

// Emit enqueues an event for async persistence (non-blocking)
func (j *Journal) Emit(evt Event) {
	if unjournaled[evt.Type] {
		return
	}
	select {
	case j.events <- evt:
	default:
		// full: drop rather than stall a room tick
		j.mu.Lock()
		j.dropped++
		j.mu.Unlock()
	}
}

// Dropped returns how many events were discarded because the queue was full
func (j *Journal) Dropped() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.dropped
}

// Stop flushes what is queued and shuts the writer down
func (j *Journal) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
	j.wg.Wait()
}

// writer is the background goroutine that batches and writes events to DB
func (j *Journal) writer() {
	defer j.wg.Done()

	batch := make([]Event, 0, 64)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt := <-j.events:
			batch = append(batch, evt)
			if len(batch) >= 50 {
				j.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				j.flush(batch)
				batch = batch[:0]
			}
		case <-j.stop:
			for {
				select {
				case evt := <-j.events:
					batch = append(batch, evt)
				default:
					j.flush(batch)
					return
				}
			}
		}
	}
}

func (j *Journal) flush(events []Event) {
	if j.db == nil || len(events) == 0 {
		return
	}
	if err := j.db.InsertEvents(events); err != nil {
		Log.Warnw("journal flush failed", "events", len(events), "err", err)
	}
}

// Recent returns the newest persisted events, optionally for one lobby
func (j *Journal) Recent(lobby string, limit int) ([]EventRow, error) {
	if j.db == nil {
		return nil, nil
	}
	return j.db.RecentEvents(lobby, limit)
}

// Counts tallies persisted events by type; an empty lobby covers every room
func (j *Journal) Counts(lobby string) (map[string]int, error) {
	if j.db == nil {
		return map[string]int{}, nil
	}
	return j.db.EventCounts(lobby)
}

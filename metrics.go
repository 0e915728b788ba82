package main

import "sync/atomic"

// RoomMetrics counts what a room did since it was created. Writers are
// the room goroutine and the transport; readers are the admin API.
type RoomMetrics struct {
	TickCount      int64
	TotalTickNs    int64
	InputsAccepted int64
	PosesAccepted  int64
	InboxFull      int64 // commands dropped because the mailbox was full
	Shots          int64
	Hits           int64
	Kills          int64
	Downs          int64
	LevelsCleared  int64
}

func (m *RoomMetrics) IncInput()     { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *RoomMetrics) IncPose()      { atomic.AddInt64(&m.PosesAccepted, 1) }
func (m *RoomMetrics) IncInboxFull() { atomic.AddInt64(&m.InboxFull, 1) }
func (m *RoomMetrics) AddShot()      { atomic.AddInt64(&m.Shots, 1) }
func (m *RoomMetrics) AddHit()       { atomic.AddInt64(&m.Hits, 1) }
func (m *RoomMetrics) AddKill()      { atomic.AddInt64(&m.Kills, 1) }
func (m *RoomMetrics) AddDown()      { atomic.AddInt64(&m.Downs, 1) }
func (m *RoomMetrics) AddLevel()     { atomic.AddInt64(&m.LevelsCleared, 1) }

func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot returns a read-only copy for the HTTP API
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":      tick,
		"avg_tick_ms":     avgMs,
		"inputs_accepted": atomic.LoadInt64(&m.InputsAccepted),
		"poses_accepted":  atomic.LoadInt64(&m.PosesAccepted),
		"inbox_full":      atomic.LoadInt64(&m.InboxFull),
		"shots":           atomic.LoadInt64(&m.Shots),
		"hits":            atomic.LoadInt64(&m.Hits),
		"kills":           atomic.LoadInt64(&m.Kills),
		"downs":           atomic.LoadInt64(&m.Downs),
		"levels_cleared":  atomic.LoadInt64(&m.LevelsCleared),
	}
}

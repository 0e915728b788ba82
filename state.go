package main

import "sort"

// LevelPhase is the room-level progression state
type LevelPhase int

const (
	// PhaseInProgress: cats remain, the portal is closed
	PhaseInProgress LevelPhase = iota
	// PhaseCleared: every cat is gone (or bots are off), the portal is open
	PhaseCleared
)

func (p LevelPhase) String() string {
	if p == PhaseCleared {
		return "cleared"
	}
	return "in_progress"
}

// WorldState is the replicated aggregate of one room. Only the room
// goroutine writes to it.
type WorldState struct {
	Level       int
	Phase       LevelPhase
	Players     map[string]*Player
	Cats        map[string]*Cat
	Projectiles map[string]*Projectile
	Pickups     map[string]*Pickup
}

func newWorldState(level int) WorldState {
	return WorldState{
		Level:       level,
		Players:     make(map[string]*Player),
		Cats:        make(map[string]*Cat),
		Projectiles: make(map[string]*Projectile),
		Pickups:     make(map[string]*Pickup),
	}
}

// PortalActive reports whether the level exit is open
func (w *WorldState) PortalActive() bool {
	return w.Phase == PhaseCleared
}

// Snapshot copies the world into its replicated form. The result shares
// nothing with the live state, so it is safe to hand to other goroutines.
func (w *WorldState) Snapshot(tick uint64) Snapshot {
	s := Snapshot{
		Tick:         tick,
		Level:        w.Level,
		PortalActive: w.PortalActive(),
		Players:      make([]PlayerState, 0, len(w.Players)),
		Cats:         make([]CatState, 0, len(w.Cats)),
		Projectiles:  make([]ProjectileState, 0, len(w.Projectiles)),
		Pickups:      make([]PickupState, 0, len(w.Pickups)),
	}
	for _, id := range sortedKeys(w.Players) {
		s.Players = append(s.Players, w.Players[id].ToState())
	}
	for _, id := range sortedKeys(w.Cats) {
		s.Cats = append(s.Cats, w.Cats[id].ToState())
	}
	for _, id := range sortedKeys(w.Projectiles) {
		s.Projectiles = append(s.Projectiles, w.Projectiles[id].ToState())
	}
	for _, id := range sortedKeys(w.Pickups) {
		s.Pickups = append(s.Pickups, w.Pickups[id].ToState())
	}
	return s
}

// livingPlayers returns the players that can be targeted, in id order
func (w *WorldState) livingPlayers() []*Player {
	out := make([]*Player, 0, len(w.Players))
	for _, id := range sortedKeys(w.Players) {
		if p := w.Players[id]; p.Alive() {
			out = append(out, p)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package main

import "fmt"

// Pickup kinds
const (
	PickupHealth = "health"
	PickupAmmo   = "ammo"
)

const pickupHeight = 0.4

// Pickup is a floor item that restores health or ammo on contact
type Pickup struct {
	ID      string
	Kind    string
	X, Y, Z float64
	Amount  int
}

// ToState converts to protocol state
func (p *Pickup) ToState() PickupState {
	return PickupState{
		ID:     p.ID,
		Kind:   p.Kind,
		X:      p.X,
		Y:      p.Y,
		Z:      p.Z,
		Amount: p.Amount,
	}
}

// Apply gives the pickup's effect to a player. It returns false, leaving
// the player untouched, when the stat is already full.
func (p *Pickup) Apply(pl *Player, t *Tuning) bool {
	switch p.Kind {
	case PickupHealth:
		if pl.HP >= t.PlayerMaxHP {
			return false
		}
		pl.HP = min(t.PlayerMaxHP, pl.HP+p.Amount)
		return true
	case PickupAmmo:
		if pl.Ammo >= t.MaxAmmo {
			return false
		}
		pl.Ammo = min(t.MaxAmmo, pl.Ammo+p.Amount)
		return true
	}
	return false
}

// healthPickupCount grows with the level, with a bonus on level 3
func healthPickupCount(level int) int {
	n := 3 + level/2
	if level == 3 {
		n += 2
	}
	return max(2, n)
}

const ammoPickupCount = 4

// seedPickups places the current level's health and ammo pickups at
// their fixed waypoints
func (r *Room) seedPickups() {
	level := r.state.Level
	n := len(PickupPoints)
	for i := 0; i < healthPickupCount(level); i++ {
		r.addPickup(PickupHealth, PickupPoints[(i+level)%n], r.tuning.HealthAmount)
	}
	for i := 0; i < ammoPickupCount; i++ {
		r.addPickup(PickupAmmo, PickupPoints[(i+level*2+3)%n], r.tuning.AmmoAmount)
	}
	r.log.Debugw("pickups seeded", "level", level, "pickups", len(r.state.Pickups))
}

func (r *Room) addPickup(kind string, at MapPoint, amount int) {
	r.pickupSeq++
	pos := MapToWorld(at, pickupHeight)
	id := fmt.Sprintf("pickup-%d", r.pickupSeq)
	r.state.Pickups[id] = &Pickup{ID: id, Kind: kind, X: pos.X, Y: pos.Y, Z: pos.Z, Amount: amount}
}

// stepPickups hands each pickup to the first living player in range whose
// stat is not full. A pickup nobody can use stays in place.
func (r *Room) stepPickups() {
	rad2 := r.tuning.PickupRadius * r.tuning.PickupRadius
	players := r.state.livingPlayers()
	for _, id := range sortedKeys(r.state.Pickups) {
		pk := r.state.Pickups[id]
		for _, p := range players {
			if DistanceSq(p.X, p.Z, pk.X, pk.Z) > rad2 {
				continue
			}
			if !pk.Apply(p, &r.tuning) {
				continue
			}
			delete(r.state.Pickups, id)
			r.emit(EvtPickupCollected, p.ID, id, "kind", pk.Kind, "amount", pk.Amount)
			break
		}
	}
}

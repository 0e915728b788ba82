package main

import "time"

// LifeState is the player's health state machine
type LifeState int

const (
	Alive LifeState = iota
	Downed
)

func (s LifeState) String() string {
	if s == Downed {
		return "downed"
	}
	return "alive"
}

// Player represents a connected client's avatar. It is replicated as-is.
type Player struct {
	ID        string
	Name      string
	X, Y, Z   float64
	RotY      float64
	HP        int
	Ammo      int
	RespawnIn float64 // seconds left while Downed, 0 otherwise
	Life      LifeState
}

// NewPlayer creates a player at a spawn point with full health
func NewPlayer(id, name string, spawn Vec3, t *Tuning) *Player {
	return &Player{
		ID:   id,
		Name: name,
		X:    spawn.X,
		Y:    spawn.Y,
		Z:    spawn.Z,
		HP:   t.PlayerMaxHP,
		Ammo: t.StartAmmo,
		Life: Alive,
	}
}

// Alive reports whether the player can act and be acted upon
func (p *Player) Alive() bool {
	return p.Life == Alive && p.HP > 0
}

// TakeDamage reduces HP and returns true if this hit brought the player to 0.
// Downed players are not damaged again.
func (p *Player) TakeDamage(dmg int) bool {
	if !p.Alive() {
		return false
	}
	p.HP -= dmg
	if p.HP <= 0 {
		p.HP = 0
		return true
	}
	return false
}

// down moves an Alive player into Downed. Returns false if already Downed.
func (p *Player) down(delay time.Duration) bool {
	if p.Life == Downed {
		return false
	}
	p.Life = Downed
	p.HP = 0
	p.RespawnIn = delay.Seconds()
	return true
}

// revive returns a Downed (or any) player to Alive at a spawn point
func (p *Player) revive(spawn Vec3, t *Tuning) {
	p.X, p.Y, p.Z = spawn.X, spawn.Y, spawn.Z
	p.HP = t.PlayerMaxHP
	if p.Ammo < t.RespawnAmmoFloor {
		p.Ammo = t.RespawnAmmoFloor
	}
	p.RespawnIn = 0
	p.Life = Alive
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:        p.ID,
		Name:      p.Name,
		X:         p.X,
		Y:         p.Y,
		Z:         p.Z,
		RotY:      p.RotY,
		HP:        p.HP,
		Ammo:      p.Ammo,
		RespawnIn: round2(p.RespawnIn),
	}
}

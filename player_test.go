package main

import (
	"testing"
	"time"
)

func TestNewPlayer(t *testing.T) {
	tn := DefaultTuning()
	p := NewPlayer("abc", "Ace", Vec3{1, 2, 3}, &tn)
	if p.HP != 100 || p.Ammo != 90 || p.Life != Alive || p.RespawnIn != 0 {
		t.Errorf("unexpected new player %+v", p)
	}
	if p.X != 1 || p.Y != 2 || p.Z != 3 {
		t.Errorf("expected spawn position, got (%v,%v,%v)", p.X, p.Y, p.Z)
	}
}

func TestPlayerTakeDamage(t *testing.T) {
	tn := DefaultTuning()
	p := NewPlayer("a", "a", Vec3{}, &tn)
	if p.TakeDamage(30) {
		t.Error("30 damage should not kill")
	}
	if p.HP != 70 {
		t.Errorf("expected 70 hp, got %d", p.HP)
	}
	if !p.TakeDamage(80) {
		t.Error("expected lethal hit")
	}
	if p.HP != 0 {
		t.Errorf("expected hp clamped to 0, got %d", p.HP)
	}
	if p.TakeDamage(10) {
		t.Error("a player at 0 hp cannot die again")
	}
}

func TestPlayerDownAndRevive(t *testing.T) {
	tn := DefaultTuning()
	p := NewPlayer("a", "a", Vec3{}, &tn)
	p.Ammo = 10
	if !p.down(5 * time.Second) {
		t.Fatal("expected down to succeed")
	}
	if p.Life != Downed || p.RespawnIn != 5 || p.Alive() {
		t.Errorf("unexpected downed state %+v", p)
	}
	if p.down(5 * time.Second) {
		t.Error("down twice must be refused")
	}
	if p.TakeDamage(10) || p.HP != 0 {
		t.Error("downed players take no damage")
	}

	p.revive(Vec3{4, 1, 4}, &tn)
	if !p.Alive() || p.HP != 100 || p.RespawnIn != 0 {
		t.Errorf("unexpected revived state %+v", p)
	}
	if p.Ammo != tn.RespawnAmmoFloor {
		t.Errorf("expected ammo floored to %d, got %d", tn.RespawnAmmoFloor, p.Ammo)
	}

	p.Ammo = 150
	p.down(time.Second)
	p.revive(Vec3{}, &tn)
	if p.Ammo != 150 {
		t.Errorf("revive must not lower ammo, got %d", p.Ammo)
	}
}

func TestPlayerToStateRoundsCountdown(t *testing.T) {
	p := &Player{ID: "a", RespawnIn: 3.14159}
	if s := p.ToState(); s.RespawnIn != 3.14 {
		t.Errorf("expected 3.14, got %v", s.RespawnIn)
	}
}

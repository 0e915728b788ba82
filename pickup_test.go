package main

import "testing"

func TestPickupCounts(t *testing.T) {
	cases := map[int]int{0: 3, 1: 3, 2: 4, 3: 6, 4: 5, 6: 6}
	for level, want := range cases {
		if got := healthPickupCount(level); got != want {
			t.Errorf("level %d: expected %d health pickups, got %d", level, want, got)
		}
	}

	r, _ := newTestRoom(t, RoomOptions{Bots: false})
	health, ammo := 0, 0
	for _, pk := range r.state.Pickups {
		switch pk.Kind {
		case PickupHealth:
			health++
		case PickupAmmo:
			ammo++
		}
	}
	if health != 3 || ammo != ammoPickupCount {
		t.Errorf("expected 3 health and %d ammo pickups, got %d/%d", ammoPickupCount, health, ammo)
	}
}

func TestPickupApplyIsIdempotentWhenFull(t *testing.T) {
	tn := DefaultTuning()
	hp := &Pickup{Kind: PickupHealth, Amount: 22}
	ammo := &Pickup{Kind: PickupAmmo, Amount: 10}
	p := &Player{HP: 100, Ammo: 200, Life: Alive}
	if hp.Apply(p, &tn) || ammo.Apply(p, &tn) {
		t.Error("full stats must refuse the pickup")
	}
	if p.HP != 100 || p.Ammo != 200 {
		t.Errorf("player changed: %+v", p)
	}

	p.HP, p.Ammo = 90, 195
	if !hp.Apply(p, &tn) || !ammo.Apply(p, &tn) {
		t.Fatal("expected both pickups applied")
	}
	if p.HP != 100 || p.Ammo != 200 {
		t.Errorf("expected stats capped at 100/200, got %d/%d", p.HP, p.Ammo)
	}
}

func firstPickup(r *Room, kind string) *Pickup {
	for _, id := range sortedKeys(r.state.Pickups) {
		if pk := r.state.Pickups[id]; pk.Kind == kind {
			return pk
		}
	}
	return nil
}

func TestPickupCollection(t *testing.T) {
	r, _ := newTestRoom(t, RoomOptions{Bots: false})
	p, _ := joinTest(t, r, "pilot")
	pk := firstPickup(r, PickupHealth)
	place(p, pk.X, pk.Z, 0)

	r.stepPickups()
	if _, ok := r.state.Pickups[pk.ID]; !ok {
		t.Fatal("full-health player must leave the pickup in place")
	}

	p.HP = 50
	r.stepPickups()
	if p.HP != 72 {
		t.Errorf("expected 72 hp, got %d", p.HP)
	}
	if _, ok := r.state.Pickups[pk.ID]; ok {
		t.Error("expected pickup consumed")
	}
}

func TestPickupSkipsPlayersThatCannotUseIt(t *testing.T) {
	r, _ := newTestRoom(t, RoomOptions{Bots: false})
	a, _ := joinTest(t, r, "a")
	b, _ := joinTest(t, r, "b")
	pk := firstPickup(r, PickupAmmo)
	place(a, pk.X, pk.Z, 0)
	place(b, pk.X+0.1, pk.Z, 0)
	a.Ammo, b.Ammo = 200, 200
	first := r.state.Players[sortedKeys(r.state.Players)[0]]
	second := r.state.Players[sortedKeys(r.state.Players)[1]]
	second.Ammo = 50

	r.stepPickups()
	if first.Ammo != 200 || second.Ammo != 60 {
		t.Errorf("expected second player to collect, ammo %d/%d", first.Ammo, second.Ammo)
	}
}

func TestDownedPlayersDoNotCollect(t *testing.T) {
	r, _ := newTestRoom(t, RoomOptions{Bots: false})
	p, _ := joinTest(t, r, "pilot")
	pk := firstPickup(r, PickupHealth)
	place(p, pk.X, pk.Z, 0)
	p.TakeDamage(100)
	r.scheduleRespawn(p.ID)

	r.stepPickups()
	if _, ok := r.state.Pickups[pk.ID]; !ok {
		t.Error("downed player collected a pickup")
	}
}

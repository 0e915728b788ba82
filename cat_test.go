package main

import (
	"math"
	"reflect"
	"sync/atomic"
	"testing"
)

func TestSeedCatsCountsAndBoss(t *testing.T) {
	r, _ := newTestRoom(t, RoomOptions{Bots: true})
	want := LevelAt(0).CatCount
	if len(r.state.Cats) != want {
		t.Fatalf("expected %d cats, got %d", want, len(r.state.Cats))
	}
	if len(r.brains) != want {
		t.Errorf("expected a brain per cat, got %d brains", len(r.brains))
	}
	boss := r.state.Cats["cat-1"]
	if boss == nil || !boss.IsBoss() || boss.HP != 20 {
		t.Fatalf("expected cat-1 to be a 20hp boss, got %+v", boss)
	}
	tn := DefaultTuning()
	for id, c := range r.state.Cats {
		if id != "cat-1" && (c.Type != CatNormal || c.HP != 10) {
			t.Errorf("expected normal 10hp cat, got %+v", c)
		}
		if Blocked(c.X, c.Z, tn.CatRadius) {
			t.Errorf("cat %s spawned inside a wall at (%v,%v)", id, c.X, c.Z)
		}
		if r.brains[id] == nil {
			t.Errorf("cat %s has no brain", id)
		}
	}
}

func TestNoCatsWithoutBots(t *testing.T) {
	r, _ := newTestRoom(t, RoomOptions{Bots: false})
	if len(r.state.Cats) != 0 || len(r.brains) != 0 {
		t.Errorf("expected no cats, got %d", len(r.state.Cats))
	}
}

func TestRemoveCatDropsBrainAndProjectiles(t *testing.T) {
	r, _ := newTestRoom(t, RoomOptions{Bots: true})
	r.state.Projectiles["p-x"] = &Projectile{ID: "p-x", OwnerID: CatOwnerID("cat-2"), Life: 1}
	r.state.Projectiles["p-y"] = &Projectile{ID: "p-y", OwnerID: CatOwnerID("cat-3"), Life: 1}

	r.removeCat("cat-2")
	if _, ok := r.state.Cats["cat-2"]; ok {
		t.Error("expected cat removed")
	}
	if _, ok := r.brains["cat-2"]; ok {
		t.Error("expected brain removed with its cat")
	}
	if _, ok := r.state.Projectiles["p-x"]; ok {
		t.Error("expected the cat's projectile removed")
	}
	if _, ok := r.state.Projectiles["p-y"]; !ok {
		t.Error("other cats' projectiles must survive")
	}
}

func TestCatOwnerTag(t *testing.T) {
	if !IsCatOwner(CatOwnerID("cat-7")) {
		t.Error("expected cat owner tag")
	}
	if IsCatOwner("a1b2c3d4") {
		t.Error("session ids are not cat owners")
	}
}

func TestResolveCatTargetIsSticky(t *testing.T) {
	near := &Player{ID: "near", X: 1, HP: 100, Life: Alive}
	far := &Player{ID: "far", X: 10, HP: 100, Life: Alive}
	cat := &Cat{ID: "cat-1"}
	brain := &CatBrain{}

	if got := resolveCatTarget(cat, brain, []*Player{far, near}); got != near {
		t.Fatalf("expected nearest player, got %v", got)
	}

	brain.TargetID = "far"
	if got := resolveCatTarget(cat, brain, []*Player{far, near}); got != far {
		t.Errorf("expected to keep the current target, got %v", got)
	}

	// target no longer among the living: retarget to the nearest
	if got := resolveCatTarget(cat, brain, []*Player{near}); got != near || brain.TargetID != "near" {
		t.Errorf("expected retarget to near, got %v (target %q)", got, brain.TargetID)
	}

	if got := resolveCatTarget(cat, brain, nil); got != nil || brain.TargetID != "" {
		t.Errorf("expected no target, got %v", got)
	}
}

func soloCatRoom(t *testing.T) (*Room, *Cat, *CatBrain, *Player) {
	t.Helper()
	r, _ := newTestRoom(t, RoomOptions{Bots: true})
	for _, id := range sortedKeys(r.state.Cats) {
		if id != "cat-2" {
			r.removeCat(id)
		}
	}
	cat := r.state.Cats["cat-2"]
	cat.X, cat.Z, cat.RotY = 0, 0, 0
	brain := r.brains["cat-2"]
	brain.ShootIn = 0
	p, _ := joinTest(t, r, "target")
	place(p, 0, 5, 0)
	return r, cat, brain, p
}

func TestCatShootsWhenFacingTarget(t *testing.T) {
	r, cat, brain, p := soloCatRoom(t)
	before := len(r.state.Projectiles)
	r.tryCatShoot(cat, brain, p, 5, 0, 1)
	if len(r.state.Projectiles) != before+1 {
		t.Fatalf("expected one cat projectile")
	}
	var proj *Projectile
	for _, pr := range r.state.Projectiles {
		proj = pr
	}
	if proj.OwnerID != CatOwnerID(cat.ID) || proj.Damage != 8 {
		t.Errorf("unexpected projectile %+v", proj)
	}
	if math.Abs(proj.Y-(cat.Y+0.56)) > 1e-9 {
		t.Errorf("expected shot height %v, got %v", cat.Y+0.56, proj.Y)
	}
	if brain.ShootIn < 1.35 || brain.ShootIn > 2.1 {
		t.Errorf("expected cooldown within the normal gap, got %v", brain.ShootIn)
	}
}

func TestCatHoldsFire(t *testing.T) {
	r, cat, brain, p := soloCatRoom(t)

	r.tryCatShoot(cat, brain, p, 11, 0, 1)
	if len(r.state.Projectiles) != 0 {
		t.Error("target beyond fire range must not be shot")
	}

	r.tryCatShoot(cat, brain, p, 5, 0, -1)
	if len(r.state.Projectiles) != 0 {
		t.Error("target behind the cat must not be shot")
	}

	brain.ShootIn = 0.3
	r.tryCatShoot(cat, brain, p, 5, 0, 1)
	if len(r.state.Projectiles) != 0 {
		t.Error("cat on cooldown must not shoot")
	}
}

func TestCatSeparationPushesApart(t *testing.T) {
	r, _ := newTestRoom(t, RoomOptions{Bots: true})
	a := r.state.Cats["cat-2"]
	b := r.state.Cats["cat-3"]
	for _, id := range sortedKeys(r.state.Cats) {
		if id != a.ID && id != b.ID {
			r.removeCat(id)
		}
	}
	a.X, a.Z = 0, 0
	b.X, b.Z = 0.5, 0
	sx, sz := r.computeSeparation(a)
	if sx >= 0 || math.Abs(sz) > 1e-9 {
		t.Errorf("expected push toward -x, got (%v,%v)", sx, sz)
	}

	b.X = 5
	sx, sz = r.computeSeparation(a)
	if sx != 0 || sz != 0 {
		t.Errorf("expected no push outside personal space, got (%v,%v)", sx, sz)
	}
}

func TestKeepInArenaTurnsTowardCentre(t *testing.T) {
	r, _ := newTestRoom(t, RoomOptions{Bots: true})
	cat := &Cat{X: 14.5, Z: 0}
	got := r.keepInArena(cat, math.Pi/2)
	if got >= math.Pi/2 {
		t.Errorf("expected heading pulled away from the +x edge, got %v", got)
	}
	cat.X = 0
	if got := r.keepInArena(cat, math.Pi/2); got != math.Pi/2 {
		t.Errorf("expected heading unchanged near the centre, got %v", got)
	}
}

func TestIdleCatsHoldFire(t *testing.T) {
	r, clock := newTestRoom(t, RoomOptions{Bots: true})
	step(r, clock, 100)
	if len(r.state.Projectiles) != 0 {
		t.Errorf("cats without targets fired %d projectiles", len(r.state.Projectiles))
	}
}

// Long soak with one passive player: cats stay out of walls, keep their
// brains and never leave the arena.
func TestCatsStayInBoundsOverLongRun(t *testing.T) {
	r, clock := newTestRoom(t, RoomOptions{Bots: true, Level: 2})
	p, _ := joinTest(t, r, "bait")
	tn := DefaultTuning()

	for i := 0; i < 2000; i++ {
		step(r, clock, 1)
		if len(r.state.Cats) != len(r.brains) {
			t.Fatalf("tick %d: %d cats but %d brains", i, len(r.state.Cats), len(r.brains))
		}
		for id, c := range r.state.Cats {
			if r.brains[id] == nil {
				t.Fatalf("tick %d: cat %s without brain", i, id)
			}
			if Blocked(c.X, c.Z, tn.CatRadius) {
				t.Fatalf("tick %d: cat %s inside a wall at (%v,%v)", i, id, c.X, c.Z)
			}
			if math.Abs(c.X) > tn.ArenaHalfSize || math.Abs(c.Z) > tn.ArenaHalfSize {
				t.Fatalf("tick %d: cat %s left the arena", i, id)
			}
		}
		if p.HP < 0 || p.HP > 100 {
			t.Fatalf("tick %d: player hp out of range: %d", i, p.HP)
		}
		if p.Life == Downed && p.HP != 0 {
			t.Fatalf("tick %d: downed player with hp %d", i, p.HP)
		}
	}
	if n := atomic.LoadInt64(&r.metrics.Shots); n != 0 {
		t.Errorf("passive player should not fire, got %d shots", n)
	}
}

func TestCatShotRespectsProjectileCap(t *testing.T) {
	r, cat, brain, p := soloCatRoom(t)
	for i := 0; i < maxProjectilesPerRoom; i++ {
		id := r.nextProjectileID()
		r.state.Projectiles[id] = &Projectile{ID: id, OwnerID: "x", Life: 1}
	}
	r.tryCatShoot(cat, brain, p, 5, 0, 1)
	if len(r.state.Projectiles) != maxProjectilesPerRoom {
		t.Errorf("expected cap of %d projectiles, got %d", maxProjectilesPerRoom, len(r.state.Projectiles))
	}
}

// steadyCat freezes the decision and fire timers so steerCat keeps the
// heading logic under test.
func steadyCat(brain *CatBrain, preferred float64) {
	brain.ThinkIn = 100
	brain.ShootIn = 100
	brain.OrbitDir = 1
	brain.PreferredRange = preferred
	brain.StuckFor = 0
}

func TestCatApproachesDistantTarget(t *testing.T) {
	r, cat, brain, p := soloCatRoom(t)
	steadyCat(brain, 2)
	brain.LastX, brain.LastZ = cat.X, cat.Z

	r.steerCat(cat, brain, p, testDt)
	if math.Cos(brain.DesiredYaw) < 0.9 {
		t.Errorf("expected heading toward the target (yaw ~0), got %v", brain.DesiredYaw)
	}
	for i := 0; i < 9; i++ {
		r.steerCat(cat, brain, p, testDt)
	}
	if d := math.Hypot(p.X-cat.X, p.Z-cat.Z); d > 4.5 {
		t.Errorf("expected the cat to close in from 5, got %v", d)
	}
}

func TestCatRetreatsFromCloseTarget(t *testing.T) {
	r, cat, brain, p := soloCatRoom(t)
	steadyCat(brain, 6.8)
	cat.RotY = math.Pi
	brain.LastX, brain.LastZ = cat.X, cat.Z

	r.steerCat(cat, brain, p, testDt)
	if math.Cos(brain.DesiredYaw) > -0.8 {
		t.Errorf("expected heading away from the target, got yaw %v", brain.DesiredYaw)
	}
	for i := 0; i < 9; i++ {
		r.steerCat(cat, brain, p, testDt)
	}
	if d := math.Hypot(p.X-cat.X, p.Z-cat.Z); d < 5.5 {
		t.Errorf("expected the cat to back off from 5, got %v", d)
	}
}

func TestBossMovesSlowerThanNormalCat(t *testing.T) {
	moved := func(catType string) float64 {
		r, cat, brain, p := soloCatRoom(t)
		cat.Type = catType
		steadyCat(brain, 2)
		brain.LastX, brain.LastZ = cat.X, cat.Z
		x, z := cat.X, cat.Z
		r.steerCat(cat, brain, p, testDt)
		return math.Hypot(cat.X-x, cat.Z-z)
	}
	normal := moved(CatNormal)
	boss := moved(CatBoss)
	if normal <= 0 {
		t.Fatalf("expected the normal cat to move, got %v", normal)
	}
	want := DefaultTuning().CatBossSpeedScale
	if got := boss / normal; math.Abs(got-want) > 1e-9 {
		t.Errorf("expected boss/normal speed ratio %v, got %v", want, got)
	}
}

func TestCatBreaksOutWhenPinnedAgainstWall(t *testing.T) {
	r, cat, brain, p := soloCatRoom(t)
	tn := DefaultTuning()
	// corner between the row 7 wall and the east border; the target sits
	// on the far side of the wall so the approach heading pushes into it
	cat.X, cat.Z = 13.6, 0.4
	place(p, 13, -6, 0)
	steadyCat(brain, 4.2)
	brain.LastX, brain.LastZ = cat.X, cat.Z
	cat.RotY = YawOf(0.15, -0.97)

	peak := 0.0
	broke := false
	for i := 0; i < 40 && !broke; i++ {
		r.steerCat(cat, brain, p, testDt)
		if Blocked(cat.X, cat.Z, tn.CatRadius) {
			t.Fatalf("tick %d: cat inside a wall at (%v,%v)", i, cat.X, cat.Z)
		}
		peak = math.Max(peak, brain.StuckFor)
		broke = brain.ThinkIn != 100
	}
	if !broke {
		t.Fatalf("expected a breakout, stuck for %v", brain.StuckFor)
	}
	if peak < tn.CatStuckThreshold/2 {
		t.Errorf("expected the stuck timer to build up first, peak %v", peak)
	}
	if brain.StuckFor != 0 {
		t.Errorf("expected stuck timer reset, got %v", brain.StuckFor)
	}
	if brain.ThinkIn < catBreakoutThinkMin || brain.ThinkIn > catBreakoutThinkMax {
		t.Errorf("expected next decision within [%v,%v], got %v", catBreakoutThinkMin, catBreakoutThinkMax, brain.ThinkIn)
	}
}

func TestIdleCatReheadsOnCadence(t *testing.T) {
	r, _ := newTestRoom(t, RoomOptions{Bots: true})
	for _, id := range sortedKeys(r.state.Cats) {
		if id != "cat-2" {
			r.removeCat(id)
		}
	}
	brain := r.brains["cat-2"]
	brain.ThinkIn = 0

	r.stepCats(testDt)
	if brain.ThinkIn < catIdleThinkMin || brain.ThinkIn > catIdleThinkMax {
		t.Fatalf("expected idle think delay within [%v,%v], got %v", catIdleThinkMin, catIdleThinkMax, brain.ThinkIn)
	}

	yaw := brain.DesiredYaw
	since := 0.0
	changes := 0
	for i := 0; i < 200; i++ {
		r.stepCats(testDt)
		since += testDt
		if brain.DesiredYaw == yaw {
			continue
		}
		if since < catIdleThinkMin-1e-9 || since > catIdleThinkMax+testDt+1e-9 {
			t.Errorf("re-heading after %.2fs, expected between %v and %v", since, catIdleThinkMin, catIdleThinkMax+testDt)
		}
		yaw = brain.DesiredYaw
		since = 0
		changes++
	}
	if changes < 4 {
		t.Errorf("expected at least 4 new headings in 10s, got %d", changes)
	}
}

func TestSameSeedReplaysIdentically(t *testing.T) {
	run := func() Snapshot {
		r, clock := newTestRoom(t, RoomOptions{Bots: true, Level: 6, Seed: 42})
		joinTest(t, r, "bait")
		step(r, clock, 3000)
		snap := r.Snapshot()
		// session ids are random
		for i := range snap.Players {
			snap.Players[i].ID = ""
		}
		for i := range snap.Projectiles {
			if !IsCatOwner(snap.Projectiles[i].OwnerID) {
				snap.Projectiles[i].OwnerID = ""
			}
		}
		return snap
	}
	a, b := run(), run()
	if !reflect.DeepEqual(a.Cats, b.Cats) {
		t.Errorf("cats diverged:\n%+v\n%+v", a.Cats, b.Cats)
	}
	if !reflect.DeepEqual(a.Projectiles, b.Projectiles) {
		t.Errorf("projectiles diverged:\n%+v\n%+v", a.Projectiles, b.Projectiles)
	}
	if !reflect.DeepEqual(a.Players, b.Players) || !reflect.DeepEqual(a.Pickups, b.Pickups) {
		t.Errorf("players or pickups diverged")
	}
	if a.Level != b.Level || a.PortalActive != b.PortalActive {
		t.Errorf("progression diverged: %d/%v vs %d/%v", a.Level, a.PortalActive, b.Level, b.PortalActive)
	}
}

package main

import (
	"math"
	"testing"
)

func TestArenaBorderIsSolid(t *testing.T) {
	for i := 0; i < MapW; i++ {
		if !IsWall(i, 0) || !IsWall(i, MapH-1) || !IsWall(0, i) || !IsWall(MapW-1, i) {
			t.Fatalf("expected border wall at index %d", i)
		}
	}
	if !IsWall(-1, 5) || !IsWall(5, MapH) {
		t.Error("tiles outside the map must be solid")
	}
	if IsWall(1, 1) {
		t.Error("expected floor at (1,1)")
	}
}

func TestCoordinateConversion(t *testing.T) {
	v := MapToWorld(MapPoint{8, 8.5}, 1)
	if v.X != 0 || v.Y != 1 || v.Z != 1 {
		t.Errorf("expected (0,1,1), got %+v", v)
	}
	cx, cy := WorldToCell(0, 0)
	if cx != 8 || cy != 8 {
		t.Errorf("expected cell (8,8), got (%d,%d)", cx, cy)
	}
	cx, cy = WorldToCell(-16, -16)
	if cx != 0 || cy != 0 {
		t.Errorf("expected cell (0,0), got (%d,%d)", cx, cy)
	}
}

func TestLevelPointsAreReachable(t *testing.T) {
	tn := DefaultTuning()
	for i := range Levels {
		spawn := RespawnPoint(i)
		if Blocked(spawn.X, spawn.Z, tn.PlayerRadius) {
			t.Errorf("level %d spawn %+v is inside a wall", i, spawn)
		}
		portal := PortalPoint(i)
		if Blocked(portal.X, portal.Z, tn.PlayerRadius) {
			t.Errorf("level %d portal %+v is inside a wall", i, portal)
		}
	}
	for _, p := range CatSpawnPoints {
		w := MapToWorld(p, 0)
		if Blocked(w.X, w.Z, tn.CatRadius) {
			t.Errorf("cat spawn %+v is inside a wall", p)
		}
	}
	for _, p := range PickupPoints {
		w := MapToWorld(p, 0)
		if !collectable(w, tn) {
			t.Errorf("pickup point %+v cannot be reached by a player", p)
		}
	}
}

// collectable reports whether a player can stand somewhere inside the
// pickup radius of w.
func collectable(w Vec3, tn Tuning) bool {
	reach := tn.PickupRadius - 0.05
	for r := 0.0; r <= reach; r += 0.05 {
		for a := 0.0; a < 2*math.Pi; a += math.Pi / 16 {
			if !Blocked(w.X+r*math.Cos(a), w.Z+r*math.Sin(a), tn.PlayerRadius) {
				return true
			}
		}
	}
	return false
}

func TestPickupWaypointNextToWallIsCollectable(t *testing.T) {
	tn := DefaultTuning()
	w := MapToWorld(MapPoint{12.2, 7.8}, 0)
	if !IsWall(WorldToCell(w.X, w.Z)) {
		t.Fatalf("expected waypoint %+v to overlap the row 7 wall", w)
	}
	// standing just south of the wall face
	px, pz := w.X, tn.PlayerRadius+0.01
	if Blocked(px, pz, tn.PlayerRadius) {
		t.Fatalf("expected (%v,%v) to be open floor", px, pz)
	}
	if d := math.Hypot(px-w.X, pz-w.Z); d > tn.PickupRadius {
		t.Errorf("expected distance within %v, got %v", tn.PickupRadius, d)
	}
}

func TestSlideMoveDropsBlockedAxis(t *testing.T) {
	// row 2 columns 3-6 are solid: world x in [-10,-2], z in [-12,-10]
	x, z := SlideMove(-6, -8.5, 0.5, -1.5, 0.3, 15)
	if x != -5.5 {
		t.Errorf("expected x to slide to -5.5, got %v", x)
	}
	if z != -8.5 {
		t.Errorf("expected z blocked at -8.5, got %v", z)
	}
}

func TestSlideMoveEscapesOverlap(t *testing.T) {
	// centre of a wall tile; movement is unrestricted so the circle can get out
	x, z := SlideMove(-6, -11, 1, 0, 0.3, 15)
	if x != -5 || z != -11 {
		t.Errorf("expected free move to (-5,-11), got (%v,%v)", x, z)
	}
}

func TestClampLevel(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{-2, 0},
		{2.7, 2},
		{99, LastLevel()},
	}
	for _, c := range cases {
		if got := ClampLevel(c.in); got != c.want {
			t.Errorf("ClampLevel(%v): expected %d, got %d", c.in, c.want, got)
		}
	}
	if LevelAt(-1).CatCount != Levels[0].CatCount {
		t.Error("expected LevelAt to fall back to the first level")
	}
}

package main

import (
	"math"
	"regexp"
	"testing"
)

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, -math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{4*math.Pi + 0.5, 0.5},
	}
	for _, c := range cases {
		if got := NormalizeAngle(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v): expected %v, got %v", c.in, c.want, got)
		}
	}
}

func TestNormalizeAngleHugeInput(t *testing.T) {
	for _, in := range []float64{1e300, -1e300, 1e18} {
		got := NormalizeAngle(in)
		if got < -math.Pi || got > math.Pi {
			t.Errorf("NormalizeAngle(%v) out of range: %v", in, got)
		}
	}
}

func TestRotateTowards(t *testing.T) {
	if got := RotateTowards(0, 1, 0.2); math.Abs(got-0.2) > 1e-9 {
		t.Errorf("expected 0.2, got %v", got)
	}
	if got := RotateTowards(0, 0.1, 0.5); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("expected to reach target 0.1, got %v", got)
	}
	// 3 -> -3 is shorter through PI
	got := RotateTowards(3, -3, 0.5)
	if math.Abs(got-(-3)) > 1e-9 {
		t.Errorf("expected short way round to -3, got %v", got)
	}
}

func TestNormalize2D(t *testing.T) {
	x, z := Normalize2D(0, 0)
	if x != 0 || z != 0 {
		t.Errorf("expected zero vector, got (%v,%v)", x, z)
	}
	x, z = Normalize2D(3, 4)
	if math.Abs(x-0.6) > 1e-9 || math.Abs(z-0.8) > 1e-9 {
		t.Errorf("expected (0.6,0.8), got (%v,%v)", x, z)
	}
}

func TestFacingAndYaw(t *testing.T) {
	fx, fz := Facing(0)
	if math.Abs(fx) > 1e-9 || math.Abs(fz-1) > 1e-9 {
		t.Errorf("yaw 0 should face +z, got (%v,%v)", fx, fz)
	}
	if got := YawOf(1, 0); math.Abs(got-math.Pi/2) > 1e-9 {
		t.Errorf("expected yaw PI/2 for +x, got %v", got)
	}
}

func TestGenerateIDs(t *testing.T) {
	id := GenerateID(4)
	if len(id) != 8 {
		t.Errorf("expected 8 hex chars, got %q", id)
	}
	if GenerateID(4) == id {
		t.Error("expected distinct ids")
	}
	re := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	if u := GenerateUUID(); !re.MatchString(u) {
		t.Errorf("expected v4 uuid, got %q", u)
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"b": 1, "c": 2, "a": 3}
	keys := sortedKeys(m)
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("expected [a b c], got %v", keys)
	}
}

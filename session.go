package main

import (
	"math"
	"strings"
	"time"
)

// PlayerInput is the clamped, sampled movement intent of one client
type PlayerInput struct {
	Forward float64
	Strafe  float64
	Turn    float64
	Sprint  bool
	Shoot   bool
}

// Pose is a clamped client pose correction waiting for the next tick
type Pose struct {
	X, Y, Z, RotY float64
}

// Session is the per-client data that is never replicated to other clients.
// Network handlers only write the staged fields; the tick consumes them.
type Session struct {
	ID         string
	Input      PlayerInput
	FireCD     float64   // seconds until the next shot is allowed
	LastPoseAt time.Time // zero until the first pose arrives
	RespawnAt  time.Time // zero while no respawn is pending

	pendingPose   *Pose
	pendingShot   *ShootMsg
	portalRequest bool
}

// NewSession creates a session with zeroed input and no cooldown
func NewSession(id string) *Session {
	return &Session{ID: id}
}

// ClampInput coerces untrusted input into legal ranges. Missing or
// non-finite axes are zero.
func ClampInput(in ClientInput, maxTurn float64) PlayerInput {
	axis := func(v *float64, limit float64) float64 {
		if v == nil {
			return 0
		}
		return Clamp(finiteOr(*v, 0), -limit, limit)
	}
	return PlayerInput{
		Forward: axis(in.Forward, 1),
		Strafe:  axis(in.Strafe, 1),
		Turn:    axis(in.Turn, maxTurn),
		Sprint:  in.Sprint,
		Shoot:   in.Shoot,
	}
}

// ClampPose coerces an untrusted pose into the arena and height band.
// Missing or non-finite fields keep the player's current value. HP and
// ammo mirrors are ignored.
func ClampPose(msg PoseMsg, p *Player, t *Tuning) Pose {
	field := func(v *float64, current float64) float64 {
		if v == nil {
			return current
		}
		return finiteOr(*v, current)
	}
	half := t.ArenaHalfSize
	return Pose{
		X:    Clamp(field(msg.X, p.X), -half, half),
		Y:    Clamp(field(msg.Y, p.Y), t.MinHeight, t.MaxHeight),
		Z:    Clamp(field(msg.Z, p.Z), -half, half),
		RotY: NormalizeAngle(field(msg.RotY, p.RotY)),
	}
}

// CleanName trims and bounds a display name
func CleanName(name string, t *Tuning) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return t.DefaultName
	}
	if r := []rune(name); len(r) > t.MaxNameLen {
		name = string(r[:t.MaxNameLen])
	}
	return name
}

// poseGraceActive reports whether a recent pose still overrides input movement
func (s *Session) poseGraceActive(now time.Time, grace time.Duration) bool {
	if s.LastPoseAt.IsZero() {
		return false
	}
	return now.Sub(s.LastPoseAt) < grace
}

// ResolveAim turns an optional aim hint into a unit direction. Missing or
// non-finite components fall back to the facing vector per component; a
// near-zero result falls back to facing entirely.
func ResolveAim(hint *ShootMsg, yaw float64) (float64, float64, float64) {
	fx, fz := Facing(yaw)
	fy := 0.0
	if hint == nil {
		return fx, fy, fz
	}
	comp := func(v *float64, fallback float64) float64 {
		if v == nil {
			return fallback
		}
		return finiteOr(*v, fallback)
	}
	x := comp(hint.DirX, fx)
	y := comp(hint.DirY, fy)
	z := comp(hint.DirZ, fz)
	l := math.Sqrt(x*x + y*y + z*z)
	if l <= 0.00001 {
		return fx, fy, fz
	}
	return x / l, y / l, z / l
}

package main

import (
	"crypto/rand"
	"encoding/hex"
	"math"

	"github.com/google/uuid"
)

// GenerateID returns a random hex string of the given byte length
func GenerateID(byteLen int) string {
	b := make([]byte, byteLen)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// GenerateUUID returns a random (v4) UUID string
func GenerateUUID() string {
	return uuid.NewString()
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// finiteOr returns v, or fallback when v is NaN or infinite
func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// DistanceSq returns the squared distance between two points on the ground plane
func DistanceSq(x1, z1, x2, z2 float64) float64 {
	dx := x2 - x1
	dz := z2 - z1
	return dx*dx + dz*dz
}

// Normalize2D returns the unit vector of (x, z), or zero for degenerate input
func Normalize2D(x, z float64) (float64, float64) {
	l := math.Hypot(x, z)
	if l <= 0.00001 {
		return 0, 0
	}
	return x / l, z / l
}

// NormalizeAngle wraps angle to [-PI, PI]
func NormalizeAngle(a float64) float64 {
	if a >= -math.Pi && a <= math.Pi {
		return a
	}
	// Remainder keeps huge client-supplied angles from looping forever
	return math.Remainder(a, 2*math.Pi)
}

// RotateTowards turns current toward desired by at most maxStep radians,
// taking the short way round.
func RotateTowards(current, desired, maxStep float64) float64 {
	delta := Clamp(NormalizeAngle(desired-current), -maxStep, maxStep)
	return NormalizeAngle(current + delta)
}

// YawOf returns the yaw that faces along (x, z). Yaw 0 faces +Z.
func YawOf(x, z float64) float64 {
	return math.Atan2(x, z)
}

// Facing returns the ground-plane unit vector for a yaw
func Facing(yaw float64) (float64, float64) {
	return math.Sin(yaw), math.Cos(yaw)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

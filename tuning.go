package main

import (
	"math"
	"time"
)

// Tuning holds every gameplay constant a room uses. A room copies it at
// construction and never mutates it, so tests can override fields freely.
type Tuning struct {
	ArenaHalfSize float64
	MinHeight     float64
	MaxHeight     float64

	BaseSpeed     float64
	SprintSpeed   float64
	TurnSpeed     float64
	MaxTurnInput  float64
	PlayerRadius  float64
	PoseGrace     time.Duration
	MaxNameLen    int
	DefaultName   string

	PlayerMaxHP      int
	StartAmmo        int
	MaxAmmo          int
	RespawnAmmoFloor int
	RespawnDelay     time.Duration

	FireCooldown       float64
	ProjectileDamage   int
	ProjectileSpeed    float64
	ProjectileLife     float64
	ProjectileRadius   float64
	ProjectileOffset   float64
	ProjectileBoundary float64

	CatRadius         float64
	CatBaseSpeed      float64
	CatTurnSpeed      float64
	CatPersonalSpace  float64
	CatEdgeMargin     float64
	CatIdleSpeedScale float64
	CatBossSpeedScale float64
	CatBreakoutAngle  float64
	CatStuckSpeed     float64
	CatStuckMoved     float64
	CatStuckThreshold float64
	CatShootCone      float64
	Normal            CatArchetype
	Boss              CatArchetype

	PickupRadius float64
	HealthAmount int
	AmmoAmount   int

	PortalRadius float64
}

// CatArchetype collects the per-archetype combat constants
type CatArchetype struct {
	HP               int
	SpawnHeight      float64
	ShotHeight       float64
	FireRange        float64
	ProjectileDamage int
	ProjectileSpeed  float64
	ProjectileLife   float64
	AimSpread        float64
	RangeMin         float64
	RangeMax         float64
	SeedRangeMin     float64
	SeedRangeMax     float64
	ShotGapMin       float64
	ShotGapMax       float64
}

// DefaultTuning returns the production tuning
func DefaultTuning() Tuning {
	return Tuning{
		ArenaHalfSize: 15,
		MinHeight:     0.2,
		MaxHeight:     8,

		BaseSpeed:    5,
		SprintSpeed:  8,
		TurnSpeed:    2.8,
		MaxTurnInput: 3,
		PlayerRadius: 0.3,
		PoseGrace:    250 * time.Millisecond,
		MaxNameLen:   24,
		DefaultName:  "Pilot",

		PlayerMaxHP:      100,
		StartAmmo:        90,
		MaxAmmo:          200,
		RespawnAmmoFloor: 90,
		RespawnDelay:     5 * time.Second,

		FireCooldown:       0.24,
		ProjectileDamage:   10,
		ProjectileSpeed:    10.625,
		ProjectileLife:     3.5,
		ProjectileRadius:   0.45,
		ProjectileOffset:   0.9,
		ProjectileBoundary: 2,

		CatRadius:         0.35,
		CatBaseSpeed:      3.2,
		CatTurnSpeed:      3.8,
		CatPersonalSpace:  1.4,
		CatEdgeMargin:     0.9,
		CatIdleSpeedScale: 0.28,
		CatBossSpeedScale: 0.93,
		CatBreakoutAngle:  0.55 * math.Pi,
		CatStuckSpeed:     1.1,
		CatStuckMoved:     0.015,
		CatStuckThreshold: 0.35,
		CatShootCone:      0.35,
		Normal: CatArchetype{
			HP:               10,
			SpawnHeight:      0.56,
			ShotHeight:       0.56,
			FireRange:        10.5,
			ProjectileDamage: 8,
			ProjectileSpeed:  9.2,
			ProjectileLife:   3.2,
			AimSpread:        0.045,
			RangeMin:         4.2,
			RangeMax:         6.8,
			SeedRangeMin:     4.4,
			SeedRangeMax:     6.6,
			ShotGapMin:       1.35,
			ShotGapMax:       2.1,
		},
		Boss: CatArchetype{
			HP:               20,
			SpawnHeight:      0.56,
			ShotHeight:       0.64,
			FireRange:        13,
			ProjectileDamage: 12,
			ProjectileSpeed:  9.2,
			ProjectileLife:   3.2,
			AimSpread:        0.02,
			RangeMin:         6.1,
			RangeMax:         8.1,
			SeedRangeMin:     6.2,
			SeedRangeMax:     7.8,
			ShotGapMin:       0.95,
			ShotGapMax:       1.35,
		},

		PickupRadius: 0.95,
		HealthAmount: 22,
		AmmoAmount:   10,

		PortalRadius: 1.4,
	}
}

// archetype returns the combat constants for a cat type
func (t *Tuning) archetype(catType string) *CatArchetype {
	if catType == CatBoss {
		return &t.Boss
	}
	return &t.Normal
}

package main

import (
	"fmt"
	"math"
	"strings"
)

// Cat archetypes
const (
	CatNormal = "normal"
	CatBoss   = "boss"
)

// catOwnerPrefix tags projectiles fired by cats so they never hit cats
const catOwnerPrefix = "cat:"

// Orbit/approach blend weights and decision timings
const (
	catOrbitWeight        = 0.95
	catApproachWeight     = 0.95
	catApproachOrbit      = 0.24
	catRetreatWeight      = 0.9
	catRetreatOrbit       = 0.4
	catCorrectiveWeight   = 0.34
	catApproachSlack      = 1.1
	catRetreatSlack       = 0.85
	catSeparationWeight   = 0.65
	catSeparationYawPull  = 0.45
	catEdgeYawPull        = 1.2
	catOrbitFlipChance    = 0.08
	catThinkMin           = 1.15
	catThinkMax           = 2.05
	catIdleThinkMin       = 1.2
	catIdleThinkMax       = 2.2
	catBreakoutJitter     = 0.4
	catBreakoutTurnScale  = 1.9
	catBreakoutSpeedScale = 0.9
	catBreakoutThinkMin   = 0.8
	catBreakoutThinkMax   = 1.4
	catStuckDecay         = 0.7
	catSpawnJitter        = 0.35
	catSpawnInset         = 0.8
	catMuzzleOffset       = 0.75
)

// Cat is an AI-controlled opponent. It is replicated as-is; its decision
// memory lives in a separate CatBrain.
type Cat struct {
	ID      string
	Type    string
	X, Y, Z float64
	RotY    float64
	HP      int
}

// CatBrain is the per-cat decision memory. It is never sent to clients and
// is created and destroyed together with its cat.
type CatBrain struct {
	TargetID       string
	ThinkIn        float64 // seconds until the next steering decision
	OrbitDir       float64 // +1 or -1
	PreferredRange float64
	ShootIn        float64 // seconds until the next shot is allowed
	DesiredYaw     float64
	StuckFor       float64
	LastX, LastZ   float64
}

// NewCat creates a cat with its archetype's starting health
func NewCat(id, catType string, pos Vec3, t *Tuning) *Cat {
	return &Cat{
		ID:   id,
		Type: catType,
		X:    pos.X,
		Y:    pos.Y,
		Z:    pos.Z,
		HP:   t.archetype(catType).HP,
	}
}

// IsBoss reports whether the cat is the elite archetype
func (c *Cat) IsBoss() bool {
	return c.Type == CatBoss
}

// TakeDamage reduces HP and returns true if the cat died
func (c *Cat) TakeDamage(dmg int) bool {
	if c.HP <= 0 {
		return false
	}
	c.HP -= dmg
	if c.HP <= 0 {
		c.HP = 0
		return true
	}
	return false
}

// ToState converts to protocol state
func (c *Cat) ToState() CatState {
	return CatState{
		ID:   c.ID,
		Type: c.Type,
		X:    c.X,
		Y:    c.Y,
		Z:    c.Z,
		RotY: c.RotY,
		HP:   c.HP,
	}
}

// CatOwnerID is the projectile owner tag for a cat
func CatOwnerID(catID string) string {
	return catOwnerPrefix + catID
}

// IsCatOwner reports whether a projectile owner tag belongs to a cat
func IsCatOwner(ownerID string) bool {
	return strings.HasPrefix(ownerID, catOwnerPrefix)
}

func (r *Room) randRange(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}

func (r *Room) randSign() float64 {
	if r.rng.Float64() < 0.5 {
		return -1
	}
	return 1
}

// seedCats spawns the current level's cats and their brains. The first cat
// of every level is the boss.
func (r *Room) seedCats() {
	t := &r.tuning
	inset := t.ArenaHalfSize - catSpawnInset
	count := LevelAt(r.state.Level).CatCount
	for i := 0; i < count; i++ {
		catType := CatNormal
		if i == 0 {
			catType = CatBoss
		}
		arch := t.archetype(catType)
		base := MapToWorld(CatSpawnPoints[i%len(CatSpawnPoints)], arch.SpawnHeight)
		pos := Vec3{
			X: Clamp(base.X+r.randRange(-catSpawnJitter, catSpawnJitter), -inset, inset),
			Y: arch.SpawnHeight,
			Z: Clamp(base.Z+r.randRange(-catSpawnJitter, catSpawnJitter), -inset, inset),
		}
		if Blocked(pos.X, pos.Z, t.CatRadius) {
			pos.X, pos.Z = base.X, base.Z
		}

		r.catSeq++
		id := fmt.Sprintf("cat-%d", r.catSeq)
		cat := NewCat(id, catType, pos, t)
		r.state.Cats[id] = cat
		r.brains[id] = &CatBrain{
			ThinkIn:        r.randRange(0.15, 0.8),
			OrbitDir:       r.randSign(),
			PreferredRange: r.randRange(arch.SeedRangeMin, arch.SeedRangeMax),
			ShootIn:        r.randRange(0.45, 1.25),
			DesiredYaw:     r.randRange(-math.Pi, math.Pi),
			LastX:          cat.X,
			LastZ:          cat.Z,
		}
	}
	r.log.Debugw("cats seeded", "level", r.state.Level, "cats", len(r.state.Cats))
}

// removeCat deletes a cat, its brain and its projectiles in one step
func (r *Room) removeCat(id string) {
	delete(r.state.Cats, id)
	delete(r.brains, id)
	r.removeProjectilesByOwner(CatOwnerID(id))
}

// stepCats runs one decision/steering/shooting pass for every cat
func (r *Room) stepCats(dt float64) {
	players := r.state.livingPlayers()
	for _, id := range sortedKeys(r.state.Cats) {
		cat := r.state.Cats[id]
		brain := r.brains[id]
		if brain == nil {
			continue
		}
		brain.ThinkIn -= dt
		brain.ShootIn -= dt

		target := resolveCatTarget(cat, brain, players)
		if target == nil {
			r.idleCat(cat, brain, dt)
			continue
		}
		r.steerCat(cat, brain, target, dt)
	}
}

// resolveCatTarget keeps the current target while it is alive, otherwise
// picks the nearest living player.
func resolveCatTarget(cat *Cat, brain *CatBrain, players []*Player) *Player {
	if brain.TargetID != "" {
		for _, p := range players {
			if p.ID == brain.TargetID {
				return p
			}
		}
	}
	var closest *Player
	best := math.Inf(1)
	for _, p := range players {
		if d := DistanceSq(cat.X, cat.Z, p.X, p.Z); d < best {
			best = d
			closest = p
		}
	}
	brain.TargetID = ""
	if closest != nil {
		brain.TargetID = closest.ID
	}
	return closest
}

// idleCat wanders slowly with a new random heading every so often
func (r *Room) idleCat(cat *Cat, brain *CatBrain, dt float64) {
	t := &r.tuning
	if brain.ThinkIn <= 0 {
		brain.DesiredYaw = r.randRange(-math.Pi, math.Pi)
		brain.ThinkIn = r.randRange(catIdleThinkMin, catIdleThinkMax)
	}
	cat.RotY = RotateTowards(cat.RotY, brain.DesiredYaw, t.CatTurnSpeed*dt)
	r.moveCat(cat, t.CatBaseSpeed*t.CatIdleSpeedScale*dt)
	brain.LastX, brain.LastZ = cat.X, cat.Z
}

func (r *Room) moveCat(cat *Cat, dist float64) {
	fx, fz := Facing(cat.RotY)
	cat.X, cat.Z = SlideMove(cat.X, cat.Z, fx*dist, fz*dist, r.tuning.CatRadius, r.tuning.ArenaHalfSize)
}

// steerCat blends orbit, range keeping and separation into a heading,
// turns toward it, moves, breaks out when stuck and maybe fires.
func (r *Room) steerCat(cat *Cat, brain *CatBrain, target *Player, dt float64) {
	t := &r.tuning
	arch := t.archetype(cat.Type)

	toX, toZ := target.X-cat.X, target.Z-cat.Z
	dirX, dirZ := Normalize2D(toX, toZ)
	dist := math.Hypot(toX, toZ)

	if brain.ThinkIn <= 0 {
		if r.rng.Float64() < catOrbitFlipChance {
			brain.OrbitDir = -brain.OrbitDir
		}
		brain.PreferredRange = r.randRange(arch.RangeMin, arch.RangeMax)
		brain.ThinkIn = r.randRange(catThinkMin, catThinkMax)
	}

	tanX, tanZ := -dirZ*brain.OrbitDir, dirX*brain.OrbitDir
	wantX, wantZ := tanX*catOrbitWeight, tanZ*catOrbitWeight
	switch {
	case dist > brain.PreferredRange+catApproachSlack:
		wantX = dirX*catApproachWeight + tanX*catApproachOrbit
		wantZ = dirZ*catApproachWeight + tanZ*catApproachOrbit
	case dist < brain.PreferredRange-catRetreatSlack:
		wantX = -dirX*catRetreatWeight + tanX*catRetreatOrbit
		wantZ = -dirZ*catRetreatWeight + tanZ*catRetreatOrbit
	default:
		wantX += dirX * catCorrectiveWeight
		wantZ += dirZ * catCorrectiveWeight
	}

	sepX, sepZ := r.computeSeparation(cat)
	wantX += sepX * catSeparationWeight
	wantZ += sepZ * catSeparationWeight
	wantX, wantZ = Normalize2D(wantX, wantZ)
	desired := YawOf(wantX, wantZ)
	if sepX != 0 || sepZ != 0 {
		desired = RotateTowards(desired, YawOf(sepX, sepZ), catSeparationYawPull)
	}
	desired = r.keepInArena(cat, desired)
	brain.DesiredYaw = desired
	cat.RotY = RotateTowards(cat.RotY, desired, t.CatTurnSpeed*dt)

	// slow down while still turning instead of sliding sideways
	facingErr := math.Abs(NormalizeAngle(brain.DesiredYaw - cat.RotY))
	speed := t.CatBaseSpeed * Clamp((math.Cos(facingErr)+0.35)/1.35, 0.2, 1)
	if cat.IsBoss() {
		speed *= t.CatBossSpeedScale
	}
	r.moveCat(cat, speed*dt)

	moved := math.Hypot(cat.X-brain.LastX, cat.Z-brain.LastZ)
	if speed > t.CatStuckSpeed && moved < t.CatStuckMoved {
		brain.StuckFor += dt
	} else {
		brain.StuckFor = math.Max(0, brain.StuckFor-dt*catStuckDecay)
	}
	if brain.StuckFor > t.CatStuckThreshold {
		breakYaw := NormalizeAngle(brain.DesiredYaw + brain.OrbitDir*t.CatBreakoutAngle +
			r.randRange(-catBreakoutJitter, catBreakoutJitter))
		cat.RotY = RotateTowards(cat.RotY, breakYaw, t.CatTurnSpeed*catBreakoutTurnScale*dt)
		r.moveCat(cat, t.CatBaseSpeed*catBreakoutSpeedScale*dt)
		brain.StuckFor = 0
		brain.ThinkIn = r.randRange(catBreakoutThinkMin, catBreakoutThinkMax)
	}
	brain.LastX, brain.LastZ = cat.X, cat.Z

	r.tryCatShoot(cat, brain, target, dist, dirX, dirZ)
}

// computeSeparation sums pushes away from cats inside personal space,
// each weighted by overlap depth, and normalises the result.
func (r *Room) computeSeparation(cat *Cat) (float64, float64) {
	space := r.tuning.CatPersonalSpace
	var sx, sz float64
	for _, id := range sortedKeys(r.state.Cats) {
		other := r.state.Cats[id]
		if id == cat.ID || other.HP <= 0 {
			continue
		}
		dx, dz := cat.X-other.X, cat.Z-other.Z
		d2 := dx*dx + dz*dz
		if d2 <= 0.0001 {
			continue
		}
		d := math.Sqrt(d2)
		if d > space {
			continue
		}
		push := (space - d) / space
		sx += dx / d * push
		sz += dz / d * push
	}
	return Normalize2D(sx, sz)
}

// keepInArena pulls the desired heading toward the centre near the edge
func (r *Room) keepInArena(cat *Cat, desired float64) float64 {
	edge := r.tuning.ArenaHalfSize - r.tuning.CatEdgeMargin
	if math.Abs(cat.X) <= edge && math.Abs(cat.Z) <= edge {
		return desired
	}
	cx, cz := Normalize2D(-cat.X, -cat.Z)
	return RotateTowards(desired, YawOf(cx, cz), catEdgeYawPull)
}

// tryCatShoot fires when the cooldown is up, the target is in range and
// roughly in front of the cat.
func (r *Room) tryCatShoot(cat *Cat, brain *CatBrain, target *Player, dist, dirX, dirZ float64) {
	t := &r.tuning
	arch := t.archetype(cat.Type)
	if brain.ShootIn > 0 || dist > arch.FireRange {
		return
	}
	if len(r.state.Projectiles) >= maxProjectilesPerRoom {
		return
	}
	fx, fz := Facing(cat.RotY)
	if fx*dirX+fz*dirZ < t.CatShootCone {
		return
	}

	spread := arch.AimSpread
	aimX, aimZ := Normalize2D(dirX+r.randRange(-spread, spread), dirZ+r.randRange(-spread, spread))
	proj := &Projectile{
		ID:      r.nextProjectileID(),
		OwnerID: CatOwnerID(cat.ID),
		X:       cat.X + aimX*catMuzzleOffset,
		Y:       cat.Y + arch.ShotHeight,
		Z:       cat.Z + aimZ*catMuzzleOffset,
		VX:      aimX * arch.ProjectileSpeed,
		VZ:      aimZ * arch.ProjectileSpeed,
		Life:    arch.ProjectileLife,
		Damage:  arch.ProjectileDamage,
	}
	r.state.Projectiles[proj.ID] = proj
	brain.ShootIn = r.randRange(arch.ShotGapMin, arch.ShotGapMax)
	r.emit(EvtProjectileSpawned, "", proj.ID, "owner", proj.OwnerID, "target", target.ID)
}

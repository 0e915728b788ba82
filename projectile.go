package main

import "fmt"

// Projectile is a straight-flying shot owned by a session or a cat
type Projectile struct {
	ID         string
	OwnerID    string // session id, or "cat:<catId>"
	X, Y, Z    float64
	VX, VY, VZ float64
	Life       float64
	Damage     int
}

// Update integrates the projectile one step and ages it
func (p *Projectile) Update(dt float64) {
	p.Life -= dt
	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.Z += p.VZ * dt
}

// Expired reports whether the projectile ran out of life or left the
// arena plus its margin
func (p *Projectile) Expired(t *Tuning) bool {
	limit := t.ArenaHalfSize + t.ProjectileBoundary
	return p.Life <= 0 || p.X > limit || p.X < -limit || p.Z > limit || p.Z < -limit
}

// ToState converts to protocol state
func (p *Projectile) ToState() ProjectileState {
	return ProjectileState{
		ID:      p.ID,
		OwnerID: p.OwnerID,
		X:       p.X,
		Y:       p.Y,
		Z:       p.Z,
		VX:      p.VX,
		VY:      p.VY,
		VZ:      p.VZ,
		Life:    round2(p.Life),
		Damage:  p.Damage,
	}
}

func (r *Room) nextProjectileID() string {
	r.projectileSeq++
	return fmt.Sprintf("p-%d", r.projectileSeq)
}

// tryShoot fires one player projectile if the cooldown and ammo allow it.
// aim may be nil, in which case the player's facing is used.
func (r *Room) tryShoot(sess *Session, p *Player, aim *ShootMsg) bool {
	t := &r.tuning
	if !p.Alive() || sess.FireCD > 0 || p.Ammo <= 0 {
		return false
	}
	if len(r.state.Projectiles) >= maxProjectilesPerRoom {
		return false
	}
	p.Ammo--
	sess.FireCD = t.FireCooldown

	ax, ay, az := ResolveAim(aim, p.RotY)
	proj := &Projectile{
		ID:      r.nextProjectileID(),
		OwnerID: p.ID,
		X:       p.X + ax*t.ProjectileOffset,
		Y:       p.Y + 0.5 + ay*0.2,
		Z:       p.Z + az*t.ProjectileOffset,
		VX:      ax * t.ProjectileSpeed,
		VY:      ay * t.ProjectileSpeed,
		VZ:      az * t.ProjectileSpeed,
		Life:    t.ProjectileLife,
		Damage:  t.ProjectileDamage,
	}
	r.state.Projectiles[proj.ID] = proj
	r.metrics.AddShot()
	r.emit(EvtProjectileSpawned, p.ID, proj.ID, "owner", p.ID, "ammo", p.Ammo)
	return true
}

// stepProjectiles moves every projectile, removes expired ones and resolves
// at most one hit per projectile. Players are tested before cats.
func (r *Room) stepProjectiles(dt float64) {
	for _, id := range sortedKeys(r.state.Projectiles) {
		proj, ok := r.state.Projectiles[id]
		if !ok {
			// removed earlier this step with its dead owner
			continue
		}
		proj.Update(dt)
		if proj.Expired(&r.tuning) {
			delete(r.state.Projectiles, id)
			continue
		}
		if r.tryHitPlayer(proj) || r.tryHitCat(proj) {
			delete(r.state.Projectiles, id)
		}
	}
}

func (r *Room) tryHitPlayer(proj *Projectile) bool {
	rad2 := r.tuning.ProjectileRadius * r.tuning.ProjectileRadius
	for _, pid := range sortedKeys(r.state.Players) {
		p := r.state.Players[pid]
		if pid == proj.OwnerID || !p.Alive() {
			continue
		}
		if DistanceSq(p.X, p.Z, proj.X, proj.Z) > rad2 {
			continue
		}
		died := p.TakeDamage(proj.Damage)
		r.metrics.AddHit()
		r.emit(EvtHitRegistered, pid, proj.ID, "owner", proj.OwnerID, "target", pid, "hp", p.HP)
		if died {
			r.scheduleRespawn(pid)
		}
		return true
	}
	return false
}

func (r *Room) tryHitCat(proj *Projectile) bool {
	if IsCatOwner(proj.OwnerID) {
		return false
	}
	rad2 := r.tuning.ProjectileRadius * r.tuning.ProjectileRadius
	for _, cid := range sortedKeys(r.state.Cats) {
		cat := r.state.Cats[cid]
		if cat.HP <= 0 {
			continue
		}
		if DistanceSq(cat.X, cat.Z, proj.X, proj.Z) > rad2 {
			continue
		}
		died := cat.TakeDamage(proj.Damage)
		r.metrics.AddHit()
		r.emit(EvtHitRegistered, proj.OwnerID, proj.ID, "owner", proj.OwnerID, "target", cid, "hp", cat.HP)
		if died {
			r.removeCat(cid)
			r.metrics.AddKill()
			r.emit(EvtCatKilled, proj.OwnerID, cid, "type", cat.Type)
			r.checkPortalUnlock()
		}
		return true
	}
	return false
}

// removeProjectilesByOwner drops every live projectile of one owner
func (r *Room) removeProjectilesByOwner(ownerID string) {
	for id, proj := range r.state.Projectiles {
		if proj.OwnerID == ownerID {
			delete(r.state.Projectiles, id)
		}
	}
}

package main

import "time"

// scheduleRespawn moves a player that just reached 0 HP into Downed and
// starts the respawn countdown. A player is never scheduled twice.
func (r *Room) scheduleRespawn(id string) bool {
	p := r.state.Players[id]
	sess := r.sessions[id]
	if p == nil || sess == nil || !sess.RespawnAt.IsZero() {
		return false
	}
	delay := r.tuning.RespawnDelay
	if !p.down(delay) {
		return false
	}
	sess.RespawnAt = r.now().Add(delay)
	r.metrics.AddDown()
	r.emit(EvtPlayerDowned, id, id, "respawnIn", delay.Seconds())
	return true
}

// stepRespawns refreshes the visible countdown of downed players and
// revives those whose deadline has passed
func (r *Room) stepRespawns() {
	now := r.now()
	for _, id := range sortedKeys(r.state.Players) {
		p := r.state.Players[id]
		sess := r.sessions[id]
		if sess == nil || p.Life != Downed {
			continue
		}
		if sess.RespawnAt.IsZero() {
			sess.RespawnAt = now.Add(r.tuning.RespawnDelay)
		}
		if remaining := sess.RespawnAt.Sub(now); remaining > 0 {
			p.RespawnIn = remaining.Seconds()
			continue
		}
		r.completeRespawn(id)
	}
}

// completeRespawn returns a downed player to the current level's spawn
func (r *Room) completeRespawn(id string) {
	p := r.state.Players[id]
	sess := r.sessions[id]
	if p == nil || sess == nil || p.Life != Downed {
		return
	}
	p.revive(RespawnPoint(r.state.Level), &r.tuning)
	sess.RespawnAt = time.Time{}
	r.emit(EvtPlayerRespawned, id, id, "level", r.state.Level)
}

// checkPortalUnlock opens the portal once no cats remain, or immediately
// when the room runs without bots
func (r *Room) checkPortalUnlock() {
	if r.state.Phase == PhaseCleared {
		return
	}
	if r.opts.Bots && len(r.state.Cats) > 0 {
		return
	}
	r.state.Phase = PhaseCleared
	r.emit(EvtPortalOpened, "", "", "level", r.state.Level)
}

func (r *Room) playerWithinPortal(p *Player) bool {
	portal := PortalPoint(r.state.Level)
	rad := r.tuning.PortalRadius
	return DistanceSq(p.X, p.Z, portal.X, portal.Z) <= rad*rad
}

// tryAdvanceLevel moves the whole room to the next level when the portal
// is open and the requester stands inside it. The last level has no exit.
func (r *Room) tryAdvanceLevel(id string) bool {
	p := r.state.Players[id]
	if p == nil || !p.Alive() {
		return false
	}
	if r.state.Phase != PhaseCleared || !r.playerWithinPortal(p) {
		return false
	}
	if r.state.Level >= LastLevel() {
		return false
	}

	from := r.state.Level
	r.state.Level++
	spawn := RespawnPoint(r.state.Level)
	for _, pid := range sortedKeys(r.state.Players) {
		pl := r.state.Players[pid]
		if pl.Life == Downed {
			pl.revive(spawn, &r.tuning)
		} else {
			pl.X, pl.Y, pl.Z = spawn.X, spawn.Y, spawn.Z
			pl.HP = r.tuning.PlayerMaxHP
			pl.RespawnIn = 0
		}
		if sess := r.sessions[pid]; sess != nil {
			sess.RespawnAt = time.Time{}
		}
	}

	r.resetLevelContent()
	r.metrics.AddLevel()
	r.emit(EvtLevelAdvanced, id, "", "from", from, "level", r.state.Level, "players", len(r.state.Players))
	r.publishInfo()
	return true
}

// resetLevelContent replaces every cat, projectile and pickup with the
// current level's fresh set
func (r *Room) resetLevelContent() {
	r.state.Phase = PhaseInProgress
	clear(r.state.Cats)
	clear(r.brains)
	clear(r.state.Projectiles)
	clear(r.state.Pickups)

	if r.opts.Bots {
		r.seedCats()
	}
	r.seedPickups()
	r.checkPortalUnlock()
}

// stepCoordinator runs respawn timers and resolves portal requests in
// session order
func (r *Room) stepCoordinator() {
	r.stepRespawns()
	for _, id := range sortedKeys(r.sessions) {
		sess := r.sessions[id]
		if !sess.portalRequest {
			continue
		}
		sess.portalRequest = false
		r.tryAdvanceLevel(id)
	}
}

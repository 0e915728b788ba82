package main

import "math"

// stepCooldowns ages every session's fire cooldown
func (r *Room) stepCooldowns(dt float64) {
	for _, sess := range r.sessions {
		sess.FireCD = math.Max(0, sess.FireCD-dt)
	}
}

// applyStagedIntents consumes poses and shot requests recorded since the
// previous tick. Poses go first so a shot leaves from the corrected spot.
func (r *Room) applyStagedIntents() {
	now := r.now()
	for _, id := range sortedKeys(r.sessions) {
		sess := r.sessions[id]
		p := r.state.Players[id]
		if p == nil {
			continue
		}
		if pose := sess.pendingPose; pose != nil {
			sess.pendingPose = nil
			if p.Alive() {
				p.X, p.Y, p.Z, p.RotY = pose.X, pose.Y, pose.Z, pose.RotY
				sess.LastPoseAt = now
			}
		}
		if shot := sess.pendingShot; shot != nil {
			sess.pendingShot = nil
			r.tryShoot(sess, p, shot)
		}
	}
}

// stepPlayers applies sampled input to every living player that has not
// sent a pose recently, sliding along walls, and handles hold-to-fire.
func (r *Room) stepPlayers(dt float64) {
	t := &r.tuning
	now := r.now()
	for _, id := range sortedKeys(r.state.Players) {
		p := r.state.Players[id]
		sess := r.sessions[id]
		if sess == nil || !p.Alive() {
			continue
		}
		if sess.poseGraceActive(now, t.PoseGrace) {
			continue
		}
		in := sess.Input
		p.RotY = NormalizeAngle(p.RotY + in.Turn*t.TurnSpeed*dt)

		mx, mz := Normalize2D(in.Strafe, in.Forward)
		speed := t.BaseSpeed
		if in.Sprint {
			speed = t.SprintSpeed
		}
		sin, cos := math.Sincos(p.RotY)
		wx := mx*cos + mz*sin
		wz := mz*cos - mx*sin
		p.X, p.Z = SlideMove(p.X, p.Z, wx*speed*dt, wz*speed*dt, t.PlayerRadius, t.ArenaHalfSize)

		if in.Shoot {
			r.tryShoot(sess, p, nil)
		}
	}
}

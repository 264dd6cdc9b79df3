package sim

import "github.com/cory-johannsen/npcbrain/internal/geom"

// Player is the tracked target. It walks a looping path and, with AutoPunch,
// punches whenever an agent is within reach. It satisfies behavior.Target.
type Player struct {
	pos     geom.Vec3
	path    []geom.Vec3
	next    int
	speed   float64
	striker *Striker
	// AutoPunch makes the player swing at anything in reach.
	AutoPunch bool
}

// NewPlayer returns a player at start walking path at speed. striker may be
// nil for a player that never punches.
func NewPlayer(start geom.Vec3, path []geom.Vec3, speed float64, striker *Striker) *Player {
	return &Player{pos: start, path: path, speed: speed, striker: striker}
}

func (p *Player) Position() geom.Vec3 { return p.pos }

// Teleport moves the player to pos.
func (p *Player) Teleport(pos geom.Vec3) { p.pos = pos }

// Punch starts a punch. It reports false while on cooldown or unarmed.
func (p *Player) Punch() bool {
	if p.striker == nil {
		return false
	}
	return p.striker.Punch()
}

// Step walks the path and resolves punches against targets.
func (p *Player) Step(dt float64, targets []Hittable) []Hit {
	p.walk(dt)
	if p.striker == nil {
		return nil
	}
	if p.AutoPunch && !p.striker.Punching() {
		for _, t := range targets {
			if geom.FlatDistance(p.pos, t.Position()) <= p.striker.cfg.Reach {
				p.striker.Punch()
				break
			}
		}
	}
	return p.striker.Update(dt, p.pos, targets)
}

func (p *Player) walk(dt float64) {
	if len(p.path) == 0 || p.speed <= 0 {
		return
	}
	budget := p.speed * dt
	// Bounded so a degenerate path of identical points cannot spin forever.
	for i := 0; i < len(p.path) && budget > 0; i++ {
		goal := p.path[p.next]
		d := geom.FlatDistance(p.pos, goal)
		if d > budget {
			p.pos = p.pos.Add(goal.Sub(p.pos).Flat().Normalize().Scale(budget))
			return
		}
		p.pos = geom.Vec3{X: goal.X, Y: p.pos.Y, Z: goal.Z}
		budget -= d
		p.next = (p.next + 1) % len(p.path)
	}
}

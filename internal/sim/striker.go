package sim

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/npcbrain/internal/dice"
	"github.com/cory-johannsen/npcbrain/internal/geom"
)

// StrikerConfig controls the player's punches.
type StrikerConfig struct {
	// Cooldown is the minimum time between the starts of two punches.
	Cooldown float64
	// ActiveTime is how long a punch can land after it starts.
	ActiveTime float64
	// MinHitInterval is the minimum time between two landed hits.
	MinHitInterval float64
	// Reach is the ground distance a punch covers.
	Reach float64
	// JabDamage and StraightDamage are dice expressions.
	JabDamage      string
	StraightDamage string
}

// DefaultStrikerConfig returns the stock punch settings.
func DefaultStrikerConfig() StrikerConfig {
	return StrikerConfig{
		Cooldown:       0.5,
		ActiveTime:     0.2,
		MinHitInterval: 0.1,
		Reach:          1.5,
		JabDamage:      "10",
		StraightDamage: "10",
	}
}

// Hittable is anything a punch can land on.
type Hittable interface {
	ID() string
	Position() geom.Vec3
	TakeDamage(amount int, hitPosition geom.Vec3, isLightHit bool)
}

// Hit records one landed punch.
type Hit struct {
	TargetID string
	Damage   int
	Light    bool
	Point    geom.Vec3
}

// Striker alternates jabs (light) and straights (heavy). A punch stays active
// for ActiveTime; during that window each target can be hit once and landed
// hits are at least MinHitInterval apart.
type Striker struct {
	cfg      StrikerConfig
	jab      dice.Expression
	straight dice.Expression
	roller   *dice.Roller
	logger   *zap.Logger

	now        float64
	lastPunch  float64
	lastHit    float64
	active     float64
	jabNext    bool
	currentJab bool
	hitSet     map[string]struct{}
}

// NewStriker validates cfg and returns a Striker ready to punch.
//
// Precondition: roller and logger must be non-nil.
func NewStriker(cfg StrikerConfig, roller *dice.Roller, logger *zap.Logger) (*Striker, error) {
	if roller == nil || logger == nil {
		panic("sim.NewStriker: roller and logger must not be nil")
	}
	if cfg.Cooldown < 0 || cfg.ActiveTime <= 0 || cfg.MinHitInterval < 0 || cfg.Reach <= 0 {
		return nil, fmt.Errorf("striker: cooldown and min_hit_interval must be >= 0, active_time and reach > 0")
	}
	jab, err := dice.Parse(cfg.JabDamage)
	if err != nil {
		return nil, fmt.Errorf("striker: jab damage: %w", err)
	}
	straight, err := dice.Parse(cfg.StraightDamage)
	if err != nil {
		return nil, fmt.Errorf("striker: straight damage: %w", err)
	}
	return &Striker{
		cfg:       cfg,
		jab:       jab,
		straight:  straight,
		roller:    roller,
		logger:    logger,
		lastPunch: -cfg.Cooldown,
		lastHit:   -cfg.MinHitInterval,
		jabNext:   true,
		hitSet:    make(map[string]struct{}),
	}, nil
}

// Punch starts a new punch if the cooldown has elapsed.
//
// Postcondition: returns true and opens a fresh hit set when a punch started.
func (s *Striker) Punch() bool {
	if s.now-s.lastPunch < s.cfg.Cooldown {
		return false
	}
	s.lastPunch = s.now
	s.active = s.cfg.ActiveTime
	s.currentJab = s.jabNext
	s.jabNext = !s.jabNext
	clear(s.hitSet)
	return true
}

// Punching reports whether a punch is active.
func (s *Striker) Punching() bool {
	return s.active > 0
}

// Update advances time by dt and lands the active punch on targets within
// reach of origin, nearest first.
func (s *Striker) Update(dt float64, origin geom.Vec3, targets []Hittable) []Hit {
	s.now += dt
	if s.active <= 0 {
		return nil
	}
	defer func() { s.active -= dt }()

	inReach := make([]Hittable, 0, len(targets))
	for _, t := range targets {
		if geom.FlatDistance(origin, t.Position()) <= s.cfg.Reach {
			inReach = append(inReach, t)
		}
	}
	sort.Slice(inReach, func(i, j int) bool {
		return geom.FlatDistance(origin, inReach[i].Position()) < geom.FlatDistance(origin, inReach[j].Position())
	})

	var hits []Hit
	for _, t := range inReach {
		if s.now-s.lastHit < s.cfg.MinHitInterval {
			break
		}
		if _, done := s.hitSet[t.ID()]; done {
			continue
		}
		s.hitSet[t.ID()] = struct{}{}
		s.lastHit = s.now

		expr := s.straight
		if s.currentJab {
			expr = s.jab
		}
		damage := s.roller.Roll(expr).Total()
		point := contactPoint(origin, t.Position())
		t.TakeDamage(damage, point, s.currentJab)
		s.logger.Debug("punch landed",
			zap.String("target", t.ID()),
			zap.Int("damage", damage),
			zap.Bool("jab", s.currentJab),
		)
		hits = append(hits, Hit{TargetID: t.ID(), Damage: damage, Light: s.currentJab, Point: point})
	}
	return hits
}

// contactPoint is where a fist thrown from origin meets a body at target:
// a step short of the target's centre, at chest height.
func contactPoint(origin, target geom.Vec3) geom.Vec3 {
	const bodyRadius, chest = 0.3, 1.2
	dir := target.Sub(origin).Flat().Normalize()
	p := target.Sub(dir.Scale(bodyRadius))
	p.Y = target.Y + chest
	return p
}

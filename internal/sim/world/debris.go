package world

import (
	"math"
	"math/rand"
	"sort"
)

// DebrisParticle is a light fragment under gravity. Settling is final: a
// settled particle is never re-launched, only aged out or culled.
type DebrisParticle struct {
	Pos     Vec3
	Vel     Vec3
	Age     float64
	Settled bool
}

// RubbleChunk is a heavy settled remnant. Permanent: never age-culled, only
// evicted under the hard cap, farthest first.
type RubbleChunk struct {
	Pos Vec3
	Age float64
}

type DebrisConfig struct {
	MaxLive      int     // hard cap on particles + chunks
	PerWall      int     // particles per wall destruction
	PerPillar    int     // particles per pillar destruction
	RubbleChance float64 // chance a destruction leaves a chunk
	Gravity      float64 // units/s^2, positive down
	MaxAge       float64 // seconds before a particle is culled
	CullRadius   float64 // distance from observer beyond which debris is culled
	ImpulseMin   float64
	ImpulseMax   float64
}

func (c *DebrisConfig) applyDefaults() {
	if c.MaxLive <= 0 {
		c.MaxLive = 512
	}
	if c.PerWall <= 0 {
		c.PerWall = 12
	}
	if c.PerPillar <= 0 {
		c.PerPillar = 8
	}
	if c.RubbleChance <= 0 {
		c.RubbleChance = 0.35
	}
	if c.Gravity <= 0 {
		c.Gravity = 980
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 20
	}
	if c.CullRadius <= 0 {
		c.CullRadius = 12000
	}
	if c.ImpulseMin <= 0 {
		c.ImpulseMin = 120
	}
	if c.ImpulseMax <= c.ImpulseMin {
		c.ImpulseMax = c.ImpulseMin + 260
	}
}

// DebrisField owns all debris. Spawned by destruction transitions, stepped
// once per tick, never writes back to geometry or the ledger. Spawn shapes
// come from a world-seeded rng so identical op streams replay identically.
type DebrisField struct {
	cfg DebrisConfig
	rng *rand.Rand

	particles []DebrisParticle
	chunks    []RubbleChunk

	// floor impacts this step, drained by the world into the event queue
	impacts []Vec3
}

func NewDebrisField(seed int64, cfg DebrisConfig) *DebrisField {
	cfg.applyDefaults()
	return &DebrisField{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed ^ 0x44454252)),
	}
}

func (f *DebrisField) Len() int       { return len(f.particles) + len(f.chunks) }
func (f *DebrisField) Particles() int { return len(f.particles) }
func (f *DebrisField) Chunks() []RubbleChunk {
	out := make([]RubbleChunk, len(f.chunks))
	copy(out, f.chunks)
	return out
}

// SpawnWall scatters particles from a destroyed wall. axis is the wall's
// run direction; fragments fly mostly perpendicular to it, away from both
// faces, plus upward.
func (f *DebrisField) SpawnWall(center Vec2, axis Vec2) {
	f.spawn(center, axis, f.cfg.PerWall)
}

// SpawnPillar scatters particles radially from a destroyed pillar.
func (f *DebrisField) SpawnPillar(center Vec2) {
	f.spawn(center, Vec2{}, f.cfg.PerPillar)
}

func (f *DebrisField) spawn(center Vec2, axis Vec2, n int) {
	normal := Vec2{X: -axis.Z, Z: axis.X}.Normalized()
	for i := 0; i < n; i++ {
		imp := f.cfg.ImpulseMin + f.rng.Float64()*(f.cfg.ImpulseMax-f.cfg.ImpulseMin)
		var dir Vec2
		if normal == (Vec2{}) {
			a := f.rng.Float64() * 2 * math.Pi
			dir = Vec2{X: math.Cos(a), Z: math.Sin(a)}
		} else {
			side := 1.0
			if f.rng.Intn(2) == 0 {
				side = -1
			}
			jitter := (f.rng.Float64() - 0.5) * 0.8
			dir = normal.Scale(side).Add(axis.Normalized().Scale(jitter)).Normalized()
		}
		f.particles = append(f.particles, DebrisParticle{
			Pos: Vec3{X: center.X, Y: 40 + f.rng.Float64()*160, Z: center.Z},
			Vel: Vec3{
				X: dir.X * imp,
				Y: 60 + f.rng.Float64()*180,
				Z: dir.Z * imp,
			},
		})
	}
	if f.rng.Float64() < f.cfg.RubbleChance {
		f.chunks = append(f.chunks, RubbleChunk{
			Pos: Vec3{
				X: center.X + (f.rng.Float64()-0.5)*120,
				Z: center.Z + (f.rng.Float64()-0.5)*120,
			},
		})
	}
}

// restoreChunks re-seats permanent rubble from a snapshot.
func (f *DebrisField) restoreChunks(chunks []RubbleChunk) {
	f.particles = f.particles[:0]
	f.chunks = append(f.chunks[:0], chunks...)
	f.impacts = nil
}

// Step integrates one tick. Unsettled particles fall under gravity and
// settle on first floor contact; everything ages; culling enforces max age,
// observer cull radius, and the hard cap.
func (f *DebrisField) Step(dt float64, observer Vec2) {
	f.impacts = f.impacts[:0]
	for i := range f.particles {
		p := &f.particles[i]
		p.Age += dt
		if p.Settled {
			continue
		}
		p.Vel.Y -= f.cfg.Gravity * dt
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))
		if p.Pos.Y <= 0 {
			p.Pos.Y = 0
			p.Vel = Vec3{}
			p.Settled = true
			f.impacts = append(f.impacts, p.Pos)
		}
	}
	for i := range f.chunks {
		f.chunks[i].Age += dt
	}
	f.cull(observer)
}

// Impacts returns the floor contacts from the last Step.
func (f *DebrisField) Impacts() []Vec3 { return f.impacts }

func (f *DebrisField) cull(observer Vec2) {
	r2 := f.cfg.CullRadius * f.cfg.CullRadius
	keep := f.particles[:0]
	for _, p := range f.particles {
		if p.Age > f.cfg.MaxAge {
			continue
		}
		if distXZ2(p.Pos.XZ(), observer) > r2 {
			continue
		}
		keep = append(keep, p)
	}
	f.particles = keep

	if f.Len() <= f.cfg.MaxLive {
		return
	}
	f.evict(observer, f.Len()-f.cfg.MaxLive)
}

// evict removes n objects for cap overflow: oldest unsettled particles
// first, then farthest particles, then farthest chunks.
func (f *DebrisField) evict(observer Vec2, n int) {
	type cand struct {
		idx   int
		age   float64
		dist2 float64
	}
	drop := make(map[int]bool, n)

	var unsettled []cand
	for i, p := range f.particles {
		if !p.Settled {
			unsettled = append(unsettled, cand{i, p.Age, 0})
		}
	}
	sort.Slice(unsettled, func(i, j int) bool { return unsettled[i].age > unsettled[j].age })
	for _, c := range unsettled {
		if n == 0 {
			break
		}
		drop[c.idx] = true
		n--
	}

	if n > 0 {
		var rest []cand
		for i, p := range f.particles {
			if drop[i] {
				continue
			}
			rest = append(rest, cand{i, 0, distXZ2(p.Pos.XZ(), observer)})
		}
		sort.Slice(rest, func(i, j int) bool { return rest[i].dist2 > rest[j].dist2 })
		for _, c := range rest {
			if n == 0 {
				break
			}
			drop[c.idx] = true
			n--
		}
	}

	keep := f.particles[:0]
	for i, p := range f.particles {
		if !drop[i] {
			keep = append(keep, p)
		}
	}
	f.particles = keep

	if n > 0 {
		sort.Slice(f.chunks, func(i, j int) bool {
			return distXZ2(f.chunks[i].Pos.XZ(), observer) < distXZ2(f.chunks[j].Pos.XZ(), observer)
		})
		if n >= len(f.chunks) {
			f.chunks = f.chunks[:0]
		} else {
			f.chunks = f.chunks[:len(f.chunks)-n]
		}
	}
}

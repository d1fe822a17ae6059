package world

type WorldConfig struct {
	ID         string
	Seed       int64
	TickRateHz int

	// Generation geometry.
	GridSpacing  int // base grid spacing, world units
	CellsPerZone int // nominal zone edge in base cells
	PillarHalf   float64

	// Collision.
	CollisionPasses int
	SkinWidth       float64
	MoverRadius     float64
	MaxMoveStep     float64

	// Observation frames.
	ObsRadius int // cells

	// Generation decay (pre-damage on first touch). NoDecay disables the
	// roll entirely; used by controlled-scenario tests.
	NoDecay bool

	EventBacklog       int
	SnapshotEveryTicks int

	Debris DebrisConfig
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 20
	}
	if c.GridSpacing <= 0 {
		c.GridSpacing = 400
	}
	if c.CellsPerZone <= 0 {
		c.CellsPerZone = 8
	}
	if c.PillarHalf <= 0 {
		c.PillarHalf = 40
	}
	if c.CollisionPasses <= 0 {
		c.CollisionPasses = defaultCollisionPasses
	}
	if c.SkinWidth <= 0 {
		c.SkinWidth = 2
	}
	if c.MoverRadius <= 0 {
		c.MoverRadius = 80
	}
	if c.MaxMoveStep <= 0 {
		c.MaxMoveStep = float64(c.GridSpacing)
	}
	if c.ObsRadius <= 0 {
		c.ObsRadius = 12
	}
	if c.EventBacklog <= 0 {
		c.EventBacklog = 4096
	}
	if c.SnapshotEveryTicks <= 0 {
		c.SnapshotEveryTicks = 3000
	}
	c.Debris.applyDefaults()
}

package world

import "math"

const (
	pillarSalt  = 0x50494c52 // "PILR"
	wallSalt    = 0x57414c4c // "WALL"
	ceilingSalt = 0x4345494c // "CEIL"
)

// GeometryIndex answers "what does generation put here" for an infinite grid.
// Every answer is a pure function of (seed, position); the maps are memoized
// results only, never a source of truth. Accessed only from the world loop
// goroutine once warm; a warm cache is safe for concurrent readers because no
// query ever rewrites a cached value.
type GeometryIndex struct {
	seed         int64
	spacing      int // base grid spacing, world units
	cellsPerZone int
	zoneEdge     int // nominal zone edge = spacing * cellsPerZone

	zoneOwner map[ZoneCoord]ZoneCoord
	zoneProps map[ZoneCoord]ZoneProperties
	pillars   map[Grid2]bool
	walls     map[WallKey]bool
}

func NewGeometryIndex(seed int64, spacing, cellsPerZone int) *GeometryIndex {
	g := &GeometryIndex{
		seed:         seed,
		spacing:      spacing,
		cellsPerZone: cellsPerZone,
		zoneEdge:     spacing * cellsPerZone,
	}
	g.reset()
	return g
}

func (g *GeometryIndex) reset() {
	g.zoneOwner = map[ZoneCoord]ZoneCoord{}
	g.zoneProps = map[ZoneCoord]ZoneProperties{}
	g.pillars = map[Grid2]bool{}
	g.walls = map[WallKey]bool{}
}

// Invalidate drops every cached decision. Wholesale only; used on state
// import, where a seed change would make prior cache entries lies.
func (g *GeometryIndex) Invalidate() { g.reset() }

func (g *GeometryIndex) Seed() int64 { return g.seed }

func (g *GeometryIndex) Reseed(seed int64) {
	g.seed = seed
	g.reset()
}

func (g *GeometryIndex) nominalCell(x, z float64) ZoneCoord {
	return ZoneCoord{
		ZX: int(math.Floor(x / float64(g.zoneEdge))),
		ZZ: int(math.Floor(z / float64(g.zoneEdge))),
	}
}

// zoneOwner resolves which anchor owns a nominal cell. Mega-scale zones span
// Scale x Scale nominal cells from their anchor, so a cell belongs to the
// first anchor (fixed scan order, low ZZ then low ZX) whose span covers it;
// otherwise to itself. Local and deterministic: a cell's owner depends only
// on hashes of nearby anchors.
func (g *GeometryIndex) owner(n ZoneCoord) ZoneCoord {
	if o, ok := g.zoneOwner[n]; ok {
		return o
	}
	o := n
scan:
	for dz := -(maxZoneSpan - 1); dz <= 0; dz++ {
		for dx := -(maxZoneSpan - 1); dx <= 0; dx++ {
			a := ZoneCoord{ZX: n.ZX + dx, ZZ: n.ZZ + dz}
			d := zoneDefFor(g.seed, a.ZX, a.ZZ)
			if d.Scale <= 1 {
				continue
			}
			if -dx < d.Scale && -dz < d.Scale {
				o = a
				break scan
			}
		}
	}
	g.zoneOwner[n] = o
	return o
}

// ZoneOf resolves the zone owning a world position.
func (g *GeometryIndex) ZoneOf(x, z float64) ZoneCoord {
	return g.owner(g.nominalCell(x, z))
}

// Props returns the generation properties of the zone owning an anchor.
func (g *GeometryIndex) Props(anchor ZoneCoord) ZoneProperties {
	if p, ok := g.zoneProps[anchor]; ok {
		return p
	}
	p := zoneProperties(g.seed, g.spacing, anchor.ZX, anchor.ZZ)
	g.zoneProps[anchor] = p
	return p
}

// ZoneProps resolves zone properties for a world position.
func (g *GeometryIndex) ZoneProps(x, z float64) ZoneProperties {
	return g.Props(g.ZoneOf(x, z))
}

func (g *GeometryIndex) zoneOrigin(anchor ZoneCoord) (int, int) {
	return anchor.ZX * g.zoneEdge, anchor.ZZ * g.zoneEdge
}

// aligned reports whether p sits on the zone's resolved grid. In mega zones
// only every Scale-th base grid line carries geometry.
func (g *GeometryIndex) aligned(p Grid2, anchor ZoneCoord, props ZoneProperties) bool {
	ox, oz := g.zoneOrigin(anchor)
	return mod(p.X-ox, props.Spacing) == 0 && mod(p.Z-oz, props.Spacing) == 0
}

// HasPillar reports whether generation places a pillar at grid point p.
func (g *GeometryIndex) HasPillar(p Grid2) bool {
	if v, ok := g.pillars[p]; ok {
		return v
	}
	anchor := g.ZoneOf(float64(p.X), float64(p.Z))
	props := g.Props(anchor)
	v := false
	if g.aligned(p, anchor, props) {
		v = hashFrac(hash2(g.seed^pillarSalt, p.X, p.Z)) < props.PillarDensity
	}
	g.pillars[p] = v
	return v
}

// HasWall reports whether generation places a wall between two grid points.
// Symmetric in its arguments; false for pairs that are not grid-adjacent in
// the zone the wall's midpoint falls in.
func (g *GeometryIndex) HasWall(a, b Grid2) bool {
	k := NewWallKey(a, b)
	if v, ok := g.walls[k]; ok {
		return v
	}
	v := g.genWall(k)
	g.walls[k] = v
	return v
}

func (g *GeometryIndex) genWall(k WallKey) bool {
	mid := k.Midpoint()
	props := g.ZoneProps(mid.X, mid.Z)
	dx := k.B.X - k.A.X
	dz := k.B.Z - k.A.Z
	if !((dx == props.Spacing && dz == 0) || (dx == 0 && dz == props.Spacing)) {
		return false
	}
	if !g.HasPillar(k.A) || !g.HasPillar(k.B) {
		return false
	}
	return hashFrac(hash4(g.seed^wallSalt, k.A.X, k.A.Z, k.B.X, k.B.Z)) < props.WallChance
}

// CeilingHeight is a deterministic height within the zone's ceiling range,
// constant across each resolved grid cell.
func (g *GeometryIndex) CeilingHeight(x, z float64) float64 {
	anchor := g.ZoneOf(x, z)
	props := g.Props(anchor)
	cx := floorDiv(int(math.Floor(x)), props.Spacing)
	cz := floorDiv(int(math.Floor(z)), props.Spacing)
	f := hashFrac(hash2(g.seed^ceilingSalt, cx, cz))
	return props.CeilMin + f*(props.CeilMax-props.CeilMin)
}

package world

import "testing"

func newTestIndex(seed int64) *GeometryIndex {
	return NewGeometryIndex(seed, 400, 8)
}

func TestGeometry_DeterministicAcrossInstances(t *testing.T) {
	a := newTestIndex(1337)
	b := newTestIndex(1337)
	for iz := -20; iz <= 20; iz += 3 {
		for ix := -20; ix <= 20; ix += 3 {
			p := Grid2{X: ix * 400, Z: iz * 400}
			if a.HasPillar(p) != b.HasPillar(p) {
				t.Fatalf("pillar mismatch at %v", p)
			}
			q := Grid2{X: p.X + a.ZoneProps(float64(p.X), float64(p.Z)).Spacing, Z: p.Z}
			if a.HasWall(p, q) != b.HasWall(p, q) {
				t.Fatalf("wall mismatch at %v-%v", p, q)
			}
			x, z := float64(p.X)+13, float64(p.Z)-7
			if a.CeilingHeight(x, z) != b.CeilingHeight(x, z) {
				t.Fatalf("ceiling mismatch at (%v,%v)", x, z)
			}
			if a.ZoneOf(x, z) != b.ZoneOf(x, z) {
				t.Fatalf("zone mismatch at (%v,%v)", x, z)
			}
		}
	}
}

func TestGeometry_WallSymmetry(t *testing.T) {
	g := newTestIndex(42)
	for iz := -10; iz <= 10; iz++ {
		for ix := -10; ix <= 10; ix++ {
			p := Grid2{X: ix * 400, Z: iz * 400}
			sp := g.ZoneProps(float64(p.X), float64(p.Z)).Spacing
			for _, q := range []Grid2{{p.X + sp, p.Z}, {p.X, p.Z + sp}} {
				if g.HasWall(p, q) != g.HasWall(q, p) {
					t.Fatalf("has_wall(%v,%v) != has_wall(%v,%v)", p, q, q, p)
				}
			}
		}
	}
}

func TestGeometry_NonAdjacentIsFalse(t *testing.T) {
	g := newTestIndex(42)
	cases := [][2]Grid2{
		{{0, 0}, {800, 0}},    // two cells apart in a scale-1 zone
		{{0, 0}, {400, 400}},  // diagonal
		{{0, 0}, {0, 0}},      // degenerate
		{{0, 0}, {399, 0}},    // off-grid
		{{0, 0}, {-1200, 37}}, // arbitrary
	}
	for _, c := range cases {
		// Only meaningful when the pair is not adjacent in its own zone.
		sp := g.ZoneProps(c[0].Vec().X, c[0].Vec().Z).Spacing
		dx, dz := c[1].X-c[0].X, c[1].Z-c[0].Z
		if (dx == sp && dz == 0) || (dx == 0 && dz == sp) {
			continue
		}
		if g.HasWall(c[0], c[1]) {
			t.Fatalf("has_wall(%v,%v) = true for non-adjacent pair", c[0], c[1])
		}
	}
}

func TestGeometry_WallRequiresBothPillars(t *testing.T) {
	g := newTestIndex(7)
	checked := 0
	for iz := -15; iz <= 15 && checked < 50; iz++ {
		for ix := -15; ix <= 15 && checked < 50; ix++ {
			p := Grid2{X: ix * 400, Z: iz * 400}
			sp := g.ZoneProps(float64(p.X), float64(p.Z)).Spacing
			q := Grid2{X: p.X + sp, Z: p.Z}
			if g.HasWall(p, q) {
				if !g.HasPillar(p) || !g.HasPillar(q) {
					t.Fatalf("wall %v-%v exists without both pillars", p, q)
				}
				checked++
			}
		}
	}
	if checked == 0 {
		t.Fatalf("no walls found in scan; generation broken")
	}
}

func TestGeometry_CeilingWithinZoneRange(t *testing.T) {
	g := newTestIndex(99)
	for i := 0; i < 200; i++ {
		x := float64(i*137 - 10000)
		z := float64(i*53 - 4000)
		p := g.ZoneProps(x, z)
		h := g.CeilingHeight(x, z)
		if h < p.CeilMin || h > p.CeilMax {
			t.Fatalf("ceiling %v outside [%v,%v] at (%v,%v)", h, p.CeilMin, p.CeilMax, x, z)
		}
		if h != g.CeilingHeight(x, z) {
			t.Fatalf("ceiling unstable at (%v,%v)", x, z)
		}
	}
}

func TestGeometry_MegaZoneOwnership(t *testing.T) {
	g := newTestIndex(1337)
	// Every nominal cell inside a mega zone's span must resolve to the
	// same properties as its anchor, and the anchor must own itself.
	found := false
	edge := float64(400 * 8)
	for zz := -40; zz <= 40 && !found; zz++ {
		for zx := -40; zx <= 40; zx++ {
			owner := g.owner(ZoneCoord{zx, zz})
			if owner != (ZoneCoord{zx, zz}) {
				props := g.Props(owner)
				if props.Scale <= 1 {
					t.Fatalf("cell (%d,%d) owned by non-mega anchor %v", zx, zz, owner)
				}
				// The position and its anchor agree on zone identity.
				if g.ZoneOf(float64(zx)*edge+1, float64(zz)*edge+1) != owner {
					t.Fatalf("ZoneOf disagrees with owner for cell (%d,%d)", zx, zz)
				}
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("no mega zone found in 81x81 cells; weights broken?")
	}
}

func TestGeometry_MegaZoneAlignment(t *testing.T) {
	g := newTestIndex(1337)
	// In a mega zone, off-spacing base grid points never carry pillars.
	edge := 400 * 8
	for zz := -40; zz <= 40; zz++ {
		for zx := -40; zx <= 40; zx++ {
			anchor := ZoneCoord{zx, zz}
			if g.owner(anchor) != anchor {
				continue
			}
			props := g.Props(anchor)
			if props.Scale <= 1 {
				continue
			}
			// One base step off the anchor origin is off-grid here.
			p := Grid2{X: zx*edge + 400, Z: zz * edge}
			if mod(p.X-zx*edge, props.Spacing) == 0 {
				continue
			}
			if g.HasPillar(p) {
				t.Fatalf("off-spacing pillar at %v in %v zone", p, props.Kind)
			}
			return
		}
	}
	t.Skip("no mega anchor in scan window")
}

func TestGeometry_InvalidateKeepsAnswers(t *testing.T) {
	g := newTestIndex(555)
	type sample struct {
		p      Grid2
		pillar bool
	}
	var samples []sample
	for i := -10; i <= 10; i++ {
		p := Grid2{X: i * 400, Z: -i * 800}
		samples = append(samples, sample{p, g.HasPillar(p)})
	}
	g.Invalidate()
	for _, s := range samples {
		if g.HasPillar(s.p) != s.pillar {
			t.Fatalf("answer changed after invalidate at %v", s.p)
		}
	}
}

func TestGeometry_ReseedChangesWorld(t *testing.T) {
	g := newTestIndex(1)
	var before []bool
	for i := 0; i < 200; i++ {
		before = append(before, g.HasPillar(Grid2{X: i * 400, Z: 0}))
	}
	g.Reseed(2)
	same := true
	for i := 0; i < 200; i++ {
		if g.HasPillar(Grid2{X: i * 400, Z: 0}) != before[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("200 pillar decisions identical across seeds")
	}
}

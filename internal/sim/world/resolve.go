package world

import "math"

// Resolve moves a circle of the given radius from `from` toward `to`
// against all live geometry near the target, sliding along contacts.
// Reads generation and destruction state, never mutates either.
func (w *World) Resolve(from, to Vec2, radius, skin float64) (Vec2, bool) {
	reach := radius + skin + float64(w.cfg.GridSpacing)/2
	segs := w.segmentsNear(to, reach)
	return ResolveCircle(from, to, radius, skin, w.cfg.CollisionPasses, segs)
}

// segmentsNear gathers live wall and pillar segments within reach of a
// point. The scan covers the base grid out to the largest possible zone
// spacing so mid-span contact with a mega-zone wall is never missed;
// destroyed geometry is filtered out through the ledger.
func (w *World) segmentsNear(p Vec2, reach float64) []Segment {
	gs := w.cfg.GridSpacing
	span := gs * maxZoneSpan

	gx0 := floorDiv(int(math.Floor(p.X))-span, gs)
	gx1 := floorDiv(int(math.Floor(p.X))+span, gs) + 1
	gz0 := floorDiv(int(math.Floor(p.Z))-span, gs)
	gz1 := floorDiv(int(math.Floor(p.Z))+span, gs) + 1

	pillarReach := reach + w.cfg.PillarHalf*math.Sqrt2

	var segs []Segment
	for iz := gz0; iz <= gz1; iz++ {
		for ix := gx0; ix <= gx1; ix++ {
			pt := Grid2{X: ix * gs, Z: iz * gs}

			if w.geom.HasPillar(pt) && !w.ledger.IsPillarDestroyed(pt) {
				if distXZ2(p, pt.Vec()) <= pillarReach*pillarReach {
					segs = append(segs, pillarBox(pt.Vec(), w.cfg.PillarHalf)...)
				}
			}

			spacing := w.geom.ZoneProps(float64(pt.X), float64(pt.Z)).Spacing
			for _, q := range []Grid2{{pt.X + spacing, pt.Z}, {pt.X, pt.Z + spacing}} {
				if !w.geom.HasWall(pt, q) {
					continue
				}
				if w.ledger.IsDestroyed(NewWallKey(pt, q)) {
					continue
				}
				seg := Segment{A: pt.Vec(), B: q.Vec()}
				cp := closestPointOnSegment(p, seg.A, seg.B)
				if distXZ2(p, cp) <= reach*reach {
					segs = append(segs, seg)
				}
			}
		}
	}
	return segs
}

// pillarBox is the four edges of a pillar's square footprint.
func pillarBox(c Vec2, half float64) []Segment {
	a := Vec2{c.X - half, c.Z - half}
	b := Vec2{c.X + half, c.Z - half}
	d := Vec2{c.X + half, c.Z + half}
	e := Vec2{c.X - half, c.Z + half}
	return []Segment{{a, b}, {b, d}, {d, e}, {e, a}}
}

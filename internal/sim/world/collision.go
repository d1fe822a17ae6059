package world

import "math"

// Segment is one live collision edge on the floor plane.
type Segment struct {
	A Vec2
	B Vec2
}

func (s Segment) normal() Vec2 {
	d := s.B.Sub(s.A)
	return Vec2{X: -d.Z, Z: d.X}.Normalized()
}

// defaultCollisionPasses stabilizes corners: one depenetration can push the
// circle into a neighboring segment, so resolution repeats a few times.
const defaultCollisionPasses = 3

// ResolveCircle moves a circle from `from` toward `to` against a fixed
// segment set. Penetrations are pushed out along the contact normal, which
// keeps the tangential component of the motion: the circle slides along
// walls instead of stopping dead. Pure geometry; the segment set is read
// only. collided is true only when an actual penetration was corrected,
// so callers can distinguish contact from free movement.
func ResolveCircle(from, to Vec2, radius, skin float64, passes int, segs []Segment) (Vec2, bool) {
	if passes <= 0 {
		passes = defaultCollisionPasses
	}
	minDist := radius + skin
	move := to.Sub(from)
	pos := to
	collided := false
	for pass := 0; pass < passes; pass++ {
		corrected := false
		for _, s := range segs {
			cp := closestPointOnSegment(pos, s.A, s.B)
			d := pos.Sub(cp)
			d2 := d.Len2()
			if d2 >= minDist*minDist {
				continue
			}
			var n Vec2
			if d2 > 1e-18 {
				n = d.Scale(1 / math.Sqrt(d2))
			} else {
				// Center exactly on the segment: push back against the
				// direction of travel, or along the segment normal when the
				// circle did not move.
				n = s.normal()
				if move.Dot(n) > 0 {
					n = n.Scale(-1)
				}
			}
			pos = cp.Add(n.Scale(minDist))
			collided = true
			corrected = true
		}
		if !corrected {
			break
		}
	}
	return pos, collided
}

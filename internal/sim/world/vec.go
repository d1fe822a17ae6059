package world

import "math"

type Vec2 struct {
	X float64
	Z float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Z + o.Z} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Z - o.Z} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Z * f} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Z*o.Z }
func (v Vec2) Len2() float64        { return v.X*v.X + v.Z*v.Z }
func (v Vec2) Len() float64         { return math.Sqrt(v.Len2()) }

func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l < 1e-12 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

func distXZ2(a, b Vec2) float64 { return a.Sub(b).Len2() }

// Vec3 is used only by debris; the walkable world itself is 2D (Y up).
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

func (v Vec3) XZ() Vec2 { return Vec2{v.X, v.Z} }

// closestPointOnSegment returns the point of segment ab nearest to p.
func closestPointOnSegment(p, a, b Vec2) Vec2 {
	ab := b.Sub(a)
	den := ab.Len2()
	if den < 1e-12 {
		return a
	}
	t := p.Sub(a).Dot(ab) / den
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Scale(t))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func floorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func mod(a, b int) int {
	// b > 0
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

func hash4(seed int64, a, b, c, d int) uint64 {
	v := hash2(seed, a, b)
	return mix64(v ^ hash2(seed, c, d)<<1)
}

// hashFrac maps a hash to [0,1).
func hashFrac(h uint64) float64 {
	return float64(h>>11) / float64(uint64(1)<<53)
}

package world

import (
	"fmt"
	"strconv"
	"strings"
)

// Grid2 is a quantized grid point in world units. Pillars are keyed by the
// point itself; walls by the canonical pair of adjacent points.
type Grid2 struct {
	X int
	Z int
}

func (g Grid2) String() string { return strconv.Itoa(g.X) + "," + strconv.Itoa(g.Z) }

func (g Grid2) Vec() Vec2 { return Vec2{float64(g.X), float64(g.Z)} }

func ParseGrid2(s string) (Grid2, error) {
	xs, zs, ok := strings.Cut(s, ",")
	if !ok {
		return Grid2{}, fmt.Errorf("bad grid point %q", s)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return Grid2{}, fmt.Errorf("bad grid point %q: %w", s, err)
	}
	z, err := strconv.Atoi(zs)
	if err != nil {
		return Grid2{}, fmt.Errorf("bad grid point %q: %w", s, err)
	}
	return Grid2{X: x, Z: z}, nil
}

func gridLess(a, b Grid2) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Z < b.Z
}

// WallKey identifies a wall by its two endpoints in canonical (sorted) order,
// so that the key for (a,b) equals the key for (b,a).
type WallKey struct {
	A Grid2
	B Grid2
}

func NewWallKey(a, b Grid2) WallKey {
	if gridLess(b, a) {
		a, b = b, a
	}
	return WallKey{A: a, B: b}
}

func (k WallKey) String() string { return k.A.String() + "|" + k.B.String() }

// Midpoint is the wall's center on the floor plane.
func (k WallKey) Midpoint() Vec2 {
	return Vec2{
		X: (float64(k.A.X) + float64(k.B.X)) / 2,
		Z: (float64(k.A.Z) + float64(k.B.Z)) / 2,
	}
}

func ParseWallKey(s string) (WallKey, error) {
	as, bs, ok := strings.Cut(s, "|")
	if !ok {
		return WallKey{}, fmt.Errorf("bad wall key %q", s)
	}
	a, err := ParseGrid2(as)
	if err != nil {
		return WallKey{}, err
	}
	b, err := ParseGrid2(bs)
	if err != nil {
		return WallKey{}, err
	}
	return NewWallKey(a, b), nil
}

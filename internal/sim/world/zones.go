package world

// ZoneCoord indexes a zone by its anchor cell on the nominal zone grid.
// Derived from world position, never stored.
type ZoneCoord struct {
	ZX int
	ZZ int
}

type ZoneKind uint8

const (
	// Human-scale kinds (span 1 nominal cell).
	ZoneNormal ZoneKind = iota
	ZoneDense
	ZoneSparse
	ZoneMaze
	ZoneOpen
	// Mega-scale kinds (span Scale nominal cells per axis).
	ZoneAtrium
	ZoneCourtyard
	ZoneColiseum
	ZoneCathedral
	ZoneWarehouse
)

func (k ZoneKind) String() string {
	switch k {
	case ZoneNormal:
		return "NORMAL"
	case ZoneDense:
		return "DENSE"
	case ZoneSparse:
		return "SPARSE"
	case ZoneMaze:
		return "MAZE"
	case ZoneOpen:
		return "OPEN"
	case ZoneAtrium:
		return "ATRIUM"
	case ZoneCourtyard:
		return "COURTYARD"
	case ZoneColiseum:
		return "COLISEUM"
	case ZoneCathedral:
		return "CATHEDRAL"
	case ZoneWarehouse:
		return "WAREHOUSE"
	}
	return "UNKNOWN"
}

// ZoneProperties is the immutable generation record for one zone. Spacing is
// the resolved grid spacing (base spacing times the kind's scale multiplier).
type ZoneProperties struct {
	Kind          ZoneKind
	PillarDensity float64
	WallChance    float64
	Scale         int
	Spacing       int
	CeilMin       float64
	CeilMax       float64
	Tint          uint32 // 0xRRGGBB
	DecayChance   float64
}

type zoneDef struct {
	Kind          ZoneKind
	Weight        uint64
	PillarDensity float64
	WallChance    float64
	Scale         int
	CeilMin       float64
	CeilMax       float64
	Tint          uint32
	DecayChance   float64
}

// zoneTable drives the weighted deterministic pick. Weights sum to 100.
// Scale>1 kinds consume Scale x Scale nominal cells (see GeometryIndex.zoneOwner).
var zoneTable = [...]zoneDef{
	{ZoneNormal, 38, 0.75, 0.45, 1, 260, 420, 0xb8b4a6, 0.06},
	{ZoneDense, 14, 0.92, 0.70, 1, 220, 330, 0x9c9a90, 0.10},
	{ZoneSparse, 12, 0.40, 0.25, 1, 300, 520, 0xc4c0b2, 0.04},
	{ZoneMaze, 10, 0.95, 0.85, 1, 200, 280, 0x8f8d85, 0.14},
	{ZoneOpen, 10, 0.20, 0.10, 1, 340, 560, 0xcfccbf, 0.02},
	{ZoneAtrium, 5, 0.55, 0.30, 4, 900, 1400, 0xd8d4c6, 0.05},
	{ZoneCourtyard, 4, 0.35, 0.20, 5, 1100, 1700, 0xdedacb, 0.04},
	{ZoneColiseum, 3, 0.60, 0.50, 6, 1400, 2100, 0xb0ada0, 0.08},
	{ZoneCathedral, 2, 0.70, 0.60, 8, 2000, 3200, 0xa8a49a, 0.12},
	{ZoneWarehouse, 2, 0.50, 0.40, 10, 1600, 2400, 0x949288, 0.09},
}

const zoneWeightTotal = 100

// maxZoneSpan bounds the zoneOwner search window; keep in sync with the
// largest Scale in zoneTable.
const maxZoneSpan = 10

const zoneKindSalt = 0x5a4f4e45 // "ZONE"

func zoneDefFor(seed int64, zx, zz int) zoneDef {
	roll := hash2(seed^zoneKindSalt, zx, zz) % zoneWeightTotal
	for _, d := range zoneTable {
		if roll < d.Weight {
			return d
		}
		roll -= d.Weight
	}
	return zoneTable[0]
}

// zoneProperties resolves the full property record for a zone anchor. Pure
// and deterministic in (seed, zx, zz); callers cache by ZoneCoord.
func zoneProperties(seed int64, baseSpacing int, zx, zz int) ZoneProperties {
	d := zoneDefFor(seed, zx, zz)
	// Small per-zone jitter so two NORMAL zones do not read identically.
	j := hashFrac(hash2(seed^0x4a495454, zx, zz))
	p := ZoneProperties{
		Kind:          d.Kind,
		PillarDensity: clamp01(d.PillarDensity + 0.08*(j-0.5)),
		WallChance:    clamp01(d.WallChance + 0.08*(0.5-j)),
		Scale:         d.Scale,
		Spacing:       baseSpacing * d.Scale,
		CeilMin:       d.CeilMin,
		CeilMax:       d.CeilMax,
		Tint:          tintJitter(d.Tint, j),
		DecayChance:   d.DecayChance,
	}
	return p
}

func tintJitter(rgb uint32, j float64) uint32 {
	shift := int32((j - 0.5) * 24)
	adj := func(c uint32) uint32 {
		v := int32(c) + shift
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		return uint32(v)
	}
	return adj(rgb>>16)<<16 | adj(rgb>>8&0xff)<<8 | adj(rgb&0xff)
}

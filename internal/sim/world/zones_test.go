package world

import "testing"

func TestZoneProperties_Deterministic(t *testing.T) {
	for i := 0; i < 64; i++ {
		zx, zz := i*3-90, 7-i
		a := zoneProperties(1337, 400, zx, zz)
		b := zoneProperties(1337, 400, zx, zz)
		if a != b {
			t.Fatalf("zone (%d,%d): %+v != %+v", zx, zz, a, b)
		}
	}
}

func TestZoneProperties_SeedChangesSelection(t *testing.T) {
	same := true
	for i := 0; i < 64 && same; i++ {
		a := zoneProperties(1, 400, i, -i)
		b := zoneProperties(2, 400, i, -i)
		if a.Kind != b.Kind {
			same = false
		}
	}
	if same {
		t.Fatalf("64 zones picked identical kinds under two seeds")
	}
}

func TestZoneProperties_Bounds(t *testing.T) {
	for i := -50; i < 50; i++ {
		p := zoneProperties(42, 400, i, i*13)
		if p.PillarDensity < 0 || p.PillarDensity > 1 {
			t.Fatalf("density out of range: %+v", p)
		}
		if p.WallChance < 0 || p.WallChance > 1 {
			t.Fatalf("wall chance out of range: %+v", p)
		}
		if p.DecayChance < 0 || p.DecayChance > 1 {
			t.Fatalf("decay chance out of range: %+v", p)
		}
		if p.Scale < 1 || p.Scale > maxZoneSpan {
			t.Fatalf("scale out of range: %+v", p)
		}
		if p.Spacing != 400*p.Scale {
			t.Fatalf("spacing %d != 400*%d", p.Spacing, p.Scale)
		}
		if p.CeilMin >= p.CeilMax {
			t.Fatalf("degenerate ceiling range: %+v", p)
		}
	}
}

func TestZoneTable_WeightsAndCoverage(t *testing.T) {
	var total uint64
	for _, d := range zoneTable {
		total += d.Weight
	}
	if total != zoneWeightTotal {
		t.Fatalf("zone weights sum to %d, want %d", total, zoneWeightTotal)
	}

	// A broad sample should pick every kind at least once.
	seen := map[ZoneKind]bool{}
	for zx := -60; zx < 60; zx++ {
		for zz := -60; zz < 60; zz++ {
			seen[zoneDefFor(9001, zx, zz).Kind] = true
		}
	}
	for _, d := range zoneTable {
		if !seen[d.Kind] {
			t.Fatalf("kind %v never selected in 120x120 sample", d.Kind)
		}
	}
}

func TestZoneKind_MegaScales(t *testing.T) {
	for _, d := range zoneTable {
		mega := d.Kind >= ZoneAtrium
		if mega && (d.Scale < 4 || d.Scale > 10) {
			t.Fatalf("mega kind %v scale %d outside 4..10", d.Kind, d.Scale)
		}
		if !mega && d.Scale != 1 {
			t.Fatalf("human kind %v scale %d != 1", d.Kind, d.Scale)
		}
	}
}

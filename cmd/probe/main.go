// probe inspects a world offline: zone layout, geometry counts and ceiling
// ranges around a coordinate, for a given seed. Useful to eyeball what a
// seed generates without running the server.
package main

import (
	"flag"
	"fmt"
	"os"

	"concourse.world/internal/sim/world"
)

func main() {
	var (
		seed  = flag.Int64("seed", 1337, "world seed")
		cx    = flag.Float64("x", 0, "center x (world units)")
		cz    = flag.Float64("z", 0, "center z (world units)")
		zones = flag.Int("zones", 8, "zone radius to map")
		cells = flag.Int("cells", 16, "cell radius for geometry stats")
	)
	flag.Parse()

	w, err := world.New(world.WorldConfig{ID: "probe", Seed: *seed})
	if err != nil {
		fmt.Fprintln(os.Stderr, "world:", err)
		os.Exit(1)
	}
	cfg := w.Config()
	zoneEdge := float64(cfg.GridSpacing * cfg.CellsPerZone)

	fmt.Printf("seed=%d spacing=%d cells_per_zone=%d\n\n", *seed, cfg.GridSpacing, cfg.CellsPerZone)

	// Zone map: one letter per nominal cell, mega zones show as repeats.
	base := w.ZoneOf(*cx, *cz)
	for zz := base.ZZ - *zones; zz <= base.ZZ+*zones; zz++ {
		for zx := base.ZX - *zones; zx <= base.ZX+*zones; zx++ {
			p := w.ZoneProperties(float64(zx)*zoneEdge+1, float64(zz)*zoneEdge+1)
			fmt.Printf("%c", p.Kind.String()[0])
		}
		fmt.Println()
	}
	fmt.Println()

	gs := cfg.GridSpacing
	px0 := int(*cx)/gs - *cells
	pz0 := int(*cz)/gs - *cells
	pillars, walls := 0, 0
	for iz := 0; iz <= 2**cells; iz++ {
		for ix := 0; ix <= 2**cells; ix++ {
			pt := world.Grid2{X: (px0 + ix) * gs, Z: (pz0 + iz) * gs}
			if w.HasPillar(pt) {
				pillars++
			}
			sp := w.ZoneProperties(float64(pt.X), float64(pt.Z)).Spacing
			if w.HasWall(pt, world.Grid2{X: pt.X + sp, Z: pt.Z}) {
				walls++
			}
			if w.HasWall(pt, world.Grid2{X: pt.X, Z: pt.Z + sp}) {
				walls++
			}
		}
	}
	side := 2**cells + 1
	fmt.Printf("geometry within %dx%d cells of (%.0f,%.0f): pillars=%d walls=%d\n",
		side, side, *cx, *cz, pillars, walls)

	props := w.ZoneProperties(*cx, *cz)
	fmt.Printf("zone at center: %s scale=%d spacing=%d ceil=[%.0f,%.0f] density=%.2f wall=%.2f decay=%.2f tint=#%06x\n",
		props.Kind, props.Scale, props.Spacing, props.CeilMin, props.CeilMax,
		props.PillarDensity, props.WallChance, props.DecayChance, props.Tint)
	fmt.Printf("ceiling at center: %.1f\n", w.CeilingHeight(*cx, *cz))
}

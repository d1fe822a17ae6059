package world

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// StateDigest is a deterministic fingerprint of all mutable world state,
// used by determinism tests and replay verification. Two worlds with the
// same seed and op stream must digest identically at every tick.
func (w *World) StateDigest() string {
	h := sha256.New()
	fmt.Fprintf(h, "seed=%d tick=%d\n", w.cfg.Seed, w.tick)

	destroyed, health := w.ledger.exportWalls()
	dw := make([]string, 0, len(destroyed))
	for _, k := range destroyed {
		dw = append(dw, k.String())
	}
	sort.Strings(dw)
	for _, s := range dw {
		fmt.Fprintf(h, "dw %s\n", s)
	}

	hw := make([]string, 0, len(health))
	for k, v := range health {
		hw = append(hw, fmt.Sprintf("hw %s %.9f", k.String(), v))
	}
	sort.Strings(hw)
	for _, s := range hw {
		fmt.Fprintln(h, s)
	}

	dp := make([]string, 0)
	for _, p := range w.ledger.exportPillars() {
		dp = append(dp, p.String())
	}
	sort.Strings(dp)
	for _, s := range dp {
		fmt.Fprintf(h, "dp %s\n", s)
	}

	fmt.Fprintf(h, "debris=%d chunks=%d\n", w.debris.Particles(), len(w.debris.chunks))

	ids := make([]string, 0, len(w.movers))
	for id := range w.movers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		m := w.movers[id]
		fmt.Fprintf(h, "m %s %.6f %.6f\n", id, m.Pos.X, m.Pos.Z)
	}

	return hex.EncodeToString(h.Sum(nil))
}

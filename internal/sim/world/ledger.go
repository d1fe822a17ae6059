package world

// WallState is the progressive destruction state of one wall. Strictly
// forward: a wall never heals and never leaves Destroyed.
type WallState uint8

const (
	WallIntact WallState = iota
	WallCracked
	WallFractured
	WallBreaking
	WallDestroyed
)

func (s WallState) String() string {
	switch s {
	case WallIntact:
		return "INTACT"
	case WallCracked:
		return "CRACKED"
	case WallFractured:
		return "FRACTURED"
	case WallBreaking:
		return "BREAKING"
	case WallDestroyed:
		return "DESTROYED"
	}
	return "UNKNOWN"
}

// Damage thresholds. The source material gives these only qualitatively;
// the quarter splits below are this implementation's chosen constants.
const (
	crackedBelow   = 0.75
	fracturedBelow = 0.50
	breakingBelow  = 0.25
)

func stateForHealth(h float64) WallState {
	switch {
	case h <= 0:
		return WallDestroyed
	case h <= breakingBelow:
		return WallBreaking
	case h <= fracturedBelow:
		return WallFractured
	case h <= crackedBelow:
		return WallCracked
	}
	return WallIntact
}

// CrackSeg is one crack line in wall-face UV space ([0,1] across, [0,1] up).
// Visual guide only; cracks never affect collision.
type CrackSeg struct {
	U1, V1 float64
	U2, V2 float64
}

// WallRecord holds the mutable exception state for one wall key. Created
// lazily on first touch, never deleted: the world remembers.
type WallRecord struct {
	State  WallState
	Health float64
	Cracks []CrackSeg
}

// PillarRecord tracks pillar destruction. Pillars have no graduated damage.
type PillarRecord struct {
	Destroyed bool
}

// Transition is one state-machine step, emitted in the order it occurred.
type Transition struct {
	Wall WallKey
	From WallState
	To   WallState
}

const decaySalt = 0x44454341 // "DECA"

// Ledger owns all destruction state, keyed sparsely: untouched geometry costs
// nothing. decayChance supplies the zone decay probability for a wall key
// (nil disables generation decay).
type Ledger struct {
	seed        int64
	decayChance func(WallKey) float64

	walls   map[WallKey]*WallRecord
	pillars map[Grid2]*PillarRecord
}

func NewLedger(seed int64, decayChance func(WallKey) float64) *Ledger {
	return &Ledger{
		seed:        seed,
		decayChance: decayChance,
		walls:       map[WallKey]*WallRecord{},
		pillars:     map[Grid2]*PillarRecord{},
	}
}

// record lazily creates the wall record, rolling generation decay exactly
// once per key. Record existence doubles as the rolled marker, so a key can
// never re-roll. Decay never emits transitions: it predates the observer.
func (l *Ledger) record(k WallKey) *WallRecord {
	if r, ok := l.walls[k]; ok {
		return r
	}
	r := &WallRecord{State: WallIntact, Health: 1}
	if l.decayChance != nil {
		if dc := l.decayChance(k); dc > 0 {
			h := hash4(l.seed^decaySalt, k.A.X, k.A.Z, k.B.X, k.B.Z)
			if hashFrac(h) < dc {
				pre := 0.1 + 0.5*hashFrac(mix64(h))
				r.Health = clamp01(1 - pre)
				r.State = stateForHealth(r.Health)
				for s := WallCracked; s <= r.State; s++ {
					r.Cracks = growCracks(l.seed, k, s, r.Cracks)
				}
			}
		}
	}
	l.walls[k] = r
	return r
}

// Hit applies cumulative damage. Returns true only if this call drove the
// wall to Destroyed, plus every threshold transition crossed, in order.
// A wall already Destroyed is a no-op.
func (l *Ledger) Hit(k WallKey, damage float64) (bool, []Transition) {
	r := l.record(k)
	if r.State == WallDestroyed || damage <= 0 {
		return false, nil
	}
	r.Health = clamp01(r.Health - damage)
	target := stateForHealth(r.Health)
	var ts []Transition
	for r.State < target {
		next := r.State + 1
		ts = append(ts, Transition{Wall: k, From: r.State, To: next})
		r.State = next
		r.Cracks = growCracks(l.seed, k, next, r.Cracks)
	}
	return r.State == WallDestroyed && len(ts) > 0, ts
}

// Destroy forces a wall straight to Destroyed, bypassing intermediate
// states. Emits exactly one transition; a second call is a no-op.
func (l *Ledger) Destroy(k WallKey) (bool, []Transition) {
	r := l.record(k)
	if r.State == WallDestroyed {
		return false, nil
	}
	t := Transition{Wall: k, From: r.State, To: WallDestroyed}
	r.State = WallDestroyed
	r.Health = 0
	return true, []Transition{t}
}

// DestroyPillar marks a pillar destroyed. Works on never-queried keys: the
// record is created on the spot. Returns true iff this call destroyed it.
func (l *Ledger) DestroyPillar(p Grid2) bool {
	r, ok := l.pillars[p]
	if !ok {
		r = &PillarRecord{}
		l.pillars[p] = r
	}
	if r.Destroyed {
		return false
	}
	r.Destroyed = true
	return true
}

func (l *Ledger) IsDestroyed(k WallKey) bool {
	return l.record(k).State == WallDestroyed
}

func (l *Ledger) IsPillarDestroyed(p Grid2) bool {
	if r, ok := l.pillars[p]; ok {
		return r.Destroyed
	}
	return false
}

// DamageOf returns remaining health in [0,1]. First touch rolls decay.
func (l *Ledger) DamageOf(k WallKey) float64 { return l.record(k).Health }

func (l *Ledger) StateOf(k WallKey) WallState { return l.record(k).State }

func (l *Ledger) CracksOf(k WallKey) []CrackSeg { return l.record(k).Cracks }

// growCracks appends a deterministic bundle of crack lines for one state
// advance. The pattern depends only on (seed, key, state).
func growCracks(seed int64, k WallKey, s WallState, in []CrackSeg) []CrackSeg {
	n := 1 + int(s)
	base := hash4(seed^int64(s)<<8, k.A.X, k.A.Z, k.B.X, k.B.Z)
	for i := 0; i < n; i++ {
		h1 := mix64(base + uint64(i)*0x9e3779b97f4a7c15)
		h2 := mix64(h1)
		h3 := mix64(h2)
		h4 := mix64(h3)
		in = append(in, CrackSeg{
			U1: hashFrac(h1),
			V1: hashFrac(h2),
			U2: hashFrac(h3),
			V2: hashFrac(h4),
		})
	}
	return in
}

// exportWalls returns destroyed keys and live damaged healths, sorted order
// left to the snapshot layer.
func (l *Ledger) exportWalls() (destroyed []WallKey, health map[WallKey]float64) {
	health = map[WallKey]float64{}
	for k, r := range l.walls {
		switch {
		case r.State == WallDestroyed:
			destroyed = append(destroyed, k)
		case r.Health < 1:
			health[k] = r.Health
		}
	}
	return destroyed, health
}

func (l *Ledger) exportPillars() []Grid2 {
	var out []Grid2
	for p, r := range l.pillars {
		if r.Destroyed {
			out = append(out, p)
		}
	}
	return out
}

// restore re-seats imported exception state. Imported records count as
// rolled, so generation decay cannot apply on top of a loaded wall.
func (l *Ledger) restore(destroyed []WallKey, health map[WallKey]float64, pillars []Grid2) {
	l.walls = map[WallKey]*WallRecord{}
	l.pillars = map[Grid2]*PillarRecord{}
	for _, k := range destroyed {
		l.walls[k] = &WallRecord{State: WallDestroyed, Health: 0}
	}
	for k, h := range health {
		h = clamp01(h)
		r := &WallRecord{State: stateForHealth(h), Health: h}
		for s := WallCracked; s <= r.State; s++ {
			r.Cracks = growCracks(l.seed, k, s, r.Cracks)
		}
		l.walls[k] = r
	}
	for _, p := range pillars {
		l.pillars[p] = &PillarRecord{Destroyed: true}
	}
}

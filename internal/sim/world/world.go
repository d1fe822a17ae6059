package world

import (
	"fmt"
	"sort"

	"concourse.world/internal/persistence/snapshot"
)

// World is the single-threaded authoritative simulation facade. It owns the
// geometry caches, the destruction ledger, the debris field and the event
// queue. All state must be accessed only from the world loop goroutine.
type World struct {
	cfg  WorldConfig
	tick uint64

	geom   *GeometryIndex
	ledger *Ledger
	debris *DebrisField
	events *eventQueue

	movers  map[string]*Mover
	clients map[string]*clientState

	inbox     chan ActionEnvelope
	join      chan JoinRequest
	leave     chan string
	eventsReq chan eventsReq
	stop      chan struct{}

	nextMoverNum uint64

	// Optional snapshot sink; writing happens off-thread (may be nil).
	snapshotSink chan<- snapshot.SnapshotV1
}

func New(cfg WorldConfig) (*World, error) {
	cfg.applyDefaults()
	if cfg.Seed == 0 {
		return nil, fmt.Errorf("world: seed required")
	}
	w := &World{
		cfg:       cfg,
		movers:    map[string]*Mover{},
		clients:   map[string]*clientState{},
		inbox:     make(chan ActionEnvelope, 256),
		join:      make(chan JoinRequest, 8),
		leave:     make(chan string, 8),
		eventsReq: make(chan eventsReq, 8),
		stop:      make(chan struct{}),
	}
	w.geom = NewGeometryIndex(cfg.Seed, cfg.GridSpacing, cfg.CellsPerZone)
	w.ledger = NewLedger(cfg.Seed, w.decayFn())
	w.debris = NewDebrisField(cfg.Seed, cfg.Debris)
	w.events = newEventQueue(cfg.EventBacklog)
	return w, nil
}

func (w *World) decayFn() func(WallKey) float64 {
	if w.cfg.NoDecay {
		return nil
	}
	return func(k WallKey) float64 {
		mid := k.Midpoint()
		return w.geom.ZoneProps(mid.X, mid.Z).DecayChance
	}
}

func (w *World) Config() WorldConfig { return w.cfg }
func (w *World) Tick() uint64        { return w.tick }

// --- query surface ---

func (w *World) ZoneOf(x, z float64) ZoneCoord           { return w.geom.ZoneOf(x, z) }
func (w *World) ZoneProperties(x, z float64) ZoneProperties { return w.geom.ZoneProps(x, z) }
func (w *World) HasPillar(p Grid2) bool                  { return w.geom.HasPillar(p) }
func (w *World) HasWall(a, b Grid2) bool                 { return w.geom.HasWall(a, b) }
func (w *World) CeilingHeight(x, z float64) float64      { return w.geom.CeilingHeight(x, z) }
func (w *World) IsDestroyed(k WallKey) bool              { return w.ledger.IsDestroyed(k) }
func (w *World) IsPillarDestroyed(p Grid2) bool          { return w.ledger.IsPillarDestroyed(p) }
func (w *World) DamageOf(k WallKey) float64              { return w.ledger.DamageOf(k) }
func (w *World) WallStateOf(k WallKey) WallState         { return w.ledger.StateOf(k) }
func (w *World) CracksOf(k WallKey) []CrackSeg           { return w.ledger.CracksOf(k) }

type DoorwayKind uint8

const (
	DoorSolid DoorwayKind = iota
	DoorDoorway
	DoorHallway
)

func (d DoorwayKind) String() string {
	switch d {
	case DoorSolid:
		return "SOLID"
	case DoorDoorway:
		return "DOORWAY"
	case DoorHallway:
		return "HALLWAY"
	}
	return "UNKNOWN"
}

// DoorwayKind classifies the gap between two adjacent grid points: a live
// wall is Solid, a destroyed wall leaves a Doorway, no generated wall at
// all is an open Hallway.
func (w *World) DoorwayKind(a, b Grid2) DoorwayKind {
	if !w.geom.HasWall(a, b) {
		return DoorHallway
	}
	if w.ledger.IsDestroyed(NewWallKey(a, b)) {
		return DoorDoorway
	}
	return DoorSolid
}

// --- mutation surface ---

// HitWall applies damage to a wall. Returns true iff this call destroyed it.
func (w *World) HitWall(k WallKey, amount float64) bool {
	destroyed, ts := w.ledger.Hit(k, amount)
	w.emitTransitions(ts)
	if destroyed {
		w.spawnWallDebris(k)
	}
	return destroyed
}

// DestroyWall forces a wall to Destroyed immediately. Always spawns debris
// on the first call; later calls are no-ops.
func (w *World) DestroyWall(k WallKey) {
	destroyed, ts := w.ledger.Destroy(k)
	w.emitTransitions(ts)
	if destroyed {
		w.spawnWallDebris(k)
	}
}

func (w *World) DestroyPillar(p Grid2) {
	if !w.ledger.DestroyPillar(p) {
		return
	}
	w.events.append(Event{Tick: w.tick, Kind: EventPillarDestroyed, Pos: p.Vec()})
	w.debris.SpawnPillar(p.Vec())
}

func (w *World) emitTransitions(ts []Transition) {
	for _, t := range ts {
		w.events.append(Event{Tick: w.tick, Kind: EventWallState, Wall: t.Wall, State: t.To})
	}
}

func (w *World) spawnWallDebris(k WallKey) {
	axis := k.B.Vec().Sub(k.A.Vec())
	w.debris.SpawnWall(k.Midpoint(), axis)
}

// StepDebris advances debris physics one tick and queues impact events.
func (w *World) StepDebris(dt float64, observer Vec2) {
	w.debris.Step(dt, observer)
	for _, imp := range w.debris.Impacts() {
		w.events.append(Event{Tick: w.tick, Kind: EventDebrisImpact, Pos: imp.XZ()})
	}
}

func (w *World) Debris() *DebrisField { return w.debris }

// EventsAfter returns queued events with cursor >= since, oldest first, and
// the cursor to resume from. Subscribers poll; the producer never calls out.
func (w *World) EventsAfter(since uint64, limit int) ([]Event, uint64) {
	return w.events.after(since, limit)
}

// EventCursor is the cursor the next emitted event will receive.
func (w *World) EventCursor() uint64 { return w.events.next() }

// --- persistence surface ---

func (w *World) ExportState() snapshot.SnapshotV1 {
	seed := w.cfg.Seed
	destroyed, health := w.ledger.exportWalls()
	pillars := w.ledger.exportPillars()

	dw := make([]string, 0, len(destroyed))
	for _, k := range destroyed {
		dw = append(dw, k.String())
	}
	sort.Strings(dw)
	hm := make(map[string]float64, len(health))
	for k, h := range health {
		hm[k.String()] = h
	}
	dp := make([]string, 0, len(pillars))
	for _, p := range pillars {
		dp = append(dp, p.String())
	}
	sort.Strings(dp)
	var rubble [][3]float64
	for _, c := range w.debris.Chunks() {
		rubble = append(rubble, [3]float64{c.Pos.X, c.Pos.Y, c.Pos.Z})
	}

	return snapshot.SnapshotV1{
		Header:           snapshot.Header{Version: snapshot.Version, WorldID: w.cfg.ID, Tick: w.tick},
		Seed:             &seed,
		TickRateHz:       w.cfg.TickRateHz,
		GridSpacing:      w.cfg.GridSpacing,
		CellsPerZone:     w.cfg.CellsPerZone,
		DestroyedWalls:   dw,
		WallHealth:       hm,
		DestroyedPillars: dp,
		Rubble:           rubble,
	}
}

// ImportState replaces all destruction/debris state from a snapshot and
// invalidates every generation cache wholesale: cached existence decisions
// from before a seed change would desync from the stored keys.
func (w *World) ImportState(s snapshot.SnapshotV1) error {
	if s.Seed == nil {
		return fmt.Errorf("import state: missing seed")
	}
	destroyed := make([]WallKey, 0, len(s.DestroyedWalls))
	for _, ks := range s.DestroyedWalls {
		k, err := ParseWallKey(ks)
		if err != nil {
			return fmt.Errorf("import state: %w", err)
		}
		destroyed = append(destroyed, k)
	}
	health := make(map[WallKey]float64, len(s.WallHealth))
	for ks, h := range s.WallHealth {
		k, err := ParseWallKey(ks)
		if err != nil {
			return fmt.Errorf("import state: %w", err)
		}
		health[k] = h
	}
	pillars := make([]Grid2, 0, len(s.DestroyedPillars))
	for _, ps := range s.DestroyedPillars {
		p, err := ParseGrid2(ps)
		if err != nil {
			return fmt.Errorf("import state: %w", err)
		}
		pillars = append(pillars, p)
	}

	w.cfg.Seed = *s.Seed
	if s.GridSpacing > 0 {
		w.cfg.GridSpacing = s.GridSpacing
	}
	if s.CellsPerZone > 0 {
		w.cfg.CellsPerZone = s.CellsPerZone
	}
	w.tick = s.Header.Tick

	w.geom = NewGeometryIndex(w.cfg.Seed, w.cfg.GridSpacing, w.cfg.CellsPerZone)
	w.ledger = NewLedger(w.cfg.Seed, w.decayFn())
	w.ledger.restore(destroyed, health, pillars)
	w.debris = NewDebrisField(w.cfg.Seed, w.cfg.Debris)
	chunks := make([]RubbleChunk, 0, len(s.Rubble))
	for _, r := range s.Rubble {
		chunks = append(chunks, RubbleChunk{Pos: Vec3{X: r[0], Y: r[1], Z: r[2]}})
	}
	w.debris.restoreChunks(chunks)
	return nil
}

package world

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"concourse.world/internal/persistence/snapshot"
	"concourse.world/internal/protocol"
	"concourse.world/internal/sim/encoding"
)

// Mover is a collision-bound entity driven by ACT messages. The world only
// resolves its movement; behavior lives with the client.
type Mover struct {
	ID     string
	Pos    Vec2
	Radius float64

	collided bool // contact during the last applied move
}

type ActionEnvelope struct {
	MoverID string
	Act     protocol.ActMsg
}

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	MoverID string
	Welcome protocol.WelcomeMsg
}

type clientState struct {
	Out    chan []byte
	cursor uint64
}

func (w *World) Inbox() chan<- ActionEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest     { return w.join }
func (w *World) Leave() chan<- string         { return w.leave }

// SetSnapshotSink installs the off-thread snapshot writer channel. Call
// before Run.
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

func (w *World) Stop() { close(w.stop) }

// Run owns the world until the context ends. Everything that mutates state
// happens here, once per tick: queued actions, debris integration, then
// observation frames and event delivery for each client.
func (w *World) Run(ctx context.Context) {
	dt := 1.0 / float64(w.cfg.TickRateHz)
	ticker := time.NewTicker(time.Second / time.Duration(w.cfg.TickRateHz))
	defer ticker.Stop()

	var pending []ActionEnvelope
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case req := <-w.join:
			w.handleJoin(req)
		case id := <-w.leave:
			delete(w.clients, id)
			delete(w.movers, id)
		case env := <-w.inbox:
			pending = append(pending, env)
		case req := <-w.eventsReq:
			w.handleEventsReq(req)
		case <-ticker.C:
			w.step(dt, pending)
			pending = pending[:0]
			w.broadcast()
			w.maybeSnapshot()
		}
	}
}

func (w *World) handleJoin(req JoinRequest) {
	w.nextMoverNum++
	id := fmt.Sprintf("M%d", w.nextMoverNum)
	gs := float64(w.cfg.GridSpacing)
	m := &Mover{
		ID: id,
		// Cell centers are always clear of pillar footprints.
		Pos:    Vec2{X: (float64(w.nextMoverNum-1) + 0.5) * gs, Z: 0.5 * gs},
		Radius: w.cfg.MoverRadius,
	}
	w.movers[id] = m
	w.clients[id] = &clientState{Out: req.Out, cursor: w.events.next()}

	resp := JoinResponse{
		MoverID: id,
		Welcome: protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			MoverID:         id,
			World: protocol.WorldParams{
				ID:           w.cfg.ID,
				Seed:         w.cfg.Seed,
				TickRateHz:   w.cfg.TickRateHz,
				GridSpacing:  w.cfg.GridSpacing,
				CellsPerZone: w.cfg.CellsPerZone,
				ObsRadius:    w.cfg.ObsRadius,
			},
		},
	}
	select {
	case req.Resp <- resp:
	default:
	}
}

// step applies one tick of queued actions and advances debris.
func (w *World) step(dt float64, acts []ActionEnvelope) {
	w.tick++
	for _, env := range acts {
		w.applyAct(env)
	}
	w.StepDebris(dt, w.observerPos())
}

func (w *World) applyAct(env ActionEnvelope) {
	m := w.movers[env.MoverID]
	if m == nil {
		return
	}
	m.collided = false
	if mv := env.Act.Move; mv != nil {
		target := Vec2{X: mv.Target[0], Z: mv.Target[1]}
		d := target.Sub(m.Pos)
		if l := d.Len(); l > w.cfg.MaxMoveStep {
			target = m.Pos.Add(d.Scale(w.cfg.MaxMoveStep / l))
		}
		m.Pos, m.collided = w.Resolve(m.Pos, target, m.Radius, w.cfg.SkinWidth)
	}
	for _, h := range env.Act.Hits {
		k, err := ParseWallKey(h.Wall)
		if err != nil {
			continue
		}
		w.HitWall(k, clamp01(h.Amount))
	}
	for _, d := range env.Act.Destroys {
		if d.Wall != "" {
			if k, err := ParseWallKey(d.Wall); err == nil {
				w.DestroyWall(k)
			}
		}
		if d.Pillar != "" {
			if p, err := ParseGrid2(d.Pillar); err == nil {
				w.DestroyPillar(p)
			}
		}
	}
}

// observerPos anchors debris culling: the lowest mover id, deterministic
// regardless of map iteration order.
func (w *World) observerPos() Vec2 {
	var best *Mover
	for _, m := range w.movers {
		if best == nil || m.ID < best.ID {
			best = m
		}
	}
	if best == nil {
		return Vec2{}
	}
	return best.Pos
}

func (w *World) broadcast() {
	for id, c := range w.clients {
		m := w.movers[id]
		if m == nil {
			continue
		}
		obs := w.buildObs(m, c)
		b, err := json.Marshal(obs)
		if err != nil {
			continue
		}
		// Never block the loop on a slow client.
		select {
		case c.Out <- b:
		default:
		}
	}
}

func (w *World) buildObs(m *Mover, c *clientState) protocol.ObsMsg {
	gs := w.cfg.GridSpacing
	r := w.cfg.ObsRadius
	side := 2*r + 1
	cx := floorDiv(int(m.Pos.X)+gs/2, gs)
	cz := floorDiv(int(m.Pos.Z)+gs/2, gs)

	codes := make([]uint16, 0, side*side)
	for iz := cz - r; iz <= cz+r; iz++ {
		for ix := cx - r; ix <= cx+r; ix++ {
			pt := Grid2{X: ix * gs, Z: iz * gs}
			var code uint16
			if w.geom.HasPillar(pt) {
				if w.ledger.IsPillarDestroyed(pt) {
					code |= encoding.OccPillarDestroyed
				} else {
					code |= encoding.OccPillar
				}
			}
			spacing := w.geom.ZoneProps(float64(pt.X), float64(pt.Z)).Spacing
			switch w.DoorwayKind(pt, Grid2{X: pt.X + spacing, Z: pt.Z}) {
			case DoorSolid:
				code |= encoding.OccWallEast
			case DoorDoorway:
				code |= encoding.OccDoorwayEast
			}
			switch w.DoorwayKind(pt, Grid2{X: pt.X, Z: pt.Z + spacing}) {
			case DoorSolid:
				code |= encoding.OccWallSouth
			case DoorDoorway:
				code |= encoding.OccDoorwaySouth
			}
			codes = append(codes, code)
		}
	}

	events, next := w.events.after(c.cursor, 256)
	c.cursor = next
	wireEvents := make([]protocol.Event, 0, len(events))
	for _, e := range events {
		wireEvents = append(wireEvents, WireEvent(e))
	}

	props := w.geom.ZoneProps(m.Pos.X, m.Pos.Z)
	return protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Tick:            w.tick,
		MoverID:         m.ID,
		Pos:             [2]float64{m.Pos.X, m.Pos.Z},
		Collided:        m.collided,
		Zone:            props.Kind.String(),
		Tint:            props.Tint,
		Ceiling:         w.geom.CeilingHeight(m.Pos.X, m.Pos.Z),
		GridOrigin:      [2]int{(cx - r) * gs, (cz - r) * gs},
		GridStep:        gs,
		GridSide:        side,
		Grid:            encoding.EncodeOccupancy(codes),
		Events:          wireEvents,
		NextCursor:      next,
	}
}

// WireEvent converts an internal event record to its wire form.
func WireEvent(e Event) protocol.Event {
	we := protocol.Event{
		Cursor: e.Cursor,
		Tick:   e.Tick,
		Kind:   string(e.Kind),
	}
	switch e.Kind {
	case EventWallState:
		we.Wall = e.Wall.String()
		we.State = e.State.String()
	case EventPillarDestroyed, EventDebrisImpact:
		we.Pos = [2]float64{e.Pos.X, e.Pos.Z}
	}
	return we
}

func (w *World) maybeSnapshot() {
	if w.snapshotSink == nil || w.cfg.SnapshotEveryTicks <= 0 {
		return
	}
	if w.tick%uint64(w.cfg.SnapshotEveryTicks) != 0 {
		return
	}
	select {
	case w.snapshotSink <- w.ExportState():
	default:
	}
}

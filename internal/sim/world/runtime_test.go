package world

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"concourse.world/internal/persistence/snapshot"
	"concourse.world/internal/protocol"
)

// recvObs pulls frames from a client channel until one passes accept, or the
// deadline hits.
func recvObs(t *testing.T, out <-chan []byte, accept func(protocol.ObsMsg) bool) protocol.ObsMsg {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case b := <-out:
			var obs protocol.ObsMsg
			if err := json.Unmarshal(b, &obs); err != nil {
				t.Fatalf("bad obs frame: %v", err)
			}
			if accept(obs) {
				return obs
			}
		case <-deadline:
			t.Fatalf("no matching obs frame within deadline")
		}
	}
}

func joinTestClient(t *testing.T, w *World, name string) (string, protocol.WelcomeMsg, chan []byte) {
	t.Helper()
	out := make(chan []byte, 64)
	resp := make(chan JoinResponse, 1)
	w.Join() <- JoinRequest{Name: name, Out: out, Resp: resp}
	select {
	case r := <-resp:
		return r.MoverID, r.Welcome, out
	case <-time.After(5 * time.Second):
		t.Fatalf("join timed out")
		return "", protocol.WelcomeMsg{}, nil
	}
}

func TestRun_JoinActObserve(t *testing.T) {
	w := mustWorld(t, WorldConfig{ID: "w1", Seed: 42, NoDecay: true, TickRateHz: 100, ObsRadius: 2})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() { defer close(done); w.Run(ctx) }()

	id, welcome, out := joinTestClient(t, w, "tester")
	if welcome.MoverID != id || welcome.World.Seed != 42 || welcome.World.GridSpacing != 400 {
		t.Fatalf("bad welcome: %+v", welcome)
	}

	first := recvObs(t, out, func(o protocol.ObsMsg) bool { return o.MoverID == id })
	if first.GridSide != 5 {
		t.Fatalf("grid side %d, want 5", first.GridSide)
	}
	if first.Zone == "" || first.Ceiling <= 0 {
		t.Fatalf("frame missing zone context: %+v", first)
	}

	// Destroy a wall through the ACT path; the notification must show up in
	// a later frame.
	w.Inbox() <- ActionEnvelope{MoverID: id, Act: protocol.ActMsg{
		Type:     protocol.TypeAct,
		Destroys: []protocol.DestroyReq{{Wall: "0,0|400,0"}},
	}}
	frame := recvObs(t, out, func(o protocol.ObsMsg) bool { return len(o.Events) > 0 })
	found := false
	for _, e := range frame.Events {
		if e.Kind == string(EventWallState) && e.Wall == "0,0|400,0" && e.State == "DESTROYED" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no destruction event in frame: %+v", frame.Events)
	}

	cancel()
	<-done
}

func TestRun_MoveClampAndCollision(t *testing.T) {
	w := mustWorld(t, WorldConfig{ID: "w1", Seed: 42, NoDecay: true, TickRateHz: 100, MaxMoveStep: 50})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	id, _, out := joinTestClient(t, w, "tester")
	start := recvObs(t, out, func(o protocol.ObsMsg) bool { return o.MoverID == id })

	// Ask for a jump far beyond the per-tick clamp.
	w.Inbox() <- ActionEnvelope{MoverID: id, Act: protocol.ActMsg{
		Type: protocol.TypeAct,
		Move: &protocol.MoveReq{Target: [2]float64{start.Pos[0] + 10000, start.Pos[1]}},
	}}
	moved := recvObs(t, out, func(o protocol.ObsMsg) bool { return o.Pos != start.Pos })
	dx := moved.Pos[0] - start.Pos[0]
	dz := moved.Pos[1] - start.Pos[1]
	if d := dx*dx + dz*dz; d > 51*51 {
		t.Fatalf("move exceeded clamp: traveled^2 = %v", d)
	}
}

func TestRun_SnapshotSinkSafeToCloseAfterExit(t *testing.T) {
	w := mustWorld(t, WorldConfig{ID: "w1", Seed: 42, NoDecay: true, TickRateHz: 200, SnapshotEveryTicks: 1})
	snapCh := make(chan snapshot.SnapshotV1, 1)
	w.SetSnapshotSink(snapCh)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { defer close(done); w.Run(ctx) }()

	// Let the loop take snapshot ticks while the sink is being drained.
	deadline := time.After(5 * time.Second)
	for i := 0; i < 3; i++ {
		select {
		case <-snapCh:
		case <-deadline:
			t.Fatalf("no snapshot emitted")
		}
	}

	// Shutdown order: stop the loop, wait for it, only then close the sink.
	// Closing before Run returns would let maybeSnapshot send on a closed
	// channel.
	cancel()
	<-done
	close(snapCh)
}

func TestRequestEventsAfter_CrossGoroutine(t *testing.T) {
	w := mustWorld(t, WorldConfig{ID: "w1", Seed: 42, NoDecay: true, TickRateHz: 200})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	id, _, _ := joinTestClient(t, w, "tester")
	w.Inbox() <- ActionEnvelope{MoverID: id, Act: protocol.ActMsg{
		Type:     protocol.TypeAct,
		Destroys: []protocol.DestroyReq{{Pillar: "400,400"}},
	}}

	qctx, qcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer qcancel()
	for {
		evs, next, err := w.RequestEventsAfter(qctx, 0, 0)
		if err != nil {
			t.Fatalf("RequestEventsAfter: %v", err)
		}
		for _, e := range evs {
			if e.Kind == EventPillarDestroyed {
				if next == 0 {
					t.Fatalf("resume cursor not advanced")
				}
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"concourse.world/internal/persistence/indexdb"
	"concourse.world/internal/persistence/snapshot"
	"concourse.world/internal/sim/tuning"
	"concourse.world/internal/sim/world"
	"concourse.world/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 1337, "world seed (used only when starting a fresh world)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <data>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite snapshot/event index")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*dataDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
	}

	w, err := world.New(worldConfig(*worldID, *seed, tune))
	if err != nil {
		logger.Fatalf("world: %v", err)
	}

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(worldDir)
	}
	if snapshotToLoad != "" {
		s, err := snapshot.ReadFile(snapshotToLoad)
		if err != nil {
			logger.Fatalf("load snapshot %s: %v", snapshotToLoad, err)
		}
		if err := w.ImportState(s); err != nil {
			logger.Fatalf("import snapshot %s: %v", snapshotToLoad, err)
		}
		logger.Printf("resumed from %s (tick=%d seed=%d)", snapshotToLoad, s.Header.Tick, *s.Seed)
	}

	// Snapshot writing happens off the world loop.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	go func() {
		for s := range snapCh {
			path := filepath.Join(worldDir, fmt.Sprintf("snapshot-%012d.json.zst", s.Header.Tick))
			if err := snapshot.WriteFile(path, s); err != nil {
				logger.Printf("write snapshot: %v", err)
				continue
			}
			logger.Printf("snapshot written: %s", path)
			if idx != nil {
				idx.RecordSnapshot(indexdb.SnapshotRow{
					Tick:             s.Header.Tick,
					Path:             path,
					Seed:             *s.Seed,
					DestroyedWalls:   len(s.DestroyedWalls),
					DestroyedPillars: len(s.DestroyedPillars),
				})
			}
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		w.Run(ctx)
	}()

	// Event history indexing: poll the loop from outside, never inline.
	if idx != nil {
		go indexEvents(ctx, w, idx)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.Handle("/v1/ws", ws.NewServer(w, logger).Handler())

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s (world=%s seed=%d)", *addr, *worldID, *seed)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logger.Printf("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	cancel()
	// The loop must be gone before the snapshot sink closes; maybeSnapshot
	// still sends on it until Run returns.
	<-runDone
	close(snapCh)
}

func worldConfig(id string, seed int64, t tuning.Tuning) world.WorldConfig {
	return world.WorldConfig{
		ID:                 id,
		Seed:               seed,
		TickRateHz:         t.TickRateHz,
		GridSpacing:        t.GridSpacing,
		CellsPerZone:       t.CellsPerZone,
		ObsRadius:          t.ObsRadius,
		SnapshotEveryTicks: t.SnapshotEveryTicks,
		CollisionPasses:    t.Collision.Passes,
		SkinWidth:          t.Collision.SkinWidth,
		MoverRadius:        t.Collision.MoverRadius,
		MaxMoveStep:        t.Collision.MaxMoveStep,
		Debris: world.DebrisConfig{
			MaxLive:      t.Debris.MaxLive,
			PerWall:      t.Debris.PerWall,
			PerPillar:    t.Debris.PerPillar,
			RubbleChance: t.Debris.RubbleChance,
			MaxAge:       t.Debris.MaxAgeSec,
			CullRadius:   t.Debris.CullRadius,
		},
	}
}

// indexEvents tails the world event queue into the sqlite index. Polling
// keeps the index strictly a consumer; it can never slow the loop.
func indexEvents(ctx context.Context, w *world.World, idx *indexdb.SQLiteIndex) {
	var cursor uint64
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		events, next, err := w.RequestEventsAfter(ctx, cursor, 512)
		if err != nil {
			return
		}
		cursor = next
		for _, e := range events {
			idx.RecordEvent(world.WireEvent(e))
		}
	}
}

func latestSnapshot(worldDir string) string {
	matches, err := filepath.Glob(filepath.Join(worldDir, "snapshot-*.json.zst"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[len(matches)-1]
}

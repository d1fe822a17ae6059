// Package indexdb is a read-model index of snapshots and destruction
// events. It never feeds back into the sim; losing it costs history, not
// world state.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"concourse.world/internal/protocol"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqEvent reqKind = iota + 1
	reqSnapshot
	reqFlush
)

type req struct {
	kind reqKind

	event    protocol.Event
	snapshot SnapshotRow
	done     chan struct{} // reqFlush: closed once every prior request executed
}

type SnapshotRow struct {
	Tick             uint64
	Path             string
	Seed             int64
	DestroyedWalls   int
	DestroyedPillars int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	idx := &SQLiteIndex{
		db: db,
		ch: make(chan req, 1024),
	}
	idx.wg.Add(1)
	go idx.writer()
	return idx, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS snapshots (
	tick INTEGER NOT NULL,
	path TEXT NOT NULL,
	seed INTEGER NOT NULL,
	destroyed_walls INTEGER NOT NULL,
	destroyed_pillars INTEGER NOT NULL,
	recorded_at TEXT NOT NULL,
	PRIMARY KEY (tick)
);
CREATE TABLE IF NOT EXISTS events (
	cursor INTEGER PRIMARY KEY,
	tick INTEGER NOT NULL,
	kind TEXT NOT NULL,
	wall TEXT,
	state TEXT,
	x REAL,
	z REAL
);
CREATE INDEX IF NOT EXISTS events_kind ON events(kind, tick);
`)
	return err
}

func (idx *SQLiteIndex) writer() {
	defer idx.wg.Done()
	for r := range idx.ch {
		switch r.kind {
		case reqEvent:
			e := r.event
			_, _ = idx.db.Exec(
				`INSERT OR IGNORE INTO events (cursor, tick, kind, wall, state, x, z) VALUES (?,?,?,?,?,?,?)`,
				e.Cursor, e.Tick, e.Kind, e.Wall, e.State, e.Pos[0], e.Pos[1],
			)
		case reqSnapshot:
			s := r.snapshot
			_, _ = idx.db.Exec(
				`INSERT OR REPLACE INTO snapshots (tick, path, seed, destroyed_walls, destroyed_pillars, recorded_at) VALUES (?,?,?,?,?,?)`,
				s.Tick, s.Path, s.Seed, s.DestroyedWalls, s.DestroyedPillars,
				time.Now().UTC().Format(time.RFC3339),
			)
		case reqFlush:
			close(r.done)
		}
	}
}

// RecordEvent enqueues an event row; drops silently if the index is closed
// or the queue is full. The index must never stall the world loop.
func (idx *SQLiteIndex) RecordEvent(e protocol.Event) {
	if idx.closed.Load() {
		return
	}
	select {
	case idx.ch <- req{kind: reqEvent, event: e}:
	default:
	}
}

func (idx *SQLiteIndex) RecordSnapshot(s SnapshotRow) {
	if idx.closed.Load() {
		return
	}
	select {
	case idx.ch <- req{kind: reqSnapshot, snapshot: s}:
	default:
	}
}

// LatestSnapshot returns the most recent snapshot row, or ok=false when the
// index is empty.
func (idx *SQLiteIndex) LatestSnapshot() (SnapshotRow, bool, error) {
	var s SnapshotRow
	row := idx.db.QueryRow(`SELECT tick, path, seed, destroyed_walls, destroyed_pillars FROM snapshots ORDER BY tick DESC LIMIT 1`)
	err := row.Scan(&s.Tick, &s.Path, &s.Seed, &s.DestroyedWalls, &s.DestroyedPillars)
	if err == sql.ErrNoRows {
		return SnapshotRow{}, false, nil
	}
	if err != nil {
		return SnapshotRow{}, false, err
	}
	return s, true, nil
}

// EventCount reports stored events of one kind ("" for all).
func (idx *SQLiteIndex) EventCount(kind string) (int, error) {
	var n int
	var err error
	if kind == "" {
		err = idx.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n)
	} else {
		err = idx.db.QueryRow(`SELECT COUNT(*) FROM events WHERE kind = ?`, kind).Scan(&n)
	}
	return n, err
}

// Flush blocks until the writer has executed everything enqueued before the
// call. The channel is FIFO, so a sentinel processed by the writer proves
// every earlier insert already committed.
func (idx *SQLiteIndex) Flush() {
	// A closed index has no writer; nothing to wait for.
	if idx.closed.Load() {
		return
	}
	done := make(chan struct{})
	idx.ch <- req{kind: reqFlush, done: done}
	<-done
}

func (idx *SQLiteIndex) Close() error {
	var err error
	idx.once.Do(func() {
		idx.closed.Store(true)
		close(idx.ch)
		idx.wg.Wait()
		err = idx.db.Close()
	})
	return err
}

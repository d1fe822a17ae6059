package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

// SnapshotV1 is the persisted exception state of a world. Everything not
// listed here regenerates deterministically from Seed. Seed is a pointer on
// purpose: a snapshot without a seed is corrupt and must fail decode rather
// than silently regenerate against some substitute seed, which would desync
// every stored wall key from the geometry it refers to.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed       *int64 `json:"seed,omitempty"`
	TickRateHz int    `json:"tick_rate_hz,omitempty"`

	GridSpacing  int `json:"grid_spacing,omitempty"`
	CellsPerZone int `json:"cells_per_zone,omitempty"`

	DestroyedWalls   []string           `json:"destroyed_walls"`
	WallHealth       map[string]float64 `json:"wall_health"`
	DestroyedPillars []string           `json:"destroyed_pillars"`

	// Settled-permanent rubble survives restarts; airborne debris does not.
	Rubble [][3]float64 `json:"rubble,omitempty"`
}

const Version = 1

func Encode(s SnapshotV1) ([]byte, error) {
	s.Header.Version = Version
	return json.Marshal(s)
}

func Decode(b []byte) (SnapshotV1, error) {
	var s SnapshotV1
	if err := json.Unmarshal(b, &s); err != nil {
		return SnapshotV1{}, fmt.Errorf("snapshot: %w", err)
	}
	if s.Header.Version != Version {
		return SnapshotV1{}, fmt.Errorf("snapshot: unsupported version %d", s.Header.Version)
	}
	if s.Seed == nil {
		return SnapshotV1{}, fmt.Errorf("snapshot: missing seed")
	}
	return s, nil
}

// WriteFile writes a zstd-compressed snapshot atomically (tmp + rename).
func WriteFile(path string, s SnapshotV1) error {
	b, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w := bufio.NewWriterSize(enc, 128*1024)
	if _, err := w.Write(b); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func ReadFile(path string) (SnapshotV1, error) {
	f, err := os.Open(path)
	if err != nil {
		return SnapshotV1{}, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return SnapshotV1{}, err
	}
	defer dec.Close()
	b, err := io.ReadAll(dec)
	if err != nil {
		return SnapshotV1{}, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return Decode(b)
}

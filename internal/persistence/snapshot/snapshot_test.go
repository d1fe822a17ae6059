package snapshot

import (
	"os"
	"path/filepath"
	"testing"
)

func sample(seed int64) SnapshotV1 {
	return SnapshotV1{
		Header:           Header{WorldID: "w1", Tick: 6000},
		Seed:             &seed,
		TickRateHz:       20,
		GridSpacing:      400,
		CellsPerZone:     8,
		DestroyedWalls:   []string{"0,0|400,0", "400,0|400,400"},
		WallHealth:       map[string]float64{"800,0|1200,0": 0.4},
		DestroyedPillars: []string{"400,400"},
		Rubble:           [][3]float64{{210, 0, -30}},
	}
}

func TestEncodeDecode_Roundtrip(t *testing.T) {
	in := sample(42)
	b, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Header.Version != Version || out.Header.WorldID != "w1" || out.Header.Tick != 6000 {
		t.Fatalf("header mangled: %+v", out.Header)
	}
	if out.Seed == nil || *out.Seed != 42 {
		t.Fatalf("seed mangled: %v", out.Seed)
	}
	if len(out.DestroyedWalls) != 2 || out.WallHealth["800,0|1200,0"] != 0.4 {
		t.Fatalf("destruction state mangled: %+v", out)
	}
	if len(out.Rubble) != 1 || out.Rubble[0] != [3]float64{210, 0, -30} {
		t.Fatalf("rubble mangled: %+v", out.Rubble)
	}
}

func TestDecode_RejectsMissingSeed(t *testing.T) {
	in := sample(42)
	in.Seed = nil
	b, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(b); err == nil {
		t.Fatalf("expected error for snapshot without seed")
	}
}

func TestDecode_RejectsWrongVersion(t *testing.T) {
	if _, err := Decode([]byte(`{"header":{"version":99},"seed":1}`)); err == nil {
		t.Fatalf("expected error for unsupported version")
	}
}

func TestWriteReadFile_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snaps", "w1_6000.snap.zst")
	in := sample(7)
	if err := WriteFile(path, in); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	// Atomic write leaves no tmp behind.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("tmp file left behind: %v", err)
	}
	out, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if *out.Seed != 7 || out.Header.Tick != 6000 || len(out.DestroyedWalls) != 2 {
		t.Fatalf("roundtrip mangled: %+v", out)
	}
}

func TestReadFile_MissingFile(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.snap.zst")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

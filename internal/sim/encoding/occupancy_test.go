package encoding

import "testing"

func TestOccupancy_Roundtrip(t *testing.T) {
	cases := [][]uint16{
		nil,
		{0},
		{OccPillar},
		{OccPillar | OccWallEast, OccPillar | OccWallEast, 0, 0, 0, OccDoorwaySouth},
		func() []uint16 { // a sparse zone: long zero run with one feature
			c := make([]uint16, 625)
			c[312] = OccPillar | OccWallEast | OccWallSouth
			return c
		}(),
	}
	for _, in := range cases {
		s := EncodeOccupancy(in)
		out, err := DecodeOccupancy(s)
		if err != nil {
			t.Fatalf("decode %q: %v", s, err)
		}
		if len(out) != len(in) {
			t.Fatalf("length %d, want %d", len(out), len(in))
		}
		for i := range in {
			if out[i] != in[i] {
				t.Fatalf("code %d: %d, want %d", i, out[i], in[i])
			}
		}
	}
}

func TestOccupancy_RunsCompress(t *testing.T) {
	flat := make([]uint16, 625)
	s := EncodeOccupancy(flat)
	if len(s) > 12 {
		t.Fatalf("625 identical codes encoded to %d chars", len(s))
	}
}

func TestOccupancy_DecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeOccupancy("not base64!!"); err == nil {
		t.Fatalf("expected error for invalid base64")
	}
}

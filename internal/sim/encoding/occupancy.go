// Package encoding carries the wire codecs for observation frames.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// Occupancy codes: one value per grid point, bit flags describing the point
// and its +X / +Z edges. Runs compress extremely well in sparse zones.
const (
	OccPillar          uint16 = 1 << 0
	OccPillarDestroyed uint16 = 1 << 1
	OccWallEast        uint16 = 1 << 2 // live wall toward +X
	OccWallSouth       uint16 = 1 << 3 // live wall toward +Z
	OccDoorwayEast     uint16 = 1 << 4 // destroyed wall toward +X
	OccDoorwaySouth    uint16 = 1 << 5 // destroyed wall toward +Z
)

// EncodeOccupancy encodes occupancy codes as base64(varint pairs), the
// pairs being (code, run_len) repeated.
func EncodeOccupancy(codes []uint16) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(codes) {
		c := codes[i]
		run := 1
		for j := i + 1; j < len(codes) && codes[j] == c; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(c))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func DecodeOccupancy(b64 string) ([]uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint16
	for i := 0; i < len(raw); {
		c, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if c > 0xFFFF {
			return nil, fmt.Errorf("occupancy code too large: %d", c)
		}
		for k := 0; k < int(run); k++ {
			out = append(out, uint16(c))
		}
	}
	return out, nil
}

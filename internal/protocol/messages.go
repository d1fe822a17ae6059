package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Name            string `json:"name"`
	MaxQueue        int    `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	MoverID         string      `json:"mover_id"`
	World           WorldParams `json:"world"`
}

type WorldParams struct {
	ID           string `json:"id"`
	Seed         int64  `json:"seed"`
	TickRateHz   int    `json:"tick_rate_hz"`
	GridSpacing  int    `json:"grid_spacing"`
	CellsPerZone int    `json:"cells_per_zone"`
	ObsRadius    int    `json:"obs_radius"`
}

// ACT (client -> server): movement intents and destruction intents for one
// tick. Wall keys use the canonical "x1,z1|x2,z2" form, pillars "x,z".
type ActMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Tick            uint64       `json:"tick,omitempty"`
	Move            *MoveReq     `json:"move,omitempty"`
	Hits            []HitReq     `json:"hits,omitempty"`
	Destroys        []DestroyReq `json:"destroys,omitempty"`
}

type MoveReq struct {
	Target [2]float64 `json:"target"`
}

type HitReq struct {
	Wall   string  `json:"wall"`
	Amount float64 `json:"amount"`
}

type DestroyReq struct {
	Wall   string `json:"wall,omitempty"`
	Pillar string `json:"pillar,omitempty"`
}

// OBS (server -> client): one frame of the world around the client's mover.
// Grid carries RLE-encoded occupancy codes (see internal/sim/encoding) for
// a (2R+1)^2 window of grid points, row-major, origin at GridOrigin.
type ObsMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Tick            uint64     `json:"tick"`
	MoverID         string     `json:"mover_id"`
	Pos             [2]float64 `json:"pos"`
	Collided        bool       `json:"collided"`
	Zone            string     `json:"zone"`
	Tint            uint32     `json:"tint"`
	Ceiling         float64    `json:"ceiling"`
	GridOrigin      [2]int     `json:"grid_origin"`
	GridStep        int        `json:"grid_step"`
	GridSide        int        `json:"grid_side"`
	Grid            string     `json:"grid"`
	Events          []Event    `json:"events,omitempty"`
	NextCursor      uint64     `json:"next_cursor"`
}

// Event is one destruction/debris notification on the wire.
type Event struct {
	Cursor uint64     `json:"cursor"`
	Tick   uint64     `json:"tick"`
	Kind   string     `json:"kind"`
	Wall   string     `json:"wall,omitempty"`
	State  string     `json:"state,omitempty"`
	Pos    [2]float64 `json:"pos,omitempty"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

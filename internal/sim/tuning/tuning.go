package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz         int `yaml:"tick_rate_hz"`
	GridSpacing        int `yaml:"grid_spacing"`
	CellsPerZone       int `yaml:"cells_per_zone"`
	ObsRadius          int `yaml:"obs_radius"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`

	Collision Collision `yaml:"collision"`
	Debris    Debris    `yaml:"debris"`
}

type Collision struct {
	Passes      int     `yaml:"passes"`
	SkinWidth   float64 `yaml:"skin_width"`
	MoverRadius float64 `yaml:"mover_radius"`
	MaxMoveStep float64 `yaml:"max_move_step"`
}

type Debris struct {
	MaxLive      int     `yaml:"max_live"`
	PerWall      int     `yaml:"per_wall"`
	PerPillar    int     `yaml:"per_pillar"`
	RubbleChance float64 `yaml:"rubble_chance"`
	MaxAgeSec    float64 `yaml:"max_age_sec"`
	CullRadius   float64 `yaml:"cull_radius"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Defaults returns a zero tuning: every field falls through to the world
// config defaults.
func Defaults() Tuning { return Tuning{} }

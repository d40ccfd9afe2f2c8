package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz     int `yaml:"tick_rate_hz"`
	DayTicks       int `yaml:"day_ticks"`
	WorldBoundaryR int `yaml:"world_boundary_r"`

	Sound SoundLimits `yaml:"sound"`
}

// SoundLimits bounds the speaker: one sound per tick per computer, with a
// note burst up to NotesPerTick when the tick's first admitted sound was a note.
type SoundLimits struct {
	NotesPerTick int `yaml:"notes_per_tick"`
	EarshotR     int `yaml:"earshot_r"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      20,
		DayTicks:        24000,
		WorldBoundaryR:  256,
		Sound: SoundLimits{
			NotesPerTick: 8,
			EarshotR:     16,
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if t.TickRateHz <= 0 {
		return t, fmt.Errorf("tuning.yaml: tick_rate_hz must be positive")
	}
	if t.DayTicks <= 0 {
		return t, fmt.Errorf("tuning.yaml: day_ticks must be positive")
	}
	if t.Sound.NotesPerTick <= 0 {
		t.Sound.NotesPerTick = Defaults().Sound.NotesPerTick
	}
	return t, nil
}

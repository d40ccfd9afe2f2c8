package world

import (
	"fmt"
	"log"
	"sync/atomic"

	"voxelscript.dev/internal/sim/computer"
	"voxelscript.dev/internal/sim/dispatch"
	"voxelscript.dev/internal/sim/tuning"
)

type WorldConfig struct {
	ID         string
	TickRateHz int
	DayTicks   int
	BoundaryR  int
	Seed       int64

	SoundNotesPerTick int
	SoundEarshotR     int
}

func ConfigFromTuning(id string, seed int64, t tuning.Tuning) WorldConfig {
	return WorldConfig{
		ID:                id,
		TickRateHz:        t.TickRateHz,
		DayTicks:          t.DayTicks,
		BoundaryR:         t.WorldBoundaryR,
		Seed:              seed,
		SoundNotesPerTick: t.Sound.NotesPerTick,
		SoundEarshotR:     t.Sound.EarshotR,
	}
}

// TickSink receives one entry per completed tick (JSONL log, SQLite index).
type TickSink interface {
	WriteTick(TickLogEntry) error
}

// World is the authoritative simulation: the block grid, the turtle bodies,
// and every computer context attached to them. All world state is owned by
// the single goroutine running Run (or driving StepOnce in tests); sessions
// reach it only through the join/leave channels and the dispatcher.
type World struct {
	cfg    WorldConfig
	logger *log.Logger

	tick      atomic.Uint64
	nextNum   atomic.Uint64
	compCount atomic.Int64

	disp    *dispatch.Dispatcher
	turtles map[string]*Turtle
	comps   map[string]*computer.Computer
	blocks  map[Vec3i]string

	join  chan JoinRequest
	leave chan leaveRequest
	stop  chan struct{}

	sinks []TickSink
}

func New(cfg WorldConfig, logger *log.Logger) (*World, error) {
	if cfg.TickRateHz <= 0 {
		return nil, fmt.Errorf("world %s: tick rate must be positive", cfg.ID)
	}
	if cfg.DayTicks <= 0 {
		return nil, fmt.Errorf("world %s: day_ticks must be positive", cfg.ID)
	}
	if cfg.SoundNotesPerTick <= 0 {
		cfg.SoundNotesPerTick = 8
	}
	if cfg.SoundEarshotR <= 0 {
		cfg.SoundEarshotR = 16
	}
	w := &World{
		cfg:     cfg,
		logger:  logger,
		disp:    dispatch.New(logger),
		turtles: map[string]*Turtle{},
		comps:   map[string]*computer.Computer{},
		blocks:  map[Vec3i]string{},
		join:    make(chan JoinRequest, 16),
		leave:   make(chan leaveRequest, 16),
		stop:    make(chan struct{}),
	}
	return w, nil
}

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}

func (w *World) Tick() uint64 { return w.tick.Load() }

// AddTickSink registers a per-tick sink. Call before Run.
func (w *World) AddTickSink(s TickSink) {
	if s != nil {
		w.sinks = append(w.sinks, s)
	}
}

func (w *World) newComputerID() string {
	n := w.nextNum.Add(1)
	return fmt.Sprintf("C%06d", n)
}

// Package config provides configuration loading and access for the
// benchmark: grid topology, agent defaults, avoidance-strategy
// parameters, and the sweep's default scenario list.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"swarmnav/grid"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all benchmark configuration parameters.
type Config struct {
	Grid       GridConfig       `yaml:"grid"`
	Agent      AgentConfig      `yaml:"agent"`
	Direct     DirectConfig     `yaml:"direct"`
	Indirect   IndirectConfig   `yaml:"indirect"`
	None       NoneConfig       `yaml:"none"`
	Sweep      SweepConfig      `yaml:"sweep"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds the scenario grid's shape.
type GridConfig struct {
	Topology string  `yaml:"topology"` // "rectangular" or "hex_pointy_top_odd_q"
	Width    int32   `yaml:"width"`
	Height   int32   `yaml:"height"`
	CellSize float64 `yaml:"cell_size"`
}

// AgentConfig holds per-agent kinematic defaults.
type AgentConfig struct {
	Radius   float64 `yaml:"radius"`
	MaxSpeed float64 `yaml:"max_speed"`

	CollisionDetectionRadius float64 `yaml:"collision_detection_radius"`
}

// DirectConfig holds the ORCA negotiator's parameters (spec.md §4.4.a).
type DirectConfig struct {
	NeighborDist float64 `yaml:"neighbor_dist"`
	MaxNeighbors int     `yaml:"max_neighbors"`
	TimeHorizon  float64 `yaml:"time_horizon"`
}

// IndirectConfig holds the occupancy-blackboard's parameters (spec.md
// §4.4.b).
type IndirectConfig struct {
	ReservationRadius int32   `yaml:"reservation_radius"`
	AvoidanceStrength float64 `yaml:"avoidance_strength"`
	LookAheadCells    int32   `yaml:"look_ahead_cells"`
}

// NoneConfig holds the reactive sensor's parameters (spec.md §4.4.c).
type NoneConfig struct {
	RepulsionStrength float64 `yaml:"repulsion_strength"`
}

// SweepConfig holds the benchmark's default sweep grid.
type SweepConfig struct {
	AgentCounts []int    `yaml:"agent_counts"`
	Methods     []string `yaml:"methods"`
	MaxFrames   int      `yaml:"max_frames"`
	TimeoutS    float64  `yaml:"timeout_s"`
}

// TelemetryConfig holds the performance collector's window size.
type TelemetryConfig struct {
	PerfWindowTicks int `yaml:"perf_window_ticks"`
}

// DerivedConfig holds values computed after loading.
type DerivedConfig struct {
	DT float32 // seconds per tick, fixed at 1/60 (spec.md §4.5's ·60 scale note)
}

// ErrInvalidConfig is returned by Validate (and therefore by Load) for any
// of the configuration errors spec.md §7.1 kind 1 names: zero/negative
// grid dimensions, a non-positive agent count, or an empty method list.
// These fail fast at scenario construction rather than propagating into
// a tick loop.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Validate checks the scenario-construction invariants spec.md §7.1 kind 1
// requires to fail fast, before any grid.Grid or benchmark.Sweep is built
// from c.
func (c *Config) Validate() error {
	if _, err := grid.ParseTopology(c.Grid.Topology); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("%w: grid dimensions must be positive, got %dx%d", ErrInvalidConfig, c.Grid.Width, c.Grid.Height)
	}
	if c.Grid.CellSize <= 0 {
		return fmt.Errorf("%w: grid cell_size must be positive, got %v", ErrInvalidConfig, c.Grid.CellSize)
	}
	if c.Agent.Radius <= 0 {
		return fmt.Errorf("%w: agent radius must be positive, got %v", ErrInvalidConfig, c.Agent.Radius)
	}
	if c.Agent.MaxSpeed <= 0 {
		return fmt.Errorf("%w: agent max_speed must be positive, got %v", ErrInvalidConfig, c.Agent.MaxSpeed)
	}
	if len(c.Sweep.Methods) == 0 {
		return fmt.Errorf("%w: sweep methods list must not be empty", ErrInvalidConfig)
	}
	if len(c.Sweep.AgentCounts) == 0 {
		return fmt.Errorf("%w: sweep agent_counts list must not be empty", ErrInvalidConfig)
	}
	for _, n := range c.Sweep.AgentCounts {
		if n <= 0 {
			return fmt.Errorf("%w: sweep agent_counts must all be positive, got %d", ErrInvalidConfig, n)
		}
	}
	if c.Sweep.MaxFrames <= 0 {
		return fmt.Errorf("%w: sweep max_frames must be positive, got %d", ErrInvalidConfig, c.Sweep.MaxFrames)
	}
	if c.Sweep.TimeoutS <= 0 {
		return fmt.Errorf("%w: sweep timeout_s must be positive, got %v", ErrInvalidConfig, c.Sweep.TimeoutS)
	}
	return nil
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from path, or uses embedded defaults if path
// is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) computeDerived() {
	c.Derived.DT = 1.0 / 60.0
}

// WriteYAML saves the configuration to path for run reproducibility.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Package benchmark runs the cross product of avoidance strategies and
// agent counts over a fixed grid, collecting one telemetry.MetricRecord
// per run (C6 in spec.md's component table).
package benchmark

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"swarmnav/agent"
	"swarmnav/avoidance"
	"swarmnav/grid"
	"swarmnav/simworld"
	"swarmnav/telemetry"
)

// tickDT is the simulation step duration, fixed per spec.md §4.5's ·60
// scale note.
const tickDT = 1.0 / 60.0

// Factory builds a fresh avoidance strategy for one scenario run. Indirect
// reads neighbor cell centers from the grid, so the factory receives it
// even though Direct and None ignore it.
type Factory func(g *grid.Grid) avoidance.Strategy

// DefaultFactories maps the three method names spec.md §6 names by
// default to their strategy constructors.
func DefaultFactories() map[string]Factory {
	return map[string]Factory{
		"Direct":   func(g *grid.Grid) avoidance.Strategy { return avoidance.NewDirectStrategy() },
		"Indirect": func(g *grid.Grid) avoidance.Strategy { return avoidance.NewIndirectStrategy(g) },
		"None":     func(g *grid.Grid) avoidance.Strategy { return avoidance.NewNoneStrategy() },
	}
}

// Sweep configures a run_full invocation (spec.md §4.6).
type Sweep struct {
	Grid      *grid.Grid
	Factories map[string]Factory
	Sink      *telemetry.MetricSink

	AgentRadius float32
	MaxSpeed    float32

	AgentCounts []int
	Methods     []string
	MaxFrames   int
	TimeoutS    float64

	Rng *rand.Rand
}

// ErrInvalidSweep is returned by Validate (and therefore by RunFull) for
// the scenario-construction errors spec.md §7.1 kind 1 names that are
// specific to a sweep rather than a grid: a non-positive agent count or
// an empty method/agent-count list. An empty Methods list must fail
// fast here rather than making RunFull a silent no-op.
var ErrInvalidSweep = errors.New("benchmark: invalid sweep")

// Validate checks the sweep's own scenario-construction invariants. It
// does not re-validate s.Grid, which is assumed already constructed from
// a validated config.Config.
func (s *Sweep) Validate() error {
	if len(s.Methods) == 0 {
		return fmt.Errorf("%w: methods list must not be empty", ErrInvalidSweep)
	}
	if len(s.AgentCounts) == 0 {
		return fmt.Errorf("%w: agent_counts list must not be empty", ErrInvalidSweep)
	}
	for _, n := range s.AgentCounts {
		if n <= 0 {
			return fmt.Errorf("%w: agent_counts must all be positive, got %d", ErrInvalidSweep, n)
		}
	}
	if s.MaxFrames <= 0 {
		return fmt.Errorf("%w: max_frames must be positive, got %d", ErrInvalidSweep, s.MaxFrames)
	}
	if s.TimeoutS <= 0 {
		return fmt.Errorf("%w: timeout_s must be positive, got %v", ErrInvalidSweep, s.TimeoutS)
	}
	return nil
}

// RunFull executes every (method, agent_count) pair in s.Methods x
// s.AgentCounts and appends one MetricRecord per run to s.Sink (spec.md
// §4.6). It returns ErrInvalidSweep without running anything if s fails
// Validate.
func (s *Sweep) RunFull() error {
	if err := s.Validate(); err != nil {
		return err
	}
	for _, method := range s.Methods {
		factory, ok := s.Factories[method]
		if !ok {
			slog.Warn("benchmark: unknown method, skipping", "method", method)
			continue
		}
		for _, count := range s.AgentCounts {
			slog.Info("benchmark: starting run", "method", method, "agent_count", count)
			record := s.runOne(method, count, factory)
			s.Sink.Append(record)
			slog.Info("benchmark: finished run",
				"method", method, "agent_count", count,
				"collisions", record.Collisions, "completion_s", record.CompletionS,
				"paths_blocked", record.PathsBlocked)
		}
	}
	return nil
}

// runOne executes a single (method, count) scenario to termination or
// timeout and returns its summary record.
func (s *Sweep) runOne(method string, count int, factory Factory) telemetry.MetricRecord {
	strategy := factory(s.Grid)
	s.Sink.ResetPathStats()

	w := simworld.New(s.Grid, strategy, s.Sink, s.AgentRadius, s.MaxSpeed)
	for i := 0; i < count; i++ {
		w.SpawnRandom(s.Rng)
	}

	wallStart := time.Now()
	frame := 0
	timedOut := false
	for frame < s.MaxFrames {
		if w.AllReached() {
			break
		}
		if time.Since(wallStart).Seconds() > s.TimeoutS {
			timedOut = true
			break
		}
		w.Tick()
		frame++
	}

	var completionS float64
	if timedOut {
		// spec.md §5: a timed-out run is flagged by completion_time_s =
		// max_frames*dt rather than the actual (shorter) elapsed sim time.
		completionS = float64(s.MaxFrames) * tickDT
	} else {
		completionS = float64(frame) * tickDT
	}

	return telemetry.MetricRecord{
		Method:       method,
		AgentCount:   count,
		AvgAlgoMs:    telemetry.AlgoMs(w.AvgAlgoMs()),
		Collisions:   w.CollisionCount(),
		CompletionS:  telemetry.DurSecOrDistPx(completionS),
		AvgExtraPx:   telemetry.DurSecOrDistPx(avgExtraDistance(w.Agents())),
		PathsBlocked: w.PathsBlocked(),
	}
}

func avgExtraDistance(agents []*agent.Agent) float64 {
	if len(agents) == 0 {
		return 0
	}
	var total float64
	for _, a := range agents {
		total += float64(a.ExtraDistance())
	}
	return total / float64(len(agents))
}

// Package telemetry aggregates simulation metrics (C7 in the component
// table): per-tick performance phases and per-run MetricRecords, flushed
// to CSV through gocsv.
package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one SimulationWorld tick (spec.md §4.5's data-flow
// order).
const (
	PhasePlan      = "plan"
	PhasePreferred = "preferred_velocity"
	PhaseStrategy  = "strategy_step"
	PhaseIntegrate = "integrate"
	PhaseCollision = "collision_count"
)

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window of
// ticks.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a named phase, closing out the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick closes the final phase and records the tick's sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated statistics over the collector's window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	PhaseAvg        map[string]time.Duration
	PhasePct        map[string]float64
	TicksPerSecond  float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var totalTick, minTick, maxTick time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalTick += s.TickDuration
		if i == 0 || s.TickDuration < minTick {
			minTick = s.TickDuration
		}
		if s.TickDuration > maxTick {
			maxTick = s.TickDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avgTick := totalTick / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgTick > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgTick) * 100
		}
	}

	var ticksPerSec float64
	if avgTick > 0 {
		ticksPerSec = float64(time.Second) / float64(avgTick)
	}

	return PerfStats{
		AvgTickDuration: avgTick,
		MinTickDuration: minTick,
		MaxTickDuration: maxTick,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		TicksPerSecond:  ticksPerSec,
	}
}

// LogStats logs performance statistics at info level.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	for _, phase := range []string{PhasePlan, PhasePreferred, PhaseStrategy, PhaseIntegrate, PhaseCollision} {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of a phase breakdown.
type PerfStatsCSV struct {
	Method       string  `csv:"Method"`
	AgentCount   int     `csv:"AgentCount"`
	AvgTickUS    int64   `csv:"AvgTickUS"`
	TicksPerSec  float64 `csv:"TicksPerSec"`
	PlanPct      float64 `csv:"PlanPct"`
	PreferredPct float64 `csv:"PreferredPct"`
	StrategyPct  float64 `csv:"StrategyPct"`
	IntegratePct float64 `csv:"IntegratePct"`
	CollisionPct float64 `csv:"CollisionPct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly record for one run.
func (s PerfStats) ToCSV(method string, agentCount int) PerfStatsCSV {
	return PerfStatsCSV{
		Method:       method,
		AgentCount:   agentCount,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		PlanPct:      s.PhasePct[PhasePlan],
		PreferredPct: s.PhasePct[PhasePreferred],
		StrategyPct:  s.PhasePct[PhaseStrategy],
		IntegratePct: s.PhasePct[PhaseIntegrate],
		CollisionPct: s.PhasePct[PhaseCollision],
	}
}

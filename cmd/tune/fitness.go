package main

import (
	"fmt"
	"math/rand"

	"swarmnav/avoidance"
	"swarmnav/benchmark"
	"swarmnav/grid"
	"swarmnav/telemetry"
)

// FitnessEvaluator runs a small benchmark sweep per candidate parameter
// vector and scores it by total collisions across every method, averaged
// over seeds; completion time does not enter the score (lower is better,
// mirroring the teacher's "lower fitness is better" convention).
type FitnessEvaluator struct {
	params      *ParamVector
	g           *grid.Grid
	agentCounts []int
	maxFrames   int
	timeoutS    float64
	agentRadius float32
	maxSpeed    float32
	seeds       []int64

	lastCollisions int
}

// NewFitnessEvaluator creates an evaluator over a fixed scenario grid.
func NewFitnessEvaluator(params *ParamVector, g *grid.Grid, agentCounts []int, maxFrames int, timeoutS float64, agentRadius, maxSpeed float32, seeds []int64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		g:           g,
		agentCounts: agentCounts,
		maxFrames:   maxFrames,
		timeoutS:    timeoutS,
		agentRadius: agentRadius,
		maxSpeed:    maxSpeed,
		seeds:       seeds,
	}
}

// LastCollisions returns the total collision count from the most recent
// Evaluate call, for progress reporting.
func (fe *FitnessEvaluator) LastCollisions() int {
	return fe.lastCollisions
}

// tunedFactories builds one factory per method with t's parameters
// applied, so a single sweep exercises all three strategies under the
// same candidate vector.
func tunedFactories(t Tuned) map[string]benchmark.Factory {
	return map[string]benchmark.Factory{
		"Direct": func(g *grid.Grid) avoidance.Strategy {
			d := avoidance.NewDirectStrategy()
			d.NeighborDist = float32(t.DirectNeighborDist)
			d.MaxNeighbors = t.DirectMaxNeighbors
			d.TimeHorizon = float32(t.DirectTimeHorizon)
			return d
		},
		"Indirect": func(g *grid.Grid) avoidance.Strategy {
			s := avoidance.NewIndirectStrategy(g)
			s.AvoidanceStrength = float32(t.IndirectAvoidanceStrength)
			s.LookAheadCells = t.IndirectLookAheadCells
			return s
		},
		"None": func(g *grid.Grid) avoidance.Strategy {
			n := avoidance.NewNoneStrategy()
			n.RepulsionStrength = float32(t.NoneRepulsionStrength)
			return n
		},
	}
}

// Evaluate computes fitness for a normalized parameter vector x ∈ [0,1]^n
// (lower is better: total collisions summed over every method/seed,
// averaged across seeds).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	raw := fe.params.Denormalize(x)
	tuned := fe.params.ApplyToConfig(raw)
	factories := tunedFactories(tuned)

	var totalCollisions int
	for _, seed := range fe.seeds {
		sink := telemetry.NewMetricSink()
		sweep := &benchmark.Sweep{
			Grid:        fe.g,
			Factories:   factories,
			Sink:        sink,
			AgentRadius: fe.agentRadius,
			MaxSpeed:    fe.maxSpeed,
			AgentCounts: fe.agentCounts,
			Methods:     []string{"Direct", "Indirect", "None"},
			MaxFrames:   fe.maxFrames,
			TimeoutS:    fe.timeoutS,
			Rng:         rand.New(rand.NewSource(seed)),
		}
		if err := sweep.RunFull(); err != nil {
			// The scenario was already validated once at startup in main;
			// a candidate parameter vector cannot make it invalid again.
			panic(fmt.Sprintf("tune: unexpected invalid sweep: %v", err))
		}
		for _, r := range sink.Records() {
			totalCollisions += r.Collisions
		}
	}

	avg := float64(totalCollisions) / float64(len(fe.seeds))
	fe.lastCollisions = int(avg + 0.5)
	return avg
}

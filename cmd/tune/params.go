// Command tune searches for avoidance-strategy parameters that minimize
// collisions across a benchmark sweep, using CMA-ES (SPEC_FULL.md §3's
// parameter-tuning supplement, grounded on the teacher's cmd/optimize).
package main

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
}

// ParamVector holds the set of all tunable avoidance parameters, spanning
// all three strategies so one search run improves every method together.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the standard set of tunable parameters, in the
// same order ApplyToConfig expects.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "direct_neighbor_dist", Min: 10, Max: 150, Default: 50},
			{Name: "direct_max_neighbors", Min: 3, Max: 20, Default: 10},
			{Name: "direct_time_horizon", Min: 1, Max: 10, Default: 5.0},

			{Name: "indirect_avoidance_strength", Min: 0.1, Max: 2.0, Default: 0.8},
			{Name: "indirect_look_ahead_cells", Min: 1, Max: 5, Default: 2},

			{Name: "none_repulsion_strength", Min: 0.1, Max: 3.0, Default: 1.0},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int { return len(pv.Specs) }

// DefaultVector returns the default parameter values.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1].
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures every value is within its spec's bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// Tuned holds the denormalized, clamped parameter values by name, ready
// to apply to strategy instances.
type Tuned struct {
	DirectNeighborDist        float64
	DirectMaxNeighbors        int
	DirectTimeHorizon         float64
	IndirectAvoidanceStrength float64
	IndirectLookAheadCells    int32
	NoneRepulsionStrength     float64
}

// ApplyToConfig maps a clamped parameter vector onto a Tuned value, in
// the exact order NewParamVector declares its specs.
func (pv *ParamVector) ApplyToConfig(values []float64) Tuned {
	c := pv.Clamp(values)
	return Tuned{
		DirectNeighborDist:        c[0],
		DirectMaxNeighbors:        int(c[1] + 0.5),
		DirectTimeHorizon:         c[2],
		IndirectAvoidanceStrength: c[3],
		IndirectLookAheadCells:    int32(c[4] + 0.5),
		NoneRepulsionStrength:     c[5],
	}
}

package avoidance

import (
	"math"

	"swarmnav/agent"
)

// DirectStrategy is the reciprocal-communication avoidance strategy: a
// single negotiator constructs one ORCA (optimal reciprocal collision
// avoidance) half-plane per pair of agents within NeighborDist and
// solves a small 2D linear program per agent for the velocity closest to
// its preferred velocity that satisfies every induced half-plane
// (spec.md §4.4.a). It embeds the canonical RVO2 geometry directly,
// per the spec's contract for implementers — no static-obstacle lines
// are constructed here, since grid obstacles are already resolved by the
// path planner before a preferred velocity is ever produced.
type DirectStrategy struct {
	NeighborDist float32
	MaxNeighbors int
	TimeHorizon  float32

	timeStep float32

	// velocities holds each agent's actual velocity from the previous
	// tick (not its preferred velocity) — ORCA's half-plane construction
	// is defined in terms of the agents' actual relative velocity.
	velocities map[agent.ID]Vec2

	// registry is the negotiator's lazily-rebuilt view of participating
	// agents; it is rebuilt whenever the set of agent IDs changes between
	// ticks (spec.md §4.4.a "Rebuild policy").
	registry    []agent.ID
	registrySet map[agent.ID]struct{}
}

// NewDirectStrategy returns a DirectStrategy with the spec's default
// parameters (spec.md §4.4.a).
func NewDirectStrategy() *DirectStrategy {
	return &DirectStrategy{
		NeighborDist: 50,
		MaxNeighbors: 10,
		TimeHorizon:  5.0,
		velocities:   make(map[agent.ID]Vec2),
		registrySet:  make(map[agent.ID]struct{}),
	}
}

// Initialize configures the negotiator's tick duration. Per-agent radius
// and speed are taken from each AgentView at Step time, since the
// benchmark may mix agent sizes within a scenario.
func (d *DirectStrategy) Initialize(tickDT, _ /*agentRadius*/, _ /*maxSpeed*/ float32) {
	d.timeStep = tickDT
	if d.timeStep <= 0 {
		d.timeStep = 1.0 / 60.0
	}
}

func (d *DirectStrategy) rebuildRegistryIfChanged(agents []AgentView) {
	changed := len(agents) != len(d.registry)
	if !changed {
		for _, a := range agents {
			if _, ok := d.registrySet[a.ID]; !ok {
				changed = true
				break
			}
		}
	}
	if !changed {
		return
	}

	d.registry = d.registry[:0]
	for k := range d.registrySet {
		delete(d.registrySet, k)
	}
	for _, a := range agents {
		d.registry = append(d.registry, a.ID)
		d.registrySet[a.ID] = struct{}{}
	}

	// Drop velocity memory for agents no longer participating.
	for id := range d.velocities {
		if _, ok := d.registrySet[id]; !ok {
			delete(d.velocities, id)
		}
	}
}

// Step implements Strategy.
func (d *DirectStrategy) Step(agents []AgentView, preferred []Vec2) []Vec2 {
	result := make([]Vec2, len(agents))
	if len(agents) == 0 {
		return result
	}
	d.rebuildRegistryIfChanged(agents)

	for i, a := range agents {
		curVel := d.velocities[a.ID]
		lines := d.orcaLines(i, agents, curVel)

		opt := preferred[i]
		newVel, fallback := solveLP2(lines, a.MaxSpeed, opt)
		if fallback < len(lines) {
			newVel = solveLP3(lines, fallback, a.MaxSpeed, newVel)
		}

		result[i] = newVel
	}
	for i, a := range agents {
		d.velocities[a.ID] = result[i]
	}
	return result
}

// orcaLines builds the ORCA half-plane for every neighbor of agents[i]
// within NeighborDist, following the published RVO2 construction.
func (d *DirectStrategy) orcaLines(i int, agents []AgentView, velA Vec2) []line {
	a := agents[i]
	var lines []line

	var candidates []neighborCandidate
	for j, b := range agents {
		if j == i {
			continue
		}
		rel := b.Position.Sub(a.Position)
		distSq := dot(rel, rel)
		if distSq < d.NeighborDist*d.NeighborDist {
			candidates = append(candidates, neighborCandidate{idx: j, distSq: distSq})
		}
	}
	// Keep only the MaxNeighbors closest, as RVO2 does to bound per-tick cost.
	if d.MaxNeighbors > 0 && len(candidates) > d.MaxNeighbors {
		partialSortByDist(candidates, d.MaxNeighbors)
		candidates = candidates[:d.MaxNeighbors]
	}

	invTimeHorizon := float32(1)
	if d.TimeHorizon > 1e-6 {
		invTimeHorizon = 1 / d.TimeHorizon
	}

	for _, c := range candidates {
		b := agents[c.idx]
		velB := d.velocities[b.ID]

		relativePosition := b.Position.Sub(a.Position)
		relativeVelocity := velA.Sub(velB)
		distSq := c.distSq
		combinedRadius := a.Radius + b.Radius
		combinedRadiusSq := combinedRadius * combinedRadius

		var u, lineDir Vec2

		if distSq > combinedRadiusSq {
			w := relativeVelocity.Sub(relativePosition.Scale(invTimeHorizon))
			wLengthSq := dot(w, w)
			dotProduct1 := dot(w, relativePosition)

			if dotProduct1 < 0 && dotProduct1*dotProduct1 > combinedRadiusSq*wLengthSq {
				wLength := float32(0)
				if wLengthSq > 0 {
					wLength = sqrt32(wLengthSq)
				}
				unitW := normalize(w)
				lineDir = Vec2{X: unitW.Y, Y: -unitW.X}
				u = unitW.Scale(combinedRadius*invTimeHorizon - wLength)
			} else {
				leg := sqrt32(distSq - combinedRadiusSq)
				if det(relativePosition, w) > 0 {
					lineDir = Vec2{
						X: relativePosition.X*leg - relativePosition.Y*combinedRadius,
						Y: relativePosition.X*combinedRadius + relativePosition.Y*leg,
					}.Scale(1 / distSq)
				} else {
					lineDir = Vec2{
						X: relativePosition.X*leg + relativePosition.Y*combinedRadius,
						Y: -relativePosition.X*combinedRadius + relativePosition.Y*leg,
					}.Scale(-1 / distSq)
				}
				dotProduct2 := dot(relativeVelocity, lineDir)
				u = lineDir.Scale(dotProduct2).Sub(relativeVelocity)
			}
		} else {
			// Already overlapping: push apart over the (shorter) tick time step.
			invTimeStep := float32(1)
			if d.timeStep > 1e-6 {
				invTimeStep = 1 / d.timeStep
			}
			w := relativeVelocity.Sub(relativePosition.Scale(invTimeStep))
			wLength := sqrt32(dot(w, w))
			unitW := normalize(w)
			lineDir = Vec2{X: unitW.Y, Y: -unitW.X}
			u = unitW.Scale(combinedRadius*invTimeStep - wLength)
		}

		lines = append(lines, line{
			point:     velA.Add(u.Scale(0.5)),
			direction: lineDir,
		})
	}

	return lines
}

// neighborCandidate is a prospective ORCA neighbor, indexed into the
// Step call's agent slice, with its squared distance precomputed.
type neighborCandidate struct {
	idx    int
	distSq float32
}

// partialSortByDist moves the k smallest-distSq candidates to the front,
// leaving the rest in arbitrary order (selection over a small slice —
// MaxNeighbors defaults to 10, so a simple selection pass is plenty).
func partialSortByDist(c []neighborCandidate, k int) {
	for i := 0; i < k && i < len(c); i++ {
		minIdx := i
		for j := i + 1; j < len(c); j++ {
			if c[j].distSq < c[minIdx].distSq {
				minIdx = j
			}
		}
		c[i], c[minIdx] = c[minIdx], c[i]
	}
}

func sqrt32(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}

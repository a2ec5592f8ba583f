package avoidance

// NoneStrategy is the reactive proximity-sensor strategy: each agent
// reads only (distance, direction) to nearby agents, with no agent
// identity and no shared state (spec.md §4.4.c). It admits oscillation
// and multi-agent deadlock by construction — that is the measured point
// of the benchmark, not a defect to be patched.
type NoneStrategy struct {
	RepulsionStrength float32
}

// NewNoneStrategy returns a NoneStrategy with the spec's default
// parameters.
func NewNoneStrategy() *NoneStrategy {
	return &NoneStrategy{RepulsionStrength: 1.0}
}

// Initialize implements Strategy. The reactive sensor needs no
// cross-tick state and reads radius and speed from each AgentView, so
// there is nothing to configure here; RepulsionStrength is set directly
// on the struct.
func (n *NoneStrategy) Initialize(tickDT, agentRadius, maxSpeed float32) {}

// Step implements Strategy.
func (n *NoneStrategy) Step(agents []AgentView, preferred []Vec2) []Vec2 {
	result := make([]Vec2, len(agents))
	if len(agents) == 0 {
		return result
	}

	for i, a := range agents {
		detectionRadius := 3*a.Radius + 15*a.MaxSpeed
		criticalDistance := 2.5 * a.Radius

		var force Vec2
		criticalReadings := 0

		for j, b := range agents {
			if j == i {
				continue
			}
			delta := b.Position.Sub(a.Position)
			d := delta.Length()
			if d >= detectionRadius || d < 1e-6 {
				continue
			}
			unitDir := delta.Scale(1 / d)

			var magnitude float32
			if d < criticalDistance {
				magnitude = 2 * n.RepulsionStrength * (1 - d/criticalDistance)
				criticalReadings++
			} else {
				magnitude = n.RepulsionStrength * (1 - d/detectionRadius)
			}
			force = force.Add(unitDir.Scale(-magnitude))
		}

		corrected := preferred[i].Add(force)

		if criticalReadings >= 2 && corrected.Length() < 0.2*a.MaxSpeed {
			nudge := perp(normalize(preferred[i])).Scale(0.3 * a.MaxSpeed)
			if int(a.ID)%2 != 0 {
				nudge = nudge.Scale(-1)
			}
			corrected = corrected.Add(nudge)
		}

		result[i] = corrected.ClampLength(a.MaxSpeed)
	}

	return result
}

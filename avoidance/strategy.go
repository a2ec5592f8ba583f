// Package avoidance implements the three collision-avoidance strategies
// (C4 in spec.md's component table): Direct (reciprocal velocity
// negotiation), Indirect (shared occupancy blackboard), and None (local
// proximity sensing). All three share the single Strategy contract so
// SimulationWorld can swap between them without changing its tick
// pipeline (spec.md §4.4).
package avoidance

import "swarmnav/agent"

// Vec2 is a velocity or displacement vector, shared with the agent
// package's kinematic state.
type Vec2 = agent.Vec2

// AgentView is the read-only per-agent data a strategy needs. It
// deliberately carries no reference to the agent's owning world — a
// strategy step receives a plain slice and returns corrected velocities,
// per spec.md §4.4's contract.
type AgentView struct {
	ID       agent.ID
	Position Vec2
	Radius   float32
	MaxSpeed float32
}

// Strategy computes, once per tick, a corrected velocity for every alive
// agent given its preferred velocity. initialize is called once per
// scenario before any Step call.
type Strategy interface {
	// Initialize configures the strategy for a scenario. tickDT is the
	// simulation step duration in seconds, agentRadius and maxSpeed are
	// scenario defaults (individual agents may still carry their own
	// radius/speed via AgentView).
	Initialize(tickDT, agentRadius, maxSpeed float32)

	// Step returns corrected velocities, one per entry in agents/preferred.
	// len(result) == len(agents) always, including the empty-slice case.
	Step(agents []AgentView, preferred []Vec2) []Vec2
}

func dot(a, b Vec2) float32 { return a.X*b.X + a.Y*b.Y }

// det is the 2D cross product (determinant), used throughout ORCA's
// half-plane construction to test which side of a line a point falls on.
func det(a, b Vec2) float32 { return a.X*b.Y - a.Y*b.X }

// perp rotates v by +90 degrees.
func perp(v Vec2) Vec2 { return Vec2{X: -v.Y, Y: v.X} }

func normalize(v Vec2) Vec2 {
	l := v.Length()
	if l < 1e-9 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// Package agent defines the navigating agent's kinematic and navigation
// state (C3 in spec.md's component table). Agent depends only on grid
// (for cell<->world lookups) and pathfind (for its Path type); it never
// calls into avoidance or simworld — all tick-level mutation is driven
// by the SimulationWorld.
package agent

import (
	"math"

	"swarmnav/grid"
	"swarmnav/pathfind"
)

// Vec2 is a 2D vector used for velocities and deltas.
type Vec2 struct {
	X, Y float32
}

// Length returns the Euclidean magnitude of v.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// ClampLength returns v with its magnitude clamped to at most max.
// Zero-magnitude vectors are returned unchanged (no division by zero).
func (v Vec2) ClampLength(max float32) Vec2 {
	l := v.Length()
	if l <= max || l < 1e-3 {
		return v
	}
	return v.Scale(max / l)
}

// ID identifies an agent within a simulation run.
type ID uint32

// Agent holds the kinematic plus navigation state for one organism in
// the benchmark (spec.md §3 "Agent").
type Agent struct {
	ID ID

	Spawn  grid.Point2
	Target grid.Cell
	Position grid.Point2

	IdealDistance    float32
	DistanceTraveled float32

	Radius   float32
	MaxSpeed float32

	Path       pathfind.Path
	PathCursor int
	HasPath    bool
	Reached    bool
	Blocked    bool

	Health int32
	Alive  bool
}

// New constructs an agent spawned at startPos, heading for target.
// Health defaults to 1 (alive); the core tracks health but never
// decrements it (spec.md §3).
func New(id ID, startPos grid.Point2, target grid.Cell, radius, maxSpeed float32) *Agent {
	return &Agent{
		ID:       id,
		Spawn:    startPos,
		Target:   target,
		Position: startPos,
		Radius:   radius,
		MaxSpeed: maxSpeed,
		Health:   1,
		Alive:    true,
	}
}

// SetPath installs a newly planned path, resetting cursor and reached
// state. A non-empty path clears Blocked (Planning -> Moving); an empty
// path leaves HasPath false and is the caller's cue to set Blocked
// (Planning -> Blocked, spec.md §4.5.2).
func (a *Agent) SetPath(p pathfind.Path) {
	a.Path = p
	a.PathCursor = 0
	a.HasPath = len(p) > 0
	a.Reached = false
	if a.HasPath {
		a.Blocked = false
	}
}

// AdvanceCursor moves to the next waypoint. Once the cursor passes the
// end of the path, HasPath is cleared and Reached is set (spec.md §4.3,
// §4.5.2 Moving -> Reached transition).
func (a *Agent) AdvanceCursor() {
	a.PathCursor++
	if a.PathCursor >= len(a.Path) {
		a.HasPath = false
		a.Reached = true
	}
}

// CurrentWaypoint returns the world-space center of the agent's current
// path cursor and whether one exists.
func (a *Agent) CurrentWaypoint(g *grid.Grid) (grid.Point2, bool) {
	if !a.HasPath || a.PathCursor >= len(a.Path) {
		return grid.Point2{}, false
	}
	return g.CellToWorld(a.Path[a.PathCursor]), true
}

// Translate moves the agent by delta and accumulates the distance
// traveled (spec.md §4.3).
func (a *Agent) Translate(delta Vec2) {
	a.Position.X += delta.X
	a.Position.Y += delta.Y
	a.DistanceTraveled += delta.Length()
}

// ExtraDistance is the distance traveled in excess of the ideal
// (straight-line) distance, never negative (spec.md §4.3).
func (a *Agent) ExtraDistance() float32 {
	extra := a.DistanceTraveled - a.IdealDistance
	if extra < 0 {
		return 0
	}
	return extra
}

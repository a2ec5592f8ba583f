// Package simworld implements SimulationWorld (C5 in the component
// table): it owns the grid, the agent entities, and the active
// avoidance strategy, and advances them one deterministic tick at a
// time.
package simworld

import (
	"math"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"swarmnav/agent"
	"swarmnav/avoidance"
	"swarmnav/grid"
	"swarmnav/pathfind"
	"swarmnav/telemetry"
)

// waypointArriveRadius is the distance (in world units) within which an
// agent is considered to have reached its current waypoint (spec.md
// §4.5).
const waypointArriveRadius = 5.0

// CollisionPair is an unordered pair of agent ids, canonicalized so the
// smaller id is always first (spec.md §3).
type CollisionPair struct {
	A, B agent.ID
}

func canonicalPair(a, b agent.ID) CollisionPair {
	if a < b {
		return CollisionPair{A: a, B: b}
	}
	return CollisionPair{A: b, B: a}
}

// World owns exactly one ECS world, one grid, and one avoidance
// strategy, and mutates agents only through its own tick method (spec.md
// §4.5).
type World struct {
	grid     *grid.Grid
	planner  *pathfind.Planner
	strategy avoidance.Strategy
	sink     *telemetry.MetricSink
	perf     *telemetry.PerfCollector

	ecsWorld *ecs.World
	mapper   *ecs.Map1[agent.Agent]
	filter   *ecs.Filter1[agent.Agent]

	nextID agent.ID
	tick   int64
	dt     float32

	defaultRadius   float32
	defaultMaxSpeed float32

	activeCollisions map[CollisionPair]struct{}
	collisionCount   int
	pathsBlocked     int

	algoMsTotal float64
	algoMsCount int
}

// New constructs a World over g, driven by strategy, recording
// path-planner and metric events into sink.
func New(g *grid.Grid, strategy avoidance.Strategy, sink *telemetry.MetricSink, agentRadius, maxSpeed float32) *World {
	ecsWorld := ecs.NewWorld()

	w := &World{
		grid:             g,
		planner:          pathfind.NewPlanner(sink),
		strategy:         strategy,
		sink:             sink,
		perf:             telemetry.NewPerfCollector(600),
		ecsWorld:         ecsWorld,
		mapper:           ecs.NewMap1[agent.Agent](ecsWorld),
		filter:           ecs.NewFilter1[agent.Agent](ecsWorld),
		dt:               1.0 / 60.0,
		defaultRadius:    agentRadius,
		defaultMaxSpeed:  maxSpeed,
		activeCollisions: make(map[CollisionPair]struct{}),
	}

	if strategy != nil {
		strategy.Initialize(w.dt, agentRadius, maxSpeed)
	}

	return w
}

// Reset removes every agent entity and clears run-scoped state, keeping
// the grid and strategy in place (spec.md §4.6 "clear world agents").
func (w *World) Reset() {
	var toRemove []ecs.Entity
	query := w.filter.Query()
	for query.Next() {
		toRemove = append(toRemove, query.Entity())
	}
	for _, e := range toRemove {
		w.mapper.Remove(e)
	}

	w.nextID = 0
	w.tick = 0
	w.collisionCount = 0
	w.pathsBlocked = 0
	w.algoMsTotal = 0
	w.algoMsCount = 0
	for k := range w.activeCollisions {
		delete(w.activeCollisions, k)
	}
}

// Spawn creates a new agent at startPos heading for target, using the
// world's default radius and max speed.
func (w *World) Spawn(startPos grid.Point2, target grid.Cell) agent.ID {
	id := w.nextID
	w.nextID++

	a := *agent.New(id, startPos, target, w.defaultRadius, w.defaultMaxSpeed)
	a.IdealDistance = distance(startPos, w.grid.CellToWorld(target))

	w.mapper.NewEntity(&a)
	return id
}

// SpawnRandom places an agent at uniformly sampled distinct walkable
// start/target cells (spec.md §4.6).
func (w *World) SpawnRandom(rng *rand.Rand) agent.ID {
	start := w.randomWalkableCell(rng)
	target := w.randomWalkableCell(rng)
	for target == start {
		target = w.randomWalkableCell(rng)
	}
	return w.Spawn(w.grid.CellToWorld(start), target)
}

func (w *World) randomWalkableCell(rng *rand.Rand) grid.Cell {
	for {
		c := grid.Cell{
			Col: rng.Int31n(w.grid.Width),
			Row: rng.Int31n(w.grid.Height),
		}
		if w.grid.IsWalkable(c) {
			return c
		}
	}
}

// Tick advances the simulation by one step, following the phase order
// plan -> preferred-velocity -> strategy.step -> integrate ->
// collision-count (spec.md §4.5, §5).
func (w *World) Tick() {
	w.perf.StartTick()

	alive := w.aliveAgents()

	if w.strategy != nil && len(alive) > 0 {
		t0 := time.Now()

		w.perf.StartPhase(telemetry.PhasePlan)
		w.ensurePaths(alive)

		w.perf.StartPhase(telemetry.PhasePreferred)
		preferred := make([]avoidance.Vec2, len(alive))
		views := make([]avoidance.AgentView, len(alive))
		for i, a := range alive {
			preferred[i] = w.preferredVelocity(a)
			views[i] = avoidance.AgentView{ID: a.ID, Position: avoidance.Vec2(a.Position), Radius: a.Radius, MaxSpeed: a.MaxSpeed}
		}

		w.perf.StartPhase(telemetry.PhaseStrategy)
		corrected := w.strategy.Step(views, preferred)

		w.perf.StartPhase(telemetry.PhaseIntegrate)
		for i, a := range alive {
			delta := corrected[i].Scale(w.dt * 60)
			a.Translate(delta)
		}

		w.algoMsTotal += float64(time.Since(t0).Microseconds()) / 1000.0
		w.algoMsCount++

		w.perf.StartPhase(telemetry.PhaseCollision)
		w.countCollisions(alive)
	} else {
		w.ensurePaths(alive)
		for _, a := range alive {
			w.integrateWithoutCorrection(a)
		}
	}

	w.tick++
	w.perf.EndTick()
}

// aliveAgents returns pointers to every agent with alive=true and
// reached=false, directly backed by ECS storage so mutation is visible
// to subsequent queries.
func (w *World) aliveAgents() []*agent.Agent {
	var alive []*agent.Agent
	query := w.filter.Query()
	for query.Next() {
		a := query.Get()
		if a.Alive && !a.Reached {
			alive = append(alive, a)
		}
	}
	return alive
}

// ensurePaths plans a route for every agent missing one. A planner
// failure marks the agent Blocked and excludes it from this tick's
// motion, incrementing pathsBlocked rather than propagating an error
// (spec.md §4.5.2 Planning -> Blocked, §7 kind 2).
func (w *World) ensurePaths(alive []*agent.Agent) {
	for _, a := range alive {
		if a.HasPath || a.Blocked {
			continue
		}
		start := w.grid.WorldToCell(a.Position)
		path := w.planner.FindPath(w.grid, start, a.Target)
		if len(path) == 0 {
			a.Blocked = true
			w.pathsBlocked++
			continue
		}
		a.SetPath(path)
	}
}

// preferredVelocity computes the unit vector from the agent's position
// to its current waypoint, scaled by max_speed, advancing the cursor
// when within waypointArriveRadius (spec.md §4.5).
func (w *World) preferredVelocity(a *agent.Agent) avoidance.Vec2 {
	if a.Blocked || !a.HasPath {
		return avoidance.Vec2{}
	}

	waypoint, ok := a.CurrentWaypoint(w.grid)
	if !ok {
		a.Reached = true
		return avoidance.Vec2{}
	}

	if distance(a.Position, waypoint) <= waypointArriveRadius {
		a.AdvanceCursor()
		if a.Reached {
			return avoidance.Vec2{}
		}
		waypoint, ok = a.CurrentWaypoint(w.grid)
		if !ok {
			a.Reached = true
			return avoidance.Vec2{}
		}
	}

	dir := avoidance.Vec2{X: waypoint.X - a.Position.X, Y: waypoint.Y - a.Position.Y}
	l := dir.Length()
	if l < 1e-6 {
		return avoidance.Vec2{}
	}
	return dir.Scale(a.MaxSpeed / l)
}

// integrateWithoutCorrection moves an agent along its path with no
// avoidance strategy applied, used when the world has none attached
// (spec.md §4.5's else branch).
func (w *World) integrateWithoutCorrection(a *agent.Agent) {
	pref := w.preferredVelocity(a)
	delta := pref.Scale(w.dt * 60)
	a.Translate(delta)
}

// countCollisions updates the rising-edge collision counter (spec.md
// §4.5.1).
func (w *World) countCollisions(alive []*agent.Agent) {
	current := make(map[CollisionPair]struct{})

	for i := 0; i < len(alive); i++ {
		for j := i + 1; j < len(alive); j++ {
			a, b := alive[i], alive[j]
			threshold := 2 * collisionDetectionRadius(a, b)
			if distance(a.Position, b.Position) < threshold {
				current[canonicalPair(a.ID, b.ID)] = struct{}{}
			}
		}
	}

	for pair := range current {
		if _, wasActive := w.activeCollisions[pair]; !wasActive {
			w.collisionCount++
		}
	}

	w.activeCollisions = current
}

func collisionDetectionRadius(a, b *agent.Agent) float32 {
	r := a.Radius
	if b.Radius < r {
		r = b.Radius
	}
	return r
}

// AllReached reports whether every agent is alive=false or reached=true.
func (w *World) AllReached() bool {
	query := w.filter.Query()
	for query.Next() {
		a := query.Get()
		if a.Alive && !a.Reached {
			return false
		}
	}
	return true
}

// CollisionCount returns the accumulated rising-edge collision count.
func (w *World) CollisionCount() int {
	return w.collisionCount
}

// PathsBlocked returns the number of planning failures that have
// surfaced as an agent's Blocked state since the last Reset (spec.md
// §7 kind 2).
func (w *World) PathsBlocked() int {
	return w.pathsBlocked
}

// Agents returns pointers to every entity's agent state, alive or not.
func (w *World) Agents() []*agent.Agent {
	var all []*agent.Agent
	query := w.filter.Query()
	for query.Next() {
		all = append(all, query.Get())
	}
	return all
}

// PerfStats returns the rolling performance breakdown for this world's
// ticks.
func (w *World) PerfStats() telemetry.PerfStats {
	return w.perf.Stats()
}

// TickCount returns the current tick counter.
func (w *World) TickCount() int64 {
	return w.tick
}

// AvgAlgoMs returns the mean wall-clock time of the plan/preferred
// /strategy/integrate phases across all ticks so far, in milliseconds
// (spec.md §4.5, §6 "avg_algo_ms"). Returns 0 before any strategy tick
// has run.
func (w *World) AvgAlgoMs() float64 {
	if w.algoMsCount == 0 {
		return 0
	}
	return w.algoMsTotal / float64(w.algoMsCount)
}

func distance(a, b grid.Point2) float32 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return sqrt32(dx*dx + dy*dy)
}

func sqrt32(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}

// Package pathfind implements the A*-based shortest-path planner shared
// by every grid topology (C2 in spec.md's component table).
package pathfind

import (
	"container/heap"
	"time"

	"swarmnav/grid"
)

// Path is a finite ordered sequence of cells. An empty path means "no
// route found." When non-empty it always starts at the query's start
// cell and ends at the goal cell.
type Path []grid.Cell

// QueryStats records the outcome of one FindPath call for the
// "pathfinding" metric channel (spec.md §4.2).
type QueryStats struct {
	Duration   time.Duration
	PathLength int
}

// StatsRecorder receives a QueryStats for every FindPath call. Planner
// accepts any recorder — typically a telemetry.MetricSink — without
// importing the telemetry package.
type StatsRecorder interface {
	RecordPathQuery(QueryStats)
}

// Planner is a reusable A* planner. Its internal scratch structures are
// cleared and reused across calls to avoid per-query allocation.
type Planner struct {
	recorder StatsRecorder

	openHeap  nodeHeap
	gScore    map[grid.Cell]float32
	fScore    map[grid.Cell]float32
	hScore    map[grid.Cell]float32
	cameFrom  map[grid.Cell]grid.Cell
	closedSet map[grid.Cell]struct{}
}

// NewPlanner creates an A* planner. recorder may be nil to disable
// per-query metric recording.
func NewPlanner(recorder StatsRecorder) *Planner {
	return &Planner{
		recorder:  recorder,
		gScore:    make(map[grid.Cell]float32, 256),
		fScore:    make(map[grid.Cell]float32, 256),
		hScore:    make(map[grid.Cell]float32, 256),
		cameFrom:  make(map[grid.Cell]grid.Cell, 256),
		closedSet: make(map[grid.Cell]struct{}, 256),
	}
}

// astarNode is a node in the A* open set, keyed by (f, h) for the
// f-then-h tie break (spec.md §9 REDESIGN FLAG: unify tie-breaking across
// topologies instead of the source's insertion-order/heap-order split).
type astarNode struct {
	cell grid.Cell
	f, h float32
}

type nodeHeap []astarNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].h < h[j].h
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(astarNode)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	*h = old[:n-1]
	return node
}

// FindPath computes a shortest path from start to goal over g. Returns
// an empty Path if start or goal is unwalkable, or if the open set is
// exhausted without reaching goal — never an error (spec.md §4.2).
func (p *Planner) FindPath(g *grid.Grid, start, goal grid.Cell) Path {
	t0 := time.Now()
	path := p.findPath(g, start, goal)
	if p.recorder != nil {
		p.recorder.RecordPathQuery(QueryStats{
			Duration:   time.Since(t0),
			PathLength: len(path),
		})
	}
	return path
}

func (p *Planner) findPath(g *grid.Grid, start, goal grid.Cell) Path {
	if !g.IsWalkable(start) || !g.IsWalkable(goal) {
		return nil
	}
	if start == goal {
		return Path{start}
	}

	p.openHeap = p.openHeap[:0]
	clear(p.gScore)
	clear(p.fScore)
	clear(p.hScore)
	clear(p.cameFrom)
	clear(p.closedSet)

	h0 := heuristic(g.Topology(), start, goal)
	p.gScore[start] = 0
	p.fScore[start] = h0
	p.hScore[start] = h0
	heap.Push(&p.openHeap, astarNode{cell: start, f: h0, h: h0})

	for p.openHeap.Len() > 0 {
		current := heap.Pop(&p.openHeap).(astarNode)
		if _, seen := p.closedSet[current.cell]; seen {
			continue
		}
		if current.cell == goal {
			return p.reconstructPath(start, goal)
		}
		p.closedSet[current.cell] = struct{}{}

		for _, n := range g.Neighbors(current.cell) {
			if !g.IsWalkable(n) {
				continue
			}
			if _, closed := p.closedSet[n]; closed {
				continue
			}

			tentativeG := p.gScore[current.cell] + 1
			existingG, exists := p.gScore[n]
			if exists && tentativeG >= existingG {
				continue
			}

			h := heuristic(g.Topology(), n, goal)
			p.cameFrom[n] = current.cell
			p.gScore[n] = tentativeG
			p.fScore[n] = tentativeG + h
			p.hScore[n] = h
			heap.Push(&p.openHeap, astarNode{cell: n, f: p.fScore[n], h: h})
		}
	}

	return nil
}

func (p *Planner) reconstructPath(start, goal grid.Cell) Path {
	var reversed Path
	current := goal
	for current != start {
		reversed = append(reversed, current)
		current = p.cameFrom[current]
	}
	reversed = append(reversed, start)

	path := make(Path, len(reversed))
	for i, c := range reversed {
		path[len(reversed)-1-i] = c
	}
	return path
}

// heuristic returns the admissible distance estimate for the grid's
// topology: Manhattan distance for Rectangular, and dx + max(0, dy -
// dx/2) for HexPointyTopOddQ (spec.md §4.2).
func heuristic(topology grid.Topology, a, b grid.Cell) float32 {
	dx := absInt32(b.Col - a.Col)
	dy := absInt32(b.Row - a.Row)

	if topology == grid.HexPointyTopOddQ {
		rem := dy - dx/2
		if rem < 0 {
			rem = 0
		}
		return float32(dx + rem)
	}
	return float32(dx + dy)
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

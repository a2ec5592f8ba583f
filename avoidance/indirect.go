package avoidance

import (
	"swarmnav/agent"
	"swarmnav/grid"
)

// reservation is one foreign-or-own claim on a cell, expiring at a given
// tick (spec.md §4.4.b's OccupancyGrid).
type reservation struct {
	owner     agent.ID
	expiresAt int64
}

// IndirectStrategy is the shared-blackboard avoidance strategy: agents
// never exchange velocities directly, only write and read reservations
// on a shared per-cell occupancy map (spec.md §4.4.b). Reservation
// expiries are tracked in whole ticks; the source's `current_tick + 1.5`
// write-phase expiry is replaced here by the same integer
// `current_tick + 2` used for the intent phase, since this
// implementation has no fractional tick (see DESIGN.md's Open Question
// decisions).
type IndirectStrategy struct {
	CellSize          float32
	ReservationRadius int32
	AvoidanceStrength float32
	LookAheadCells    int32

	g *grid.Grid

	tick      int64
	occupancy map[grid.Cell][]reservation
}

// NewIndirectStrategy returns an IndirectStrategy with the spec's default
// parameters, reading world-space cell centers from g. CellSize is
// derived from agent radius at Initialize time
// (spec.md §4.4.b's `cell_size = 2*agent_radius`).
func NewIndirectStrategy(g *grid.Grid) *IndirectStrategy {
	return &IndirectStrategy{
		ReservationRadius: 1,
		AvoidanceStrength: 0.8,
		LookAheadCells:    2,
		g:                 g,
		occupancy:         make(map[grid.Cell][]reservation),
	}
}

// Initialize implements Strategy.
func (s *IndirectStrategy) Initialize(tickDT, agentRadius, maxSpeed float32) {
	s.CellSize = 2 * agentRadius
	if s.CellSize <= 0 {
		s.CellSize = 1
	}
}

func (s *IndirectStrategy) worldToCell(p Vec2) grid.Cell {
	return grid.Cell{
		Col: int32(p.X / s.CellSize),
		Row: int32(p.Y / s.CellSize),
	}
}

// beginTick purges every reservation whose expiry has already passed.
func (s *IndirectStrategy) beginTick() {
	for cell, res := range s.occupancy {
		kept := res[:0]
		for _, r := range res {
			if r.expiresAt >= s.tick {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(s.occupancy, cell)
		} else {
			s.occupancy[cell] = kept
		}
	}
}

func (s *IndirectStrategy) reserve(c grid.Cell, owner agent.ID, expiresAt int64) {
	s.occupancy[c] = append(s.occupancy[c], reservation{owner: owner, expiresAt: expiresAt})
}

// foreignCount counts reservations at c not owned by self.
func (s *IndirectStrategy) foreignCount(c grid.Cell, self agent.ID) int {
	n := 0
	for _, r := range s.occupancy[c] {
		if r.owner != self {
			n++
		}
	}
	return n
}

// Step implements Strategy, following the four phases of spec.md §4.4.b.
func (s *IndirectStrategy) Step(agents []AgentView, preferred []Vec2) []Vec2 {
	result := make([]Vec2, len(agents))
	if len(agents) == 0 {
		return result
	}

	s.beginTick()
	writeExpiry := s.tick + 2

	// Write phase: reserve each agent's current cell and the Chebyshev
	// ring of ReservationRadius around it.
	for _, a := range agents {
		center := s.worldToCell(a.Position)
		for dc := -s.ReservationRadius; dc <= s.ReservationRadius; dc++ {
			for dr := -s.ReservationRadius; dr <= s.ReservationRadius; dr++ {
				s.reserve(grid.Cell{Col: center.Col + dc, Row: center.Row + dr}, a.ID, writeExpiry)
			}
		}
	}

	// Intent phase: reserve look-ahead cells along each agent's preferred
	// direction.
	lookAheadCells := make([][]grid.Cell, len(agents))
	for i, a := range agents {
		dir := normalize(preferred[i])
		cells := make([]grid.Cell, 0, s.LookAheadCells)
		for step := int32(1); step <= s.LookAheadCells; step++ {
			offset := dir.Scale(float32(step) * s.CellSize)
			cell := s.worldToCell(a.Position.Add(offset))
			cells = append(cells, cell)
			s.reserve(cell, a.ID, s.tick+2)
		}
		lookAheadCells[i] = cells
	}

	// Read phase.
	for i, a := range agents {
		var force Vec2
		cells := lookAheadCells[i]
		for step, cell := range cells {
			if s.foreignCount(cell, a.ID) == 0 {
				continue
			}
			perpDir := perp(normalize(preferred[i]))
			if a.ID%2 != 0 {
				perpDir = perpDir.Scale(-1)
			}
			scale := s.AvoidanceStrength * (1 - float32(step)/float32(s.LookAheadCells))
			force = force.Add(perpDir.Scale(scale))
		}

		center := s.worldToCell(a.Position)
		for dc := int32(-1); dc <= 1; dc++ {
			for dr := int32(-1); dr <= 1; dr++ {
				if dc == 0 && dr == 0 {
					continue
				}
				neighbor := grid.Cell{Col: center.Col + dc, Row: center.Row + dr}
				if s.foreignCount(neighbor, a.ID) == 0 {
					continue
				}
				neighborCenter := s.g.CellToWorld(neighbor)
				away := normalize(a.Position.Sub(Vec2(neighborCenter)))
				force = force.Add(away.Scale(0.15 * s.AvoidanceStrength))
			}
		}

		corrected := preferred[i].Add(force)
		result[i] = corrected.ClampLength(a.MaxSpeed)
	}

	s.tick++
	return result
}

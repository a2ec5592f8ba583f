// Package grid provides the addressable 2D cell topology shared by the
// path planner and the simulation world: a rectangular or hexagonal grid
// of cells, each either walkable or blocked, with coordinate transforms
// between cell space and world (pixel) space.
package grid

import (
	"errors"
	"fmt"
	"math"
)

// Cell is a structural (col, row) coordinate. It is a pure value type:
// equality and use as a map key rely on Go's built-in struct comparison.
type Cell struct {
	Col, Row int32
}

// Point2 is a world-space coordinate in pixels.
type Point2 struct {
	X, Y float32
}

// Topology selects the grid's neighbor and coordinate-transform rules.
type Topology uint8

const (
	Rectangular Topology = iota
	HexPointyTopOddQ
)

// ErrUnknownTopology is returned by ParseTopology for any tag other than
// "rectangular" or "hex_pointy_top_odd_q".
var ErrUnknownTopology = errors.New("grid: unknown topology")

// ParseTopology converts a config-file topology tag (spec.md §6) into a
// Topology value.
func ParseTopology(tag string) (Topology, error) {
	switch tag {
	case "rectangular":
		return Rectangular, nil
	case "hex_pointy_top_odd_q":
		return HexPointyTopOddQ, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTopology, tag)
	}
}

// Grid is a rectangular or hexagonal cell topology with an obstacle
// bitmap. It is constructed once per scenario and mutated only via
// SetObstacle; it is treated as read-only during a simulation tick.
type Grid struct {
	Width, Height int32
	CellSize      float32
	topology      Topology
	blocked       []bool // width*height bits, row-major
}

// New creates a grid of the given topology and dimensions, all cells
// walkable. cellSize is the pixel size of one cell (for rectangular) or
// twice the hex radius r for hex (see CellToWorld). New trusts its
// arguments: zero or negative dimensions are a configuration error and
// must be rejected earlier, at scenario construction (config.Config.Validate,
// spec.md §7.1 kind 1), not silently corrected here.
func New(topology Topology, width, height int32, cellSize float32) *Grid {
	return &Grid{
		Width:    width,
		Height:   height,
		CellSize: cellSize,
		topology: topology,
		blocked:  make([]bool, width*height),
	}
}

// Topology returns the grid's topology tag.
func (g *Grid) Topology() Topology { return g.topology }

// InBounds reports whether c addresses a valid cell.
func (g *Grid) InBounds(c Cell) bool {
	return c.Col >= 0 && c.Col < g.Width && c.Row >= 0 && c.Row < g.Height
}

func (g *Grid) index(c Cell) int {
	return int(c.Row*g.Width + c.Col)
}

// SetObstacle marks c blocked or walkable. Out-of-range cells are
// silently ignored — never fatal, per the grid's failure contract.
// Idempotent: calling it twice with the same blocked value is a no-op.
func (g *Grid) SetObstacle(c Cell, blocked bool) {
	if !g.InBounds(c) {
		return
	}
	g.blocked[g.index(c)] = blocked
}

// IsWalkable reports whether c is in bounds and not blocked. Out-of-range
// cells are always reported as not walkable.
func (g *Grid) IsWalkable(c Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	return !g.blocked[g.index(c)]
}

// Neighbors returns the cells adjacent to c under the grid's topology:
// 4-connected for Rectangular, 6-connected (odd-q offset) for
// HexPointyTopOddQ. Out-of-bounds neighbors are omitted.
func (g *Grid) Neighbors(c Cell) []Cell {
	var offsets [][2]int32
	switch g.topology {
	case HexPointyTopOddQ:
		if c.Col%2 == 0 {
			offsets = hexNeighborsEven
		} else {
			offsets = hexNeighborsOdd
		}
	default:
		offsets = rectNeighbors
	}

	out := make([]Cell, 0, len(offsets))
	for _, o := range offsets {
		n := Cell{Col: c.Col + o[0], Row: c.Row + o[1]}
		if g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

var rectNeighbors = [][2]int32{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
}

// Hex neighbor tables for pointy-top, odd-q offset coordinates, keyed by
// column parity (spec.md §4.1).
var hexNeighborsEven = [][2]int32{
	{0, -1}, {1, -1}, {1, 0}, {0, 1}, {-1, 0}, {-1, -1},
}

var hexNeighborsOdd = [][2]int32{
	{0, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0},
}

// CellToWorld returns the pixel-space center of c.
func (g *Grid) CellToWorld(c Cell) Point2 {
	if g.topology == HexPointyTopOddQ {
		return g.hexCellToWorld(c)
	}
	return Point2{
		X: (float32(c.Col) + 0.5) * g.CellSize,
		Y: (float32(c.Row) + 0.5) * g.CellSize,
	}
}

func (g *Grid) hexCellToWorld(c Cell) Point2 {
	r := g.CellSize / 2
	sqrt3 := float32(math.Sqrt(3))

	x := float32(c.Col)*sqrt3*r + (sqrt3 * r / 2)
	y := float32(c.Row)*1.5*r + r
	if c.Col%2 != 0 {
		y += 0.75 * r
	}
	return Point2{X: x, Y: y}
}

// WorldToCell returns the cell containing world-space point p.
func (g *Grid) WorldToCell(p Point2) Cell {
	if g.topology == HexPointyTopOddQ {
		return g.hexWorldToCell(p)
	}
	return Cell{
		Col: int32(p.X / g.CellSize),
		Row: int32(p.Y / g.CellSize),
	}
}

// hexWorldToCell seeds a candidate cell from the nearest regular spacing,
// then refines over the surrounding 3x3 neighborhood by pixel distance to
// each candidate's true center. Integer division alone misclassifies
// points near hexagon seams, so the refinement step is required (per
// spec.md §4.1).
func (g *Grid) hexWorldToCell(p Point2) Cell {
	r := g.CellSize / 2
	sqrt3 := float32(math.Sqrt(3))

	seedCol := int32(p.X / (sqrt3 * r))
	seedRow := int32(p.Y / (1.5 * r))

	best := Cell{Col: seedCol, Row: seedRow}
	bestDistSq := float32(math.MaxFloat32)

	for dc := int32(-1); dc <= 1; dc++ {
		for dr := int32(-1); dr <= 1; dr++ {
			cand := Cell{Col: seedCol + dc, Row: seedRow + dr}
			center := g.hexCellToWorld(cand)
			dx := center.X - p.X
			dy := center.Y - p.Y
			distSq := dx*dx + dy*dy
			if distSq < bestDistSq {
				bestDistSq = distSq
				best = cand
			}
		}
	}
	return best
}

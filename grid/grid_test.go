package grid

import (
	"errors"
	"testing"
)

func TestParseTopologyKnownTags(t *testing.T) {
	if got, err := ParseTopology("rectangular"); err != nil || got != Rectangular {
		t.Errorf("expected Rectangular, got %v err %v", got, err)
	}
	if got, err := ParseTopology("hex_pointy_top_odd_q"); err != nil || got != HexPointyTopOddQ {
		t.Errorf("expected HexPointyTopOddQ, got %v err %v", got, err)
	}
}

func TestParseTopologyUnknownTag(t *testing.T) {
	_, err := ParseTopology("triangular")
	if !errors.Is(err, ErrUnknownTopology) {
		t.Errorf("expected ErrUnknownTopology, got %v", err)
	}
}

func TestIsWalkableOutOfBounds(t *testing.T) {
	g := New(Rectangular, 10, 10, 16)
	if g.IsWalkable(Cell{Col: -1, Row: 0}) {
		t.Errorf("expected (-1, 0) to be not walkable")
	}
	if g.IsWalkable(Cell{Col: 0, Row: -1}) {
		t.Errorf("expected (0, -1) to be not walkable")
	}
	if g.IsWalkable(Cell{Col: 10, Row: 0}) {
		t.Errorf("expected (10, 0) to be not walkable")
	}
}

func TestSetObstacleIdempotent(t *testing.T) {
	g := New(Rectangular, 10, 10, 16)
	c := Cell{Col: 3, Row: 3}

	g.SetObstacle(c, true)
	g.SetObstacle(c, true)
	if g.IsWalkable(c) {
		t.Errorf("expected %v to be blocked", c)
	}

	g.SetObstacle(c, false)
	if !g.IsWalkable(c) {
		t.Errorf("expected %v to be walkable after clearing obstacle", c)
	}
}

func TestSetObstacleOutOfBoundsIgnored(t *testing.T) {
	g := New(Rectangular, 10, 10, 16)
	// Must not panic and must not affect in-bounds state.
	g.SetObstacle(Cell{Col: -5, Row: -5}, true)
	g.SetObstacle(Cell{Col: 100, Row: 100}, true)
}

func TestRectNeighborCount(t *testing.T) {
	g := New(Rectangular, 10, 10, 16)
	n := g.Neighbors(Cell{Col: 5, Row: 5})
	if len(n) != 4 {
		t.Errorf("expected 4 neighbors in the interior, got %d", len(n))
	}

	corner := g.Neighbors(Cell{Col: 0, Row: 0})
	if len(corner) != 2 {
		t.Errorf("expected 2 neighbors at corner, got %d", len(corner))
	}
}

func TestHexNeighborCount(t *testing.T) {
	g := New(HexPointyTopOddQ, 10, 10, 16)
	n := g.Neighbors(Cell{Col: 5, Row: 5})
	if len(n) != 6 {
		t.Errorf("expected 6 neighbors in the interior, got %d", len(n))
	}
}

func TestHexCoordinateRoundTrip(t *testing.T) {
	g := New(HexPointyTopOddQ, 20, 20, 16)
	for col := int32(0); col < 20; col++ {
		for row := int32(0); row < 20; row++ {
			c := Cell{Col: col, Row: row}
			world := g.CellToWorld(c)
			got := g.WorldToCell(world)
			if got != c {
				t.Errorf("round trip mismatch for %v: got %v (world %v)", c, got, world)
			}
		}
	}
}

func TestRectangularCellToWorld(t *testing.T) {
	g := New(Rectangular, 10, 10, 16)
	p := g.CellToWorld(Cell{Col: 2, Row: 3})
	wantX, wantY := float32(2.5*16), float32(3.5*16)
	if p.X != wantX || p.Y != wantY {
		t.Errorf("CellToWorld(2,3) = %v, want (%v, %v)", p, wantX, wantY)
	}
}

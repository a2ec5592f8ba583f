package agent

import (
	"testing"

	"swarmnav/grid"
	"swarmnav/pathfind"
)

func TestSetPathResetsState(t *testing.T) {
	a := New(1, grid.Point2{X: 0, Y: 0}, grid.Cell{Col: 5, Row: 5}, 8, 2)
	a.PathCursor = 3
	a.Reached = true

	a.SetPath(pathfind.Path{{Col: 0, Row: 0}, {Col: 1, Row: 0}})
	if a.PathCursor != 0 {
		t.Errorf("expected cursor reset to 0, got %d", a.PathCursor)
	}
	if !a.HasPath {
		t.Errorf("expected HasPath true for non-empty path")
	}
	if a.Reached {
		t.Errorf("expected Reached cleared after SetPath")
	}
}

func TestSetPathEmptyMeansNoRoute(t *testing.T) {
	a := New(1, grid.Point2{}, grid.Cell{}, 8, 2)
	a.SetPath(nil)
	if a.HasPath {
		t.Errorf("expected HasPath false for empty path")
	}
}

func TestSetPathNonEmptyClearsBlocked(t *testing.T) {
	a := New(1, grid.Point2{}, grid.Cell{Col: 1}, 8, 2)
	a.Blocked = true
	a.SetPath(pathfind.Path{{Col: 0, Row: 0}, {Col: 1, Row: 0}})
	if a.Blocked {
		t.Errorf("expected Blocked cleared after a successful plan")
	}
}

func TestAdvanceCursorMarksReachedPastEnd(t *testing.T) {
	a := New(1, grid.Point2{}, grid.Cell{Col: 1, Row: 0}, 8, 2)
	a.SetPath(pathfind.Path{{Col: 0, Row: 0}, {Col: 1, Row: 0}})

	a.AdvanceCursor()
	if a.Reached {
		t.Fatalf("should not be reached after first advance with 2-cell path")
	}
	a.AdvanceCursor()
	if !a.Reached || a.HasPath {
		t.Errorf("expected Reached=true, HasPath=false after cursor passes end")
	}
}

func TestTranslateAccumulatesDistance(t *testing.T) {
	a := New(1, grid.Point2{}, grid.Cell{}, 8, 2)
	a.Translate(Vec2{X: 3, Y: 4})
	if a.DistanceTraveled != 5 {
		t.Errorf("expected distance traveled 5, got %f", a.DistanceTraveled)
	}
	if a.Position.X != 3 || a.Position.Y != 4 {
		t.Errorf("expected position (3,4), got %v", a.Position)
	}
}

func TestExtraDistanceNeverNegative(t *testing.T) {
	a := New(1, grid.Point2{}, grid.Cell{}, 8, 2)
	a.IdealDistance = 100
	a.DistanceTraveled = 10
	if got := a.ExtraDistance(); got != 0 {
		t.Errorf("expected ExtraDistance clamped to 0, got %f", got)
	}

	a.DistanceTraveled = 150
	if got := a.ExtraDistance(); got != 50 {
		t.Errorf("expected ExtraDistance 50, got %f", got)
	}
}

func TestClampLength(t *testing.T) {
	v := Vec2{X: 3, Y: 4}
	clamped := v.ClampLength(2)
	if got := clamped.Length(); got > 2.0001 {
		t.Errorf("expected clamped length <= 2, got %f", got)
	}

	zero := Vec2{}
	if got := zero.ClampLength(2); got != zero {
		t.Errorf("expected zero vector unchanged, got %v", got)
	}
}

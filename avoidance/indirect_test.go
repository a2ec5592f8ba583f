package avoidance

import (
	"testing"

	"swarmnav/grid"
)

func TestIndirectStepPreservesLength(t *testing.T) {
	g := grid.New(grid.Rectangular, 50, 50, 16)
	s := NewIndirectStrategy(g)
	s.Initialize(1.0/60.0, 8, 2)

	agents := []AgentView{
		{ID: 1, Position: Vec2{X: 0, Y: 0}, Radius: 8, MaxSpeed: 2},
		{ID: 2, Position: Vec2{X: 16, Y: 0}, Radius: 8, MaxSpeed: 2},
	}
	preferred := []Vec2{{X: 1, Y: 0}, {X: -1, Y: 0}}

	out := s.Step(agents, preferred)
	if len(out) != len(agents) {
		t.Fatalf("expected %d velocities, got %d", len(agents), len(out))
	}
}

func TestIndirectStepEmptyInput(t *testing.T) {
	g := grid.New(grid.Rectangular, 10, 10, 16)
	s := NewIndirectStrategy(g)
	s.Initialize(1.0/60.0, 8, 2)

	out := s.Step(nil, nil)
	if len(out) != 0 {
		t.Errorf("expected empty output for empty input, got %d", len(out))
	}
}

func TestIndirectStepClampsToMaxSpeed(t *testing.T) {
	g := grid.New(grid.Rectangular, 10, 10, 16)
	s := NewIndirectStrategy(g)
	s.Initialize(1.0/60.0, 8, 2)

	agents := []AgentView{{ID: 1, Position: Vec2{X: 0, Y: 0}, Radius: 8, MaxSpeed: 2}}
	preferred := []Vec2{{X: 50, Y: 0}}

	out := s.Step(agents, preferred)
	if got := out[0].Length(); got > 2.0001 {
		t.Errorf("expected clamped speed, got %f", got)
	}
}

func TestIndirectBeginTickPurgesExpired(t *testing.T) {
	g := grid.New(grid.Rectangular, 10, 10, 16)
	s := NewIndirectStrategy(g)
	s.Initialize(1.0/60.0, 8, 2)

	agents := []AgentView{{ID: 1, Position: Vec2{X: 0, Y: 0}, Radius: 8, MaxSpeed: 2}}
	preferred := []Vec2{{X: 1, Y: 0}}

	for i := 0; i < 5; i++ {
		s.Step(agents, preferred)
	}
	// Step purges at its start and advances the tick at its end, so run the
	// purge for the current tick before checking.
	s.beginTick()

	for _, reservations := range s.occupancy {
		for _, r := range reservations {
			if r.expiresAt < s.tick {
				t.Errorf("expected no stale reservations after repeated ticks, found expiry %d at tick %d", r.expiresAt, s.tick)
			}
		}
	}
}

func TestIndirectConvergingAgentsDeflect(t *testing.T) {
	g := grid.New(grid.Rectangular, 50, 50, 16)
	s := NewIndirectStrategy(g)
	s.Initialize(1.0/60.0, 8, 2)

	agents := []AgentView{
		{ID: 2, Position: Vec2{X: -20, Y: 0}, Radius: 8, MaxSpeed: 2},
		{ID: 3, Position: Vec2{X: 20, Y: 0}, Radius: 8, MaxSpeed: 2},
	}
	preferred := []Vec2{{X: 2, Y: 0}, {X: -2, Y: 0}}

	var out []Vec2
	for i := 0; i < 10; i++ {
		out = s.Step(agents, preferred)
		agents[0].Position = agents[0].Position.Add(out[0].Scale(1.0 / 60.0))
		agents[1].Position = agents[1].Position.Add(out[1].Scale(1.0 / 60.0))
	}

	if out[0].Y == 0 && out[1].Y == 0 {
		t.Errorf("expected perpendicular avoidance component once agents are within look-ahead range, got %v %v", out[0], out[1])
	}
}

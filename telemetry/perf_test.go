package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorStatsEmptyBeforeAnyTick(t *testing.T) {
	p := NewPerfCollector(10)
	stats := p.Stats()
	if stats.AvgTickDuration != 0 {
		t.Errorf("expected zero avg duration before any tick, got %v", stats.AvgTickDuration)
	}
}

func TestPerfCollectorTracksPhasePercentages(t *testing.T) {
	p := NewPerfCollector(10)

	p.StartTick()
	p.StartPhase(PhasePlan)
	time.Sleep(time.Millisecond)
	p.StartPhase(PhaseStrategy)
	time.Sleep(time.Millisecond)
	p.EndTick()

	stats := p.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Fatalf("expected positive avg tick duration, got %v", stats.AvgTickDuration)
	}
	if stats.PhasePct[PhasePlan] <= 0 {
		t.Errorf("expected positive plan phase percentage, got %f", stats.PhasePct[PhasePlan])
	}
	if stats.PhasePct[PhaseStrategy] <= 0 {
		t.Errorf("expected positive strategy phase percentage, got %f", stats.PhasePct[PhaseStrategy])
	}
}

func TestPerfCollectorWindowWraps(t *testing.T) {
	p := NewPerfCollector(3)
	for i := 0; i < 5; i++ {
		p.StartTick()
		p.StartPhase(PhasePlan)
		p.EndTick()
	}
	if p.sampleCount != 3 {
		t.Errorf("expected sample count capped at window size 3, got %d", p.sampleCount)
	}
}

func TestToCSVCarriesMethodAndAgentCount(t *testing.T) {
	p := NewPerfCollector(10)
	p.StartTick()
	p.StartPhase(PhasePlan)
	p.EndTick()

	csv := p.Stats().ToCSV("Direct", 15)
	if csv.Method != "Direct" || csv.AgentCount != 15 {
		t.Errorf("expected Method=Direct AgentCount=15, got %+v", csv)
	}
}

package telemetry

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"swarmnav/pathfind"
)

func TestMetricSinkFlushWritesHeaderOnce(t *testing.T) {
	sink := NewMetricSink()
	sink.Append(MetricRecord{Method: "Direct", AgentCount: 10, AvgAlgoMs: 0.12, Collisions: 3, CompletionS: 12.4, AvgExtraPx: 8.1})

	var buf bytes.Buffer
	if err := sink.Flush(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sink.Append(MetricRecord{Method: "Indirect", AgentCount: 10, AvgAlgoMs: 0.08, Collisions: 11, CompletionS: 14.0, AvgExtraPx: 11.2})
	if err := sink.Flush(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 records, got %d lines: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Method,AgentCount,AvgAlgoMs,Collisions,CompletionS,AvgExtraPx") {
		t.Errorf("unexpected header: %q", lines[0])
	}
}

func TestMetricSinkFlushEmptyIsNoop(t *testing.T) {
	sink := NewMetricSink()
	var buf bytes.Buffer
	if err := sink.Flush(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output for empty sink, got %q", buf.String())
	}
}

func TestMetricSinkRecordPathQueryAveragesAcrossCalls(t *testing.T) {
	sink := NewMetricSink()
	sink.RecordPathQuery(pathfind.QueryStats{Duration: 2 * time.Millisecond, PathLength: 5})
	sink.RecordPathQuery(pathfind.QueryStats{Duration: 4 * time.Millisecond, PathLength: 5})

	if got := sink.AvgPathQueryMs(); got != 3 {
		t.Errorf("expected avg 3ms, got %f", got)
	}
}

func TestMetricSinkFlushJSONContainsMethod(t *testing.T) {
	sink := NewMetricSink()
	sink.Append(MetricRecord{Method: "None", AgentCount: 5, AvgAlgoMs: 0.01, Collisions: 2, CompletionS: 5.0, AvgExtraPx: 3.0})

	var buf bytes.Buffer
	if err := sink.FlushJSON(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"Method": "None"`) {
		t.Errorf("expected JSON to contain record method, got %q", buf.String())
	}
}

func TestMetricSinkFlushFormatsFixedPrecision(t *testing.T) {
	sink := NewMetricSink()
	sink.Append(MetricRecord{
		Method:      "Direct",
		AgentCount:  10,
		AvgAlgoMs:   0.123456789,
		Collisions:  3,
		CompletionS: 12.456789,
		AvgExtraPx:  87.2,
	})

	var buf bytes.Buffer
	if err := sink.Flush(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 record, got %d lines: %q", len(lines), buf.String())
	}
	want := "Direct,10,0.123,3,12.46,87.20"
	if lines[1] != want {
		t.Errorf("expected fixed-precision record %q, got %q", want, lines[1])
	}
}

func TestMetricSinkFlushJSONFormatsFixedPrecision(t *testing.T) {
	sink := NewMetricSink()
	sink.Append(MetricRecord{
		Method:      "Direct",
		AgentCount:  10,
		AvgAlgoMs:   0.123456789,
		Collisions:  3,
		CompletionS: 12.456789,
		AvgExtraPx:  87.2,
	})

	var buf bytes.Buffer
	if err := sink.FlushJSON(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"AvgAlgoMs": 0.123`) {
		t.Errorf("expected JSON AvgAlgoMs at 3 decimals, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"CompletionS": 12.46`) {
		t.Errorf("expected JSON CompletionS at 2 decimals, got %q", buf.String())
	}
}

func TestMetricSinkFlushJSONContainsPathsBlockedButCSVDoesNot(t *testing.T) {
	sink := NewMetricSink()
	sink.Append(MetricRecord{Method: "Indirect", AgentCount: 5, AvgAlgoMs: 0.01, Collisions: 2, CompletionS: 5.0, AvgExtraPx: 3.0, PathsBlocked: 4})

	var jsonBuf bytes.Buffer
	if err := sink.FlushJSON(&jsonBuf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(jsonBuf.String(), `"PathsBlocked": 4`) {
		t.Errorf("expected JSON to contain PathsBlocked, got %q", jsonBuf.String())
	}

	var csvBuf bytes.Buffer
	if err := sink.Flush(&csvBuf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	header := strings.SplitN(csvBuf.String(), "\n", 2)[0]
	if header != "Method,AgentCount,AvgAlgoMs,Collisions,CompletionS,AvgExtraPx" {
		t.Errorf("expected PathsBlocked to be excluded from the mandated CSV column order, got %q", header)
	}
}

func TestMetricSinkResetPathStats(t *testing.T) {
	sink := NewMetricSink()
	sink.RecordPathQuery(pathfind.QueryStats{Duration: 5 * time.Millisecond, PathLength: 5})
	sink.ResetPathStats()
	if got := sink.AvgPathQueryMs(); got != 0 {
		t.Errorf("expected 0 after reset, got %f", got)
	}
}

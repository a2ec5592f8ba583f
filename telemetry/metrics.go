package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"swarmnav/pathfind"
)

// AlgoMs is an algorithm-timing measurement in milliseconds, always
// serialized to three decimal places (spec.md §4.7's numeric-formatting
// contract).
type AlgoMs float64

// MarshalCSV implements gocsv's TypeMarshaller so AvgAlgoMs always reaches
// the results stream at fixed precision, not Go's shortest-round-trip
// float formatting.
func (m AlgoMs) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(m), 'f', 3, 64), nil
}

// MarshalJSON mirrors MarshalCSV's precision for the JSON side-channel.
func (m AlgoMs) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(m), 'f', 3, 64)), nil
}

// DurSecOrDistPx is a duration (seconds) or distance (pixels)
// measurement, always serialized to two decimal places (spec.md §4.7).
type DurSecOrDistPx float64

// MarshalCSV implements gocsv's TypeMarshaller.
func (d DurSecOrDistPx) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(d), 'f', 2, 64), nil
}

// MarshalJSON mirrors MarshalCSV's precision for the JSON side-channel.
func (d DurSecOrDistPx) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(d), 'f', 2, 64)), nil
}

// MetricRecord is one benchmark run's summary, in the exact column order
// the external results stream requires (spec.md §6). PathsBlocked is
// additive telemetry (spec.md §7 kind 2's required counter) carried only
// in the JSON side-channel, so it never perturbs the mandated CSV
// columns.
type MetricRecord struct {
	Method       string         `csv:"Method"`
	AgentCount   int            `csv:"AgentCount"`
	AvgAlgoMs    AlgoMs         `csv:"AvgAlgoMs"`
	Collisions   int            `csv:"Collisions"`
	CompletionS  DurSecOrDistPx `csv:"CompletionS"`
	AvgExtraPx   DurSecOrDistPx `csv:"AvgExtraPx"`
	PathsBlocked int            `csv:"-"`
}

// MetricSink is an append-only aggregator of MetricRecords, flushed as
// CSV to a byte stream (C7). It also tracks path-planner query
// durations (AvgPathQueryMs), implementing pathfind.StatsRecorder without
// pathfind importing telemetry. These query timings are not part of a
// MetricRecord; its AvgAlgoMs is measured by the simulation world.
type MetricSink struct {
	records []MetricRecord

	pathQueryCount int
	pathQueryTotal time.Duration

	headerWritten bool
}

// NewMetricSink returns an empty MetricSink.
func NewMetricSink() *MetricSink {
	return &MetricSink{}
}

// RecordPathQuery implements pathfind.StatsRecorder.
func (m *MetricSink) RecordPathQuery(stats pathfind.QueryStats) {
	m.pathQueryCount++
	m.pathQueryTotal += stats.Duration
}

// ResetPathStats clears accumulated planner timing, called at the start
// of each benchmark run so AvgPathQueryMs reflects only that run's
// queries.
func (m *MetricSink) ResetPathStats() {
	m.pathQueryCount = 0
	m.pathQueryTotal = 0
}

// AvgPathQueryMs returns the mean planner query duration in
// milliseconds since the last ResetPathStats, or 0 if none were
// recorded.
func (m *MetricSink) AvgPathQueryMs() float64 {
	if m.pathQueryCount == 0 {
		return 0
	}
	return float64(m.pathQueryTotal.Microseconds()) / 1000.0 / float64(m.pathQueryCount)
}

// Append adds a run's record to the sink.
func (m *MetricSink) Append(r MetricRecord) {
	m.records = append(m.records, r)
}

// Records returns the accumulated records.
func (m *MetricSink) Records() []MetricRecord {
	return m.records
}

// Flush writes every accumulated record to dest as CSV, with the header
// written exactly once per sink's lifetime (header-written-once pattern,
// matching the teacher's output manager).
func (m *MetricSink) Flush(dest io.Writer) error {
	if len(m.records) == 0 {
		return nil
	}

	if !m.headerWritten {
		if err := gocsv.Marshal(m.records, dest); err != nil {
			return fmt.Errorf("writing metric records: %w", err)
		}
		m.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(m.records, dest); err != nil {
			return fmt.Errorf("writing metric records: %w", err)
		}
	}
	m.records = m.records[:0]
	return nil
}

// FlushJSON writes every accumulated record to dest as an indented JSON
// array, for downstream plotting tooling. It does not clear the sink's
// records; call it before Flush, which does.
func (m *MetricSink) FlushJSON(dest io.Writer) error {
	data, err := json.MarshalIndent(m.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metric records: %w", err)
	}
	_, err = dest.Write(data)
	return err
}

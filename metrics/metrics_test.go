package metrics

import (
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

func TestMetricsHappyPath(t *testing.T) {
	m := NewMetrics()

	// Record some metrics
	m.RecordRegion()
	m.RecordCatalogCall()
	m.RecordCatalogCall()
	m.RecordResolved()
	m.RecordResolved()
	m.RecordAbsent()
	m.RecordFailed()
	m.RecordLookupCall(20 * time.Millisecond)
	m.RecordLookupCall(30 * time.Millisecond)

	// Simulate some processing time
	time.Sleep(100 * time.Millisecond)

	report := m.GenerateReport()

	if report.Lookups != 4 {
		t.Errorf("expected 4 lookups, got %d", report.Lookups)
	}
	if report.Resolved != 2 || report.Absent != 1 || report.Failed != 1 {
		t.Errorf("unexpected outcome counts: %+v", report)
	}
	if report.Regions != 1 {
		t.Errorf("expected 1 region, got %d", report.Regions)
	}
	if report.CatalogCalls != 2 || report.RemoteCalls != 2 {
		t.Errorf("unexpected call counts: catalog=%d remote=%d", report.CatalogCalls, report.RemoteCalls)
	}
	if report.LookupTime != 50*time.Millisecond {
		t.Errorf("expected 50ms lookup time, got %v", report.LookupTime)
	}
	if report.Duration < 100*time.Millisecond {
		t.Errorf("expected duration >= 100ms, got %v", report.Duration)
	}
	if report.Throughput <= 0 {
		t.Errorf("expected positive throughput, got %f", report.Throughput)
	}
	if m.Failed() != 1 {
		t.Errorf("expected 1 failure, got %d", m.Failed())
	}

	str := report.String()
	if !strings.Contains(str, "2 resolved, 1 absent, 1 failed") {
		t.Errorf("unexpected string representation: %s", str)
	}
}

func TestReportJSON(t *testing.T) {
	report := Report{
		Lookups:    3,
		Resolved:   3,
		Duration:   1500 * time.Millisecond,
		LookupTime: 250 * time.Millisecond,
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["duration"] != "1.5s" {
		t.Errorf("expected duration 1.5s, got %v", decoded["duration"])
	}
	if decoded["lookupTime"] != "250ms" {
		t.Errorf("expected lookupTime 250ms, got %v", decoded["lookupTime"])
	}
	if decoded["resolved"] != float64(3) {
		t.Errorf("expected resolved 3, got %v", decoded["resolved"])
	}
}

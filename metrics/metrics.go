// Package metrics collects counters during a lookup run and produces the final
// run report.
package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// Metrics collects the run counters. Counter updates are atomic so workers can
// record without coordination.
type Metrics struct {
	mu sync.RWMutex

	regions      int64 // Regions dispatched to workers
	lookups      int64 // Pairs submitted to the resolver
	resolved     int64 // Pairs with an endpoint
	absent       int64 // Pairs without an endpoint parameter
	failed       int64 // Pairs whose lookup failed
	catalogCalls int64 // Region and service list queries
	remoteCalls  int64 // Resolver calls (single or batched)

	lookupTime time.Duration // Total time spent inside resolver calls
	startTime  time.Time     // When the run started
}

// NewMetrics creates a new Metrics instance with initialized counters
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

// RecordRegion increments the regions counter
func (m *Metrics) RecordRegion() {
	atomic.AddInt64(&m.regions, 1)
}

// RecordResolved counts one looked-up pair with an endpoint
func (m *Metrics) RecordResolved() {
	atomic.AddInt64(&m.lookups, 1)
	atomic.AddInt64(&m.resolved, 1)
}

// RecordAbsent counts one looked-up pair without an endpoint
func (m *Metrics) RecordAbsent() {
	atomic.AddInt64(&m.lookups, 1)
	atomic.AddInt64(&m.absent, 1)
}

// RecordFailed counts one looked-up pair whose lookup failed
func (m *Metrics) RecordFailed() {
	atomic.AddInt64(&m.lookups, 1)
	atomic.AddInt64(&m.failed, 1)
}

// RecordCatalogCall increments the catalog query counter
func (m *Metrics) RecordCatalogCall() {
	atomic.AddInt64(&m.catalogCalls, 1)
}

// RecordLookupCall records one resolver call and the time it took
func (m *Metrics) RecordLookupCall(d time.Duration) {
	atomic.AddInt64(&m.remoteCalls, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupTime += d
}

// Failed returns the number of failed lookups so far
func (m *Metrics) Failed() int64 {
	return atomic.LoadInt64(&m.failed)
}

// Report is the final run summary.
type Report struct {
	StartTime    time.Time     `json:"startTime"`    // When the run started
	EndTime      time.Time     `json:"endTime"`      // When the report was generated
	Regions      int64         `json:"regions"`      // Regions processed
	Lookups      int64         `json:"lookups"`      // Pairs looked up
	Resolved     int64         `json:"resolved"`     // Pairs with an endpoint
	Absent       int64         `json:"absent"`       // Pairs without an endpoint
	Failed       int64         `json:"failed"`       // Pairs whose lookup failed
	CatalogCalls int64         `json:"catalogCalls"` // Catalog queries issued
	RemoteCalls  int64         `json:"remoteCalls"`  // Resolver API calls issued
	LookupTime   time.Duration `json:"lookupTime"`   // Time spent in resolver calls
	Duration     time.Duration `json:"duration"`     // Total duration of the run
	Throughput   float64       `json:"throughput"`   // Lookups per second
}

// GenerateReport snapshots the counters into a Report.
func (m *Metrics) GenerateReport() Report {
	endTime := time.Now()
	duration := endTime.Sub(m.startTime)
	lookups := atomic.LoadInt64(&m.lookups)

	var throughput float64
	if duration > 0 {
		throughput = float64(lookups) / duration.Seconds()
	}

	m.mu.RLock()
	lookupTime := m.lookupTime
	m.mu.RUnlock()

	return Report{
		StartTime:    m.startTime,
		EndTime:      endTime,
		Regions:      atomic.LoadInt64(&m.regions),
		Lookups:      lookups,
		Resolved:     atomic.LoadInt64(&m.resolved),
		Absent:       atomic.LoadInt64(&m.absent),
		Failed:       atomic.LoadInt64(&m.failed),
		CatalogCalls: atomic.LoadInt64(&m.catalogCalls),
		RemoteCalls:  atomic.LoadInt64(&m.remoteCalls),
		LookupTime:   lookupTime,
		Duration:     duration,
		Throughput:   throughput,
	}
}

// MarshalJSON implements json.Marshaler, rendering durations as strings.
func (r Report) MarshalJSON() ([]byte, error) {
	type Alias Report
	return json.Marshal(&struct {
		Alias
		LookupTime string `json:"lookupTime"`
		Duration   string `json:"duration"`
	}{
		Alias:      Alias(r),
		LookupTime: r.LookupTime.String(),
		Duration:   r.Duration.String(),
	})
}

// String returns a human-readable summary for the diagnostic stream.
func (r Report) String() string {
	return fmt.Sprintf(
		"Lookup completed in %s\n"+
			"Regions: %d\n"+
			"Lookups: %d (%d resolved, %d absent, %d failed)\n"+
			"API calls: %d catalog, %d lookup\n"+
			"Throughput: %.2f lookups/sec",
		r.Duration.Round(time.Millisecond),
		r.Regions,
		r.Lookups, r.Resolved, r.Absent, r.Failed,
		r.CatalogCalls, r.RemoteCalls,
		r.Throughput,
	)
}

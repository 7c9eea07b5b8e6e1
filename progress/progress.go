// Package progress reports per-region and per-pair progress of a lookup run.
// The coordinator receives a Reporter instead of printing directly, so tests
// can substitute Nop or Recorder.
package progress

import (
	"fmt"
	"io"
	"sync"
)

// Reporter receives lookup progress events. Implementations must be safe for
// concurrent use; events from different regions may interleave.
type Reporter interface {
	RegionStarted(region string, services int)
	Resolved(region, service, endpoint string)
	Absent(region, service string)
	Failed(region, service string, err error)
	RegionFinished(region string)
}

// Markers written by Dots for each pair outcome.
const (
	MarkResolved = "."
	MarkAbsent   = "-"
	MarkFailed   = "!"
)

// Dots writes a one-line-per-region progress trace:
//
//	Retrieving 10 endpoint(s) for us-east-1... ....-..!.. done.
//
// Failure details are not written here; the coordinator logs them.
type Dots struct {
	mu sync.Mutex
	w  io.Writer
}

// NewDots creates a Dots reporter writing to w
func NewDots(w io.Writer) *Dots {
	return &Dots{w: w}
}

// RegionStarted writes the region header
func (d *Dots) RegionStarted(region string, services int) {
	d.printf("Retrieving %d endpoint(s) for %s... ", services, region)
}

// Resolved writes a resolved marker
func (d *Dots) Resolved(region, service, endpoint string) { d.printf(MarkResolved) }

// Absent writes an absent marker
func (d *Dots) Absent(region, service string) { d.printf(MarkAbsent) }

// Failed writes a failure marker
func (d *Dots) Failed(region, service string, err error) { d.printf(MarkFailed) }

// RegionFinished terminates the region line
func (d *Dots) RegionFinished(region string) { d.printf(" done.\n") }

func (d *Dots) printf(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, _ = fmt.Fprintf(d.w, format, args...)
}

// Nop discards every event.
type Nop struct{}

func (Nop) RegionStarted(string, int)       {}
func (Nop) Resolved(string, string, string) {}
func (Nop) Absent(string, string)           {}
func (Nop) Failed(string, string, error)    {}
func (Nop) RegionFinished(string)           {}

// Kind identifies a recorded event.
type Kind int

const (
	KindStarted Kind = iota
	KindResolved
	KindAbsent
	KindFailed
	KindFinished
)

// Event is one call recorded by Recorder.
type Event struct {
	Kind     Kind
	Region   string
	Service  string
	Endpoint string
	Services int
	Err      error
}

// Recorder stores every event in arrival order.
// It's primarily intended for testing purposes.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) RegionStarted(region string, services int) {
	r.add(Event{Kind: KindStarted, Region: region, Services: services})
}

func (r *Recorder) Resolved(region, service, endpoint string) {
	r.add(Event{Kind: KindResolved, Region: region, Service: service, Endpoint: endpoint})
}

func (r *Recorder) Absent(region, service string) {
	r.add(Event{Kind: KindAbsent, Region: region, Service: service})
}

func (r *Recorder) Failed(region, service string, err error) {
	r.add(Event{Kind: KindFailed, Region: region, Service: service, Err: err})
}

func (r *Recorder) RegionFinished(region string) {
	r.add(Event{Kind: KindFinished, Region: region})
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

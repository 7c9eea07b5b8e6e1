// Package result holds the region to service to endpoint mapping produced by a
// lookup run and renders it as JSON.
package result

import (
	"fmt"
	"io"
	"slices"
	"sync"

	json "github.com/goccy/go-json"
)

// Indent is the indentation used by Encode.
const Indent = "    "

// Map is the two-level mapping region -> service -> endpoint hostname.
// Only successful lookups are stored: there are no empty region objects and no
// empty hostnames. It is safe for concurrent use.
// Example:
//
//	m := result.New()
//	m.Set("us-east-1", "s3", "s3.us-east-1.amazonaws.com")
//	if err := result.Encode(os.Stdout, m); err != nil {
//	    log.Fatal(err)
//	}
type Map struct {
	mu      sync.RWMutex
	entries map[string]map[string]string
}

// New creates an empty Map
func New() *Map {
	return &Map{entries: make(map[string]map[string]string)}
}

// Set records the endpoint of service in region. An empty endpoint is ignored.
func (m *Map) Set(region, service, endpoint string) {
	if region == "" || service == "" || endpoint == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	services, ok := m.entries[region]
	if !ok {
		services = make(map[string]string)
		m.entries[region] = services
	}
	services[service] = endpoint
}

// Get returns the endpoint recorded for service in region.
func (m *Map) Get(region, service string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	endpoint, ok := m.entries[region][service]
	return endpoint, ok
}

// Regions returns the regions with at least one endpoint, sorted.
func (m *Map) Regions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	regions := make([]string, 0, len(m.entries))
	for r := range m.entries {
		regions = append(regions, r)
	}
	slices.Sort(regions)
	return regions
}

// Len returns the number of (region, service) pairs recorded.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, services := range m.entries {
		n += len(services)
	}
	return n
}

// Snapshot returns a deep copy of the mapping.
func (m *Map) Snapshot() map[string]map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]map[string]string, len(m.entries))
	for region, services := range m.entries {
		cp := make(map[string]string, len(services))
		for s, e := range services {
			cp[s] = e
		}
		out[region] = cp
	}
	return out
}

// MarshalJSON implements json.Marshaler. Keys are sorted at both levels.
func (m *Map) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Snapshot())
}

// Encode writes m to w as indented JSON followed by a newline.
func Encode(w io.Writer, m *Map) error {
	data, err := json.MarshalIndent(m.Snapshot(), "", Indent)
	if err != nil {
		return fmt.Errorf("failed to encode endpoints: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write endpoints: %w", err)
	}
	return nil
}

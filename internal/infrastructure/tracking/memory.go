// Package tracking counts landing-page conversion events.
package tracking

import (
	"context"
	"sync"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
)

// MemoryTracker counts events in process memory.
type MemoryTracker struct {
	mu     sync.Mutex
	counts map[string]map[string]int64
}

var _ ports.ConversionTracker = (*MemoryTracker)(nil)

// NewMemoryTracker creates an empty tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{counts: map[string]map[string]int64{}}
}

// Track increments the event counter.
func (m *MemoryTracker) Track(_ context.Context, event domain.ConversionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	page, ok := m.counts[event.LandingPageID]
	if !ok {
		page = map[string]int64{}
		m.counts[event.LandingPageID] = page
	}
	page[event.EventType]++
	return nil
}

// Counts returns a copy of the landing page's counters.
func (m *MemoryTracker) Counts(_ context.Context, landingPageID string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.counts[landingPageID]))
	for k, v := range m.counts[landingPageID] {
		out[k] = v
	}
	return out, nil
}

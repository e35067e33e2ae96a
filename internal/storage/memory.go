// Package storage holds an in-memory job-title catalogue, used when no
// database is configured and in tests.
package storage

import (
	"context"
	"sync"

	"github.com/dharsanguruparan/FormDrop/internal/form"
)

// MemoryCatalog is a form.JobTitleSource backed by a slice. RWMutex lets many
// form instances read the list at once while Add takes the exclusive lock.
type MemoryCatalog struct {
	mu     sync.RWMutex
	titles []string
}

var _ form.JobTitleSource = (*MemoryCatalog)(nil)

// NewMemoryCatalog constructs a catalogue holding titles in order.
func NewMemoryCatalog(titles ...string) *MemoryCatalog {
	m := &MemoryCatalog{}
	for _, t := range titles {
		m.Add(t)
	}
	return m
}

// Add appends a title unless it is empty or already listed.
func (m *MemoryCatalog) Add(title string) {
	if title == "" {
		return
	}
	m.mu.Lock()
	// defer schedules the unlock for every return path below.
	defer m.mu.Unlock()
	for _, t := range m.titles {
		if t == title {
			return
		}
	}
	m.titles = append(m.titles, title)
}

// JobTitles returns a copy of the titles.
func (m *MemoryCatalog) JobTitles(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Returning the backing slice would let callers mutate it outside the lock.
	out := make([]string, len(m.titles))
	copy(out, m.titles)
	return out, nil
}

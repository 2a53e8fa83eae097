// Package audit keeps the console operation log.
package audit

import (
	"context"
	"sync"

	"cdc_zoning/internal/model"
)

// Filter selects log entries
type Filter struct {
	Operation string
	Failed    bool
	Limit     int
}

// Log records and lists operations
type Log interface {
	Record(ctx context.Context, entry *model.OperationLog) error
	List(ctx context.Context, f Filter) ([]model.OperationLog, error)
}

// DefaultLimit is used when a Filter has no limit
const DefaultLimit = 100

// Memory is a fixed size in-memory ring of the most recent entries
type Memory struct {
	mu      sync.Mutex
	entries []model.OperationLog
	next    int
	full    bool
	seq     int64
}

// NewMemory returns a ring holding up to size entries
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = 1000
	}
	return &Memory{entries: make([]model.OperationLog, size)}
}

// Record stores a copy of entry and assigns its id
func (m *Memory) Record(ctx context.Context, entry *model.OperationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	entry.ID = m.seq
	m.entries[m.next] = *entry
	m.next = (m.next + 1) % len(m.entries)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

// List returns matching entries, newest first
func (m *Memory) List(ctx context.Context, f Filter) ([]model.OperationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	n := m.next
	if m.full {
		n = len(m.entries)
	}

	out := []model.OperationLog{}
	for i := 0; i < n && len(out) < limit; i++ {
		idx := (m.next - 1 - i + len(m.entries)) % len(m.entries)
		e := m.entries[idx]
		if !f.matches(e) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f Filter) matches(e model.OperationLog) bool {
	if f.Operation != "" && e.Operation != f.Operation {
		return false
	}
	if f.Failed && e.Success {
		return false
	}
	return true
}

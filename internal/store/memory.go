package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Memory is an in-process store guarded by a RWMutex. With a Snapshotter
// attached, the whole kind is written to disk before a mutation returns.
type Memory[T any, P entity[T]] struct {
	kind    string
	now     func() time.Time
	snap    *Snapshotter
	mu      sync.RWMutex
	records map[string]T
	order   []string
}

// NewMemory creates a memory store for kind, loading the snapshot if one exists.
func NewMemory[T any, P entity[T]](kind string, opts ...Option) (*Memory[T, P], error) {
	o := buildOptions(opts)
	m := &Memory[T, P]{
		kind:    kind,
		now:     o.now,
		snap:    o.snapshot,
		records: make(map[string]T),
	}

	if m.snap != nil {
		var saved []T
		found, err := m.snap.Load(&saved)
		if err != nil {
			return nil, fmt.Errorf("load %s snapshot: %w", kind, err)
		}
		if found {
			for _, rec := range saved {
				id := P(&rec).Meta().ID
				if id == "" {
					continue
				}
				if _, dup := m.records[id]; dup {
					continue
				}
				m.records[id] = rec
				m.order = append(m.order, id)
			}
		}
	}

	return m, nil
}

// List implements Store.
func (m *Memory[T, P]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id])
	}
	return out, nil
}

// Get implements Store.
func (m *Memory[T, P]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return zero, notFound(m.kind, id)
	}
	return rec, nil
}

// Add implements Store.
func (m *Memory[T, P]) Add(ctx context.Context, createdBy string, fields T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	id, err := newID(now)
	if err != nil {
		return zero, err
	}
	if _, exists := m.records[id]; exists {
		return zero, fmt.Errorf("%w: %s %q", ErrDuplicateID, m.kind, id)
	}

	rec := fields
	meta := P(&rec).Meta()
	meta.ID = id
	meta.CreatedBy = createdBy
	meta.CreatedAt = now
	meta.UpdatedAt = now

	m.records[id] = rec
	m.order = append(m.order, id)

	if err := m.persistLocked(); err != nil {
		delete(m.records, id)
		m.order = m.order[:len(m.order)-1]
		return zero, err
	}
	return rec, nil
}

// Update implements Store.
func (m *Memory[T, P]) Update(ctx context.Context, fields T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := fields
	meta := P(&rec).Meta()

	prev, ok := m.records[meta.ID]
	if !ok {
		return zero, notFound(m.kind, meta.ID)
	}
	prevMeta := P(&prev).Meta()
	meta.CreatedBy = prevMeta.CreatedBy
	meta.CreatedAt = prevMeta.CreatedAt
	meta.UpdatedAt = m.now().UTC()

	m.records[meta.ID] = rec

	if err := m.persistLocked(); err != nil {
		m.records[meta.ID] = prev
		return zero, err
	}
	return rec, nil
}

// Remove implements Store.
func (m *Memory[T, P]) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.records[id]
	if !ok {
		return notFound(m.kind, id)
	}
	pos := slices.Index(m.order, id)

	delete(m.records, id)
	m.order = slices.Delete(m.order, pos, pos+1)

	if err := m.persistLocked(); err != nil {
		m.records[id] = prev
		m.order = slices.Insert(m.order, pos, id)
		return err
	}
	return nil
}

// Len returns the number of stored records.
func (m *Memory[T, P]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *Memory[T, P]) persistLocked() error {
	if m.snap == nil {
		return nil
	}

	all := make([]T, 0, len(m.order))
	for _, id := range m.order {
		all = append(all, m.records[id])
	}
	if err := m.snap.Save(all); err != nil {
		return fmt.Errorf("persist %s: %w", m.kind, err)
	}
	return nil
}

package ordering

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/taskify/taskify-api/internal/store"
)

var errInjected = errors.New("injected failure")

// memList is an in-memory List. Calls made through run behave like one
// transaction: an error restores the state from before the call.
type memList struct {
	parents map[uuid.UUID]int64
	items   map[uuid.UUID]Placement
	names   map[uuid.UUID]string

	// written records every item whose row was modified.
	written map[uuid.UUID]int
	locks   []uuid.UUID

	failOn      string
	afterLocate func()
}

func newMemList() *memList {
	return &memList{
		parents: make(map[uuid.UUID]int64),
		items:   make(map[uuid.UUID]Placement),
		names:   make(map[uuid.UUID]string),
		written: make(map[uuid.UUID]int),
	}
}

// parent creates a parent holding the named items in order.
func (m *memList) parent(names ...string) uuid.UUID {
	p := uuid.New()
	m.parents[p] = 0
	for i, name := range names {
		m.add(name, p, i)
	}
	return p
}

func (m *memList) add(name string, parent uuid.UUID, position int) uuid.UUID {
	id := uuid.New()
	m.items[id] = Placement{Parent: parent, Position: position}
	m.names[id] = name
	return id
}

func (m *memList) id(name string) uuid.UUID {
	for id, n := range m.names {
		if n == name {
			return id
		}
	}
	panic("unknown item " + name)
}

// order returns the names under parent sorted by position.
func (m *memList) order(parent uuid.UUID) []string {
	type entry struct {
		name string
		pos  int
	}
	var entries []entry
	for id, p := range m.items {
		if p.Parent == parent {
			entries = append(entries, entry{m.names[id], p.Position})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].pos < entries[j].pos })
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.name)
	}
	return out
}

func (m *memList) requireDense(t *testing.T, parent uuid.UUID) {
	t.Helper()
	seen := make(map[int]bool)
	for _, p := range m.items {
		if p.Parent != parent {
			continue
		}
		require.False(t, seen[p.Position], "duplicate position %d", p.Position)
		seen[p.Position] = true
	}
	for i := 0; i < len(seen); i++ {
		require.True(t, seen[i], "gap at position %d", i)
	}
}

func (m *memList) resetTracking() {
	m.written = make(map[uuid.UUID]int)
	m.locks = nil
}

// run executes fn as a transaction against m.
func (m *memList) run(fn func(ctx context.Context) error) error {
	items := make(map[uuid.UUID]Placement, len(m.items))
	for k, v := range m.items {
		items[k] = v
	}
	parents := make(map[uuid.UUID]int64, len(m.parents))
	for k, v := range m.parents {
		parents[k] = v
	}

	if err := fn(context.Background()); err != nil {
		m.items = items
		m.parents = parents
		return err
	}
	return nil
}

func (m *memList) fail(op string) error {
	if m.failOn == op {
		return fmt.Errorf("%s: %w", op, errInjected)
	}
	return nil
}

func (m *memList) LockParent(_ context.Context, parent uuid.UUID) (int64, error) {
	if err := m.fail("LockParent"); err != nil {
		return 0, err
	}
	v, ok := m.parents[parent]
	if !ok {
		return 0, store.ErrNotFound
	}
	m.parents[parent] = v + 1
	m.locks = append(m.locks, parent)
	return v + 1, nil
}

func (m *memList) Count(_ context.Context, parent uuid.UUID) (int, error) {
	if err := m.fail("Count"); err != nil {
		return 0, err
	}
	n := 0
	for _, p := range m.items {
		if p.Parent == parent {
			n++
		}
	}
	return n, nil
}

func (m *memList) Locate(_ context.Context, item uuid.UUID) (Placement, error) {
	if err := m.fail("Locate"); err != nil {
		return Placement{}, err
	}
	p, ok := m.items[item]
	if !ok {
		return Placement{}, store.ErrNotFound
	}
	if hook := m.afterLocate; hook != nil {
		m.afterLocate = nil
		hook()
	}
	return p, nil
}

func (m *memList) Shift(_ context.Context, parent uuid.UUID, span Span, delta int) error {
	if err := m.fail("Shift"); err != nil {
		return err
	}
	for id, p := range m.items {
		if p.Parent == parent && span.Contains(p.Position) {
			p.Position += delta
			m.items[id] = p
			m.written[id]++
		}
	}
	return nil
}

func (m *memList) Place(_ context.Context, item, parent uuid.UUID, position int) error {
	if err := m.fail("Place"); err != nil {
		return err
	}
	if _, ok := m.items[item]; !ok {
		return store.ErrNotFound
	}
	m.items[item] = Placement{Parent: parent, Position: position}
	m.written[item]++
	return nil
}

func (m *memList) Remove(_ context.Context, item uuid.UUID) error {
	if err := m.fail("Remove"); err != nil {
		return err
	}
	if _, ok := m.items[item]; !ok {
		return store.ErrNotFound
	}
	delete(m.items, item)
	m.written[item]++
	return nil
}

func (m *memList) Members(_ context.Context, parent uuid.UUID) ([]uuid.UUID, error) {
	if err := m.fail("Members"); err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for id, p := range m.items {
		if p.Parent == parent {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return m.items[ids[i]].Position < m.items[ids[j]].Position
	})
	return ids, nil
}

// creator returns a CreateFunc that stores a new item named name.
func (m *memList) creator(name string, parent uuid.UUID) CreateFunc {
	return func(_ context.Context, position int) error {
		if err := m.fail("create"); err != nil {
			return err
		}
		m.add(name, parent, position)
		return nil
	}
}

// Package store provides Gateway implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/hotel-engine/hotel"
)

// =============================================================================
// MEMORY GATEWAY - In-memory implementation (for testing/dev)
// =============================================================================

// Memory mirrors the SQLite schema: monotonic ids that are never reused,
// unique floor names and reservation ids, and the elements -> floors
// foreign key.
type Memory struct {
	mu       sync.Mutex
	failNext error

	floors       *table[hotel.FloorRow]
	elements     *table[hotel.ElementRow]
	reservations *table[hotel.ReservationRow]
}

func NewMemory() *Memory {
	m := &Memory{}
	m.floors = &table[hotel.FloorRow]{
		owner:  m,
		name:   "floors",
		rows:   make(map[int64]hotel.FloorRow),
		setID:  func(r *hotel.FloorRow, id int64) { r.ID = id },
		unique: func(r hotel.FloorRow) string { return r.Name },
	}
	m.elements = &table[hotel.ElementRow]{
		owner: m,
		name:  "elements",
		rows:  make(map[int64]hotel.ElementRow),
		setID: func(r *hotel.ElementRow, id int64) { r.ID = id },
		fk:    func(r hotel.ElementRow) int64 { return r.FloorID },
	}
	m.reservations = &table[hotel.ReservationRow]{
		owner:  m,
		name:   "reservations",
		rows:   make(map[int64]hotel.ReservationRow),
		setID:  func(r *hotel.ReservationRow, id int64) { r.ID = id },
		fk:     func(r hotel.ReservationRow) int64 { return r.RoomID },
		unique: func(r hotel.ReservationRow) string { return r.ReservationID },
	}
	m.elements.parentExists = func(fk int64) bool {
		_, ok := m.floors.rows[fk]
		return ok
	}
	m.floors.hasChildren = func(id int64) bool {
		for _, e := range m.elements.rows {
			if e.FloorID == id {
				return true
			}
		}
		return false
	}
	return m
}

func (m *Memory) Floors() hotel.Table[hotel.FloorRow]                   { return m.floors }
func (m *Memory) Elements() hotel.ChildTable[hotel.ElementRow]         { return m.elements }
func (m *Memory) Reservations() hotel.ChildTable[hotel.ReservationRow] { return m.reservations }
func (m *Memory) Close() error                                         { return nil }

// FailNextWrite makes the next insert, update or delete on any table return
// err without touching the data.
func (m *Memory) FailNextWrite(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

func (m *Memory) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

type table[R any] struct {
	owner  *Memory
	name   string
	rows   map[int64]R
	nextID int64

	setID  func(*R, int64)
	fk     func(R) int64
	unique func(R) string

	parentExists func(fk int64) bool
	hasChildren  func(id int64) bool
}

func (t *table[R]) Insert(_ context.Context, row R) (int64, error) {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if err := t.owner.takeFailure(); err != nil {
		return 0, err
	}
	if err := t.checkWrite(0, row); err != nil {
		return 0, err
	}
	t.nextID++
	t.setID(&row, t.nextID)
	t.rows[t.nextID] = row
	return t.nextID, nil
}

func (t *table[R]) UpdateByID(_ context.Context, id int64, row R) error {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if err := t.owner.takeFailure(); err != nil {
		return err
	}
	if _, ok := t.rows[id]; !ok {
		return fmt.Errorf("%s %d: %w", t.name, id, hotel.ErrNotFound)
	}
	if err := t.checkWrite(id, row); err != nil {
		return err
	}
	t.setID(&row, id)
	t.rows[id] = row
	return nil
}

func (t *table[R]) DeleteByID(_ context.Context, id int64) error {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if err := t.owner.takeFailure(); err != nil {
		return err
	}
	if _, ok := t.rows[id]; !ok {
		return fmt.Errorf("%s %d: %w", t.name, id, hotel.ErrNotFound)
	}
	if t.hasChildren != nil && t.hasChildren(id) {
		return fmt.Errorf("%s %d is still referenced: %w", t.name, id, hotel.ErrIntegrity)
	}
	delete(t.rows, id)
	return nil
}

func (t *table[R]) SelectAll(_ context.Context) ([]R, error) {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	return t.sorted(func(R) bool { return true }), nil
}

func (t *table[R]) SelectByFK(_ context.Context, fk int64) ([]R, error) {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	return t.sorted(func(r R) bool { return t.fk(r) == fk }), nil
}

func (t *table[R]) checkWrite(id int64, row R) error {
	if t.unique != nil {
		key := t.unique(row)
		for otherID, other := range t.rows {
			if otherID != id && t.unique(other) == key {
				return fmt.Errorf("%s: duplicate %q: %w", t.name, key, hotel.ErrIntegrity)
			}
		}
	}
	if t.parentExists != nil && !t.parentExists(t.fk(row)) {
		return fmt.Errorf("%s: missing parent %d: %w", t.name, t.fk(row), hotel.ErrIntegrity)
	}
	return nil
}

func (t *table[R]) sorted(keep func(R) bool) []R {
	ids := make([]int64, 0, len(t.rows))
	for id, r := range t.rows {
		if keep(r) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]R, len(ids))
	for i, id := range ids {
		out[i] = t.rows[id]
	}
	return out
}

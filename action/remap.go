package action

import (
	"errors"

	"github.com/warp/hotel-engine/hotel"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Remap follows ids across recreation. Entries chain (a -> b -> c) and
// resolve to the newest id; storage never reuses an id, so a chain can not
// loop back onto a live entity.
type Remap struct {
	floors   map[hotel.FloorID]hotel.FloorID
	elements map[hotel.ElementID]hotel.ElementID
}

func NewRemap() *Remap {
	return &Remap{
		floors:   make(map[hotel.FloorID]hotel.FloorID),
		elements: make(map[hotel.ElementID]hotel.ElementID),
	}
}

// Floor returns the current id of a floor first known as id.
func (m *Remap) Floor(id hotel.FloorID) hotel.FloorID {
	for {
		next, ok := m.floors[id]
		if !ok {
			return id
		}
		id = next
	}
}

// Element returns the current id of an element first known as id.
func (m *Remap) Element(id hotel.ElementID) hotel.ElementID {
	for {
		next, ok := m.elements[id]
		if !ok {
			return id
		}
		id = next
	}
}

// RecordFloor notes that the floor known as old now lives under current.
func (m *Remap) RecordFloor(old, current hotel.FloorID) {
	if last := m.Floor(old); last != current {
		m.floors[last] = current
	}
}

// RecordElement notes that the element known as old now lives under current.
func (m *Remap) RecordElement(old, current hotel.ElementID) {
	if last := m.Element(old); last != current {
		m.elements[last] = current
	}
}

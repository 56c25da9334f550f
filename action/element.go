package action

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/hotel-engine/hotel"
)

// =============================================================================
// ADD ELEMENT
// =============================================================================

type AddElement struct {
	deps     Deps
	kind     string
	floorID  hotel.FloorID
	position hotel.Position
	room     hotel.RoomDetails
	id       hotel.ElementID
}

func NewAddElement(deps Deps, kind string, floorID hotel.FloorID, pos hotel.Position, room hotel.RoomDetails) *AddElement {
	return &AddElement{deps: deps, kind: kind, floorID: floorID, position: pos, room: room}
}

func (a *AddElement) Name() string { return "add_element" }

// ElementID is the id assigned by the last Redo.
func (a *AddElement) ElementID() hotel.ElementID { return a.deps.Remap.Element(a.id) }

func (a *AddElement) Redo(ctx context.Context) error {
	id, err := a.deps.Hotel.AddElement(ctx, a.kind, a.deps.Remap.Floor(a.floorID), a.position,
		a.room.Number, a.room.Capacity, a.room.PricePerNight)
	if err != nil {
		return err
	}
	if a.id != 0 {
		a.deps.Remap.RecordElement(a.id, id)
	}
	a.id = id
	return nil
}

func (a *AddElement) Undo(ctx context.Context) error {
	return a.deps.Hotel.RemoveElement(ctx, a.deps.Remap.Element(a.id))
}

// =============================================================================
// MOVE ELEMENT
// =============================================================================

type MoveElement struct {
	deps      Deps
	elementID hotel.ElementID
	toFloor   hotel.FloorID
	toPos     hotel.Position
	fromFloor hotel.FloorID
	fromPos   hotel.Position
}

func NewMoveElement(deps Deps, elementID hotel.ElementID, floorID hotel.FloorID, pos hotel.Position) *MoveElement {
	return &MoveElement{deps: deps, elementID: elementID, toFloor: floorID, toPos: pos}
}

func (a *MoveElement) Name() string { return "move_element" }

func (a *MoveElement) Redo(ctx context.Context) error {
	id := a.deps.Remap.Element(a.elementID)
	e, err := a.deps.Hotel.Element(id)
	if err != nil {
		return err
	}
	if err := a.deps.Hotel.MoveElement(ctx, id, a.deps.Remap.Floor(a.toFloor), a.toPos); err != nil {
		return err
	}
	a.fromFloor, a.fromPos = e.FloorID, e.Position
	return nil
}

func (a *MoveElement) Undo(ctx context.Context) error {
	return a.deps.Hotel.MoveElement(ctx, a.deps.Remap.Element(a.elementID),
		a.deps.Remap.Floor(a.fromFloor), a.fromPos)
}

// =============================================================================
// EDIT ROOM
// =============================================================================

type EditRoom struct {
	deps      Deps
	elementID hotel.ElementID
	to        hotel.RoomDetails
	from      hotel.RoomDetails
}

func NewEditRoom(deps Deps, elementID hotel.ElementID, number string, capacity int, price decimal.Decimal) *EditRoom {
	return &EditRoom{
		deps:      deps,
		elementID: elementID,
		to:        hotel.RoomDetails{Number: number, Capacity: capacity, PricePerNight: price},
	}
}

func (a *EditRoom) Name() string { return "edit_room" }

func (a *EditRoom) Redo(ctx context.Context) error {
	id := a.deps.Remap.Element(a.elementID)
	e, err := a.deps.Hotel.Element(id)
	if err != nil {
		return err
	}
	if err := a.deps.Hotel.EditRoom(ctx, id, a.to.Number, a.to.Capacity, a.to.PricePerNight); err != nil {
		return err
	}
	a.from = e.Room
	return nil
}

func (a *EditRoom) Undo(ctx context.Context) error {
	return a.deps.Hotel.EditRoom(ctx, a.deps.Remap.Element(a.elementID),
		a.from.Number, a.from.Capacity, a.from.PricePerNight)
}

// =============================================================================
// REMOVE ELEMENT - Rooms cascade to their reservations
// =============================================================================

type RemoveElement struct {
	deps         Deps
	elementID    hotel.ElementID
	element      hotel.Element
	reservations []hotel.Reservation
	captured     bool
}

func NewRemoveElement(deps Deps, elementID hotel.ElementID) *RemoveElement {
	return &RemoveElement{deps: deps, elementID: elementID}
}

func (a *RemoveElement) Name() string { return "remove_element" }

func (a *RemoveElement) Redo(ctx context.Context) error {
	id := a.deps.Remap.Element(a.elementID)
	e, err := a.deps.Hotel.Element(id)
	if err != nil {
		return err
	}
	var reservations []hotel.Reservation
	if e.IsRoom() {
		reservations = a.deps.Reservations.ForRoom(id)
	}
	for _, r := range reservations {
		if err := a.deps.Reservations.DeleteReservation(ctx, r.ReservationID); err != nil {
			return fmt.Errorf("cascade reservation %s: %w", r.ReservationID, err)
		}
	}
	if err := a.deps.Hotel.RemoveElement(ctx, id); err != nil {
		return err
	}
	a.element, a.reservations, a.captured = e, reservations, true
	return nil
}

func (a *RemoveElement) Undo(ctx context.Context) error {
	if !a.captured {
		return fmt.Errorf("remove_element: nothing captured to restore")
	}
	if _, err := a.deps.Hotel.Element(a.deps.Remap.Element(a.element.ID)); err != nil {
		e := a.element
		e.FloorID = a.deps.Remap.Floor(e.FloorID)
		newID, err := a.deps.Hotel.RestoreElement(ctx, e)
		if err != nil {
			return err
		}
		a.deps.Remap.RecordElement(a.element.ID, newID)
	}
	return restoreReservations(ctx, a.deps, a.reservations)
}

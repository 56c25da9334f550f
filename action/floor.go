package action

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/hotel-engine/hotel"
)

// HotelService is the layout surface the actions drive.
type HotelService interface {
	AddFloor(ctx context.Context, name string, level int) (hotel.FloorID, error)
	RenameFloor(ctx context.Context, id hotel.FloorID, newName string) error
	UpdateFloorLevel(ctx context.Context, id hotel.FloorID, level int) error
	RemoveFloor(ctx context.Context, id hotel.FloorID) error
	Floor(id hotel.FloorID) (hotel.Floor, error)
	Elements(floorID hotel.FloorID) ([]hotel.Element, error)

	AddElement(ctx context.Context, kind string, floorID hotel.FloorID, pos hotel.Position,
		number string, capacity int, price decimal.Decimal) (hotel.ElementID, error)
	RestoreElement(ctx context.Context, e hotel.Element) (hotel.ElementID, error)
	MoveElement(ctx context.Context, id hotel.ElementID, floorID hotel.FloorID, pos hotel.Position) error
	EditRoom(ctx context.Context, id hotel.ElementID, number string, capacity int, price decimal.Decimal) error
	RemoveElement(ctx context.Context, id hotel.ElementID) error
	Element(id hotel.ElementID) (hotel.Element, error)
}

// ReservationService is the booking surface the actions drive.
type ReservationService interface {
	MakeReservation(ctx context.Context, roomID hotel.ElementID, guestName string,
		guests int, checkIn, checkOut string) (string, error)
	UpdateReservation(ctx context.Context, reservationID string, roomID hotel.ElementID,
		guestName string, guests int, checkIn, checkOut string) error
	RestoreReservation(ctx context.Context, res hotel.Reservation) error
	ReplaceReservation(ctx context.Context, res hotel.Reservation) error
	DeleteReservation(ctx context.Context, reservationID string) error
	Reservation(id string) (hotel.Reservation, error)
	ForRoom(roomID hotel.ElementID) []hotel.Reservation
}

// Deps is what every action needs: both services and the engine's Remap.
type Deps struct {
	Hotel        HotelService
	Reservations ReservationService
	Remap        *Remap
}

// =============================================================================
// ADD FLOOR
// =============================================================================

type AddFloor struct {
	deps      Deps
	floorName string
	level     int
	id        hotel.FloorID
}

func NewAddFloor(deps Deps, name string, level int) *AddFloor {
	return &AddFloor{deps: deps, floorName: name, level: level}
}

func (a *AddFloor) Name() string { return "add_floor" }

// FloorID is the id assigned by the last Redo.
func (a *AddFloor) FloorID() hotel.FloorID { return a.deps.Remap.Floor(a.id) }

func (a *AddFloor) Redo(ctx context.Context) error {
	id, err := a.deps.Hotel.AddFloor(ctx, a.floorName, a.level)
	if err != nil {
		return err
	}
	if a.id != 0 {
		a.deps.Remap.RecordFloor(a.id, id)
	}
	a.id = id
	return nil
}

func (a *AddFloor) Undo(ctx context.Context) error {
	return a.deps.Hotel.RemoveFloor(ctx, a.deps.Remap.Floor(a.id))
}

// =============================================================================
// RENAME FLOOR
// =============================================================================

type RenameFloor struct {
	deps    Deps
	floorID hotel.FloorID
	to      string
	from    string
}

func NewRenameFloor(deps Deps, floorID hotel.FloorID, newName string) *RenameFloor {
	return &RenameFloor{deps: deps, floorID: floorID, to: newName}
}

func (a *RenameFloor) Name() string { return "rename_floor" }

func (a *RenameFloor) Redo(ctx context.Context) error {
	id := a.deps.Remap.Floor(a.floorID)
	f, err := a.deps.Hotel.Floor(id)
	if err != nil {
		return err
	}
	if err := a.deps.Hotel.RenameFloor(ctx, id, a.to); err != nil {
		return err
	}
	a.from = f.Name
	return nil
}

func (a *RenameFloor) Undo(ctx context.Context) error {
	return a.deps.Hotel.RenameFloor(ctx, a.deps.Remap.Floor(a.floorID), a.from)
}

// =============================================================================
// UPDATE FLOOR LEVEL
// =============================================================================

type UpdateFloorLevel struct {
	deps    Deps
	floorID hotel.FloorID
	to      int
	from    int
}

func NewUpdateFloorLevel(deps Deps, floorID hotel.FloorID, newLevel int) *UpdateFloorLevel {
	return &UpdateFloorLevel{deps: deps, floorID: floorID, to: newLevel}
}

func (a *UpdateFloorLevel) Name() string { return "update_floor_level" }

func (a *UpdateFloorLevel) Redo(ctx context.Context) error {
	id := a.deps.Remap.Floor(a.floorID)
	f, err := a.deps.Hotel.Floor(id)
	if err != nil {
		return err
	}
	if err := a.deps.Hotel.UpdateFloorLevel(ctx, id, a.to); err != nil {
		return err
	}
	a.from = f.Level
	return nil
}

func (a *UpdateFloorLevel) Undo(ctx context.Context) error {
	return a.deps.Hotel.UpdateFloorLevel(ctx, a.deps.Remap.Floor(a.floorID), a.from)
}

// =============================================================================
// REMOVE FLOOR - Cascades to elements and their reservations
// =============================================================================

// floorSnapshot is a deep copy of a floor and everything that hangs off it.
type floorSnapshot struct {
	floor        hotel.Floor
	elements     []hotel.Element
	reservations []hotel.Reservation
}

// RemoveFloor deletes every reservation on the floor's rooms, then every
// element, then the floor. Undo recreates them in reverse order; the
// recreated rooms get new ids and the reservations follow them.
type RemoveFloor struct {
	deps     Deps
	floorID  hotel.FloorID
	snapshot *floorSnapshot
}

func NewRemoveFloor(deps Deps, floorID hotel.FloorID) *RemoveFloor {
	return &RemoveFloor{deps: deps, floorID: floorID}
}

func (a *RemoveFloor) Name() string { return "remove_floor" }

func (a *RemoveFloor) Redo(ctx context.Context) error {
	id := a.deps.Remap.Floor(a.floorID)
	snap, err := a.capture(id)
	if err != nil {
		return err
	}
	for _, r := range snap.reservations {
		if err := a.deps.Reservations.DeleteReservation(ctx, r.ReservationID); err != nil {
			return fmt.Errorf("cascade reservation %s: %w", r.ReservationID, err)
		}
	}
	for _, e := range snap.elements {
		if err := a.deps.Hotel.RemoveElement(ctx, e.ID); err != nil {
			return fmt.Errorf("cascade element %d: %w", e.ID, err)
		}
	}
	if err := a.deps.Hotel.RemoveFloor(ctx, id); err != nil {
		return err
	}
	a.snapshot = snap
	return nil
}

func (a *RemoveFloor) Undo(ctx context.Context) error {
	snap := a.snapshot
	if snap == nil {
		return fmt.Errorf("remove_floor: nothing captured to restore")
	}
	// A retry after a partial undo resumes: whatever the previous attempt
	// already recreated is found through the remap and skipped.
	id := a.deps.Remap.Floor(snap.floor.ID)
	if _, err := a.deps.Hotel.Floor(id); err != nil {
		id, err = a.deps.Hotel.AddFloor(ctx, snap.floor.Name, snap.floor.Level)
		if err != nil {
			return err
		}
		a.deps.Remap.RecordFloor(snap.floor.ID, id)
	}

	for _, e := range snap.elements {
		if _, err := a.deps.Hotel.Element(a.deps.Remap.Element(e.ID)); err == nil {
			continue
		}
		e.FloorID = id
		newID, err := a.deps.Hotel.RestoreElement(ctx, e)
		if err != nil {
			return fmt.Errorf("restore element %d: %w", e.ID, err)
		}
		a.deps.Remap.RecordElement(e.ID, newID)
	}
	return restoreReservations(ctx, a.deps, snap.reservations)
}

// Snapshot sizes, for callers that report what a removal took with it.
func (a *RemoveFloor) Cascade() (elements, reservations int) {
	if a.snapshot == nil {
		return 0, 0
	}
	return len(a.snapshot.elements), len(a.snapshot.reservations)
}

func (a *RemoveFloor) capture(id hotel.FloorID) (*floorSnapshot, error) {
	f, err := a.deps.Hotel.Floor(id)
	if err != nil {
		return nil, err
	}
	elements, err := a.deps.Hotel.Elements(id)
	if err != nil {
		return nil, err
	}
	snap := &floorSnapshot{floor: f, elements: elements}
	for _, e := range elements {
		if e.IsRoom() {
			snap.reservations = append(snap.reservations, a.deps.Reservations.ForRoom(e.ID)...)
		}
	}
	return snap, nil
}

// restoreReservations re-adds snapshots, re-homing each onto the current
// id of its room. Reservations already present are left alone.
func restoreReservations(ctx context.Context, deps Deps, reservations []hotel.Reservation) error {
	for _, r := range reservations {
		if _, err := deps.Reservations.Reservation(r.ReservationID); err == nil {
			continue
		}
		r.RoomID = deps.Remap.Element(r.RoomID)
		if err := deps.Reservations.RestoreReservation(ctx, r); err != nil {
			return fmt.Errorf("restore reservation %s: %w", r.ReservationID, err)
		}
	}
	return nil
}

package action

import (
	"context"

	"github.com/warp/hotel-engine/hotel"
)

// =============================================================================
// MAKE RESERVATION
// =============================================================================

// MakeReservation books a room. The first Redo generates the reservation
// id; later Redos restore the same booking under the same id.
type MakeReservation struct {
	deps      Deps
	roomID    hotel.ElementID
	guestName string
	guests    int
	checkIn   string
	checkOut  string
	made      *hotel.Reservation
}

func NewMakeReservation(deps Deps, roomID hotel.ElementID, guestName string, guests int, checkIn, checkOut string) *MakeReservation {
	return &MakeReservation{
		deps:      deps,
		roomID:    roomID,
		guestName: guestName,
		guests:    guests,
		checkIn:   checkIn,
		checkOut:  checkOut,
	}
}

func (a *MakeReservation) Name() string { return "make_reservation" }

// ReservationID is empty until the first successful Redo.
func (a *MakeReservation) ReservationID() string {
	if a.made == nil {
		return ""
	}
	return a.made.ReservationID
}

func (a *MakeReservation) Redo(ctx context.Context) error {
	if a.made != nil {
		r := *a.made
		r.RoomID = a.deps.Remap.Element(r.RoomID)
		return a.deps.Reservations.RestoreReservation(ctx, r)
	}
	id, err := a.deps.Reservations.MakeReservation(ctx, a.deps.Remap.Element(a.roomID),
		a.guestName, a.guests, a.checkIn, a.checkOut)
	if err != nil {
		return err
	}
	r, err := a.deps.Reservations.Reservation(id)
	if err != nil {
		return err
	}
	a.made = &r
	return nil
}

func (a *MakeReservation) Undo(ctx context.Context) error {
	return a.deps.Reservations.DeleteReservation(ctx, a.made.ReservationID)
}

// =============================================================================
// EDIT RESERVATION
// =============================================================================

type EditReservation struct {
	deps          Deps
	reservationID string
	roomID        hotel.ElementID
	guestName     string
	guests        int
	checkIn       string
	checkOut      string
	before        hotel.Reservation
}

func NewEditReservation(deps Deps, reservationID string, roomID hotel.ElementID, guestName string,
	guests int, checkIn, checkOut string) *EditReservation {
	return &EditReservation{
		deps:          deps,
		reservationID: reservationID,
		roomID:        roomID,
		guestName:     guestName,
		guests:        guests,
		checkIn:       checkIn,
		checkOut:      checkOut,
	}
}

func (a *EditReservation) Name() string { return "edit_reservation" }

func (a *EditReservation) Redo(ctx context.Context) error {
	before, err := a.deps.Reservations.Reservation(a.reservationID)
	if err != nil {
		return err
	}
	if err := a.deps.Reservations.UpdateReservation(ctx, a.reservationID, a.deps.Remap.Element(a.roomID),
		a.guestName, a.guests, a.checkIn, a.checkOut); err != nil {
		return err
	}
	a.before = before
	return nil
}

func (a *EditReservation) Undo(ctx context.Context) error {
	r := a.before
	r.RoomID = a.deps.Remap.Element(r.RoomID)
	return a.deps.Reservations.ReplaceReservation(ctx, r)
}

// =============================================================================
// DELETE RESERVATION
// =============================================================================

type DeleteReservation struct {
	deps          Deps
	reservationID string
	deleted       hotel.Reservation
}

func NewDeleteReservation(deps Deps, reservationID string) *DeleteReservation {
	return &DeleteReservation{deps: deps, reservationID: reservationID}
}

func (a *DeleteReservation) Name() string { return "delete_reservation" }

func (a *DeleteReservation) Redo(ctx context.Context) error {
	r, err := a.deps.Reservations.Reservation(a.reservationID)
	if err != nil {
		return err
	}
	if err := a.deps.Reservations.DeleteReservation(ctx, a.reservationID); err != nil {
		return err
	}
	a.deleted = r
	return nil
}

func (a *DeleteReservation) Undo(ctx context.Context) error {
	r := a.deleted
	r.RoomID = a.deps.Remap.Element(r.RoomID)
	return a.deps.Reservations.RestoreReservation(ctx, r)
}

package hotel

import "fmt"

// Entity <-> row conversion. The element kind string and the date strings
// exist only on this side of the boundary.

func floorToRow(f Floor) FloorRow {
	return FloorRow{ID: int64(f.ID), Name: f.Name, Level: f.Level}
}

func floorFromRow(r FloorRow) Floor {
	return Floor{ID: FloorID(r.ID), Name: r.Name, Level: r.Level}
}

func elementToRow(e Element) ElementRow {
	row := ElementRow{
		ID:          int64(e.ID),
		ElementType: e.Kind.String(),
		FloorID:     int64(e.FloorID),
		X:           e.Position.X,
		Y:           e.Position.Y,
	}
	if e.IsRoom() {
		row.Number = e.Room.Number
		row.Capacity = e.Room.Capacity
		row.PricePerNight = e.Room.PricePerNight
	}
	return row
}

func elementFromRow(r ElementRow) (Element, error) {
	kind, err := ParseElementKind(r.ElementType)
	if err != nil {
		return Element{}, fmt.Errorf("element row %d: %w", r.ID, err)
	}
	e := Element{
		ID:       ElementID(r.ID),
		FloorID:  FloorID(r.FloorID),
		Position: Position{X: r.X, Y: r.Y},
		Kind:     kind,
	}
	if kind == KindRoom {
		e.Room = RoomDetails{
			Number:        r.Number,
			Capacity:      r.Capacity,
			PricePerNight: r.PricePerNight,
		}
	}
	return e, nil
}

func reservationToRow(r Reservation) ReservationRow {
	return ReservationRow{
		ReservationID:  r.ReservationID,
		RoomID:         int64(r.RoomID),
		GuestName:      r.GuestName,
		NumberOfGuests: r.NumberOfGuests,
		CheckInDate:    r.Stay.CheckIn.String(),
		CheckOutDate:   r.Stay.CheckOut.String(),
	}
}

func reservationFromRow(r ReservationRow) (Reservation, error) {
	ci, err := ParseDate(r.CheckInDate)
	if err != nil {
		return Reservation{}, fmt.Errorf("reservation %s: %w", r.ReservationID, err)
	}
	co, err := ParseDate(r.CheckOutDate)
	if err != nil {
		return Reservation{}, fmt.Errorf("reservation %s: %w", r.ReservationID, err)
	}
	return Reservation{
		ReservationID:  r.ReservationID,
		RoomID:         ElementID(r.RoomID),
		GuestName:      r.GuestName,
		NumberOfGuests: r.NumberOfGuests,
		Stay:           Stay{CheckIn: ci, CheckOut: co},
	}, nil
}

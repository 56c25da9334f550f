package api

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/hotel-engine/hotel"
)

// =============================================================================
// AVAILABILITY AND INCOME PROJECTIONS
// =============================================================================

// IsRoomAvailable reports whether roomID can take guests for stay: the
// capacity must fit and no other reservation may overlap. The reservation
// named by exclude is ignored, so an edit does not conflict with itself.
func (c *Controller) IsRoomAvailable(roomID hotel.ElementID, stay hotel.Stay, guests int, exclude string) (bool, error) {
	room, err := c.hotels.Room(roomID)
	if err != nil {
		return false, err
	}
	if room.Room.Capacity < guests {
		return false, nil
	}
	for _, r := range c.reservations.ForRoom(roomID) {
		if r.ReservationID == exclude {
			continue
		}
		if r.Stay.Overlaps(stay) {
			return false, nil
		}
	}
	return true, nil
}

// GetRoomsAvailabilityForDate splits all rooms by whether a guest sleeps in
// them the night of d. Check-out day is vacant.
func (c *Controller) GetRoomsAvailabilityForDate(d hotel.Date) AvailabilityDTO {
	out := AvailabilityDTO{Date: d, Available: []hotel.ElementID{}, Unavailable: []hotel.ElementID{}}
	for _, room := range c.hotels.Rooms() {
		occupied := false
		for _, r := range c.reservations.ForRoom(room.ID) {
			if r.Stay.Occupies(d) {
				occupied = true
				break
			}
		}
		if occupied {
			out.Unavailable = append(out.Unavailable, room.ID)
		} else {
			out.Available = append(out.Available, room.ID)
		}
	}
	return out
}

// GetTotalReservationsIncome sums nights x price over every reservation.
func (c *Controller) GetTotalReservationsIncome() (decimal.Decimal, error) {
	total := decimal.Zero
	for _, r := range c.reservations.Reservations() {
		income, err := c.reservationIncome(r)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(income)
	}
	return total, nil
}

func (c *Controller) reservationIncome(r hotel.Reservation) (decimal.Decimal, error) {
	room, err := c.hotels.Room(r.RoomID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reservation %s: %w", r.ReservationID, err)
	}
	return room.Room.PricePerNight.Mul(decimal.NewFromInt(int64(r.Stay.Nights()))), nil
}

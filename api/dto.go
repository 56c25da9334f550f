/*
dto.go - Requests and frozen read models for the controller

PURPOSE:
  Defines the value types crossing the controller boundary. Requests come
  in from the UI; DTOs go out. No live entity escapes the repositories:
  every DTO is a copy.

NAMING CONVENTION:
  - *Request: Command inputs, checked with validate tags
  - *DTO: Read models returned to callers

TYPES:
  Layout:
    AddFloorRequest, RenameFloorRequest, UpdateFloorLevelRequest,
    RemoveFloorRequest, AddElementRequest, EditRoomRequest,
    MoveElementRequest, RemoveElementRequest
    FloorDTO, FloorElementDTO, RoomDTO, EdgeDTO

  Bookings:
    MakeReservationRequest, EditReservationRequest, DeleteReservationRequest
    ReservationDTO, AvailabilityDTO

VALIDATION:
  Tags cover shape only (required, ranges, date format). Domain rules
  (uniqueness, overlap, free cells) are checked by the controller and the
  repositories.

SEE ALSO:
  - validate.go: Tag validation
  - controller.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/hotel-engine/hotel"
)

// =============================================================================
// REQUESTS
// =============================================================================

// PositionDTO is a grid cell.
type PositionDTO struct {
	X int `json:"x" validate:"min=0,max=9"`
	Y int `json:"y" validate:"min=0,max=9"`
}

func (p PositionDTO) toPosition() hotel.Position { return hotel.Position{X: p.X, Y: p.Y} }

type AddFloorRequest struct {
	Name  string `json:"name" validate:"required"`
	Level int    `json:"level"`
}

type RenameFloorRequest struct {
	FloorID hotel.FloorID `json:"floor_id" validate:"required,gt=0"`
	NewName string        `json:"new_name" validate:"required"`
}

type UpdateFloorLevelRequest struct {
	FloorID  hotel.FloorID `json:"floor_id" validate:"required,gt=0"`
	NewLevel int           `json:"new_level"`
}

type RemoveFloorRequest struct {
	FloorID hotel.FloorID `json:"floor_id" validate:"required,gt=0"`
}

// AddElementRequest creates a room, hallway or staircase. The room fields
// are only read when Type is "room".
type AddElementRequest struct {
	Type          string          `json:"type" validate:"required,oneof=room hallway staircase"`
	FloorID       hotel.FloorID   `json:"floor_id" validate:"required,gt=0"`
	Position      PositionDTO     `json:"position"`
	Number        string          `json:"number,omitempty" validate:"required_if=Type room"`
	Capacity      int             `json:"capacity,omitempty" validate:"min=0"`
	PricePerNight decimal.Decimal `json:"price_per_night,omitempty"`
}

type EditRoomRequest struct {
	ElementID     hotel.ElementID `json:"element_id" validate:"required,gt=0"`
	Number        string          `json:"number" validate:"required"`
	Capacity      int             `json:"capacity" validate:"min=1"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
}

type MoveElementRequest struct {
	ElementID hotel.ElementID `json:"element_id" validate:"required,gt=0"`
	FloorID   hotel.FloorID   `json:"floor_id" validate:"required,gt=0"`
	Position  PositionDTO     `json:"position"`
}

// RemoveElementRequest names the element by id and repeats what the UI
// believes about it; a stale request is rejected.
type RemoveElementRequest struct {
	ElementID hotel.ElementID `json:"element_id" validate:"required,gt=0"`
	Type      string          `json:"type" validate:"required,oneof=room hallway staircase"`
	FloorID   hotel.FloorID   `json:"floor_id" validate:"required,gt=0"`
	Position  PositionDTO     `json:"position"`
}

type MakeReservationRequest struct {
	RoomID         hotel.ElementID `json:"room_id" validate:"required,gt=0"`
	GuestName      string          `json:"guest_name" validate:"required"`
	NumberOfGuests int             `json:"number_of_guests" validate:"min=1"`
	CheckInDate    string          `json:"check_in_date" validate:"required,datetime=2006-01-02"`
	CheckOutDate   string          `json:"check_out_date" validate:"required,datetime=2006-01-02"`
}

type EditReservationRequest struct {
	ReservationID  string          `json:"reservation_id" validate:"required"`
	RoomID         hotel.ElementID `json:"room_id" validate:"required,gt=0"`
	GuestName      string          `json:"guest_name" validate:"required"`
	NumberOfGuests int             `json:"number_of_guests" validate:"min=1"`
	CheckInDate    string          `json:"check_in_date" validate:"required,datetime=2006-01-02"`
	CheckOutDate   string          `json:"check_out_date" validate:"required,datetime=2006-01-02"`
}

type DeleteReservationRequest struct {
	ReservationID string `json:"reservation_id" validate:"required"`
}

// =============================================================================
// READ MODELS
// =============================================================================

type FloorDTO struct {
	ID    hotel.FloorID `json:"id"`
	Name  string        `json:"name"`
	Level int           `json:"level"`
}

type FloorElementDTO struct {
	ID       hotel.ElementID `json:"id"`
	FloorID  hotel.FloorID   `json:"floor_id"`
	Type     string          `json:"type"`
	Position PositionDTO     `json:"position"`
}

// RoomDTO is a FloorElementDTO with the room payload.
type RoomDTO struct {
	FloorElementDTO
	Number        string          `json:"number"`
	Capacity      int             `json:"capacity"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
}

// ReservationDTO carries dates as values, not strings.
type ReservationDTO struct {
	ReservationID  string          `json:"reservation_id"`
	RoomID         hotel.ElementID `json:"room_id"`
	GuestName      string          `json:"guest_name"`
	NumberOfGuests int             `json:"number_of_guests"`
	CheckIn        hotel.Date      `json:"check_in_date"`
	CheckOut       hotel.Date      `json:"check_out_date"`
	Nights         int             `json:"nights"`
}

// EdgeDTO is one walkable adjacency, A < B.
type EdgeDTO struct {
	A hotel.ElementID `json:"a"`
	B hotel.ElementID `json:"b"`
}

// AvailabilityDTO splits the rooms for one day.
type AvailabilityDTO struct {
	Date        hotel.Date        `json:"date"`
	Available   []hotel.ElementID `json:"available"`
	Unavailable []hotel.ElementID `json:"unavailable"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toFloorDTO(f hotel.Floor) FloorDTO {
	return FloorDTO{ID: f.ID, Name: f.Name, Level: f.Level}
}

func toElementDTO(e hotel.Element) FloorElementDTO {
	return FloorElementDTO{
		ID:       e.ID,
		FloorID:  e.FloorID,
		Type:     e.Kind.String(),
		Position: PositionDTO{X: e.Position.X, Y: e.Position.Y},
	}
}

func toRoomDTO(e hotel.Element) RoomDTO {
	return RoomDTO{
		FloorElementDTO: toElementDTO(e),
		Number:          e.Room.Number,
		Capacity:        e.Room.Capacity,
		PricePerNight:   e.Room.PricePerNight,
	}
}

func toReservationDTO(r hotel.Reservation) ReservationDTO {
	return ReservationDTO{
		ReservationID:  r.ReservationID,
		RoomID:         r.RoomID,
		GuestName:      r.GuestName,
		NumberOfGuests: r.NumberOfGuests,
		CheckIn:        r.Stay.CheckIn,
		CheckOut:       r.Stay.CheckOut,
		Nights:         r.Stay.Nights(),
	}
}

func toReservationDTOs(rs []hotel.Reservation) []ReservationDTO {
	out := make([]ReservationDTO, len(rs))
	for i, r := range rs {
		out[i] = toReservationDTO(r)
	}
	return out
}

func toRoomDTOs(els []hotel.Element) []RoomDTO {
	out := make([]RoomDTO, len(els))
	for i, e := range els {
		out[i] = toRoomDTO(e)
	}
	return out
}

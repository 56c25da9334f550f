/*
Package hotel provides the domain model of the hotel layout editor.

PURPOSE:
  Floors stacked by level, each owning a 10x10 grid of typed cells (rooms,
  hallways, staircases), a derived connectivity graph across all floors,
  and guest reservations on rooms. Repositories own the authoritative
  in-memory state and persist every mutation through a Gateway.

KEY CONCEPTS IN THIS FILE (types.go):
  - Floor: A stacking level with a unique name and a unique level
  - Element: One occupied grid cell; a closed variant Room | Hallway | Staircase
  - Reservation: A room booking over a Stay for a number of guests
  - Validate(): Syntactic checks returning ALL violations

DESIGN PRINCIPLES:
  1. Ids are assigned by storage, never invented in memory
  2. The element kind string exists only at the storage/DTO boundary
  3. Graph edges reference element ids, never pointers
  4. Money uses decimal.Decimal

SEE ALSO:
  - hotel_repository.go: Floors, elements and the connectivity graph
  - reservation_repository.go: Reservations and their indexes
  - store.go: Persistence contract
*/
package hotel

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// GridSize is the side of every floor grid.
const GridSize = 10

type FloorID int64

type ElementID int64

// =============================================================================
// POSITION
// =============================================================================

type Position struct {
	X int
	Y int
}

func (p Position) OnGrid() bool {
	return p.X >= 0 && p.X < GridSize && p.Y >= 0 && p.Y < GridSize
}

// Neighbours returns the on-grid cells around p in fixed N, S, E, W order.
func (p Position) Neighbours() []Position {
	candidates := [4]Position{
		{X: p.X, Y: p.Y - 1}, // N
		{X: p.X, Y: p.Y + 1}, // S
		{X: p.X + 1, Y: p.Y}, // E
		{X: p.X - 1, Y: p.Y}, // W
	}
	out := make([]Position, 0, 4)
	for _, c := range candidates {
		if c.OnGrid() {
			out = append(out, c)
		}
	}
	return out
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// =============================================================================
// FLOOR
// =============================================================================

type Floor struct {
	ID    FloorID
	Name  string
	Level int
}

func (f Floor) Validate() []string {
	var problems []string
	if strings.TrimSpace(f.Name) == "" {
		problems = append(problems, "floor name must not be empty")
	}
	if f.ID < 0 {
		problems = append(problems, "floor id must not be negative")
	}
	return problems
}

// =============================================================================
// ELEMENT - Tagged variant over Room, Hallway, Staircase
// =============================================================================

type ElementKind int

const (
	KindRoom ElementKind = iota + 1
	KindHallway
	KindStaircase
)

func (k ElementKind) String() string {
	switch k {
	case KindRoom:
		return "room"
	case KindHallway:
		return "hallway"
	case KindStaircase:
		return "staircase"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseElementKind maps the storage/DTO string to a kind.
func ParseElementKind(s string) (ElementKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "room":
		return KindRoom, nil
	case "hallway":
		return KindHallway, nil
	case "staircase":
		return KindStaircase, nil
	}
	return 0, &ValidationError{Problems: []string{fmt.Sprintf("unknown element type %q", s)}}
}

// Walkway reports whether the kind carries walking traffic (hallway or staircase).
func (k ElementKind) Walkway() bool { return k == KindHallway || k == KindStaircase }

// RoomDetails is the payload of a Room. Zero for every other kind.
type RoomDetails struct {
	Number        string
	Capacity      int
	PricePerNight decimal.Decimal
}

func (r RoomDetails) Validate() []string {
	var problems []string
	if strings.TrimSpace(r.Number) == "" {
		problems = append(problems, "room number must not be empty")
	}
	if r.Capacity <= 0 {
		problems = append(problems, "room capacity must be positive")
	}
	if r.PricePerNight.IsNegative() {
		problems = append(problems, "price per night must not be negative")
	}
	return problems
}

func (r RoomDetails) isZero() bool {
	return r.Number == "" && r.Capacity == 0 && r.PricePerNight.IsZero()
}

// Element occupies one grid cell of a floor.
type Element struct {
	ID       ElementID
	FloorID  FloorID
	Position Position
	Kind     ElementKind
	Room     RoomDetails
}

func NewRoom(floorID FloorID, pos Position, details RoomDetails) Element {
	return Element{FloorID: floorID, Position: pos, Kind: KindRoom, Room: details}
}

func NewHallway(floorID FloorID, pos Position) Element {
	return Element{FloorID: floorID, Position: pos, Kind: KindHallway}
}

func NewStaircase(floorID FloorID, pos Position) Element {
	return Element{FloorID: floorID, Position: pos, Kind: KindStaircase}
}

func (e Element) IsRoom() bool { return e.Kind == KindRoom }

func (e Element) Validate() []string {
	var problems []string
	switch e.Kind {
	case KindRoom:
		problems = append(problems, e.Room.Validate()...)
	case KindHallway, KindStaircase:
		if !e.Room.isZero() {
			problems = append(problems, fmt.Sprintf("%s must not carry room details", e.Kind))
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown element kind %d", int(e.Kind)))
	}
	if !e.Position.OnGrid() {
		problems = append(problems, fmt.Sprintf("position %s is off the %dx%d grid", e.Position, GridSize, GridSize))
	}
	if e.FloorID <= 0 {
		problems = append(problems, "element must belong to a floor")
	}
	return problems
}

// =============================================================================
// RESERVATION
// =============================================================================

type Reservation struct {
	ReservationID  string
	RoomID         ElementID
	GuestName      string
	NumberOfGuests int
	Stay           Stay
}

func (r Reservation) Validate() []string {
	var problems []string
	if strings.TrimSpace(r.ReservationID) == "" {
		problems = append(problems, "reservation id must not be empty")
	}
	if r.RoomID <= 0 {
		problems = append(problems, "reservation must reference a room")
	}
	if strings.TrimSpace(r.GuestName) == "" {
		problems = append(problems, "guest name must not be empty")
	}
	if r.NumberOfGuests < 1 {
		problems = append(problems, "number of guests must be at least 1")
	}
	if r.Stay.CheckIn.IsZero() || r.Stay.CheckOut.IsZero() {
		problems = append(problems, "check-in and check-out dates are required")
	} else if r.Stay.CheckOut.Before(r.Stay.CheckIn) {
		problems = append(problems, "check-in date must not be after check-out date")
	}
	return problems
}

package hotel

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// HOTEL SERVICE - Validating facade over HotelRepository
// =============================================================================

// HotelService builds entities from primitive inputs, validates them and
// delegates to the repository. It holds no state of its own.
type HotelService struct {
	repo *HotelRepository
}

func NewHotelService(repo *HotelRepository) *HotelService {
	return &HotelService{repo: repo}
}

func (s *HotelService) AddFloor(ctx context.Context, name string, level int) (FloorID, error) {
	f := Floor{Name: strings.TrimSpace(name), Level: level}
	if err := NewValidationError(f.Validate()); err != nil {
		return 0, err
	}
	return s.repo.AddFloor(ctx, f)
}

func (s *HotelService) RenameFloor(ctx context.Context, id FloorID, newName string) error {
	f, err := s.repo.Floor(id)
	if err != nil {
		return err
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return &ValidationError{Problems: []string{"floor name must not be empty"}}
	}
	return s.repo.RenameFloor(ctx, f.Name, newName)
}

func (s *HotelService) UpdateFloorLevel(ctx context.Context, id FloorID, level int) error {
	return s.repo.MoveFloor(ctx, id, level)
}

func (s *HotelService) RemoveFloor(ctx context.Context, id FloorID) error {
	return s.repo.RemoveFloor(ctx, id)
}

// AddElement creates a room, hallway or staircase. The room fields are
// ignored for the other kinds.
func (s *HotelService) AddElement(ctx context.Context, kind string, floorID FloorID, pos Position,
	number string, capacity int, price decimal.Decimal) (ElementID, error) {
	k, err := ParseElementKind(kind)
	if err != nil {
		return 0, err
	}
	var e Element
	switch k {
	case KindRoom:
		e = NewRoom(floorID, pos, RoomDetails{
			Number:        strings.TrimSpace(number),
			Capacity:      capacity,
			PricePerNight: price,
		})
	case KindHallway:
		e = NewHallway(floorID, pos)
	case KindStaircase:
		e = NewStaircase(floorID, pos)
	}
	if err := NewValidationError(e.Validate()); err != nil {
		return 0, err
	}
	return s.repo.AddElement(ctx, e)
}

// RestoreElement re-adds a snapshot taken before a removal. The element
// receives a fresh id.
func (s *HotelService) RestoreElement(ctx context.Context, e Element) (ElementID, error) {
	e.ID = 0
	return s.repo.AddElement(ctx, e)
}

func (s *HotelService) MoveElement(ctx context.Context, id ElementID, floorID FloorID, pos Position) error {
	return s.repo.MoveElement(ctx, id, floorID, pos)
}

func (s *HotelService) EditRoom(ctx context.Context, id ElementID, number string, capacity int, price decimal.Decimal) error {
	return s.repo.EditRoom(ctx, id, RoomDetails{
		Number:        strings.TrimSpace(number),
		Capacity:      capacity,
		PricePerNight: price,
	})
}

func (s *HotelService) RemoveElement(ctx context.Context, id ElementID) error {
	return s.repo.RemoveElement(ctx, id)
}

// Reads

func (s *HotelService) Floor(id FloorID) (Floor, error)           { return s.repo.Floor(id) }
func (s *HotelService) FloorByName(name string) (Floor, error)    { return s.repo.FloorByName(name) }
func (s *HotelService) Floors() []Floor                           { return s.repo.Floors() }
func (s *HotelService) Element(id ElementID) (Element, error)     { return s.repo.Element(id) }
func (s *HotelService) Elements(floorID FloorID) ([]Element, error) { return s.repo.Elements(floorID) }
func (s *HotelService) AllElements() []Element                    { return s.repo.AllElements() }
func (s *HotelService) Room(id ElementID) (Element, error)        { return s.repo.Room(id) }
func (s *HotelService) Rooms() []Element                          { return s.repo.Rooms() }
func (s *HotelService) RoomsFitting(guests int) []Element         { return s.repo.RoomsFitting(guests) }
func (s *HotelService) Edges() []Edge                             { return s.repo.Edges() }

func (s *HotelService) ElementAt(floorID FloorID, pos Position) (Element, bool) {
	return s.repo.ElementAt(floorID, pos)
}

func (s *HotelService) Route(from, to ElementID) ([]ElementID, error) {
	return s.repo.Route(from, to)
}

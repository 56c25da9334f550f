/*
scenarios.go - Demo layouts for testing and demonstrations

PURPOSE:

	Provides pre-built hotels that populate the store with a realistic
	layout and a handful of bookings. Every scenario is built through the
	controller, so it exercises the same validation and connectivity code
	as a user would.

AVAILABLE SCENARIOS:

	empty:     No floors; a clean slate
	boutique:  Three floors joined by a staircase column, six rooms per
	           floor along a hallway, five bookings in June 2024

HOW SCENARIOS WORK:
 1. Remove every floor (cascades to elements and reservations)
 2. Add floors, walkways and rooms
 3. Add reservations
 4. Clear the undo/redo history

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create builder function: buildXxx(ctx, c)
 3. Add case to LoadScenario

NOTE:

	Scenarios wipe the current hotel and need RoleAdmin.

SEE ALSO:
  - controller.go: Commands used by the builders
  - cmd/hotelsim/main.go: -scenario flag
*/
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO describes one demo layout.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "empty",
		Name:        "Empty Hotel",
		Description: "No floors, no rooms, no bookings",
	},
	{
		ID:          "boutique",
		Name:        "Boutique Hotel",
		Description: "Three floors, one staircase column, eighteen rooms, five June bookings",
	},
}

var ErrUnknownScenario = errors.New("unknown scenario")

// Scenarios lists the available demo layouts.
func Scenarios() []ScenarioDTO {
	out := make([]ScenarioDTO, len(scenarios))
	copy(out, scenarios)
	return out
}

// LoadScenario replaces the current hotel with the named layout.
func LoadScenario(ctx context.Context, c *Controller, id string) error {
	var build func(context.Context, *Controller) error
	switch id {
	case "empty":
		build = func(context.Context, *Controller) error { return nil }
	case "boutique":
		build = buildBoutique
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScenario, id)
	}
	if err := c.requireAdmin("load_scenario"); err != nil {
		return err
	}

	if err := reset(ctx, c); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := build(ctx, c); err != nil {
		return fmt.Errorf("scenario %s: %w", id, err)
	}
	c.ClearHistory()
	c.log.WithField("scenario", id).Info("scenario loaded")
	return nil
}

func reset(ctx context.Context, c *Controller) error {
	for _, f := range c.Floors() {
		if err := c.RemoveFloor(ctx, RemoveFloorRequest{FloorID: f.ID}); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

// boutiqueCapacities is the room mix repeated on every floor. Rooms sit
// north (y=4) and south (y=6) of the hallway at y=5.
var boutiqueCapacities = []int{1, 2, 2, 3, 4, 2}

func buildBoutique(ctx context.Context, c *Controller) error {
	floorNames := []string{"Ground", "First", "Second"}

	var rooms []RoomDTO
	for level, name := range floorNames {
		floor, err := c.AddFloor(ctx, AddFloorRequest{Name: name, Level: level})
		if err != nil {
			return err
		}
		if _, err := c.AddElement(ctx, AddElementRequest{
			Type: "staircase", FloorID: floor.ID, Position: PositionDTO{X: 0, Y: 5},
		}); err != nil {
			return err
		}
		for x := 1; x <= 4; x++ {
			if _, err := c.AddElement(ctx, AddElementRequest{
				Type: "hallway", FloorID: floor.ID, Position: PositionDTO{X: x, Y: 5},
			}); err != nil {
				return err
			}
		}
		for i, capacity := range boutiqueCapacities {
			pos := PositionDTO{X: 1 + i%3, Y: 4}
			if i >= 3 {
				pos.Y = 6
			}
			el, err := c.AddElement(ctx, AddElementRequest{
				Type:          "room",
				FloorID:       floor.ID,
				Position:      pos,
				Number:        fmt.Sprintf("%d%02d", level+1, i+1),
				Capacity:      capacity,
				PricePerNight: decimal.NewFromInt(int64(60 + 25*capacity)),
			})
			if err != nil {
				return err
			}
			room, err := c.Room(el.ID)
			if err != nil {
				return err
			}
			rooms = append(rooms, room)
		}
	}

	bookings := []struct {
		room     int
		guest    string
		guests   int
		checkIn  string
		checkOut string
	}{
		{0, "Alice Martin", 1, "2024-06-01", "2024-06-05"},
		{1, "Bob Stone", 2, "2024-06-03", "2024-06-10"},
		{3, "Carla Diaz", 3, "2024-06-06", "2024-06-08"},
		{4, "Dmitri Ivanov", 4, "2024-06-10", "2024-06-14"},
		{6, "Eve Chen", 1, "2024-06-02", "2024-06-04"},
	}
	for _, b := range bookings {
		if _, err := c.MakeReservation(ctx, MakeReservationRequest{
			RoomID:         rooms[b.room].ID,
			GuestName:      b.guest,
			NumberOfGuests: b.guests,
			CheckInDate:    b.checkIn,
			CheckOutDate:   b.checkOut,
		}); err != nil {
			return err
		}
	}
	return nil
}

package api_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hotel-engine/action"
	"github.com/warp/hotel-engine/api"
	"github.com/warp/hotel-engine/hotel"
	"github.com/warp/hotel-engine/hotel/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func quietLog() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newController(t *testing.T, role api.Role) *api.Controller {
	t.Helper()
	return newControllerWithLog(t, role, quietLog())
}

func newControllerWithLog(t *testing.T, role api.Role, log logrus.FieldLogger) *api.Controller {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	hotelRepo := hotel.NewHotelRepository(mem, quietLog())
	require.NoError(t, hotelRepo.Load(ctx))
	resRepo := hotel.NewReservationRepository(mem, quietLog())
	require.NoError(t, resRepo.Load(ctx))

	reservations := hotel.NewReservationService(resRepo)
	draw := 0
	reservations.Intn = func(n int) int { draw++; return draw % n }

	return api.NewController(hotel.NewHotelService(hotelRepo), reservations, role, api.WithLogger(log))
}

func addFloor(t *testing.T, c *api.Controller, name string, level int) api.FloorDTO {
	t.Helper()
	f, err := c.AddFloor(context.Background(), api.AddFloorRequest{Name: name, Level: level})
	require.NoError(t, err)
	return f
}

func addElement(t *testing.T, c *api.Controller, typ string, floor hotel.FloorID, x, y int) api.FloorElementDTO {
	t.Helper()
	req := api.AddElementRequest{Type: typ, FloorID: floor, Position: api.PositionDTO{X: x, Y: y}}
	if typ == "room" {
		req.Number = fmt.Sprintf("%d%d", x, y)
		req.Capacity = 2
		req.PricePerNight = decimal.NewFromInt(100)
	}
	e, err := c.AddElement(context.Background(), req)
	require.NoError(t, err)
	return e
}

func book(c *api.Controller, room hotel.ElementID, guest string, n int, ci, co string) (api.ReservationDTO, error) {
	return c.MakeReservation(context.Background(), api.MakeReservationRequest{
		RoomID: room, GuestName: guest, NumberOfGuests: n, CheckInDate: ci, CheckOutDate: co,
	})
}

func edge(a, b hotel.ElementID) api.EdgeDTO {
	if b < a {
		a, b = b, a
	}
	return api.EdgeDTO{A: a, B: b}
}

// =============================================================================
// LAYOUT
// =============================================================================

func TestBuildAndConnect(t *testing.T) {
	// GIVEN: Floor L0 with a hallway at (0,0) and rooms at (1,0), (2,0)
	// WHEN: Reading the connectivity graph
	// THEN: Only the nearer room bonds; the occupied cell rejects a new hallway
	c := newController(t, api.RoleAdmin)
	ctx := context.Background()
	l0 := addFloor(t, c, "L0", 0)
	hall := addElement(t, c, "hallway", l0.ID, 0, 0)
	near := addElement(t, c, "room", l0.ID, 1, 0)
	far := addElement(t, c, "room", l0.ID, 2, 0)

	assert.Equal(t, []api.EdgeDTO{edge(hall.ID, near.ID)}, c.Connections())

	_, err := c.AddElement(ctx, api.AddElementRequest{Type: "hallway", FloorID: l0.ID, Position: api.PositionDTO{X: 2, Y: 0}})
	var cerr *api.ControllerError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, hotel.ErrPositionOccupied)
	assert.Len(t, c.Connections(), 1, "a rejected add leaves the graph alone")

	// A hallway south of the near room takes precedence over the one west of it.
	south := addElement(t, c, "hallway", l0.ID, 1, 1)
	assert.Equal(t, []api.EdgeDTO{edge(near.ID, south.ID)}, c.Connections())

	require.NoError(t, c.MoveElement(ctx, api.MoveElementRequest{
		ElementID: far.ID, FloorID: l0.ID, Position: api.PositionDTO{X: 1, Y: 2},
	}))
	assert.Equal(t, []api.EdgeDTO{edge(near.ID, south.ID), edge(far.ID, south.ID)}, c.Connections())

	err = c.MoveElement(ctx, api.MoveElementRequest{
		ElementID: far.ID, FloorID: l0.ID, Position: api.PositionDTO{X: 0, Y: 0},
	})
	assert.ErrorIs(t, err, hotel.ErrPositionOccupied)

	// Moving onto its own cell is a no-op, not a conflict.
	assert.NoError(t, c.MoveElement(ctx, api.MoveElementRequest{
		ElementID: far.ID, FloorID: l0.ID, Position: api.PositionDTO{X: 1, Y: 2},
	}))
}

func TestStaircaseColumn(t *testing.T) {
	c := newController(t, api.RoleAdmin)
	var stairs []hotel.ElementID
	for level, name := range []string{"L0", "L1", "L2"} {
		f := addFloor(t, c, name, level)
		stairs = append(stairs, addElement(t, c, "staircase", f.ID, 5, 5).ID)
	}

	assert.ElementsMatch(t, []api.EdgeDTO{
		edge(stairs[0], stairs[1]),
		edge(stairs[1], stairs[2]),
	}, c.Connections())

	route, err := c.Route(stairs[0], stairs[2])
	require.NoError(t, err)
	assert.Equal(t, stairs, route)
}

func TestRemoveElement_RejectsStaleRequest(t *testing.T) {
	c := newController(t, api.RoleAdmin)
	f := addFloor(t, c, "L0", 0)
	hall := addElement(t, c, "hallway", f.ID, 3, 3)

	err := c.RemoveElement(context.Background(), api.RemoveElementRequest{
		ElementID: hall.ID, Type: "room", FloorID: f.ID, Position: api.PositionDTO{X: 3, Y: 3},
	})
	assert.ErrorIs(t, err, api.ErrElementMismatch)

	require.NoError(t, c.RemoveElement(context.Background(), api.RemoveElementRequest{
		ElementID: hall.ID, Type: "hallway", FloorID: f.ID, Position: api.PositionDTO{X: 3, Y: 3},
	}))
	_, found := c.ElementAt(f.ID, api.PositionDTO{X: 3, Y: 3})
	assert.False(t, found)
}

func TestLayoutValidation(t *testing.T) {
	c := newController(t, api.RoleAdmin)
	f := addFloor(t, c, "L0", 0)

	_, err := c.AddElement(context.Background(), api.AddElementRequest{
		Type: "room", FloorID: f.ID, Position: api.PositionDTO{X: 10, Y: -1},
	})

	var verr *hotel.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{
		"position.x must be at most 9",
		"position.y must be at least 0",
		"number is required",
	}, verr.Problems)
	assert.Equal(t, []string{"add_floor"}, c.History(), "the rejected add records nothing")

	_, err = c.AddElement(context.Background(), api.AddElementRequest{
		Type: "lift", FloorID: f.ID,
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"type must be one of [room hallway staircase]"}, verr.Problems)
}

// =============================================================================
// ROLES
// =============================================================================

func TestReceptionistCannotEditLayout(t *testing.T) {
	c := newController(t, api.RoleReceptionist)
	ctx := context.Background()

	_, err := c.AddFloor(ctx, api.AddFloorRequest{Name: "L0"})
	assert.ErrorIs(t, err, api.ErrForbidden)
	assert.ErrorIs(t, c.RemoveFloor(ctx, api.RemoveFloorRequest{FloorID: 1}), api.ErrForbidden)
	assert.ErrorIs(t, api.LoadScenario(ctx, c, "boutique"), api.ErrForbidden)
	assert.Empty(t, c.Floors())
	assert.False(t, c.CanUndo())
}

func TestParseRole(t *testing.T) {
	r, err := api.ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, api.RoleAdmin, r)
	assert.Equal(t, "receptionist", api.RoleReceptionist.String())

	_, err = api.ParseRole("manager")
	assert.Error(t, err)
}

func TestFailuresAreLoggedWithReason(t *testing.T) {
	// GIVEN: A controller logging into a test hook
	// WHEN: Commands fail for different reasons
	// THEN: Each warning carries the matching reason bucket
	log, hook := logtest.NewNullLogger()
	c := newControllerWithLog(t, api.RoleAdmin, log)
	ctx := context.Background()
	f := addFloor(t, c, "L0", 0)
	room := addElement(t, c, "room", f.ID, 0, 0)
	_, err := book(c, room.ID, "Alice", 1, "2024-06-01", "2024-06-05")
	require.NoError(t, err)

	lastReason := func() any {
		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		return entry.Data["reason"]
	}

	err = c.RemoveFloor(ctx, api.RemoveFloorRequest{FloorID: 42})
	assert.True(t, hotel.IsNotFound(err))
	assert.False(t, hotel.IsConflict(err))
	assert.Equal(t, "not_found", lastReason())

	_, err = c.AddFloor(ctx, api.AddFloorRequest{Name: "L0", Level: 1})
	assert.True(t, hotel.IsConflict(err))
	assert.False(t, hotel.IsNotFound(err))
	assert.Equal(t, "conflict", lastReason())

	_, err = c.AddElement(ctx, api.AddElementRequest{Type: "hallway", FloorID: f.ID})
	assert.True(t, hotel.IsConflict(err), "cell (0,0) is taken")
	assert.Equal(t, "conflict", lastReason())

	_, err = book(c, room.ID, "Bob", 1, "2024-06-02", "2024-06-03")
	assert.ErrorIs(t, err, api.ErrRoomUnavailable)
	assert.Equal(t, "conflict", lastReason())

	_, err = c.AddElement(ctx, api.AddElementRequest{Type: "lift", FloorID: f.ID})
	assert.False(t, hotel.IsNotFound(err) || hotel.IsConflict(err))
	assert.Equal(t, "invalid", lastReason())
}

func TestFailuresAreLoggedWithReason_Forbidden(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	c := newControllerWithLog(t, api.RoleReceptionist, log)

	_, err := c.AddFloor(context.Background(), api.AddFloorRequest{Name: "L0"})

	assert.ErrorIs(t, err, api.ErrForbidden)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "forbidden", hook.LastEntry().Data["reason"])
}

// =============================================================================
// RESERVATIONS
// =============================================================================

func TestReservationOverlap(t *testing.T) {
	// GIVEN: Alice holds a capacity-2 room June 1 -> June 5
	// WHEN: Others try to book around her stay
	// THEN: Touching the check-out day conflicts, the day after does not
	c := newController(t, api.RoleAdmin)
	f := addFloor(t, c, "L0", 0)
	room := addElement(t, c, "room", f.ID, 0, 0)

	_, err := book(c, room.ID, "Alice", 2, "2024-06-01", "2024-06-05")
	require.NoError(t, err)

	_, err = book(c, room.ID, "Bob", 1, "2024-06-04", "2024-06-08")
	var cerr *api.ControllerError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, api.ErrRoomUnavailable)

	_, err = book(c, room.ID, "Bob", 1, "2024-06-05", "2024-06-09")
	assert.ErrorIs(t, err, api.ErrRoomUnavailable)

	_, err = book(c, room.ID, "Carol", 3, "2024-07-01", "2024-07-02")
	assert.ErrorIs(t, err, api.ErrRoomUnavailable, "over capacity")

	bob, err := book(c, room.ID, "Bob", 1, "2024-06-06", "2024-06-09")
	require.NoError(t, err)
	assert.Equal(t, 3, bob.Nights)
	assert.Len(t, c.ReservationsForRoom(room.ID), 2)
}

func TestEditReservation_DoesNotConflictWithItself(t *testing.T) {
	c := newController(t, api.RoleAdmin)
	f := addFloor(t, c, "L0", 0)
	room := addElement(t, c, "room", f.ID, 0, 0)
	alice, err := book(c, room.ID, "Alice", 2, "2024-06-01", "2024-06-05")
	require.NoError(t, err)

	err = c.EditReservation(context.Background(), api.EditReservationRequest{
		ReservationID: alice.ReservationID, RoomID: room.ID, GuestName: "Alice",
		NumberOfGuests: 1, CheckInDate: "2024-06-02", CheckOutDate: "2024-06-06",
	})
	require.NoError(t, err)

	got, err := c.Reservation(alice.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumberOfGuests)
	assert.Equal(t, "2024-06-06", got.CheckOut.String())

	stay := hotel.Stay{CheckIn: hotel.MustParseDate("2024-06-01"), CheckOut: hotel.MustParseDate("2024-06-03")}
	ok, err := c.IsRoomAvailable(room.ID, stay, 1, alice.ReservationID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.IsRoomAvailable(room.ID, stay, 1, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMakeReservation_Validation(t *testing.T) {
	c := newController(t, api.RoleReceptionist)

	_, err := c.MakeReservation(context.Background(), api.MakeReservationRequest{
		RoomID: 1, NumberOfGuests: 0, CheckInDate: "06/01/2024", CheckOutDate: "2024-06-05",
	})

	var verr *hotel.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{
		"guest_name is required",
		"number_of_guests must be at least 1",
		"check_in_date must be a date formatted YYYY-MM-DD",
	}, verr.Problems)

	_, err = book(c, 1, "Alice", 1, "2024-06-05", "2024-06-01")
	require.ErrorAs(t, err, &verr)

	_, err = book(c, 99, "Alice", 1, "2024-06-01", "2024-06-05")
	assert.ErrorIs(t, err, hotel.ErrElementNotFound)
}

// =============================================================================
// UNDO / REDO THROUGH THE CONTROLLER
// =============================================================================

func TestUndoCascade(t *testing.T) {
	// GIVEN: A floor with one room and one reservation
	// WHEN: remove_floor then undo
	// THEN: Floor, room and booking are back; the booking points at the new room
	c := newController(t, api.RoleAdmin)
	ctx := context.Background()
	f := addFloor(t, c, "L0", 0)
	room := addElement(t, c, "room", f.ID, 4, 4)
	res, err := book(c, room.ID, "Alice", 2, "2024-06-01", "2024-06-05")
	require.NoError(t, err)

	require.NoError(t, c.RemoveFloor(ctx, api.RemoveFloorRequest{FloorID: f.ID}))
	assert.Empty(t, c.Floors())
	assert.Empty(t, c.Rooms())
	assert.Empty(t, c.Reservations())

	require.NoError(t, c.Undo(ctx))

	floor, err := c.FloorByName("L0")
	require.NoError(t, err)
	assert.Equal(t, 0, floor.Level)
	rooms := c.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, room.Position, rooms[0].Position)
	assert.Equal(t, 2, rooms[0].Capacity)
	assert.True(t, rooms[0].PricePerNight.Equal(decimal.NewFromInt(100)))

	got := c.Reservations()
	require.Len(t, got, 1)
	assert.Equal(t, res.ReservationID, got[0].ReservationID)
	assert.Equal(t, "Alice", got[0].GuestName)
	assert.Equal(t, 2, got[0].NumberOfGuests)
	assert.Equal(t, rooms[0].ID, got[0].RoomID)
	assert.True(t, c.CanRedo())
}

type snapshot struct {
	floors       []string
	rooms        []string
	reservations []string
	edges        int
}

func observe(c *api.Controller) snapshot {
	var s snapshot
	for _, f := range c.Floors() {
		s.floors = append(s.floors, f.Name)
	}
	for _, r := range c.Rooms() {
		s.rooms = append(s.rooms, r.Number)
	}
	for _, r := range c.Reservations() {
		s.reservations = append(s.reservations, r.ReservationID+"/"+r.GuestName)
	}
	s.edges = len(c.Connections())
	return s
}

func TestUndoAll_RestoresEveryIntermediateState(t *testing.T) {
	// GIVEN: A sequence of mixed commands, observed after each one
	// WHEN: Undoing them all, then redoing them all
	// THEN: Each step back and forward matches what was observed
	c := newController(t, api.RoleAdmin)
	ctx := context.Background()
	states := []snapshot{observe(c)}
	step := func(err error) {
		t.Helper()
		require.NoError(t, err)
		states = append(states, observe(c))
	}

	var (
		f   api.FloorDTO
		r1  api.FloorElementDTO
		res api.ReservationDTO
		err error
	)
	f, err = c.AddFloor(ctx, api.AddFloorRequest{Name: "Ground", Level: 0})
	step(err)
	_, err = c.AddElement(ctx, api.AddElementRequest{Type: "hallway", FloorID: f.ID, Position: api.PositionDTO{X: 1, Y: 1}})
	step(err)
	r1, err = c.AddElement(ctx, api.AddElementRequest{
		Type: "room", FloorID: f.ID, Position: api.PositionDTO{X: 1, Y: 0},
		Number: "101", Capacity: 2, PricePerNight: decimal.NewFromInt(80),
	})
	step(err)
	res, err = book(c, r1.ID, "Alice", 2, "2024-06-01", "2024-06-05")
	step(err)
	step(c.EditRoom(ctx, api.EditRoomRequest{ElementID: r1.ID, Number: "102", Capacity: 3, PricePerNight: decimal.NewFromInt(90)}))
	step(c.RenameFloor(ctx, api.RenameFloorRequest{FloorID: f.ID, NewName: "Lobby"}))
	step(c.DeleteReservation(ctx, api.DeleteReservationRequest{ReservationID: res.ReservationID}))
	step(c.RemoveFloor(ctx, api.RemoveFloorRequest{FloorID: f.ID}))

	for i := len(states) - 2; i >= 0; i-- {
		require.NoError(t, c.Undo(ctx))
		assert.Equal(t, states[i], observe(c), "after undo back to state %d", i)
	}
	assert.ErrorIs(t, c.Undo(ctx), action.ErrNothingToUndo)

	for i := 1; i < len(states); i++ {
		require.NoError(t, c.Redo(ctx))
		assert.Equal(t, states[i], observe(c), "after redo to state %d", i)
	}
	assert.False(t, c.CanRedo())
}

// =============================================================================
// PROJECTIONS
// =============================================================================

func TestAvailabilityForDate(t *testing.T) {
	c := newController(t, api.RoleAdmin)
	f := addFloor(t, c, "L0", 0)
	x := addElement(t, c, "room", f.ID, 0, 0)
	y := addElement(t, c, "room", f.ID, 9, 9)
	_, err := book(c, x.ID, "Alice", 1, "2024-06-01", "2024-06-05")
	require.NoError(t, err)

	first := c.GetRoomsAvailabilityForDate(hotel.MustParseDate("2024-06-01"))
	assert.Equal(t, []hotel.ElementID{x.ID}, first.Unavailable)
	assert.Equal(t, []hotel.ElementID{y.ID}, first.Available)

	checkout := c.GetRoomsAvailabilityForDate(hotel.MustParseDate("2024-06-05"))
	assert.Empty(t, checkout.Unavailable, "check-out day is vacant")
	assert.ElementsMatch(t, []hotel.ElementID{x.ID, y.ID}, checkout.Available)
}

func TestTotalIncome(t *testing.T) {
	c := newController(t, api.RoleAdmin)
	f := addFloor(t, c, "L0", 0)
	x := addElement(t, c, "room", f.ID, 0, 0)
	y := addElement(t, c, "room", f.ID, 9, 9)
	require.NoError(t, c.EditRoom(context.Background(), api.EditRoomRequest{
		ElementID: y.ID, Number: "Y", Capacity: 2, PricePerNight: decimal.RequireFromString("72.50"),
	}))

	income, err := c.GetTotalReservationsIncome()
	require.NoError(t, err)
	assert.True(t, income.IsZero())

	_, err = book(c, y.ID, "Bob", 1, "2024-06-10", "2024-06-12")
	require.NoError(t, err)
	_, err = book(c, x.ID, "Alice", 1, "2024-06-01", "2024-06-05")
	require.NoError(t, err)
	_, err = book(c, x.ID, "Zero", 1, "2024-06-20", "2024-06-20")
	require.NoError(t, err)

	income, err = c.GetTotalReservationsIncome()
	require.NoError(t, err)
	assert.Equal(t, "545.00", income.StringFixed(2)) // 4 x 100 + 2 x 72.50 + 0
}

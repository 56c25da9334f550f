/*
controller.go - Command and query boundary of the hotel editor

PURPOSE:
  Receives requests from the UI, checks the preconditions no single
  service can check alone, turns every mutation into an action and runs
  it through the undo/redo engine. Reads bypass the engine and return
  frozen DTOs.

COMMAND FLOW:
  1. Gate on role (layout commands need RoleAdmin)
  2. Validate request tags
  3. Cross-cutting checks (room available, cell free, request matches entity)
  4. Build the action and engine.Do it
  5. On failure: log one warning, return one error

ERROR HANDLING:
  - *hotel.ValidationError: malformed request
  - *ControllerError: a precondition failed (ErrRoomUnavailable,
    hotel.ErrPositionOccupied, ErrForbidden, ErrElementMismatch)
  - *action.ActionError: the action itself failed; stacks are untouched
  - domain sentinels (hotel.ErrFloorNotFound, ...) pass through for lookups

ROLES:
  RoleAdmin edits layout and bookings. RoleReceptionist edits bookings
  only; layout commands fail with ErrForbidden.

SEE ALSO:
  - availability.go: Availability and income projections
  - dto.go: Requests and read models
  - action/engine.go: Undo/redo stacks
*/
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/warp/hotel-engine/action"
	"github.com/warp/hotel-engine/hotel"
)

// =============================================================================
// ROLES AND ERRORS
// =============================================================================

// Role selects which commands the controller accepts.
type Role int

const (
	RoleReceptionist Role = iota
	RoleAdmin
)

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "receptionist"
}

// ParseRole accepts "admin" and "receptionist".
func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "receptionist":
		return RoleReceptionist, nil
	}
	return RoleReceptionist, fmt.Errorf("unknown role %q", s)
}

var (
	ErrRoomUnavailable = errors.New("room unavailable")
	ErrForbidden       = errors.New("operation requires admin role")
	ErrElementMismatch = errors.New("request does not match element")
)

// ControllerError reports a failed cross-cutting precondition.
type ControllerError struct {
	Command string
	Err     error
}

func (e *ControllerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *ControllerError) Unwrap() error {
	return e.Err
}

// =============================================================================
// CONTROLLER
// =============================================================================

type Controller struct {
	hotels       *hotel.HotelService
	reservations *hotel.ReservationService
	engine       *action.Engine
	deps         action.Deps
	role         Role
	log          logrus.FieldLogger
}

type Option func(*Controller)

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Controller) { c.log = log }
}

func NewController(hotels *hotel.HotelService, reservations *hotel.ReservationService, role Role, opts ...Option) *Controller {
	c := &Controller{
		hotels:       hotels,
		reservations: reservations,
		role:         role,
		log:          logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "controller")
	c.engine = action.NewEngine(c.log)
	c.deps = action.Deps{Hotel: hotels, Reservations: reservations, Remap: c.engine.Remap()}
	return c
}

func (c *Controller) Role() Role { return c.role }

// command runs fn under a fresh command id. A failure is logged once as
// a warning and returned unchanged.
func (c *Controller) command(name string, fields logrus.Fields, fn func() error) error {
	log := c.log.WithField("command", name).WithField("command_id", uuid.NewString()).WithFields(fields)
	if err := fn(); err != nil {
		log.WithError(err).WithField("reason", failureReason(err)).Warn("command failed")
		return err
	}
	log.Debug("command applied")
	return nil
}

// failureReason buckets a command error for the log line.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case hotel.IsNotFound(err):
		return "not_found"
	case hotel.IsConflict(err), errors.Is(err, ErrRoomUnavailable):
		return "conflict"
	default:
		return "invalid"
	}
}

func (c *Controller) requireAdmin(name string) error {
	if c.role != RoleAdmin {
		return &ControllerError{Command: name, Err: ErrForbidden}
	}
	return nil
}

// layout runs a layout command: admin only, request validated first.
func (c *Controller) layout(name string, req any, fields logrus.Fields, fn func() error) error {
	return c.command(name, fields, func() error {
		if err := c.requireAdmin(name); err != nil {
			return err
		}
		if err := validateRequest(req); err != nil {
			return err
		}
		return fn()
	})
}

// =============================================================================
// FLOOR COMMANDS
// =============================================================================

func (c *Controller) AddFloor(ctx context.Context, req AddFloorRequest) (FloorDTO, error) {
	var out FloorDTO
	err := c.layout("add_floor", req, logrus.Fields{"name": req.Name, "level": req.Level}, func() error {
		a := action.NewAddFloor(c.deps, req.Name, req.Level)
		if err := c.engine.Do(ctx, a); err != nil {
			return err
		}
		f, err := c.hotels.Floor(a.FloorID())
		out = toFloorDTO(f)
		return err
	})
	return out, err
}

func (c *Controller) RenameFloor(ctx context.Context, req RenameFloorRequest) error {
	return c.layout("rename_floor", req, logrus.Fields{"floor_id": req.FloorID}, func() error {
		return c.engine.Do(ctx, action.NewRenameFloor(c.deps, req.FloorID, req.NewName))
	})
}

func (c *Controller) UpdateFloorLevel(ctx context.Context, req UpdateFloorLevelRequest) error {
	return c.layout("update_floor_level", req, logrus.Fields{"floor_id": req.FloorID, "level": req.NewLevel}, func() error {
		return c.engine.Do(ctx, action.NewUpdateFloorLevel(c.deps, req.FloorID, req.NewLevel))
	})
}

// RemoveFloor removes the floor with everything on it, reservations included.
func (c *Controller) RemoveFloor(ctx context.Context, req RemoveFloorRequest) error {
	return c.layout("remove_floor", req, logrus.Fields{"floor_id": req.FloorID}, func() error {
		if _, err := c.hotels.Floor(req.FloorID); err != nil {
			return err
		}
		a := action.NewRemoveFloor(c.deps, req.FloorID)
		if err := c.engine.Do(ctx, a); err != nil {
			return err
		}
		elements, reservations := a.Cascade()
		c.log.WithFields(logrus.Fields{
			"floor_id": req.FloorID, "elements": elements, "reservations": reservations,
		}).Info("floor removed")
		return nil
	})
}

// =============================================================================
// ELEMENT COMMANDS
// =============================================================================

func (c *Controller) AddElement(ctx context.Context, req AddElementRequest) (FloorElementDTO, error) {
	var out FloorElementDTO
	fields := logrus.Fields{"floor_id": req.FloorID, "type": req.Type, "position": req.Position.toPosition().String()}
	err := c.layout("add_element", req, fields, func() error {
		pos := req.Position.toPosition()
		if err := c.positionFree("add_element", req.FloorID, pos, 0); err != nil {
			return err
		}
		room := hotel.RoomDetails{Number: req.Number, Capacity: req.Capacity, PricePerNight: req.PricePerNight}
		a := action.NewAddElement(c.deps, req.Type, req.FloorID, pos, room)
		if err := c.engine.Do(ctx, a); err != nil {
			return err
		}
		e, err := c.hotels.Element(a.ElementID())
		out = toElementDTO(e)
		return err
	})
	return out, err
}

func (c *Controller) EditRoom(ctx context.Context, req EditRoomRequest) error {
	return c.layout("edit_room", req, logrus.Fields{"element_id": req.ElementID}, func() error {
		if _, err := c.hotels.Room(req.ElementID); err != nil {
			return err
		}
		return c.engine.Do(ctx, action.NewEditRoom(c.deps, req.ElementID, req.Number, req.Capacity, req.PricePerNight))
	})
}

func (c *Controller) MoveElement(ctx context.Context, req MoveElementRequest) error {
	fields := logrus.Fields{"element_id": req.ElementID, "floor_id": req.FloorID, "position": req.Position.toPosition().String()}
	return c.layout("move_element", req, fields, func() error {
		if _, err := c.hotels.Element(req.ElementID); err != nil {
			return err
		}
		pos := req.Position.toPosition()
		if err := c.positionFree("move_element", req.FloorID, pos, req.ElementID); err != nil {
			return err
		}
		return c.engine.Do(ctx, action.NewMoveElement(c.deps, req.ElementID, req.FloorID, pos))
	})
}

// RemoveElement removes an element; a room takes its reservations with it.
func (c *Controller) RemoveElement(ctx context.Context, req RemoveElementRequest) error {
	return c.layout("remove_element", req, logrus.Fields{"element_id": req.ElementID}, func() error {
		e, err := c.hotels.Element(req.ElementID)
		if err != nil {
			return err
		}
		if e.Kind.String() != req.Type || e.FloorID != req.FloorID || e.Position != req.Position.toPosition() {
			return &ControllerError{
				Command: "remove_element",
				Err: fmt.Errorf("%w: element %d is a %s on floor %d at %s", ErrElementMismatch,
					e.ID, e.Kind, e.FloorID, e.Position),
			}
		}
		return c.engine.Do(ctx, action.NewRemoveElement(c.deps, req.ElementID))
	})
}

// positionFree rejects a cell held by anything other than self.
func (c *Controller) positionFree(name string, floorID hotel.FloorID, pos hotel.Position, self hotel.ElementID) error {
	if _, err := c.hotels.Floor(floorID); err != nil {
		return err
	}
	occupant, taken := c.hotels.ElementAt(floorID, pos)
	if !taken || occupant.ID == self {
		return nil
	}
	return &ControllerError{
		Command: name,
		Err:     &hotel.PositionOccupiedError{FloorID: floorID, Position: pos, Occupant: occupant.ID},
	}
}

// =============================================================================
// RESERVATION COMMANDS
// =============================================================================

// MakeReservation books a room and returns the new reservation.
func (c *Controller) MakeReservation(ctx context.Context, req MakeReservationRequest) (ReservationDTO, error) {
	var out ReservationDTO
	fields := logrus.Fields{"room_id": req.RoomID, "check_in": req.CheckInDate, "check_out": req.CheckOutDate}
	err := c.command("make_reservation", fields, func() error {
		if err := validateRequest(req); err != nil {
			return err
		}
		stay, err := parseStay(req.CheckInDate, req.CheckOutDate)
		if err != nil {
			return err
		}
		if err := c.checkAvailable("make_reservation", req.RoomID, stay, req.NumberOfGuests, ""); err != nil {
			return err
		}
		a := action.NewMakeReservation(c.deps, req.RoomID, req.GuestName, req.NumberOfGuests,
			req.CheckInDate, req.CheckOutDate)
		if err := c.engine.Do(ctx, a); err != nil {
			return err
		}
		r, err := c.reservations.Reservation(a.ReservationID())
		out = toReservationDTO(r)
		return err
	})
	return out, err
}

func (c *Controller) EditReservation(ctx context.Context, req EditReservationRequest) error {
	fields := logrus.Fields{"reservation_id": req.ReservationID, "room_id": req.RoomID}
	return c.command("edit_reservation", fields, func() error {
		if err := validateRequest(req); err != nil {
			return err
		}
		if _, err := c.reservations.Reservation(req.ReservationID); err != nil {
			return err
		}
		stay, err := parseStay(req.CheckInDate, req.CheckOutDate)
		if err != nil {
			return err
		}
		if err := c.checkAvailable("edit_reservation", req.RoomID, stay, req.NumberOfGuests, req.ReservationID); err != nil {
			return err
		}
		return c.engine.Do(ctx, action.NewEditReservation(c.deps, req.ReservationID, req.RoomID,
			req.GuestName, req.NumberOfGuests, req.CheckInDate, req.CheckOutDate))
	})
}

func (c *Controller) DeleteReservation(ctx context.Context, req DeleteReservationRequest) error {
	return c.command("delete_reservation", logrus.Fields{"reservation_id": req.ReservationID}, func() error {
		if err := validateRequest(req); err != nil {
			return err
		}
		return c.engine.Do(ctx, action.NewDeleteReservation(c.deps, req.ReservationID))
	})
}

func (c *Controller) checkAvailable(name string, roomID hotel.ElementID, stay hotel.Stay, guests int, exclude string) error {
	ok, err := c.IsRoomAvailable(roomID, stay, guests, exclude)
	if err != nil {
		return err
	}
	if !ok {
		return &ControllerError{
			Command: name,
			Err:     fmt.Errorf("%w: room %d for %d guest(s) %s", ErrRoomUnavailable, roomID, guests, stay),
		}
	}
	return nil
}

func parseStay(checkIn, checkOut string) (hotel.Stay, error) {
	ci, err := hotel.ParseDate(checkIn)
	if err != nil {
		return hotel.Stay{}, &hotel.ValidationError{Problems: []string{fmt.Sprintf("invalid check-in date %q", checkIn)}}
	}
	co, err := hotel.ParseDate(checkOut)
	if err != nil {
		return hotel.Stay{}, &hotel.ValidationError{Problems: []string{fmt.Sprintf("invalid check-out date %q", checkOut)}}
	}
	if co.Before(ci) {
		return hotel.Stay{}, &hotel.ValidationError{Problems: []string{"check-in date must not be after check-out date"}}
	}
	return hotel.Stay{CheckIn: ci, CheckOut: co}, nil
}

// =============================================================================
// HISTORY
// =============================================================================

func (c *Controller) Undo(ctx context.Context) error {
	return c.command("undo", nil, func() error { return c.engine.Undo(ctx) })
}

func (c *Controller) Redo(ctx context.Context) error {
	return c.command("redo", nil, func() error { return c.engine.Redo(ctx) })
}

func (c *Controller) CanUndo() bool { return c.engine.CanUndo() }
func (c *Controller) CanRedo() bool { return c.engine.CanRedo() }

// ClearHistory drops both stacks, e.g. when the UI leaves the editor.
func (c *Controller) ClearHistory() { c.engine.Clear() }

// History lists the undoable commands, oldest first.
func (c *Controller) History() []string { return c.engine.History() }

// =============================================================================
// READS
// =============================================================================

func (c *Controller) Floors() []FloorDTO {
	floors := c.hotels.Floors()
	out := make([]FloorDTO, len(floors))
	for i, f := range floors {
		out[i] = toFloorDTO(f)
	}
	return out
}

func (c *Controller) Floor(id hotel.FloorID) (FloorDTO, error) {
	f, err := c.hotels.Floor(id)
	if err != nil {
		return FloorDTO{}, err
	}
	return toFloorDTO(f), nil
}

func (c *Controller) FloorByName(name string) (FloorDTO, error) {
	f, err := c.hotels.FloorByName(name)
	if err != nil {
		return FloorDTO{}, err
	}
	return toFloorDTO(f), nil
}

func (c *Controller) Elements(floorID hotel.FloorID) ([]FloorElementDTO, error) {
	els, err := c.hotels.Elements(floorID)
	if err != nil {
		return nil, err
	}
	out := make([]FloorElementDTO, len(els))
	for i, e := range els {
		out[i] = toElementDTO(e)
	}
	return out, nil
}

func (c *Controller) ElementAt(floorID hotel.FloorID, pos PositionDTO) (FloorElementDTO, bool) {
	e, ok := c.hotels.ElementAt(floorID, pos.toPosition())
	if !ok {
		return FloorElementDTO{}, false
	}
	return toElementDTO(e), true
}

func (c *Controller) Room(id hotel.ElementID) (RoomDTO, error) {
	e, err := c.hotels.Room(id)
	if err != nil {
		return RoomDTO{}, err
	}
	return toRoomDTO(e), nil
}

func (c *Controller) Rooms() []RoomDTO { return toRoomDTOs(c.hotels.Rooms()) }

// RoomsFitting returns rooms whose capacity is at least guests.
func (c *Controller) RoomsFitting(guests int) []RoomDTO {
	return toRoomDTOs(c.hotels.RoomsFitting(guests))
}

func (c *Controller) Reservations() []ReservationDTO {
	return toReservationDTOs(c.reservations.Reservations())
}

func (c *Controller) Reservation(id string) (ReservationDTO, error) {
	r, err := c.reservations.Reservation(id)
	if err != nil {
		return ReservationDTO{}, err
	}
	return toReservationDTO(r), nil
}

func (c *Controller) ReservationsForRoom(roomID hotel.ElementID) []ReservationDTO {
	return toReservationDTOs(c.reservations.ForRoom(roomID))
}

// SearchReservations matches substr against reservation ids and guest
// names, optionally limited to stays touching [from, to].
func (c *Controller) SearchReservations(substr string, from, to *hotel.Date) []ReservationDTO {
	return toReservationDTOs(c.reservations.Search(substr, from, to))
}

func (c *Controller) DirectSearch(q string) []ReservationDTO {
	return toReservationDTOs(c.reservations.DirectSearch(q))
}

// Connections returns every edge of the connectivity graph.
func (c *Controller) Connections() []EdgeDTO {
	edges := c.hotels.Edges()
	out := make([]EdgeDTO, len(edges))
	for i, e := range edges {
		out[i] = EdgeDTO{A: e.A, B: e.B}
	}
	return out
}

// Route returns a shortest walk between two elements, nil if unreachable.
func (c *Controller) Route(from, to hotel.ElementID) ([]hotel.ElementID, error) {
	return c.hotels.Route(from, to)
}

package hotel

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// =============================================================================
// RESERVATION REPOSITORY - In-memory reservations with list-valued indexes
// =============================================================================

// ReservationRepository caches every reservation by reservation id, by room
// and by guest name. The room and guest indexes are list-valued: a room has
// many bookings and a name may belong to several guests.
type ReservationRepository struct {
	store Gateway
	log   logrus.FieldLogger

	byID    map[string]*stored
	byRoom  map[ElementID][]string
	byGuest map[string][]string
}

type stored struct {
	rowID int64
	Reservation
}

func NewReservationRepository(store Gateway, log logrus.FieldLogger) *ReservationRepository {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReservationRepository{
		store:   store,
		log:     log.WithField("component", "reservation_repository"),
		byID:    make(map[string]*stored),
		byRoom:  make(map[ElementID][]string),
		byGuest: make(map[string][]string),
	}
}

// Load replaces the cache with the stored reservations.
func (r *ReservationRepository) Load(ctx context.Context) error {
	rows, err := r.store.Reservations().SelectAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reservations: %w", err)
	}
	r.byID = make(map[string]*stored, len(rows))
	r.byRoom = make(map[ElementID][]string)
	r.byGuest = make(map[string][]string)
	for _, row := range rows {
		res, err := reservationFromRow(row)
		if err != nil {
			return err
		}
		r.cache(&stored{rowID: row.ID, Reservation: res})
	}
	r.log.WithField("reservations", len(r.byID)).Info("reservations loaded")
	return nil
}

// Add persists a new reservation.
func (r *ReservationRepository) Add(ctx context.Context, res Reservation) error {
	if err := NewValidationError(res.Validate()); err != nil {
		return err
	}
	if _, ok := r.byID[res.ReservationID]; ok {
		return fmt.Errorf("%w: %s", ErrReservationAlreadyExists, res.ReservationID)
	}
	rowID, err := r.store.Reservations().Insert(ctx, reservationToRow(res))
	if err != nil {
		return translate(err, nil, ErrReservationAlreadyExists)
	}
	r.cache(&stored{rowID: rowID, Reservation: res})

	r.log.WithFields(logrus.Fields{
		"reservation_id": res.ReservationID, "room_id": res.RoomID, "stay": res.Stay.String(),
	}).Debug("reservation added")
	return nil
}

// Update overwrites the reservation with the same ReservationID. Room and
// guest name may change; the indexes are re-keyed.
func (r *ReservationRepository) Update(ctx context.Context, res Reservation) error {
	current, ok := r.byID[res.ReservationID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrReservationNotFound, res.ReservationID)
	}
	if err := NewValidationError(res.Validate()); err != nil {
		return err
	}
	if err := r.store.Reservations().UpdateByID(ctx, current.rowID, reservationToRow(res)); err != nil {
		return translate(err, ErrReservationNotFound, ErrReservationAlreadyExists)
	}
	r.uncache(current)
	r.cache(&stored{rowID: current.rowID, Reservation: res})
	return nil
}

// Delete removes a reservation.
func (r *ReservationRepository) Delete(ctx context.Context, reservationID string) error {
	current, ok := r.byID[reservationID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrReservationNotFound, reservationID)
	}
	if err := r.store.Reservations().DeleteByID(ctx, current.rowID); err != nil {
		return translate(err, ErrReservationNotFound, nil)
	}
	r.uncache(current)

	r.log.WithField("reservation_id", reservationID).Debug("reservation deleted")
	return nil
}

func (r *ReservationRepository) Get(reservationID string) (Reservation, error) {
	s, ok := r.byID[reservationID]
	if !ok {
		return Reservation{}, fmt.Errorf("%w: %s", ErrReservationNotFound, reservationID)
	}
	return s.Reservation, nil
}

// All returns every reservation ordered by check-in, then id.
func (r *ReservationRepository) All() []Reservation {
	out := make([]Reservation, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s.Reservation)
	}
	SortReservations(out)
	return out
}

func (r *ReservationRepository) ForRoom(roomID ElementID) []Reservation {
	return r.collect(r.byRoom[roomID])
}

// ForGuest matches the guest name exactly (case-sensitive).
func (r *ReservationRepository) ForGuest(name string) []Reservation {
	return r.collect(r.byGuest[name])
}

func (r *ReservationRepository) Len() int { return len(r.byID) }

func (r *ReservationRepository) collect(ids []string) []Reservation {
	out := make([]Reservation, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id].Reservation)
	}
	SortReservations(out)
	return out
}

func (r *ReservationRepository) cache(s *stored) {
	r.byID[s.ReservationID] = s
	r.byRoom[s.RoomID] = append(r.byRoom[s.RoomID], s.ReservationID)
	r.byGuest[s.GuestName] = append(r.byGuest[s.GuestName], s.ReservationID)
}

func (r *ReservationRepository) uncache(s *stored) {
	delete(r.byID, s.ReservationID)
	r.byRoom[s.RoomID] = without(r.byRoom[s.RoomID], s.ReservationID)
	if len(r.byRoom[s.RoomID]) == 0 {
		delete(r.byRoom, s.RoomID)
	}
	r.byGuest[s.GuestName] = without(r.byGuest[s.GuestName], s.ReservationID)
	if len(r.byGuest[s.GuestName]) == 0 {
		delete(r.byGuest, s.GuestName)
	}
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// SortReservations orders by check-in date, then reservation id.
func SortReservations(rs []Reservation) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].Stay.CheckIn.Equal(rs[j].Stay.CheckIn) {
			return rs[i].Stay.CheckIn.Before(rs[j].Stay.CheckIn)
		}
		return rs[i].ReservationID < rs[j].ReservationID
	})
}

/*
reservation_service.go - Validating facade over ReservationRepository

PURPOSE:
  Turns primitive inputs (date strings, counts, names) into reservations,
  generates reservation ids, and answers searches.

RESERVATION ID FORMAT:
  R + room id (3 digits) + YY + MM(check-in) + DD(check-in)
    + DD(check-out) + 3 random digits

  Room 7, 2024-06-01 -> 2024-06-05 gives R00724060105### (15 chars).
  A room id above 999 widens the id; it is never truncated.

SEARCH:
  Search:       substring of the reservation id (case-sensitive) OR of the
                guest name (case-insensitive), then an optional
                [from, to] overlap filter (co >= from, ci <= to)
  DirectSearch: exact reservation id, else exact guest name

SEE ALSO:
  - reservation_repository.go: Storage and indexes
  - api/availability.go: Overlap checks that need room data too
*/
package hotel

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// idAttempts bounds the retries when a generated id is already taken.
const idAttempts = 20

// ReservationService creates, edits and searches reservations.
type ReservationService struct {
	repo *ReservationRepository

	// Intn draws the random suffix of generated ids; swap it in tests.
	Intn func(n int) int
}

func NewReservationService(repo *ReservationRepository) *ReservationService {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &ReservationService{repo: repo, Intn: rng.Intn}
}

// GenerateReservationID builds a fresh id for a booking of roomID.
func (s *ReservationService) GenerateReservationID(roomID ElementID, stay Stay) string {
	return fmt.Sprintf("R%03d%02d%02d%02d%02d%03d",
		roomID,
		stay.CheckIn.Year()%100,
		int(stay.CheckIn.Month()),
		stay.CheckIn.Day(),
		stay.CheckOut.Day(),
		s.Intn(1000),
	)
}

// MakeReservation validates the inputs, assigns an id and stores the booking.
func (s *ReservationService) MakeReservation(ctx context.Context, roomID ElementID, guestName string,
	guests int, checkIn, checkOut string) (string, error) {
	res, err := buildReservation("", roomID, guestName, guests, checkIn, checkOut)
	if err != nil {
		return "", err
	}
	for attempt := 0; attempt < idAttempts; attempt++ {
		res.ReservationID = s.GenerateReservationID(roomID, res.Stay)
		err = s.repo.Add(ctx, res)
		if !errors.Is(err, ErrReservationAlreadyExists) {
			break
		}
	}
	if err != nil {
		return "", err
	}
	return res.ReservationID, nil
}

// RestoreReservation re-adds a snapshot with its original id.
func (s *ReservationService) RestoreReservation(ctx context.Context, res Reservation) error {
	return s.repo.Add(ctx, res)
}

// UpdateReservation re-validates every field and overwrites the booking.
func (s *ReservationService) UpdateReservation(ctx context.Context, reservationID string, roomID ElementID,
	guestName string, guests int, checkIn, checkOut string) error {
	if _, err := s.repo.Get(reservationID); err != nil {
		return err
	}
	res, err := buildReservation(reservationID, roomID, guestName, guests, checkIn, checkOut)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, res)
}

// ReplaceReservation overwrites a booking with a snapshot (used by undo).
func (s *ReservationService) ReplaceReservation(ctx context.Context, res Reservation) error {
	return s.repo.Update(ctx, res)
}

func (s *ReservationService) DeleteReservation(ctx context.Context, reservationID string) error {
	return s.repo.Delete(ctx, reservationID)
}

// Reads

func (s *ReservationService) Reservation(id string) (Reservation, error) { return s.repo.Get(id) }
func (s *ReservationService) Reservations() []Reservation              { return s.repo.All() }
func (s *ReservationService) ForRoom(roomID ElementID) []Reservation   { return s.repo.ForRoom(roomID) }

// Search scans every reservation. See the file header for the matching rules.
func (s *ReservationService) Search(substr string, from, to *Date) []Reservation {
	needle := strings.ToLower(substr)
	var out []Reservation
	for _, res := range s.repo.All() {
		matched := strings.Contains(res.ReservationID, substr) ||
			strings.Contains(strings.ToLower(res.GuestName), needle)
		if matched && res.Stay.Within(from, to) {
			out = append(out, res)
		}
	}
	return out
}

// DirectSearch returns the reservation with id q, or else every
// reservation whose guest name is exactly q.
func (s *ReservationService) DirectSearch(q string) []Reservation {
	if res, err := s.repo.Get(q); err == nil {
		return []Reservation{res}
	}
	return s.repo.ForGuest(q)
}

func buildReservation(reservationID string, roomID ElementID, guestName string, guests int,
	checkIn, checkOut string) (Reservation, error) {
	var problems []string
	ci, ciErr := ParseDate(checkIn)
	if ciErr != nil {
		problems = append(problems, fmt.Sprintf("invalid check-in date %q", checkIn))
	}
	co, coErr := ParseDate(checkOut)
	if coErr != nil {
		problems = append(problems, fmt.Sprintf("invalid check-out date %q", checkOut))
	}
	if ciErr == nil && coErr == nil && co.Before(ci) {
		problems = append(problems, "check-in date must not be after check-out date")
	}
	if roomID <= 0 {
		problems = append(problems, "reservation must reference a room")
	}
	guestName = strings.TrimSpace(guestName)
	if guestName == "" {
		problems = append(problems, "guest name must not be empty")
	}
	if guests < 1 {
		problems = append(problems, "number of guests must be at least 1")
	}
	if err := NewValidationError(problems); err != nil {
		return Reservation{}, err
	}
	return Reservation{
		ReservationID:  reservationID,
		RoomID:         roomID,
		GuestName:      guestName,
		NumberOfGuests: guests,
		Stay:           Stay{CheckIn: ci, CheckOut: co},
	}, nil
}

/*
simulator.go - Day-by-day occupancy and revenue projection

PURPOSE:
  Walks a date window one day at a time and reports, for each day, which
  rooms are occupied and what the nights slept so far have earned. It can
  also play the front desk: with Arrivals > 0 it books random walk-in
  guests into free rooms before measuring each day.

KEY INSIGHT:
  A room is occupied the night of d iff some stay has ci <= d < co, so a
  night earns the room's price on exactly the days it is occupied. The
  sum of daily revenue over a stay's whole window equals its income.

EXAMPLE:
  s := sim.New(controller, sim.Config{Arrivals: 2, MaxNights: 4}, log)
  report, _ := s.Run(ctx, hotel.MustParseDate("2024-06-01"), 30)
  fmt.Println(report.Revenue, report.ProjectedIncome)

SEE ALSO:
  - api/availability.go: Availability and income projections
*/
package sim

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/hotel-engine/api"
	"github.com/warp/hotel-engine/hotel"
)

// Hotel is the controller surface the simulator reads and books through.
type Hotel interface {
	Rooms() []api.RoomDTO
	RoomsFitting(guests int) []api.RoomDTO
	Reservations() []api.ReservationDTO
	IsRoomAvailable(roomID hotel.ElementID, stay hotel.Stay, guests int, exclude string) (bool, error)
	MakeReservation(ctx context.Context, req api.MakeReservationRequest) (api.ReservationDTO, error)
	GetRoomsAvailabilityForDate(d hotel.Date) api.AvailabilityDTO
	GetTotalReservationsIncome() (decimal.Decimal, error)
}

// Config tunes the walk-in generator. The zero value only observes.
type Config struct {
	// Arrivals is the number of walk-in parties tried each day.
	Arrivals int
	// MaxNights caps the length of a generated stay (default 3).
	MaxNights int
	// MaxGuests caps the size of a generated party (default 2).
	MaxGuests int
	// Rand drives the generator; nil seeds a fixed source.
	Rand *rand.Rand
}

// Day is the state of the hotel on one night.
type Day struct {
	Date        hotel.Date
	Available   int
	Unavailable int
	// Occupancy is Unavailable / rooms, 0 when there are no rooms.
	Occupancy decimal.Decimal
	Revenue   decimal.Decimal
	// Cumulative is the revenue of every night in the window up to and
	// including this one.
	Cumulative decimal.Decimal
	Booked     int
}

// Report is the outcome of a Run.
type Report struct {
	From    hotel.Date
	Days    []Day
	Revenue decimal.Decimal
	Booked  int
	// ProjectedIncome is the income of every reservation in the hotel,
	// inside the window or not.
	ProjectedIncome decimal.Decimal
}

// AverageOccupancy is the mean of the daily occupancy rates.
func (r Report) AverageOccupancy() decimal.Decimal {
	if len(r.Days) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, d := range r.Days {
		sum = sum.Add(d.Occupancy)
	}
	return sum.Div(decimal.NewFromInt(int64(len(r.Days)))).Round(4)
}

type Simulator struct {
	hotel Hotel
	cfg   Config
	log   logrus.FieldLogger
}

func New(h Hotel, cfg Config, log logrus.FieldLogger) *Simulator {
	if cfg.MaxNights <= 0 {
		cfg.MaxNights = 3
	}
	if cfg.MaxGuests <= 0 {
		cfg.MaxGuests = 2
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(1))
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Simulator{hotel: h, cfg: cfg, log: log.WithField("component", "simulator")}
}

// Run steps over [from, from+days).
func (s *Simulator) Run(ctx context.Context, from hotel.Date, days int) (Report, error) {
	if days < 0 {
		return Report{}, fmt.Errorf("days must not be negative, got %d", days)
	}
	report := Report{From: from, Revenue: decimal.Zero}
	cumulative := decimal.Zero

	for i := 0; i < days; i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		d := from.AddDays(i)

		booked, err := s.walkIns(ctx, d)
		if err != nil {
			return report, err
		}

		day := s.measure(d)
		day.Booked = booked
		cumulative = cumulative.Add(day.Revenue)
		day.Cumulative = cumulative
		report.Days = append(report.Days, day)
		report.Booked += booked

		s.log.WithFields(logrus.Fields{
			"date": d.String(), "unavailable": day.Unavailable, "available": day.Available,
			"revenue": day.Revenue.StringFixed(2), "booked": booked,
		}).Debug("day simulated")
	}

	report.Revenue = cumulative
	projected, err := s.hotel.GetTotalReservationsIncome()
	if err != nil {
		return report, err
	}
	report.ProjectedIncome = projected
	return report, nil
}

func (s *Simulator) measure(d hotel.Date) Day {
	availability := s.hotel.GetRoomsAvailabilityForDate(d)
	day := Day{
		Date:        d,
		Available:   len(availability.Available),
		Unavailable: len(availability.Unavailable),
		Occupancy:   decimal.Zero,
		Revenue:     decimal.Zero,
	}
	if total := day.Available + day.Unavailable; total > 0 {
		day.Occupancy = decimal.NewFromInt(int64(day.Unavailable)).
			Div(decimal.NewFromInt(int64(total))).Round(4)
	}

	prices := make(map[hotel.ElementID]decimal.Decimal)
	for _, room := range s.hotel.Rooms() {
		prices[room.ID] = room.PricePerNight
	}
	for _, r := range s.hotel.Reservations() {
		stay := hotel.Stay{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
		if stay.Occupies(d) {
			day.Revenue = day.Revenue.Add(prices[r.RoomID])
		}
	}
	return day
}

// walkIns tries cfg.Arrivals random parties arriving on d and books each
// into the first fitting room that is free for the whole stay.
func (s *Simulator) walkIns(ctx context.Context, d hotel.Date) (int, error) {
	booked := 0
	for n := 0; n < s.cfg.Arrivals; n++ {
		guests := 1 + s.cfg.Rand.Intn(s.cfg.MaxGuests)
		stay := hotel.Stay{CheckIn: d, CheckOut: d.AddDays(1 + s.cfg.Rand.Intn(s.cfg.MaxNights))}
		room, ok, err := s.freeRoom(stay, guests)
		if err != nil {
			return booked, err
		}
		if !ok {
			s.log.WithFields(logrus.Fields{"date": d.String(), "guests": guests}).Debug("walk-in turned away")
			continue
		}
		_, err = s.hotel.MakeReservation(ctx, api.MakeReservationRequest{
			RoomID:         room,
			GuestName:      fmt.Sprintf("Walk-in %s-%d", d, n+1),
			NumberOfGuests: guests,
			CheckInDate:    stay.CheckIn.String(),
			CheckOutDate:   stay.CheckOut.String(),
		})
		if err != nil {
			return booked, err
		}
		booked++
	}
	return booked, nil
}

func (s *Simulator) freeRoom(stay hotel.Stay, guests int) (hotel.ElementID, bool, error) {
	for _, room := range s.hotel.RoomsFitting(guests) {
		ok, err := s.hotel.IsRoomAvailable(room.ID, stay, guests, "")
		if err != nil {
			return 0, false, err
		}
		if ok {
			return room.ID, true, nil
		}
	}
	return 0, false, nil
}

package hotel_test

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/warp/hotel-engine/hotel"
	"github.com/warp/hotel-engine/hotel/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func quietLog() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestHotel(t *testing.T) (*hotel.HotelRepository, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	repo := hotel.NewHotelRepository(mem, quietLog())
	require.NoError(t, repo.Load(context.Background()))
	return repo, mem
}

func addFloor(t *testing.T, repo *hotel.HotelRepository, name string, level int) hotel.FloorID {
	t.Helper()
	id, err := repo.AddFloor(context.Background(), hotel.Floor{Name: name, Level: level})
	require.NoError(t, err)
	return id
}

func addHallway(t *testing.T, repo *hotel.HotelRepository, floor hotel.FloorID, x, y int) hotel.ElementID {
	t.Helper()
	id, err := repo.AddElement(context.Background(), hotel.NewHallway(floor, hotel.Position{X: x, Y: y}))
	require.NoError(t, err)
	return id
}

func addStaircase(t *testing.T, repo *hotel.HotelRepository, floor hotel.FloorID, x, y int) hotel.ElementID {
	t.Helper()
	id, err := repo.AddElement(context.Background(), hotel.NewStaircase(floor, hotel.Position{X: x, Y: y}))
	require.NoError(t, err)
	return id
}

func addRoom(t *testing.T, repo *hotel.HotelRepository, floor hotel.FloorID, x, y int, number string, capacity int) hotel.ElementID {
	t.Helper()
	id, err := repo.AddElement(context.Background(), hotel.NewRoom(floor, hotel.Position{X: x, Y: y}, roomDetails(number, capacity)))
	require.NoError(t, err)
	return id
}

func roomDetails(number string, capacity int) hotel.RoomDetails {
	return hotel.RoomDetails{Number: number, Capacity: capacity, PricePerNight: decimal.NewFromInt(100)}
}

func edge(a, b hotel.ElementID) hotel.Edge {
	if b < a {
		a, b = b, a
	}
	return hotel.Edge{A: a, B: b}
}

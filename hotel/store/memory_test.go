package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hotel-engine/hotel"
	"github.com/warp/hotel-engine/hotel/store"
)

func TestMemory_IDsAreMonotonic(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	first, err := m.Floors().Insert(ctx, hotel.FloorRow{Name: "Ground"})
	require.NoError(t, err)
	second, err := m.Floors().Insert(ctx, hotel.FloorRow{Name: "First", Level: 1})
	require.NoError(t, err)
	require.NoError(t, m.Floors().DeleteByID(ctx, second))
	third, err := m.Floors().Insert(ctx, hotel.FloorRow{Name: "First", Level: 1})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, []int64{first, second, third})
}

func TestMemory_MirrorsSchemaConstraints(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	floor, err := m.Floors().Insert(ctx, hotel.FloorRow{Name: "Ground"})
	require.NoError(t, err)

	_, err = m.Floors().Insert(ctx, hotel.FloorRow{Name: "Ground", Level: 2})
	assert.ErrorIs(t, err, hotel.ErrIntegrity, "floor names are unique")

	_, err = m.Elements().Insert(ctx, hotel.ElementRow{ElementType: "hallway", FloorID: 99})
	assert.ErrorIs(t, err, hotel.ErrIntegrity, "elements reference a floor")

	_, err = m.Elements().Insert(ctx, hotel.ElementRow{ElementType: "hallway", FloorID: floor})
	require.NoError(t, err)
	assert.ErrorIs(t, m.Floors().DeleteByID(ctx, floor), hotel.ErrIntegrity, "floor still has elements")

	assert.ErrorIs(t, m.Reservations().UpdateByID(ctx, 5, hotel.ReservationRow{}), hotel.ErrNotFound)
}

func TestMemory_FailNextWrite(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	boom := errors.New("disk on fire")

	m.FailNextWrite(boom)
	_, err := m.Floors().Insert(ctx, hotel.FloorRow{Name: "Ground"})
	assert.ErrorIs(t, err, boom)

	rows, err := m.Floors().SelectAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Only the next write fails.
	_, err = m.Floors().Insert(ctx, hotel.FloorRow{Name: "Ground"})
	assert.NoError(t, err)
}

package hotel_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hotel-engine/hotel"
	"github.com/warp/hotel-engine/hotel/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// fixedDraws returns an Intn that replays values, then repeats the last one.
func fixedDraws(values ...int) func(int) int {
	i := 0
	return func(int) int {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}

func newTestReservations(t *testing.T) (*hotel.ReservationService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	repo := hotel.NewReservationRepository(mem, quietLog())
	require.NoError(t, repo.Load(context.Background()))
	svc := hotel.NewReservationService(repo)
	svc.Intn = fixedDraws(0)
	return svc, mem
}

func book(t *testing.T, svc *hotel.ReservationService, room hotel.ElementID, guest string, n int, ci, co string) string {
	t.Helper()
	id, err := svc.MakeReservation(context.Background(), room, guest, n, ci, co)
	require.NoError(t, err)
	return id
}

// =============================================================================
// RESERVATION ID
// =============================================================================

func TestGenerateReservationID_Format(t *testing.T) {
	// GIVEN: Room 7, June 1 -> June 5 2024, random draw 423
	// WHEN: Generating the id
	// THEN: R + 007 + 24 + 06 + 01 + 05 + 423

	svc, _ := newTestReservations(t)
	var bound int
	svc.Intn = func(n int) int { bound = n; return 423 }

	id := svc.GenerateReservationID(7, stay("2024-06-01", "2024-06-05"))

	assert.Equal(t, "R00724060105423", id)
	assert.True(t, strings.HasPrefix(id, "R00724060105"))
	assert.Len(t, id, 15)
	assert.Equal(t, 1000, bound)

	svc.Intn = fixedDraws(5)
	assert.Equal(t, "R12324123101005", svc.GenerateReservationID(123, stay("2024-12-31", "2025-01-01")))
}

func TestMakeReservation_RetriesOnCollision(t *testing.T) {
	svc, _ := newTestReservations(t)
	svc.Intn = fixedDraws(1, 1, 2)

	first := book(t, svc, 7, "Alice", 1, "2024-06-01", "2024-06-05")
	second := book(t, svc, 7, "Bob", 1, "2024-06-01", "2024-06-05")

	assert.Equal(t, "R00724060105001", first)
	assert.Equal(t, "R00724060105002", second)
	assert.Len(t, svc.Reservations(), 2)
}

func TestMakeReservation_ReportsEveryProblem(t *testing.T) {
	svc, _ := newTestReservations(t)

	_, err := svc.MakeReservation(context.Background(), 1, "  ", 0, "2024-13-01", "2024-06-05")

	var verr *hotel.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 3)
	assert.ErrorIs(t, err, hotel.ErrValidation)

	_, err = svc.MakeReservation(context.Background(), 1, "Alice", 1, "2024-06-05", "2024-06-01")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"check-in date must not be after check-out date"}, verr.Problems)
	assert.Empty(t, svc.Reservations())
}

// =============================================================================
// UPDATE AND DELETE
// =============================================================================

func TestUpdateReservation_RekeysIndexes(t *testing.T) {
	// GIVEN: Alice booked in room 1
	// WHEN: The booking moves to room 2 under the name Alicia
	// THEN: Room and guest lookups follow the change

	svc, _ := newTestReservations(t)
	ctx := context.Background()
	id := book(t, svc, 1, "Alice", 2, "2024-06-01", "2024-06-05")

	require.NoError(t, svc.UpdateReservation(ctx, id, 2, "Alicia", 1, "2024-06-02", "2024-06-06"))

	assert.Empty(t, svc.ForRoom(1))
	require.Len(t, svc.ForRoom(2), 1)
	assert.Empty(t, svc.DirectSearch("Alice"))
	found := svc.DirectSearch("Alicia")
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0].ReservationID, "the id survives an edit")
	assert.Equal(t, 4, found[0].Stay.Nights())

	err := svc.UpdateReservation(ctx, "R-missing", 2, "X", 1, "2024-06-02", "2024-06-06")
	assert.ErrorIs(t, err, hotel.ErrReservationNotFound)
}

func TestDeleteReservation(t *testing.T) {
	svc, _ := newTestReservations(t)
	ctx := context.Background()
	id := book(t, svc, 1, "Alice", 2, "2024-06-01", "2024-06-05")

	require.NoError(t, svc.DeleteReservation(ctx, id))
	_, err := svc.Reservation(id)
	assert.ErrorIs(t, err, hotel.ErrReservationNotFound)
	assert.ErrorIs(t, svc.DeleteReservation(ctx, id), hotel.ErrReservationNotFound)
}

func TestRestoreReservation_KeepsIDAndRejectsDuplicates(t *testing.T) {
	svc, _ := newTestReservations(t)
	ctx := context.Background()
	id := book(t, svc, 1, "Alice", 2, "2024-06-01", "2024-06-05")
	snapshot, err := svc.Reservation(id)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RestoreReservation(ctx, snapshot), hotel.ErrReservationAlreadyExists)

	require.NoError(t, svc.DeleteReservation(ctx, id))
	require.NoError(t, svc.RestoreReservation(ctx, snapshot))
	restored, err := svc.Reservation(id)
	require.NoError(t, err)
	assert.Equal(t, snapshot, restored)
}

// =============================================================================
// SEARCH
// =============================================================================

func seedSearch(t *testing.T, svc *hotel.ReservationService) {
	t.Helper()
	svc.Intn = fixedDraws(11, 22, 33)
	book(t, svc, 1, "Alice Martin", 1, "2024-06-01", "2024-06-05")
	book(t, svc, 2, "Bob Stone", 2, "2024-06-10", "2024-06-12")
	book(t, svc, 3, "alice cooper", 1, "2024-07-01", "2024-07-03")
}

func guests(rs []hotel.Reservation) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.GuestName
	}
	return out
}

func TestSearch_GuestNameIsCaseInsensitive(t *testing.T) {
	svc, _ := newTestReservations(t)
	seedSearch(t, svc)

	assert.Equal(t, []string{"Alice Martin", "alice cooper"}, guests(svc.Search("alice", nil, nil)))
	assert.Equal(t, []string{"Alice Martin", "alice cooper"}, guests(svc.Search("ALICE", nil, nil)))
	assert.Len(t, svc.Search("", nil, nil), 3)
}

func TestSearch_ReservationIDIsCaseSensitive(t *testing.T) {
	svc, _ := newTestReservations(t)
	seedSearch(t, svc)

	assert.Equal(t, []string{"Alice Martin"}, guests(svc.Search("R001", nil, nil)))
	assert.Empty(t, svc.Search("r001", nil, nil))
}

func TestSearch_DateWindow(t *testing.T) {
	// GIVEN: Stays in early June, mid June and July
	// WHEN: Filtering to [June 11, June 30]
	// THEN: Only the mid-June stay passes (co >= from, ci <= to)

	svc, _ := newTestReservations(t)
	seedSearch(t, svc)
	from := hotel.MustParseDate("2024-06-11")
	to := hotel.MustParseDate("2024-06-30")

	assert.Equal(t, []string{"Bob Stone"}, guests(svc.Search("", &from, &to)))
	assert.Equal(t, []string{"Bob Stone", "alice cooper"}, guests(svc.Search("", &from, nil)))
}

func TestDirectSearch(t *testing.T) {
	svc, _ := newTestReservations(t)
	seedSearch(t, svc)
	bob := svc.DirectSearch("Bob Stone")
	require.Len(t, bob, 1)

	byID := svc.DirectSearch(bob[0].ReservationID)
	require.Len(t, byID, 1)
	assert.Equal(t, "Bob Stone", byID[0].GuestName)

	assert.Empty(t, svc.DirectSearch("bob stone"), "guest name match is exact")
	assert.Empty(t, svc.DirectSearch("Bob"))
}

func TestReservationRepository_Load(t *testing.T) {
	svc, mem := newTestReservations(t)
	seedSearch(t, svc)

	repo := hotel.NewReservationRepository(mem, quietLog())
	require.NoError(t, repo.Load(context.Background()))

	assert.Equal(t, svc.Reservations(), repo.All())
	assert.Len(t, repo.ForGuest("Bob Stone"), 1)
	assert.Equal(t, 3, repo.Len())
}

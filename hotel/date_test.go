package hotel_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hotel-engine/hotel"
)

func stay(ci, co string) hotel.Stay {
	return hotel.Stay{CheckIn: hotel.MustParseDate(ci), CheckOut: hotel.MustParseDate(co)}
}

func TestParseDate(t *testing.T) {
	d, err := hotel.ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, hotel.NewDate(2024, time.June, 1), d)
	assert.Equal(t, "2024-06-01", d.String())

	_, err = hotel.ParseDate("01/06/2024")
	assert.Error(t, err)
	_, err = hotel.ParseDate("2024-02-30")
	assert.Error(t, err)
}

func TestDate_JSONRoundTrip(t *testing.T) {
	type wrapper struct {
		D hotel.Date `json:"d"`
	}
	b, err := json.Marshal(wrapper{D: hotel.NewDate(2024, time.June, 5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-06-05"}`, string(b))

	var back wrapper
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.D.Equal(hotel.NewDate(2024, time.June, 5)))
}

func TestStay_Overlaps_TouchingEndpointsConflict(t *testing.T) {
	// GIVEN: A stay June 1 -> June 5
	// WHEN: Comparing against stays before, inside, touching and after
	// THEN: Sharing only an endpoint still conflicts

	booked := stay("2024-06-01", "2024-06-05")

	tests := []struct {
		name  string
		other hotel.Stay
		want  bool
	}{
		{"inside", stay("2024-06-02", "2024-06-03"), true},
		{"straddles check-out", stay("2024-06-04", "2024-06-08"), true},
		{"starts on check-out day", stay("2024-06-05", "2024-06-09"), true},
		{"ends on check-in day", stay("2024-05-28", "2024-06-01"), true},
		{"strictly after", stay("2024-06-06", "2024-06-09"), false},
		{"strictly before", stay("2024-05-20", "2024-05-31"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, booked.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(booked), "overlap is symmetric")
		})
	}
}

func TestStay_Occupies_CheckOutDayIsVacant(t *testing.T) {
	s := stay("2024-06-01", "2024-06-05")

	assert.False(t, s.Occupies(hotel.MustParseDate("2024-05-31")))
	assert.True(t, s.Occupies(hotel.MustParseDate("2024-06-01")))
	assert.True(t, s.Occupies(hotel.MustParseDate("2024-06-04")))
	assert.False(t, s.Occupies(hotel.MustParseDate("2024-06-05")))
}

func TestStay_Nights(t *testing.T) {
	assert.Equal(t, 4, stay("2024-06-01", "2024-06-05").Nights())
	assert.Equal(t, 0, stay("2024-06-01", "2024-06-01").Nights())
	assert.Equal(t, 0, stay("2024-06-05", "2024-06-01").Nights(), "never negative")
	assert.Equal(t, 2, stay("2024-02-28", "2024-03-01").Nights(), "leap day counts")
}

func TestStay_Within(t *testing.T) {
	s := stay("2024-06-10", "2024-06-12")
	from := hotel.MustParseDate("2024-06-12")
	to := hotel.MustParseDate("2024-06-10")
	late := hotel.MustParseDate("2024-06-13")
	early := hotel.MustParseDate("2024-06-09")

	assert.True(t, s.Within(nil, nil))
	assert.True(t, s.Within(&from, nil), "co >= from")
	assert.True(t, s.Within(nil, &to), "ci <= to")
	assert.False(t, s.Within(&late, nil))
	assert.False(t, s.Within(nil, &early))
}

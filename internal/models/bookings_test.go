package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBooking_ShowStartsAt(t *testing.T) {
	date := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	tests := map[string]time.Time{
		"19:30":    time.Date(2025, 3, 2, 19, 30, 0, 0, time.UTC),
		"7:30 PM":  time.Date(2025, 3, 2, 19, 30, 0, 0, time.UTC),
		"07:05 AM": time.Date(2025, 3, 2, 7, 5, 0, 0, time.UTC),
		"tbd":      date,
		"":         date,
	}
	for showTime, want := range tests {
		b := &Booking{ShowDate: date, ShowTime: showTime}
		assert.True(t, want.Equal(b.ShowStartsAt(nil)), "show time %q", showTime)
	}
}

func TestBooking_ShowStartsAtVenueZone(t *testing.T) {
	venue := time.FixedZone("UTC+2", 2*60*60)
	b := &Booking{ShowDate: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), ShowTime: "19:30"}

	got := b.ShowStartsAt(venue)
	assert.True(t, time.Date(2025, 3, 2, 17, 30, 0, 0, time.UTC).Equal(got), "got %s", got.UTC())
	assert.Equal(t, 19, got.Hour())
}

func TestBooking_IsOwner(t *testing.T) {
	b := &Booking{UserID: "user-1", Status: BookingConfirmed}
	assert.True(t, b.IsOwner("user-1"))
	assert.False(t, b.IsOwner("user-2"))
	assert.False(t, (&Booking{}).IsOwner(""))
	assert.True(t, b.IsConfirmed())
}

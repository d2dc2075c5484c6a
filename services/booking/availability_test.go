package booking_test

import (
	"math/rand"
	"testing"
	"time"

	"meserte/services/booking"

	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestOverlapsHalfOpen(t *testing.T) {
	tests := []struct {
		name         string
		aStart, aEnd int
		bStart, bEnd int
		want         bool
	}{
		{"identical", 0, 2, 0, 2, true},
		{"contained", 0, 10, 3, 4, true},
		{"partial front", 0, 3, 2, 5, true},
		{"partial back", 2, 5, 0, 3, true},
		{"touching at checkout", 0, 2, 2, 4, false},
		{"touching at checkin", 2, 4, 0, 2, false},
		{"disjoint", 0, 2, 5, 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := booking.Overlaps(day(tt.aStart), day(tt.aEnd), day(tt.bStart), day(tt.bEnd))
			require.Equal(t, tt.want, got)
		})
	}
}

// Random interval pairs must be flagged exactly when a < d && c < b.
func TestOverlapsProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		a := rng.Intn(30)
		b := a + 1 + rng.Intn(14)
		c := rng.Intn(30)
		d := c + 1 + rng.Intn(14)

		want := a < d && c < b
		got := booking.Overlaps(day(a), day(b), day(c), day(d))
		if got != want {
			t.Fatalf("intervals [%d,%d) and [%d,%d): got %v, want %v", a, b, c, d, got, want)
		}
	}
}

func TestHasConflictRejectsBadDates(t *testing.T) {
	svc := &booking.DefaultLifecycleService{Bookings: newBookingStore(), Rooms: newRoomStore()}

	_, err := svc.HasConflict("room-1", "2026-06-03", "2026-06-03", "")
	require.ErrorIs(t, err, booking.ErrInvalidDateRange)

	_, err = svc.HasConflict("room-1", "2026-06-05", "2026-06-03", "")
	require.ErrorIs(t, err, booking.ErrInvalidDateRange)

	_, err = svc.HasConflict("room-1", "not-a-date", "2026-06-03", "")
	require.ErrorIs(t, err, booking.ErrInvalidDateRange)
}

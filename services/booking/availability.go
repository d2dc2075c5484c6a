package booking

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect: aStart < bEnd && bStart < aEnd. A stay checking
// out on the day another checks in does not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// HasConflict reports whether an active (pending or confirmed) booking on the
// room overlaps [checkIn, checkOut). excludeBookingID is left out of the scan
// so a booking's own dates can be updated without colliding with itself.
func (s *DefaultLifecycleService) HasConflict(roomID string, checkIn, checkOut string, excludeBookingID string) (bool, error) {
	in, out, err := parseStay(checkIn, checkOut)
	if err != nil {
		return false, err
	}

	candidates, err := s.Bookings.FindOverlapping(roomID, in, out, excludeBookingID)
	if err != nil {
		return false, fmt.Errorf("failed to scan for conflicts on room %s: %w", roomID, err)
	}
	for _, c := range candidates {
		if c.Active() && Overlaps(c.CheckIn, c.CheckOut, in, out) {
			return true, nil
		}
	}
	return false, nil
}

// parseStay validates and parses a check-in/check-out date pair. Zero-night
// stays are rejected here, before any conflict scan runs.
func parseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := time.Parse(dateLayout, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	out, err := time.Parse(dateLayout, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	if !out.After(in) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return in, out, nil
}

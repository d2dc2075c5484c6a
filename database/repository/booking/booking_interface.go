package bookingRepo

import (
	"time"

	"meserte/models"
)

// BookingRepository defines methods for booking data access.
type BookingRepository interface {
	// GetByID retrieves a booking by its unique ID.
	GetByID(id string) (*models.Booking, error)
	// GetByPaymentRef retrieves a booking by its external payment reference.
	GetByPaymentRef(ref string) (*models.Booking, error)
	// GetByGuest retrieves all bookings for a guest.
	GetByGuest(guestID string) ([]models.Booking, error)
	// Create inserts a new booking record.
	Create(booking *models.Booking) error
	// Update modifies an existing booking record.
	Update(booking *models.Booking) error
	// ClaimPaymentRef atomically records the payment reference on a booking
	// that does not carry one yet. ErrPaymentRefClaimed is returned when
	// another attempt already holds the slot.
	ClaimPaymentRef(id, ref string) error
	// FindOverlapping returns active (pending or confirmed) bookings on the
	// room whose [check_in, check_out) interval intersects [checkIn, checkOut).
	// excludeID, when non-empty, is left out of the scan.
	FindOverlapping(roomID string, checkIn, checkOut time.Time, excludeID string) ([]models.Booking, error)
	// FindOverdue returns confirmed bookings whose check-out date has passed.
	FindOverdue(now time.Time) ([]models.Booking, error)
	// FindStalePending returns pending bookings created before the cutoff that
	// never received a terminal payment outcome.
	FindStalePending(cutoff time.Time) ([]models.Booking, error)
}

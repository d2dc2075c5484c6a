package booking

import (
	bookingRepo "meserte/database/repository/booking"
	roomRepo "meserte/database/repository/room"
	"meserte/models"
	"meserte/services/events"
)

// CreateRequest carries the inbound booking creation call. Dates are calendar
// days; CheckOut is exclusive.
type CreateRequest struct {
	RoomID      string `json:"roomId"`
	CheckIn     string `json:"checkIn"`  // "2006-01-02"
	CheckOut    string `json:"checkOut"` // "2006-01-02"
	GuestCount  int    `json:"guestCount"`
	RequesterID string `json:"requesterId"`
}

// CancelResult reports a cancellation. RefundWarning is non-empty when the
// refund call failed and was left for manual reconciliation; the cancellation
// itself still went through.
type CancelResult struct {
	Booking       *models.Booking `json:"booking"`
	RefundAmount  float64         `json:"refund_amount,omitempty"`
	RefundWarning string          `json:"refund_warning,omitempty"`
}

// RefundRequester is the slice of the payment reconciler the lifecycle needs
// for cancellations. Declared here so this package stays free of a payment
// dependency.
type RefundRequester interface {
	Refund(booking *models.Booking, amount float64) error
}

// InvoiceChecker reports whether a booking's bill has been settled. Implemented
// by the billing service.
type InvoiceChecker interface {
	IsSettled(bookingID string) (bool, error)
}

// PaymentProber asks the gateway for the current outcome of a reference
// without applying side effects. Used by the reconciliation sweep before
// expiring a stale hold.
type PaymentProber interface {
	Probe(reference string) (models.PaymentOutcome, error)
}

// LifecycleService owns the reservation state machine.
type LifecycleService interface {
	Create(req CreateRequest) (*models.Booking, error)
	GetByID(id string) (*models.Booking, error)
	// ListForGuest returns all bookings a guest has made, any status.
	ListForGuest(guestID string) ([]models.Booking, error)
	// Confirm is idempotent: confirming an already-confirmed booking is a
	// no-op so duplicate webhook delivery is harmless.
	Confirm(bookingID string) (*models.Booking, error)
	// MarkPaymentFailed records a terminal gateway failure and releases the
	// held room; failed payments must not hold inventory.
	MarkPaymentFailed(bookingID string) (*models.Booking, error)
	Cancel(bookingID, requesterID string) (*CancelResult, error)
	// CompleteStay checks the guest out once the invoice is settled.
	CompleteStay(bookingID string) (*models.Booking, error)
	// HasConflict reports whether an active booking overlaps the interval.
	HasConflict(roomID string, checkIn, checkOut string, excludeBookingID string) (bool, error)
	// ReconcileExpired is the background safety net: it force-completes
	// overdue stays and expires stale unpaid holds.
	ReconcileExpired() (completed, expired int, err error)
}

// DefaultLifecycleService implements LifecycleService.
type DefaultLifecycleService struct {
	Rooms    roomRepo.RoomRepository
	Bookings bookingRepo.BookingRepository
	Refunder RefundRequester
	Invoices InvoiceChecker
	Prober   PaymentProber
	Events   events.Publisher

	// RefundFeePercent is the non-refundable service fee withheld on
	// cancellation of a paid booking. Policy, not caller-negotiable.
	RefundFeePercent float64
	// PendingHoldWindowMin bounds how long an unpaid pending booking may hold
	// a room before the sweep expires it.
	PendingHoldWindowMin int

	locks roomLocks
}

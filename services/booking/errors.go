package booking

import "fmt"

// LifecycleError is a typed booking failure. Code distinguishes validation and
// conflict classes so handlers can map them to the right HTTP status.
type LifecycleError struct {
	Code    string
	Message string
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	// ErrRoomNotFound is returned when the referenced room does not exist.
	ErrRoomNotFound = &LifecycleError{Code: "roomNotFound", Message: "room not found"}
	// ErrRoomUnavailable is returned when the room is occupied or under maintenance.
	ErrRoomUnavailable = &LifecycleError{Code: "roomUnavailable", Message: "room is not available"}
	// ErrInvalidDateRange covers past check-ins and zero/negative-night stays.
	ErrInvalidDateRange = &LifecycleError{Code: "invalidDateRange", Message: "check-out must be after check-in and check-in must not be in the past"}
	// ErrOverlapConflict is returned when an active booking already covers part
	// of the requested interval.
	ErrOverlapConflict = &LifecycleError{Code: "overlapConflict", Message: "room is already booked for part of the requested dates"}
	// ErrBookingNotFound is returned when the booking id resolves to nothing.
	ErrBookingNotFound = &LifecycleError{Code: "bookingNotFound", Message: "booking not found"}
	// ErrInvalidTransition marks an invariant violation, e.g. confirming a
	// cancelled booking. These are logic errors and are never swallowed.
	ErrInvalidTransition = &LifecycleError{Code: "invalidTransition", Message: "booking state does not permit this transition"}
	// ErrInvoiceUnsettled blocks checkout while the stay's bill is still open.
	ErrInvoiceUnsettled = &LifecycleError{Code: "invoiceUnsettled", Message: "invoice must be settled before checkout"}
)

package billing

import "fmt"

// BillingError is a typed billing failure.
type BillingError struct {
	Code    string
	Message string
}

func (e *BillingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	// ErrBookingNotFound is returned when billing is queried for an unknown booking.
	ErrBookingNotFound = &BillingError{Code: "bookingNotFound", Message: "booking not found"}
	// ErrBookingNotConfirmed blocks billing access before payment clears.
	ErrBookingNotConfirmed = &BillingError{Code: "bookingNotConfirmed", Message: "invoice is only available for confirmed bookings"}
	// ErrInvoiceNotFound is returned for an unknown invoice id.
	ErrInvoiceNotFound = &BillingError{Code: "invoiceNotFound", Message: "invoice not found"}
	// ErrInvoiceClosed rejects mutations on a paid or void invoice.
	ErrInvoiceClosed = &BillingError{Code: "invoiceClosed", Message: "invoice is closed to further changes"}
	// ErrAlreadySettled marks a double settlement. Unlike payment
	// verification, settle is NOT idempotent: settling twice is a real error.
	ErrAlreadySettled = &BillingError{Code: "alreadySettled", Message: "invoice has already been settled"}
	// ErrInvalidCharge rejects malformed ad-hoc charges.
	ErrInvalidCharge = &BillingError{Code: "invalidCharge", Message: "charge needs a description, a positive quantity and a non-negative unit price"}
)

package invoiceRepo

import "meserte/models"

// InvoiceRepository defines methods for invoice data access.
type InvoiceRepository interface {
	// GetByID retrieves an invoice by its unique ID.
	GetByID(id string) (*models.Invoice, error)
	// GetByBookingID retrieves the invoice tied to a booking, or nil if none
	// has been materialized yet.
	GetByBookingID(bookingID string) (*models.Invoice, error)
	// Create inserts a new invoice record. The unique index on booking_id
	// rejects a second invoice for the same booking.
	Create(invoice *models.Invoice) error
	// Update modifies an existing invoice record.
	Update(invoice *models.Invoice) error
}

package models

import "time"

// Invoice statuses.
const (
	InvoiceOpen = "open"
	InvoicePaid = "paid"
	InvoiceVoid = "void"
)

// LineItem is a single billed line on an invoice. Total is always derived from
// quantity and unit price, never set by hand.
type LineItem struct {
	Description string  `bson:"description" json:"description"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unit_price" json:"unit_price"`
	Total       float64 `bson:"total" json:"total"`
}

// Invoice is the running bill for a stay. Exactly one invoice exists per
// confirmed booking, enforced by a unique index on BookingID; it is created
// lazily on first billing access.
type Invoice struct {
	ID         string     `bson:"id" json:"id"`
	BookingID  string     `bson:"booking_id" json:"booking_id"`
	RoomNumber string     `bson:"room_number" json:"room_number"`
	Items      []LineItem `bson:"items" json:"items"`
	Subtotal   float64    `bson:"subtotal" json:"subtotal"`
	Tax        float64    `bson:"tax" json:"tax"`
	Total      float64    `bson:"total" json:"total"`
	Status     string     `bson:"status" json:"status"`
	Method     string     `bson:"method,omitempty" json:"method,omitempty"`
	PaidAt     *time.Time `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updated_at"`
}

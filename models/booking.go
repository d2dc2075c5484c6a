package models

import "time"

// Booking reservation statuses.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Booking payment statuses.
const (
	PaymentPending       = "pending"
	PaymentCompleted     = "completed"
	PaymentFailed        = "failed"
	PaymentRefunded      = "refunded"
	PaymentRefundPending = "refund-pending"
)

// Booking represents a room reservation record. CheckIn is inclusive, CheckOut
// exclusive; RoomNumber is denormalized so billing can match food orders by
// room. PaymentRef is the external gateway transaction reference, set once
// when a payment attempt is opened.
type Booking struct {
	ID            string    `bson:"id" json:"id"`
	GuestID       string    `bson:"guest_id" json:"guest_id"`
	RoomID        string    `bson:"room_id" json:"room_id"`
	RoomNumber    string    `bson:"room_number" json:"room_number"`
	CheckIn       time.Time `bson:"check_in" json:"check_in"`
	CheckOut      time.Time `bson:"check_out" json:"check_out"`
	GuestCount    int       `bson:"guest_count" json:"guest_count"`
	TotalPrice    float64   `bson:"total_price" json:"total_price"`
	Status        string    `bson:"status" json:"status"`
	PaymentStatus string    `bson:"payment_status" json:"payment_status"`
	PaymentRef    string    `bson:"payment_ref,omitempty" json:"payment_ref,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// Nights returns the length of the stay in nights. Check-out is exclusive, so a
// one-night stay spans exactly one calendar day.
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// Active reports whether the booking still blocks its room's calendar.
func (b *Booking) Active() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

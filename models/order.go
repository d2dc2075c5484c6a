package models

import "time"

// Food order payment statuses. Orders are created by the food-ordering
// collaborator; this core only reads pending charges and settles them.
const (
	OrderPaymentPending   = "pending"
	OrderPaymentCompleted = "completed"
)

// FoodOrder is a room-service order charged to a stay.
type FoodOrder struct {
	ID            string    `bson:"id" json:"id"`
	RoomNumber    string    `bson:"room_number" json:"room_number"`
	GuestID       string    `bson:"guest_id" json:"guest_id"`
	Description   string    `bson:"description" json:"description"`
	Quantity      int       `bson:"quantity" json:"quantity"`
	UnitPrice     float64   `bson:"unit_price" json:"unit_price"`
	PaymentStatus string    `bson:"payment_status" json:"payment_status"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

package models

import "time"

// Room occupancy states.
const (
	OccupancyVacant   = "vacant"
	OccupancyOccupied = "occupied"
)

// Room cleanliness states.
const (
	CleanlinessClean       = "clean"
	CleanlinessDirty       = "dirty"
	CleanlinessMaintenance = "under-maintenance"
)

// Room represents a physical hotel room. Occupancy is mutated only through the
// room repository; cleanliness is owned by the housekeeping workflow.
type Room struct {
	ID          string    `bson:"id" json:"id"`
	Number      string    `bson:"number" json:"number"` // Unique room number, e.g. "101"
	Category    string    `bson:"category" json:"category"`
	NightlyRate float64   `bson:"nightly_rate" json:"nightly_rate"`
	Amenities   []string  `bson:"amenities,omitempty" json:"amenities,omitempty"`
	Occupancy   string    `bson:"occupancy" json:"occupancy"`
	Cleanliness string    `bson:"cleanliness" json:"cleanliness"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Bookable reports whether the room can accept a new reservation right now.
// A room under maintenance is never offered, regardless of occupancy.
func (r *Room) Bookable() bool {
	return r.Occupancy == OccupancyVacant && r.Cleanliness != CleanlinessMaintenance
}

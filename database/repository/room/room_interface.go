package roomRepo

import "meserte/models"

// RoomRepository is the single point of truth for room occupancy and
// cleanliness. Every mutation path in the system funnels through it.
type RoomRepository interface {
	// GetByID retrieves a room by its unique ID.
	GetByID(id string) (*models.Room, error)
	// GetByNumber retrieves a room by its room number.
	GetByNumber(number string) (*models.Room, error)
	// GetAll retrieves all rooms.
	GetAll() ([]models.Room, error)
	// Create inserts a new room record.
	Create(room *models.Room) error
	// Update modifies an existing room record.
	Update(room *models.Room) error
	// Reserve flips a vacant, non-maintenance room to occupied. It fails if
	// the room is already occupied or under maintenance, making the flip safe
	// against concurrent reservations on the same room.
	Reserve(id string) error
	// Release flips a room back to vacant.
	Release(id string) error
	// MarkDirty sets cleanliness to dirty (housekeeping signal at checkout).
	MarkDirty(id string) error
	// MarkClean sets cleanliness to clean.
	MarkClean(id string) error
	// SetMaintenance toggles the under-maintenance state.
	SetMaintenance(id string, underMaintenance bool) error
}

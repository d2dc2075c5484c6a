// File: database/repository/room/roomMongoCrud.go
package roomRepo

import (
	"errors"
	"fmt"
	"time"

	"meserte/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrRoomTaken is returned by Reserve when the conditional occupancy flip
// matched no document: the room is occupied, under maintenance, or missing.
var ErrRoomTaken = errors.New("room is not available for reservation")

// GetByID retrieves a room by its unique ID.
func (r *MongoRoomRepo) GetByID(id string) (*models.Room, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var room models.Room
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&room); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch room with id %s: %w", id, err)
	}
	return &room, nil
}

// GetByNumber retrieves a room by its room number.
func (r *MongoRoomRepo) GetByNumber(number string) (*models.Room, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var room models.Room
	if err := r.coll.FindOne(ctx, bson.M{"number": number}).Decode(&room); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch room %s: %w", number, err)
	}
	return &room, nil
}

// GetAll retrieves all rooms.
func (r *MongoRoomRepo) GetAll() ([]models.Room, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []models.Room
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	return rooms, nil
}

// Create inserts a new room document.
func (r *MongoRoomRepo) Create(room *models.Room) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now
	if room.Occupancy == "" {
		room.Occupancy = models.OccupancyVacant
	}
	if room.Cleanliness == "" {
		room.Cleanliness = models.CleanlinessClean
	}

	_, err := r.coll.InsertOne(ctx, room)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// Update modifies an existing room document.
func (r *MongoRoomRepo) Update(room *models.Room) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	room.UpdatedAt = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": room.ID}, bson.M{"$set": room})
	if err != nil {
		return fmt.Errorf("failed to update room with id %s: %w", room.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("room with id %s not found", room.ID)
	}
	return nil
}

// Reserve conditionally flips a vacant room to occupied. The filter doubles as
// a compare-and-swap: when a concurrent request already took the room, the
// update matches nothing and ErrRoomTaken is returned.
func (r *MongoRoomRepo) Reserve(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"id":          id,
		"occupancy":   models.OccupancyVacant,
		"cleanliness": bson.M{"$ne": models.CleanlinessMaintenance},
	}
	update := bson.M{"$set": bson.M{
		"occupancy":  models.OccupancyOccupied,
		"updated_at": time.Now(),
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve room %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrRoomTaken
	}
	return nil
}

// Release flips a room back to vacant.
func (r *MongoRoomRepo) Release(id string) error {
	return r.setField(id, bson.M{"occupancy": models.OccupancyVacant})
}

// MarkDirty sets cleanliness to dirty so housekeeping picks the room up.
func (r *MongoRoomRepo) MarkDirty(id string) error {
	return r.setField(id, bson.M{"cleanliness": models.CleanlinessDirty})
}

// MarkClean sets cleanliness to clean.
func (r *MongoRoomRepo) MarkClean(id string) error {
	return r.setField(id, bson.M{"cleanliness": models.CleanlinessClean})
}

// SetMaintenance toggles the under-maintenance state.
func (r *MongoRoomRepo) SetMaintenance(id string, underMaintenance bool) error {
	cleanliness := models.CleanlinessClean
	if underMaintenance {
		cleanliness = models.CleanlinessMaintenance
	}
	return r.setField(id, bson.M{"cleanliness": cleanliness})
}

func (r *MongoRoomRepo) setField(id string, fields bson.M) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	fields["updated_at"] = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update room %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("room with id %s not found", id)
	}
	return nil
}

// File: database/repository/booking/bookingMongoQueries.go
package bookingRepo

import (
	"fmt"
	"time"

	"meserte/models"

	"go.mongodb.org/mongo-driver/bson"
)

// FindOverlapping returns active bookings on the room whose stay interval
// intersects [checkIn, checkOut). Intervals are half-open, so two stays
// touching at a single date do not conflict: [a,b) and [c,d) overlap iff
// a < d && c < b. Completed and cancelled bookings never block.
func (r *MongoBookingRepo) FindOverlapping(roomID string, checkIn, checkOut time.Time, excludeID string) ([]models.Booking, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"room_id":   roomID,
		"status":    bson.M{"$in": []string{models.BookingPending, models.BookingConfirmed}},
		"check_in":  bson.M{"$lt": checkOut},
		"check_out": bson.M{"$gt": checkIn},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping bookings for room %s: %w", roomID, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping bookings: %w", err)
	}
	return bookings, nil
}

// FindOverdue returns confirmed bookings whose check-out date has passed.
// The reconciliation sweep force-completes these when the room is still
// marked occupied.
func (r *MongoBookingRepo) FindOverdue(now time.Time) ([]models.Booking, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{
		"status":    models.BookingConfirmed,
		"check_out": bson.M{"$lte": now},
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode overdue bookings: %w", err)
	}
	return bookings, nil
}

// FindStalePending returns pending bookings created before the cutoff whose
// payment never reached a terminal outcome.
func (r *MongoBookingRepo) FindStalePending(cutoff time.Time) ([]models.Booking, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{
		"status":         models.BookingPending,
		"payment_status": models.PaymentPending,
		"created_at":     bson.M{"$lt": cutoff},
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale pending bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode stale pending bookings: %w", err)
	}
	return bookings, nil
}

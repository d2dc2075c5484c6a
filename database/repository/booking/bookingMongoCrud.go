// File: database/repository/booking/bookingMongoCrud.go
package bookingRepo

import (
	"errors"
	"fmt"
	"time"

	"meserte/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrPaymentRefClaimed is returned by ClaimPaymentRef when the booking already
// carries a payment reference: another initiation won the slot.
var ErrPaymentRefClaimed = errors.New("booking already has an active payment reference")

// GetByID retrieves a booking by its unique ID.
func (r *MongoBookingRepo) GetByID(id string) (*models.Booking, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &booking, nil
}

// GetByPaymentRef retrieves a booking by its external payment reference.
func (r *MongoBookingRepo) GetByPaymentRef(ref string) (*models.Booking, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"payment_ref": ref}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch booking with payment ref %s: %w", ref, err)
	}
	return &booking, nil
}

// GetByGuest retrieves all bookings for a guest, newest first.
func (r *MongoBookingRepo) GetByGuest(guestID string) ([]models.Booking, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"guest_id": guestID})
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for guest %s: %w", guestID, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// Create inserts a new booking document.
func (r *MongoBookingRepo) Create(booking *models.Booking) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// ClaimPaymentRef conditionally writes the reference. The filter doubles as a
// compare-and-swap on the absent payment_ref field, so two concurrent
// initiations cannot both claim the booking.
func (r *MongoBookingRepo) ClaimPaymentRef(id, ref string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"id":          id,
		"payment_ref": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"payment_ref": ref,
		"updated_at":  time.Now(),
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to claim payment reference for booking %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrPaymentRefClaimed
	}
	return nil
}

// Update modifies an existing booking document.
func (r *MongoBookingRepo) Update(booking *models.Booking) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	booking.UpdatedAt = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": booking.ID}, bson.M{"$set": booking})
	if err != nil {
		return fmt.Errorf("failed to update booking with id %s: %w", booking.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("booking with id %s not found", booking.ID)
	}
	return nil
}

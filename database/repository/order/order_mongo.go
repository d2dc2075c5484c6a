package orderRepo

import (
	"context"
	"fmt"
	"time"

	"meserte/database"
	"meserte/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoOrderRepo implements OrderRepository using MongoDB.
type MongoOrderRepo struct {
	coll *mongo.Collection
}

// NewMongoOrderRepo creates a new instance of OrderRepository using MongoDB.
func NewMongoOrderRepo() OrderRepository {
	coll := database.DB().Collection("orders")
	return &MongoOrderRepo{coll: coll}
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// FindPendingChargesForRoom returns the room's payment-pending food orders.
func (r *MongoOrderRepo) FindPendingChargesForRoom(roomNumber string) ([]models.FoodOrder, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"room_number":    roomNumber,
		"payment_status": models.OrderPaymentPending,
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending charges for room %s: %w", roomNumber, err)
	}
	defer cursor.Close(ctx)

	var orders []models.FoodOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode food orders: %w", err)
	}
	return orders, nil
}

// MarkChargesSettled flips the room's pending food orders to completed.
func (r *MongoOrderRepo) MarkChargesSettled(roomNumber string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"room_number":    roomNumber,
		"payment_status": models.OrderPaymentPending,
	}
	update := bson.M{"$set": bson.M{"payment_status": models.OrderPaymentCompleted}}

	_, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to settle charges for room %s: %w", roomNumber, err)
	}
	return nil
}

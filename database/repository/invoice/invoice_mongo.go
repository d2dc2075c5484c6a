package invoiceRepo

import (
	"context"
	"fmt"
	"time"

	"meserte/database"
	"meserte/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoInvoiceRepo implements InvoiceRepository using MongoDB.
type MongoInvoiceRepo struct {
	coll *mongo.Collection
}

// NewMongoInvoiceRepo creates a new instance of InvoiceRepository using MongoDB.
func NewMongoInvoiceRepo() InvoiceRepository {
	coll := database.DB().Collection("invoices")
	repo := &MongoInvoiceRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoInvoiceRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves an invoice by its unique ID.
func (r *MongoInvoiceRepo) GetByID(id string) (*models.Invoice, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var invoice models.Invoice
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&invoice); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch invoice with id %s: %w", id, err)
	}
	return &invoice, nil
}

// GetByBookingID retrieves the invoice tied to a booking.
func (r *MongoInvoiceRepo) GetByBookingID(bookingID string) (*models.Invoice, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var invoice models.Invoice
	if err := r.coll.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&invoice); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch invoice for booking %s: %w", bookingID, err)
	}
	return &invoice, nil
}

// Create inserts a new invoice document.
func (r *MongoInvoiceRepo) Create(invoice *models.Invoice) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, invoice)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// Update modifies an existing invoice document.
func (r *MongoInvoiceRepo) Update(invoice *models.Invoice) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	invoice.UpdatedAt = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": invoice.ID}, bson.M{"$set": invoice})
	if err != nil {
		return fmt.Errorf("failed to update invoice with id %s: %w", invoice.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("invoice with id %s not found", invoice.ID)
	}
	return nil
}

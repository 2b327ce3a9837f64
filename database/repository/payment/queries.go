// File: database/repository/payment/queries.go
package paymentRepo

import (
	"context"
	"fmt"
	"time"

	"parkinglot/database"
	"parkinglot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoPaymentRepo) FindPendingByTicket(ctx context.Context, ticketCode string) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"ticketCode": ticketCode, "status": models.PaymentPendingValidation}
	var payment models.Payment
	if err := r.coll.FindOne(ctx, filter).Decode(&payment); err != nil {
		return nil, database.NotFound(err)
	}
	return &payment, nil
}

// ListByStatus returns payments in the given state, newest first.
func (r *mongoPaymentRepo) ListByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "paidAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *mongoPaymentRepo) CountByStatus(ctx context.Context, status models.PaymentStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{"status": status})
}

func (r *mongoPaymentRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{"paidAt": bson.M{"$gte": since}})
}

func (r *mongoPaymentRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{Keys: bson.D{{Key: "ticketCode", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("ticket_status_idx")},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "paidAt", Value: -1}}, Options: options.Index().SetName("status_paid_idx")},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create payment indexes: %w", err)
	}
	return nil
}

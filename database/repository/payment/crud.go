// File: database/repository/payment/crud.go
package paymentRepo

import (
	"context"
	"fmt"

	"parkinglot/database"
	"parkinglot/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

func (r *mongoPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, payment); err != nil {
		return fmt.Errorf("failed to create payment for ticket %s: %w", payment.TicketCode, err)
	}
	return nil
}

func (r *mongoPaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var payment models.Payment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&payment); err != nil {
		return nil, database.NotFound(err)
	}
	return &payment, nil
}

func (r *mongoPaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": payment.ID}, payment)
	if err != nil {
		return fmt.Errorf("failed to update payment %s: %w", payment.ID, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

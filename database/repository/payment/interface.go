// File: database/repository/payment/interface.go
package paymentRepo

import (
	"context"
	"time"

	"parkinglot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	FindPendingByTicket(ctx context.Context, ticketCode string) (*models.Payment, error)
	ListByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error)
	CountByStatus(ctx context.Context, status models.PaymentStatus) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoPaymentRepo struct {
	coll *mongo.Collection
}

const opTimeout = 5 * time.Second

// NewMongoPaymentRepo constructs a PaymentRepository over the "payments" collection.
func NewMongoPaymentRepo(db *mongo.Database) PaymentRepository {
	return &mongoPaymentRepo{coll: db.Collection("payments")}
}

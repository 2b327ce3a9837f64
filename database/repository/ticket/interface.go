// File: database/repository/ticket/interface.go
package ticketRepo

import (
	"context"
	"time"

	"parkinglot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type TicketRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Ticket, error)
	ListByStatus(ctx context.Context, statuses ...models.TicketStatus) ([]models.Ticket, error)
	ListNotAvailable(ctx context.Context) ([]models.Ticket, error)
	Update(ctx context.Context, ticket *models.Ticket) error
	UpsertInventory(ctx context.Context, codes []string) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, statuses ...models.TicketStatus) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoTicketRepo struct {
	coll *mongo.Collection
}

const opTimeout = 5 * time.Second

// NewMongoTicketRepo constructs a TicketRepository over the "tickets" collection.
func NewMongoTicketRepo(db *mongo.Database) TicketRepository {
	return &mongoTicketRepo{coll: db.Collection("tickets")}
}

// File: database/repository/ticket/queries.go
package ticketRepo

import (
	"context"

	"parkinglot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func statusFilter(statuses []models.TicketStatus) bson.M {
	if len(statuses) == 0 {
		return bson.M{}
	}
	return bson.M{"status": bson.M{"$in": statuses}}
}

// ListByStatus returns tickets in any of the given states, ordered by code.
func (r *mongoTicketRepo) ListByStatus(ctx context.Context, statuses ...models.TicketStatus) ([]models.Ticket, error) {
	return r.find(ctx, statusFilter(statuses))
}

func (r *mongoTicketRepo) ListNotAvailable(ctx context.Context) ([]models.Ticket, error) {
	return r.find(ctx, bson.M{"status": bson.M{"$ne": models.TicketAvailable}})
}

func (r *mongoTicketRepo) find(ctx context.Context, filter bson.M) ([]models.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tickets := []models.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *mongoTicketRepo) Count(ctx context.Context) (int64, error) {
	return r.CountByStatus(ctx)
}

func (r *mongoTicketRepo) CountByStatus(ctx context.Context, statuses ...models.TicketStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return r.coll.CountDocuments(ctx, statusFilter(statuses))
}

// File: database/repository/ticket/crud.go
package ticketRepo

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

func (r *mongoTicketRepo) GetByCode(ctx context.Context, code string) (*models.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var ticket models.Ticket
	if err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&ticket); err != nil {
		return nil, database.NotFound(err)
	}
	return &ticket, nil
}

// Update replaces the ticket document identified by its code.
func (r *mongoTicketRepo) Update(ctx context.Context, ticket *models.Ticket) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"code": ticket.Code}, ticket)
	if err != nil {
		return fmt.Errorf("failed to update ticket %s: %w", ticket.Code, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// UpsertInventory creates any missing tickets in the available state. Existing tickets are left untouched.
func (r *mongoTicketRepo) UpsertInventory(ctx context.Context, codes []string) (int64, error) {
	if len(codes) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*opTimeout)
	defer cancel()

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(codes))
	for _, code := range codes {
		ticket := models.Ticket{
			Code:      code,
			Status:    models.TicketAvailable,
			CreatedAt: now,
			UpdatedAt: now,
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"code": code}).
			SetUpdate(bson.M{"$setOnInsert": ticket}).
			SetUpsert(true))
	}

	res, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("failed to upsert ticket inventory: %w", err)
	}
	return res.UpsertedCount, nil
}

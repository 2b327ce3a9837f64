package historyRepo

import (
	"context"

	"parkinglot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// HistoryFilter narrows a history listing. Zero values match everything.
type HistoryFilter struct {
	Plate      string
	TicketCode string
	Limit      int64
}

type HistoryRepository interface {
	Create(ctx context.Context, entry *models.HistoryEntry) (string, error)
	GetByID(ctx context.Context, id string) (*models.HistoryEntry, error)
	Update(ctx context.Context, entry *models.HistoryEntry) error
	List(ctx context.Context, filter HistoryFilter) ([]models.HistoryEntry, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoHistoryRepo struct {
	coll *mongo.Collection
}

// NewMongoHistoryRepo returns a new HistoryRepository instance using MongoDB.
func NewMongoHistoryRepo(db *mongo.Database) HistoryRepository {
	return &mongoHistoryRepo{
		coll: db.Collection("history"),
	}
}

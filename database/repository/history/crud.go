package historyRepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parkinglot/database"
	"parkinglot/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultListLimit = 100

// Create inserts a new history entry and returns its ID.
func (r *mongoHistoryRepo) Create(ctx context.Context, entry *models.HistoryEntry) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return "", fmt.Errorf("failed to create history entry: %w", err)
	}
	return entry.ID, nil
}

// GetByID returns a history entry by its ID.
func (r *mongoHistoryRepo) GetByID(ctx context.Context, id string) (*models.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var entry models.HistoryEntry
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&entry); err != nil {
		return nil, database.NotFound(err)
	}
	return &entry, nil
}

func (r *mongoHistoryRepo) Update(ctx context.Context, entry *models.HistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": entry.ID}, entry)
	if err != nil {
		return fmt.Errorf("failed to update history entry %s: %w", entry.ID, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// List returns entries newest first.
func (r *mongoHistoryRepo) List(ctx context.Context, filter HistoryFilter) ([]models.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.Plate != "" {
		query["car.plate"] = strings.ToUpper(filter.Plate)
	}
	if filter.TicketCode != "" {
		query["ticketCode"] = filter.TicketCode
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	opts := options.Find().SetSort(bson.D{{Key: "enteredAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.HistoryEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *mongoHistoryRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{Keys: bson.D{{Key: "car.plate", Value: 1}, {Key: "enteredAt", Value: -1}}, Options: options.Index().SetName("plate_entered_idx")},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create history indexes: %w", err)
	}
	return nil
}

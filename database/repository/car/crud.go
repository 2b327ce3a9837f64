// File: database/repository/car/crud.go
package carRepo

import (
	"context"
	"fmt"
	"time"

	"parkinglot/database"
	"parkinglot/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoCarRepo) Create(ctx context.Context, car *models.Car) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if car.ID == "" {
		car.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, car); err != nil {
		return fmt.Errorf("failed to create car %s: %w", car.Plate, err)
	}
	return nil
}

func (r *mongoCarRepo) GetByID(ctx context.Context, id string) (*models.Car, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *mongoCarRepo) GetByTicketCode(ctx context.Context, code string) (*models.Car, error) {
	return r.findOne(ctx, bson.M{"ticketCode": code})
}

func (r *mongoCarRepo) findOne(ctx context.Context, filter bson.M) (*models.Car, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var car models.Car
	if err := r.coll.FindOne(ctx, filter).Decode(&car); err != nil {
		return nil, database.NotFound(err)
	}
	return &car, nil
}

func (r *mongoCarRepo) Update(ctx context.Context, car *models.Car) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": car.ID}, car)
	if err != nil {
		return fmt.Errorf("failed to update car %s: %w", car.ID, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *mongoCarRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete car %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *mongoCarRepo) ListAll(ctx context.Context) ([]models.Car, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "enteredAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	cars := []models.Car{}
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

func (r *mongoCarRepo) CountByStatus(ctx context.Context, statuses ...models.CarStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	return r.coll.CountDocuments(ctx, filter)
}

// EnsureIndexes creates the unique indexes on car id and ticket code.
// The ticketCode index backs the one-car-per-ticket rule.
func (r *mongoCarRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{Keys: bson.D{{Key: "ticketCode", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_ticket_code")},
		{Keys: bson.D{{Key: "plate", Value: 1}}, Options: options.Index().SetName("plate_idx")},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create car indexes: %w", err)
	}
	return nil
}

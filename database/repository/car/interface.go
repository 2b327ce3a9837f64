// File: database/repository/car/interface.go
package carRepo

import (
	"context"
	"time"

	"parkinglot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type CarRepository interface {
	Create(ctx context.Context, car *models.Car) error
	GetByID(ctx context.Context, id string) (*models.Car, error)
	GetByTicketCode(ctx context.Context, code string) (*models.Car, error)
	Update(ctx context.Context, car *models.Car) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]models.Car, error)
	CountByStatus(ctx context.Context, statuses ...models.CarStatus) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoCarRepo struct {
	coll *mongo.Collection
}

const opTimeout = 5 * time.Second

// NewMongoCarRepo constructs a CarRepository over the "cars" collection.
func NewMongoCarRepo(db *mongo.Database) CarRepository {
	return &mongoCarRepo{coll: db.Collection("cars")}
}

// File: database/repository/staff/staff.go
package staffRepo

import (
	"context"
	"fmt"
	"time"

	"parkinglot/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StaffRepository interface {
	Create(ctx context.Context, staff *models.Staff) error
	Count(ctx context.Context) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoStaffRepo struct {
	coll *mongo.Collection
}

func NewMongoStaffRepo(db *mongo.Database) StaffRepository {
	return &mongoStaffRepo{coll: db.Collection("staff")}
}

// Create upserts by email so re-running the seed command does not duplicate staff.
func (r *mongoStaffRepo) Create(ctx context.Context, staff *models.Staff) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if staff.ID == "" {
		staff.ID = uuid.New().String()
	}
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"email": staff.Email},
		bson.M{"$setOnInsert": staff},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to create staff %s: %w", staff.Email, err)
	}
	return nil
}

func (r *mongoStaffRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *mongoStaffRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_email"),
	})
	if err != nil {
		return fmt.Errorf("failed to create staff indexes: %w", err)
	}
	return nil
}

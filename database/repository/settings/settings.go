// File: database/repository/settings/settings.go
package settingsRepo

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

type SettingsRepository interface {
	Get(ctx context.Context) (*models.CompanySettings, error)
	Save(ctx context.Context, settings *models.CompanySettings) error
}

type mongoSettingsRepo struct {
	coll *mongo.Collection
}

// NewMongoSettingsRepo stores the singleton settings document in the "settings" collection.
func NewMongoSettingsRepo(db *mongo.Database) SettingsRepository {
	return &mongoSettingsRepo{coll: db.Collection("settings")}
}

// Get returns database.ErrNotFound when no settings were ever saved.
func (r *mongoSettingsRepo) Get(ctx context.Context) (*models.CompanySettings, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.CompanySettings
	if err := r.coll.FindOne(ctx, bson.M{"id": models.CompanySettingsID}).Decode(&s); err != nil {
		return nil, database.NotFound(err)
	}
	return &s, nil
}

// Save replaces the singleton, creating it when missing.
func (r *mongoSettingsRepo) Save(ctx context.Context, settings *models.CompanySettings) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	settings.ID = models.CompanySettingsID
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"id": models.CompanySettingsID}, settings, opts); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

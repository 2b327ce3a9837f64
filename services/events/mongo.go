package events

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MongoChangeStream opens one database change stream per subscriber.
// Requires a replica set or sharded cluster.
type MongoChangeStream struct {
	db     *mongo.Database
	logger *zap.Logger
}

func NewMongoChangeStream(db *mongo.Database, logger *zap.Logger) *MongoChangeStream {
	return &MongoChangeStream{db: db, logger: logger}
}

func changePipeline() mongo.Pipeline {
	collections := bson.A{}
	for _, c := range WatchedCollections {
		collections = append(collections, c)
	}
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "ns.coll", Value: bson.D{{Key: "$in", Value: collections}}},
			{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace", "delete"}}}},
		}}},
	}
}

type changeDoc struct {
	OperationType string `bson:"operationType"`
	NS            struct {
		Coll string `bson:"coll"`
	} `bson:"ns"`
	DocumentKey bson.Raw `bson:"documentKey"`
}

func (m *MongoChangeStream) Subscribe(ctx context.Context) (<-chan Change, error) {
	stream, err := m.db.Watch(ctx, changePipeline())
	if err != nil {
		return nil, fmt.Errorf("open change stream: %w", err)
	}

	out := make(chan Change, 16)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var doc changeDoc
			if err := stream.Decode(&doc); err != nil {
				m.logger.Warn("Undecodable change event", zap.Error(err))
				continue
			}
			change := Change{
				Collection: doc.NS.Coll,
				Operation:  doc.OperationType,
				Key:        doc.DocumentKey.String(),
				At:         time.Now().UTC(),
			}
			select {
			case out <- change:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			m.logger.Error("Change stream terminated", zap.Error(err))
		}
	}()
	return out, nil
}

package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxRunner runs fn so that every repository write made with the ctx it
// receives commits together or not at all.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MongoTxRunner runs transactions on a MongoDB replica set.
type MongoTxRunner struct {
	client *mongo.Client
}

func NewMongoTxRunner(client *mongo.Client) *MongoTxRunner {
	return &MongoTxRunner{client: client}
}

// RunInTransaction starts a session, hands fn the session context and
// aborts on the first error. The original error is returned wrapped.
func (r *MongoTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return fmt.Errorf("could not start transaction: %w", err)
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(context.Background())
			return err
		}
		if err := sc.CommitTransaction(sc); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	})
}

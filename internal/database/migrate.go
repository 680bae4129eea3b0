package database

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

// requiredIndexes closes the duplicate-registration race: two concurrent
// inserts of the same email cannot both succeed.
var requiredIndexes = []collectionIndexes{
	{
		collection: UsersCollection,
		models: []mongo.IndexModel{{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("users_email_unique").SetUnique(true),
		}},
	},
	{
		collection: OrdersCollection,
		models: []mongo.IndexModel{{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("orders_email"),
		}},
	},
}

func (db *DB) EnsureIndexes(ctx context.Context) error {
	if db == nil || db.Database == nil {
		return fmt.Errorf("database is not initialized")
	}

	for _, spec := range requiredIndexes {
		names, err := db.Collection(spec.collection).Indexes().CreateMany(ctx, spec.models)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", spec.collection, err)
		}
		slog.Debug("indexes ensured", "collection", spec.collection, "indexes", names)
	}

	return nil
}

package migrations

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the order workflows rely on, retrying
// while the store comes up.
func EnsureIndexes(ctx context.Context, retries int, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"orders": {
			{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}

	for name, models := range indexes {
		_, err := db.Collection(name).Indexes().CreateMany(ctx, models)
		if err != nil {
			// Retry creating the indexes
			for i := 0; i < retries; i++ {
				time.Sleep(1 * time.Second)
				_, err = db.Collection(name).Indexes().CreateMany(ctx, models)
				if err == nil {
					break
				}
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

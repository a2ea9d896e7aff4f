package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"chatd/internal/model"
)

// EnsureIndexes creates the indexes for all collections. Single entry point
// invoked at application startup.
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	models := []Model{
		&model.Thread{},
		&model.Message{},
	}

	return EnsureAllIndexes(ctx, db, models...)
}

package model

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Thread is a conversation holding zero or more messages. The message count
// is derived from the messages collection and never stored here.
//
// Field keys are camelCase on purpose: they match the wire format the
// frontend already consumes and the persisted document layout.
type Thread struct {
	ID        string    `bson:"id" json:"id"`               // opaque unique ID (thread_<uuid>)
	Title     string    `bson:"title" json:"title"`         // user supplied, 1-200 chars
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"` // immutable
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"` // advances on every send and title edit
}

// Collection returns the collection name.
func (t *Thread) Collection() string {
	return "threads"
}

// EnsureIndexes creates and maintains the threads indexes.
func (t *Thread) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(t.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "updatedAt", Value: -1}},
			Options: options.Index().SetName("idx_updated"),
		},
		{
			Keys:    bson.D{bson.E{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

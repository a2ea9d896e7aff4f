package model

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one utterance in a thread. Messages are created once and never
// updated; they disappear only when their thread is deleted.
//
// Within a thread, messages are totally ordered by (createdAt, id). The
// orchestrator spaces the user/assistant pair of a turn by one millisecond so
// the order survives the driver's millisecond timestamp truncation.
type Message struct {
	ID        string         `bson:"id" json:"id"`                               // opaque unique ID (msg_<role>_<uuid>)
	ThreadID  string         `bson:"threadId" json:"threadId"`                   // owning thread; checked at the service boundary
	Role      string         `bson:"role" json:"role"`                           // user | assistant | system
	Content   string         `bson:"content" json:"content"`                     // 1-10000 chars
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`                 // sole sort key
	Metadata  map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"` // open side channel: welcome marker, model, usage, latency
}

// Collection returns the collection name.
func (m *Message) Collection() string {
	return "messages"
}

// EnsureIndexes creates and maintains the messages indexes.
func (m *Message) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(m.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "threadId", Value: 1}},
			Options: options.Index().SetName("idx_thread"),
		},
		{
			Keys:    bson.D{bson.E{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("idx_created"),
		},
		{
			Keys:    bson.D{bson.E{Key: "threadId", Value: 1}, bson.E{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("idx_thread_created"),
		},
		{
			Keys:    bson.D{bson.E{Key: "role", Value: 1}},
			Options: options.Index().SetName("idx_role"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

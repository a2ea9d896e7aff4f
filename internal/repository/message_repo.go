package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatd/internal/model"
)

// MessageRepository is the message persistence port.
//
// List and History deliberately paginate differently: List applies
// skip/limit in chronological order for the user-facing view, History takes
// the most recent limit messages and returns them in chronological order
// for the AI context window. Do not confuse the two.
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	FindByID(ctx context.Context, id string) (*model.Message, error)
	List(ctx context.Context, threadID string, skip, limit int64) ([]*model.Message, error)
	History(ctx context.Context, threadID string, limit int64) ([]*model.Message, error)
	Count(ctx context.Context, threadID string) (int64, error)
	DeleteAll(ctx context.Context, threadID string) (int64, error)
}

// MessageRepo is the MongoDB implementation of MessageRepository.
type MessageRepo struct {
	coll *mongo.Collection
}

// NewMessageRepo creates a message repository.
func NewMessageRepo(db *mongo.Database) *MessageRepo {
	var m model.Message
	return &MessageRepo{coll: db.Collection(m.Collection())}
}

// Create inserts a message. The caller owns ID and CreatedAt; messages are
// immutable after this point.
func (r *MessageRepo) Create(ctx context.Context, msg *model.Message) error {
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

// FindByID looks up a message by its opaque ID. Returns (nil, nil) when
// absent.
func (r *MessageRepo) FindByID(ctx context.Context, id string) (*model.Message, error) {
	var m model.Message
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns a thread's messages oldest first with skip/limit pagination.
func (r *MessageRepo) List(ctx context.Context, threadID string, skip, limit int64) ([]*model.Message, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "createdAt", Value: 1}, bson.E{Key: "id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := r.coll.Find(ctx, bson.M{"threadId": threadID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []*model.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// History returns the most recent limit messages in chronological order:
// newest-first fetch, then reversed. This is the context window for the AI
// responder, never the oldest limit messages.
func (r *MessageRepo) History(ctx context.Context, threadID string, limit int64) ([]*model.Message, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "createdAt", Value: -1}, bson.E{Key: "id", Value: -1}}).
		SetLimit(limit)

	cur, err := r.coll.Find(ctx, bson.M{"threadId": threadID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []*model.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Count returns the number of messages in a thread.
func (r *MessageRepo) Count(ctx context.Context, threadID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"threadId": threadID})
}

// DeleteAll removes every message in a thread and reports how many went.
func (r *MessageRepo) DeleteAll(ctx context.Context, threadID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"threadId": threadID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

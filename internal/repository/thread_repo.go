package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatd/internal/model"
)

// ThreadRepository is the thread persistence port (service layer dependency).
// FindByID returns (nil, nil) when the thread does not exist.
type ThreadRepository interface {
	Create(ctx context.Context, thread *model.Thread) error
	FindByID(ctx context.Context, id string) (*model.Thread, error)
	List(ctx context.Context, skip, limit int64) ([]*model.Thread, error)
	Update(ctx context.Context, id string, title *string) (bool, error)
	Touch(ctx context.Context, id string, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// ThreadRepo is the MongoDB implementation of ThreadRepository.
type ThreadRepo struct {
	coll *mongo.Collection
}

// NewThreadRepo creates a thread repository.
func NewThreadRepo(db *mongo.Database) *ThreadRepo {
	var t model.Thread
	return &ThreadRepo{coll: db.Collection(t.Collection())}
}

// Create inserts a new thread. CreatedAt and UpdatedAt start equal.
func (r *ThreadRepo) Create(ctx context.Context, thread *model.Thread) error {
	now := time.Now().UTC()
	thread.CreatedAt = now
	thread.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, thread)
	return err
}

// FindByID looks up a thread by its opaque ID.
func (r *ThreadRepo) FindByID(ctx context.Context, id string) (*model.Thread, error) {
	var t model.Thread
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns threads newest-updated first. The id tie-break keeps page
// boundaries reproducible when several threads share an updatedAt.
func (r *ThreadRepo) List(ctx context.Context, skip, limit int64) ([]*model.Thread, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "updatedAt", Value: -1}, bson.E{Key: "id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var threads []*model.Thread
	if err := cur.All(ctx, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// Update sets a new title, or with a nil title just refreshes updatedAt
// (the orchestrator's "touch" after a message send). Returns whether a
// thread matched.
func (r *ThreadRepo) Update(ctx context.Context, id string, title *string) (bool, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if title != nil {
		set["title"] = *title
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Touch advances updatedAt to at. $max keeps updatedAt monotone when
// concurrent sends on the same thread race each other.
func (r *ThreadRepo) Touch(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$max": bson.M{"updatedAt": at}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Delete removes a thread. Message cascade is the service's job.
func (r *ThreadRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// Count returns the total number of threads.
func (r *ThreadRepo) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
